package currency

import (
	"math"
	"strings"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   float64
	}{
		{33.333333, "USD", 33.33},
		{0.015, "EUR", 0.02},
		{-12.345, "USD", -12.35},
		{1234.5, "JPY", 1235},
		{1.23456, "BHD", 1.235},
		{7.777, "XYZ", 7.78},
		{7.777, "", 7.78},
	}
	for _, tt := range tests {
		if got := Round(tt.amount, tt.code); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Round(%v, %q) = %v, want %v", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{50, "USD", "$50.00"},
		{1234.5, "USD", "$1,234.50"},
		{33.333, "usd", "$33.33"},
		{50, "XYZ", "50.00 XYZ"},
		{50, "default", "50.00"},
		{0.015, "", "0.02"},
	}
	for _, tt := range tests {
		if got := Format(tt.amount, tt.code); got != tt.want {
			t.Errorf("Format(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}

	if got := Format(30, "EUR"); !strings.Contains(got, "€") || !strings.Contains(got, "30") {
		t.Errorf("Format(30, EUR) = %q, want euro sign and amount", got)
	}
}

func TestKnown(t *testing.T) {
	if !Known("GBP") || !Known("gbp") {
		t.Error("GBP should be known")
	}
	if Known("") || Known("default") || Known("XYZ") {
		t.Error("empty, default and XYZ should not be known")
	}
	if Fraction("JPY") != 0 || Fraction("USD") != 2 || Fraction("nope") != 2 {
		t.Error("unexpected fraction digits")
	}
}
