package balance

import (
	"math"
	"testing"
)

func float(v float64) *float64 { return &v }

func TestShare(t *testing.T) {
	tests := []struct {
		name         string
		method       SplitMethod
		amount       float64
		splitAmount  *float64
		enabledCount int
		want         float64
	}{
		{name: "equal between two", method: SplitEqual, amount: 100, enabledCount: 2, want: 50},
		{name: "equal between three", method: SplitEqual, amount: 90, enabledCount: 3, want: 30},
		{name: "equal ignores split amount", method: SplitEqual, amount: 100, splitAmount: float(70), enabledCount: 4, want: 25},
		{name: "equal with nobody enabled", method: SplitEqual, amount: 100, enabledCount: 0, want: 0},
		{name: "fixed uses split amount", method: SplitFixed, amount: 90, splitAmount: float(30), enabledCount: 3, want: 30},
		{name: "fixed without split amount", method: SplitFixed, amount: 90, enabledCount: 3, want: 0},
		{name: "percentage of amount", method: SplitPercentage, amount: 200, splitAmount: float(30), enabledCount: 3, want: 60},
		{name: "percentage without split amount", method: SplitPercentage, amount: 200, enabledCount: 3, want: 0},
		{name: "unknown method owes nothing", method: SplitMethod("shares"), amount: 200, splitAmount: float(2), enabledCount: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Share(tt.method, tt.amount, tt.splitAmount, tt.enabledCount)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("Share() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitMethodValid(t *testing.T) {
	for _, m := range []SplitMethod{SplitEqual, SplitFixed, SplitPercentage} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	for _, m := range []SplitMethod{"", "EVEN", "shares"} {
		if m.Valid() {
			t.Errorf("%q should not be valid", m)
		}
	}
}
