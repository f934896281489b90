// Package currency rounds and formats amounts using ISO 4217 currency rules.
//
// The balance engine works on float64 with a 0.01 tolerance; this package is only
// used at the edges, when amounts are shown to a person.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/MichealAPI/payly/internal/balance"
)

// defaultFraction is used for codes go-money does not know.
const defaultFraction = 2

func lookup(code string) *money.Currency {
	if code == "" || code == balance.DefaultCurrency {
		return nil
	}
	return money.GetCurrency(strings.ToUpper(code))
}

// Known reports whether code is an ISO 4217 currency.
func Known(code string) bool {
	return lookup(code) != nil
}

// Fraction returns the number of minor-unit digits of code.
func Fraction(code string) int {
	if cur := lookup(code); cur != nil {
		return cur.Fraction
	}
	return defaultFraction
}

// Round rounds amount half away from zero to the currency's minor unit.
func Round(amount float64, code string) float64 {
	return decimal.NewFromFloat(amount).Round(int32(Fraction(code))).InexactFloat64()
}

// Format renders amount with the currency's symbol and separators, e.g. "$1,234.50".
// Unknown codes render as "1234.50 CODE"; the default bucket renders the bare number.
func Format(amount float64, code string) string {
	cur := lookup(code)
	if cur == nil {
		s := decimal.NewFromFloat(amount).StringFixed(defaultFraction)
		if code == "" || code == balance.DefaultCurrency {
			return s
		}
		return s + " " + code
	}

	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
