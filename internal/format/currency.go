// Package format renders amounts, dates and contact fields for display.
// Every function is total: bad input degrades to a fallback string.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used when none is configured.
const DefaultCurrency = "USD"

// DefaultSymbol is printed for currency codes outside the supported set.
const DefaultSymbol = "$"

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"SAR": "SAR ",
	"AED": "AED ",
	"EGP": "EGP ",
}

// SupportedCurrency reports whether code belongs to the closed currency set.
func SupportedCurrency(code string) bool {
	_, ok := symbols[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Symbol returns the display symbol for code, or DefaultSymbol.
func Symbol(code string) string {
	if s, ok := symbols[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return s
	}
	return DefaultSymbol
}

// Amount renders v with exactly two decimals, rounding half away from zero.
// NaN and infinities render as 0.00.
func Amount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Currency renders amount with the symbol of code, e.g. Currency(1234.5, "USD") == "$1234.50".
func Currency(amount float64, code string) string {
	s := Amount(amount)
	if strings.HasPrefix(s, "-") {
		return "-" + Symbol(code) + s[1:]
	}
	return Symbol(code) + s
}
