package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Currency identifies an ISO 4217 currency together with its minor-unit exponent.
type Currency struct {
	Code     string
	Exponent int32
}

var known = map[string]Currency{
	"USD": {Code: "USD", Exponent: 2},
	"EUR": {Code: "EUR", Exponent: 2},
	"GBP": {Code: "GBP", Exponent: 2},
	"CAD": {Code: "CAD", Exponent: 2},
	"AUD": {Code: "AUD", Exponent: 2},
	"CHF": {Code: "CHF", Exponent: 2},
	"SGD": {Code: "SGD", Exponent: 2},
	"IDR": {Code: "IDR", Exponent: 2},
	"JPY": {Code: "JPY", Exponent: 0},
	"KRW": {Code: "KRW", Exponent: 0},
	"VND": {Code: "VND", Exponent: 0},
	"BHD": {Code: "BHD", Exponent: 3},
	"KWD": {Code: "KWD", Exponent: 3},
}

// USD is the fallback currency used when a requested code is not recognised.
var USD = known["USD"]

// Parse resolves a currency code case-insensitively. It reports whether the
// code was recognised; unrecognised codes return the USD fallback so callers
// degrade instead of failing.
func Parse(code string) (Currency, bool) {
	c, ok := known[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return USD, false
	}
	return c, true
}

// Amount formats a minor-unit value as the decimal string in major units
// expected by payment processors, e.g. Amount(1050) == "10.50" for USD.
func (c Currency) Amount(cents Money) string {
	return decimal.New(cents, -c.Exponent).StringFixed(c.Exponent)
}

// Equal compares two currencies by code.
func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code
}

// Coalesce returns the value of an optional amount, defaulting to zero. Every
// nullable monetary input must pass through here before summation so that an
// all-nil chain of fee components reduces to 0 rather than to absence.
func Coalesce(v *Money) Money {
	if v == nil {
		return 0
	}
	return *v
}
