// Package money provides exact fixed-point monetary values.
//
// All amounts are carried in minor currency units (cents for USD-like
// currencies) as int64. Balance computation never touches floating point.
package money

import "fmt"

// Amount is a monetary value in minor currency units.
type Amount int64

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// String formats the amount as a decimal with two fractional digits,
// e.g. 1234 -> "12.34", -5 -> "-0.05".
func (a Amount) String() string {
	sign := ""
	v := a
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
