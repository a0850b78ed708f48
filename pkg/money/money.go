// Package money provides a fixed-point monetary amount used across clinical
// cost estimates, budget lines, and invoice lines. Amounts are integer cents;
// there is no implicit float arithmetic anywhere in the financial chain.
package money

import (
	"fmt"
	"math"
)

// Amount is a monetary value in integer cents.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromCents builds an Amount from a raw cent count.
func FromCents(c int64) Amount {
	return Amount(c)
}

// FromFloat converts a float value in currency units to an Amount, rounding
// half away from zero.
func FromFloat(f float64) Amount {
	if f >= 0 {
		return Amount(math.Floor(f*100 + 0.5))
	}
	return Amount(math.Ceil(f*100 - 0.5))
}

// Cents returns the raw cent count.
func (a Amount) Cents() int64 { return int64(a) }

// Float64 returns the amount in currency units. Intended for display and
// JSON payloads only, never for arithmetic.
func (a Amount) Float64() float64 { return float64(a) / 100 }

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return a + b }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return a - b }

// Mul returns the amount multiplied by an integer quantity.
func (a Amount) Mul(n int64) Amount { return a * Amount(n) }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a == 0 }

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// String renders the amount with two decimal places, e.g. "50.00" or "-3.25".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
