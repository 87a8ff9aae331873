// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors; only the
// presentation layer rounds.
type Money = decimal.Decimal

// Qty represents a stock quantity with full precision.
type Qty = decimal.Decimal

// MoneyEpsilon is the rounding tolerance for monetary comparisons.
var MoneyEpsilon = decimal.RequireFromString("0.01")

// QtyEpsilon is the tolerance below which a lot quantity counts as empty.
var QtyEpsilon = decimal.RequireFromString("0.001")

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// NewQty creates a Qty value from a float.
func NewQty(f float64) Qty {
	return decimal.NewFromFloat(f)
}

// MustQty creates a Qty value from a string, panics on error.
// Use only for constants and tests.
func MustQty(s string) Qty {
	return decimal.RequireFromString(s)
}

// Zero returns zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// IsZeroMoney reports whether m is zero within MoneyEpsilon.
func IsZeroMoney(m Money) bool {
	return m.Abs().LessThanOrEqual(MoneyEpsilon)
}

// IsEmptyQty reports whether q is empty within QtyEpsilon.
func IsEmptyQty(q Qty) bool {
	return q.LessThanOrEqual(QtyEpsilon)
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MinQty returns the smaller of a and b.
func MinQty(a, b Qty) Qty {
	if a.LessThan(b) {
		return a
	}
	return b
}
