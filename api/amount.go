package api

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Amounts cross the wire as unsigned base units. The helpers below convert
// between base units and scaled decimal strings for human-facing inputs and
// output, using decimal arithmetic so no precision is lost on the way in.

// ParseAmount converts a decimal string such as "1.50" into base units at
// the given scale (digits after the point). It rejects negative values,
// values with more precision than the scale, and values that overflow
// uint64.
func ParseAmount(s string, scale int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, errors.New("amount cannot be negative")
	}
	shifted := d.Shift(scale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, scale)
	}
	units := shifted.BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("amount %q overflows the base-unit range", s)
	}
	return units.Uint64(), nil
}

// FormatAmount renders base units as a decimal string with exactly scale
// digits after the point.
func FormatAmount(units uint64, scale int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -scale).StringFixed(scale)
}
