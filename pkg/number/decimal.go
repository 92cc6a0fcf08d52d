package number

import (
	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits every stored value is truncated to
const Precision int32 = 16

var (
	// One 1
	One = decimal.NewFromInt(1)
)

// Decimal parse v, returns zero on malformed input
func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Truncate d to Precision
func Truncate(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(Precision)
}

// Ceil rounds d up at the given precision
func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Floor rounds d down at the given precision
func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Floor().Shift(-precision)
}

// Mul a * b truncated
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Truncate(Precision)
}

// Div a / b truncated, zero when b is zero
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	return a.Div(b).Truncate(Precision)
}

// ApproxEqual reports whether |a - b| <= tolerance
func ApproxEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance.Abs())
}

// Clamp d into [min, max]
func Clamp(d, min, max decimal.Decimal) decimal.Decimal {
	if d.LessThan(min) {
		return min
	}

	if d.GreaterThan(max) {
		return max
	}

	return d
}
