// Package money handles transaction amount strings and comparisons.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// tolerance is the absolute difference under which two amounts are equal.
var tolerance = decimal.NewFromFloat(0.001)

// Parse interprets an amount string, stripping grouping separators first.
// Numeric parsing rejects "1,234.56", and the separators only exist for
// display, so they are removed before the parse.
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

// Format renders an amount in the fixed two-decimal form the remote service
// expects in create and update payloads.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatFloat is Format for amounts the remote service returned as floats.
func FormatFloat(f float64) string {
	return Format(decimal.NewFromFloat(f))
}

// WithSeparators renders an amount with thousands separators for display.
func WithSeparators(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, decPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + decPart
	if neg {
		out = "-" + out
	}
	return out
}

// NearZero reports whether d is within the comparison tolerance of zero.
func NearZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(tolerance)
}

// Equal reports whether two amounts differ by less than the tolerance.
func Equal(a, b decimal.Decimal) bool {
	return NearZero(a.Sub(b))
}
