// Package money is the single rounding boundary for every presented result
// of the engine, plus dollar formatting for the report adapters.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Cents rounds an amount to two decimal places, half away from zero.
// Engine stages compute at full precision and call Cents only when a value
// is copied into a result type.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Rate rounds a ratio for presentation (four places, e.g. 0.0825).
func Rate(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

// Years rounds an age or a duration in years to two places.
func Years(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MonthlyOf converts an annual amount to a monthly amount without rounding.
func MonthlyOf(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve)
}

// AnnualOf converts a monthly amount to an annual amount without rounding.
func AnnualOf(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}

// Percent converts a ratio to a percentage rounded to two places (0.08 -> 8.00).
func Percent(ratio decimal.Decimal) decimal.Decimal {
	return ratio.Mul(hundred).Round(2)
}

// Format renders d as dollars with thousands separators ($1,234.50).
// Formatting belongs to the presentation adapters; the engine never calls it.
func Format(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}
