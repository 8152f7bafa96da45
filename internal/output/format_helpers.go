package output

import (
	"strconv"

	"github.com/rpgo/pension-engine/internal/compare"
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as USD with thousands separators and 2 decimals.
func FormatCurrency(amount decimal.Decimal) string { return money.Format(amount) }

// FormatPercentage formats a ratio as a percentage with 2 decimals (0.0825 -> 8.25%).
func FormatPercentage(ratio decimal.Decimal) string { return money.Percent(ratio).StringFixed(2) + "%" }

// FormatSigned is FormatCurrency with an explicit sign for diffs.
func FormatSigned(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + FormatCurrency(amount)
	}
	return FormatCurrency(amount)
}

// RecommendationDetail describes why a scenario won its category.
func RecommendationDetail(r compare.Recommendation) string {
	switch r.Category {
	case compare.CategoryIncome:
		return "highest first-year net income of " + FormatCurrency(r.Value)
	case compare.CategoryLifetime:
		return "highest net lifetime income of " + FormatCurrency(r.Value)
	case compare.CategoryRisk:
		return "lowest risk score of " + r.Value.StringFixed(2)
	case compare.CategoryOverall:
		return "highest optimization score of " + r.Value.StringFixed(2)
	case compare.CategorySurvivor:
		return "largest survivor pension of " + FormatCurrency(r.Value) + " a year"
	default:
		return r.Value.String()
	}
}

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }
