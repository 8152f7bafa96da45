package calculation

import (
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// scoreInputs are the first-year ratios the summary scores are built from.
// All values are in [0, 1] except replacementRatio.
type scoreInputs struct {
	colaCoverage       decimal.Decimal
	diversification    decimal.Decimal
	reduction          decimal.Decimal
	replacementRatio   decimal.Decimal
	supplementalShare  decimal.Decimal
	survivorProtection decimal.Decimal
}

type scores struct {
	Optimization decimal.Decimal
	Risk         decimal.Decimal
	Flexibility  decimal.Decimal
}

var (
	riskWeights         = [3]decimal.Decimal{decimal.NewFromFloat(0.45), decimal.NewFromFloat(0.35), decimal.NewFromFloat(0.20)}
	optimizationWeights = [3]decimal.Decimal{decimal.NewFromFloat(0.40), decimal.NewFromFloat(0.30), decimal.NewFromFloat(0.30)}
	flexibilityWeights  = [3]decimal.Decimal{decimal.NewFromFloat(0.50), decimal.NewFromFloat(0.30), decimal.NewFromFloat(0.20)}
)

// computeScores returns the 0-100 scores, rounded to two places.
//
//	risk         = 100 (0.45 (1-coverage) + 0.35 (1-diversification) + 0.20 reduction)
//	optimization = 100 (0.40 min(1, replacement) + 0.30 (1-reduction) + 0.30 coverage)
//	flexibility  = 100 (0.50 diversification + 0.30 supplementalShare + 0.20 survivorProtection)
func computeScores(in scoreInputs) scores {
	one := decimal.NewFromInt(1)

	risk := weighted(riskWeights, one.Sub(in.colaCoverage), one.Sub(in.diversification), in.reduction)
	optimization := weighted(optimizationWeights, decimal.Min(one, in.replacementRatio), one.Sub(in.reduction), in.colaCoverage)
	flexibility := weighted(flexibilityWeights, in.diversification, in.supplementalShare, in.survivorProtection)

	return scores{
		Optimization: money.Percent(clamp01(optimization)),
		Risk:         money.Percent(clamp01(risk)),
		Flexibility:  money.Percent(clamp01(flexibility)),
	}
}

func weighted(w [3]decimal.Decimal, a, b, c decimal.Decimal) decimal.Decimal {
	return w[0].Mul(a).Add(w[1].Mul(b)).Add(w[2].Mul(c))
}

// diversification is the normalized Herfindahl complement of the income
// shares: 0 for a single stream, 1 for four equal streams.
func diversification(streams ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range streams {
		total = total.Add(s)
	}
	if !total.IsPositive() {
		return decimal.Zero
	}
	concentration := decimal.Zero
	for _, s := range streams {
		share := s.Div(total)
		concentration = concentration.Add(share.Mul(share))
	}
	maxSpread := decimal.NewFromFloat(0.75)
	return clamp01(decimal.NewFromInt(1).Sub(concentration).Div(maxSpread))
}

func clamp01(d decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, decimal.Min(decimal.NewFromInt(1), d))
}

// ratio returns a/b, or zero when b is not positive.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}
	return a.Div(b)
}
