package compare

import (
	"github.com/rpgo/pension-engine/internal/calculation"
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Outcome is one scenario run. Exactly one of Result and Err is set.
type Outcome struct {
	Name   string                   `json:"name"`
	Result *domain.ProjectionResult `json:"result,omitempty"`
	Err    error                    `json:"-"`
	Error  string                   `json:"error,omitempty"`
}

// OK reports whether the scenario produced a projection.
func (o Outcome) OK() bool { return o.Err == nil && o.Result != nil }

// Diff is an alternative measured against the base scenario. Amounts are
// alternative minus base.
type Diff struct {
	Name              string          `json:"name"`
	FirstYearIncome   decimal.Decimal `json:"first_year_income"`
	FirstYearNet      decimal.Decimal `json:"first_year_net"`
	LifetimeIncome    decimal.Decimal `json:"lifetime_income"`
	NetLifetimeIncome decimal.Decimal `json:"net_lifetime_income"`
	ReplacementRatio  decimal.Decimal `json:"replacement_ratio"`
	ReductionPercent  decimal.Decimal `json:"reduction_percent"`
	SurvivorPension   decimal.Decimal `json:"survivor_pension"`
	OptimizationScore decimal.Decimal `json:"optimization_score"`
	RiskScore         decimal.Decimal `json:"risk_score"`
	FlexibilityScore  decimal.Decimal `json:"flexibility_score"`
	// BreakEven is where cumulative net income of base and alternative
	// cross, nil when they never do within the horizon.
	BreakEven *calculation.CumulativeBreakEvenResult `json:"break_even,omitempty"`
}

// Recommendation names the best scenario for one criterion. Value is the
// winning figure: an annual dollar amount for income, lifetime and survivor,
// a 0-100 score for risk and overall.
type Recommendation struct {
	Category string          `json:"category"`
	Scenario string          `json:"scenario"`
	Value    decimal.Decimal `json:"value"`
}

// Comparison is the comparator output.
type Comparison struct {
	Base            Outcome          `json:"base"`
	Alternatives    []Outcome        `json:"alternatives"`
	Diffs           []Diff           `json:"diffs"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Successful returns the base followed by every alternative that produced a
// projection, in input order.
func (c *Comparison) Successful() []Outcome {
	out := []Outcome{c.Base}
	for _, a := range c.Alternatives {
		if a.OK() {
			out = append(out, a)
		}
	}
	return out
}

// Recommendation returns the recommendation for category, if any.
func (c *Comparison) Recommendation(category string) (Recommendation, bool) {
	for _, r := range c.Recommendations {
		if r.Category == category {
			return r, true
		}
	}
	return Recommendation{}, false
}
