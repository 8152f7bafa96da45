package compare

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rpgo/pension-engine/internal/calculation"
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation categories.
const (
	CategoryIncome   = "income"
	CategoryLifetime = "lifetime"
	CategoryRisk     = "risk"
	CategoryOverall  = "overall"
	CategorySurvivor = "survivor"
)

// Engine runs scenarios side by side on one calculation engine.
type Engine struct {
	Calc *calculation.Engine
}

// New creates a comparator. A nil calc uses the default rules.
func New(calc *calculation.Engine) *Engine {
	if calc == nil {
		calc = calculation.Default()
	}
	return &Engine{Calc: calc}
}

// Compare projects base and every alternative concurrently, one goroutine
// per scenario. A failing alternative is recorded in its Outcome and does not
// affect the others; a failing base scenario fails the comparison because
// there is nothing to diff against.
func (e *Engine) Compare(ctx context.Context, base domain.ScenarioParameters, alternatives ...domain.ScenarioParameters) (*Comparison, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scenarios := append([]domain.ScenarioParameters{base}, alternatives...)
	outcomes := make([]Outcome, len(scenarios))

	var wg sync.WaitGroup
	for i, params := range scenarios {
		wg.Add(1)
		go func(i int, params domain.ScenarioParameters) {
			defer wg.Done()
			outcomes[i] = e.run(ctx, params)
		}(i, params)
	}
	wg.Wait()

	if err := outcomes[0].Err; err != nil {
		return nil, fmt.Errorf("base scenario %q: %w", outcomes[0].Name, err)
	}

	c := &Comparison{
		Base:         outcomes[0],
		Alternatives: outcomes[1:],
	}
	for _, alt := range c.Alternatives {
		if !alt.OK() {
			e.Calc.Log().Warnf("scenario %q failed: %v", alt.Name, alt.Err)
			continue
		}
		c.Diffs = append(c.Diffs, diff(c.Base.Result, alt.Result))
	}
	c.Recommendations = recommend(c.Successful())
	return c, nil
}

func (e *Engine) run(ctx context.Context, params domain.ScenarioParameters) Outcome {
	o := Outcome{Name: params.Name}
	if err := ctx.Err(); err != nil {
		o.Err = err
	} else {
		o.Result, o.Err = e.Calc.ProjectScenario(params)
	}
	if o.Err != nil {
		o.Result = nil
		o.Error = o.Err.Error()
	}
	return o
}

// CompareElections runs params under each payout election. The scenario's
// own election is the base. The joint survivor alternative keeps the
// scenario's fraction and beneficiary when it has them, otherwise it uses
// two-thirds and a beneficiary the member's retirement age.
func (e *Engine) CompareElections(ctx context.Context, params domain.ScenarioParameters) (*Comparison, error) {
	if params.Election == nil {
		return nil, domain.Invalid("election", "is required")
	}

	js := domain.JointSurvivor{Fraction: domain.TwoThirds, BeneficiaryAge: params.Horizon.StartAge}
	if v, ok := params.Election.(domain.JointSurvivor); ok {
		js = v
	}
	elections := []domain.PayoutElection{domain.FullAllowance{}, domain.AnnuityProtection{}, js}

	name := params.Name
	if name == "" {
		name = "scenario"
	}
	base := params.WithElection(params.Election)
	base.Name = fmt.Sprintf("%s/%s", name, params.Election.Kind())

	var alternatives []domain.ScenarioParameters
	for _, el := range elections {
		if el.Kind() == params.Election.Kind() {
			continue
		}
		alt := params.WithElection(el)
		alt.Name = fmt.Sprintf("%s/%s", name, el.Kind())
		alternatives = append(alternatives, alt)
	}
	return e.Compare(ctx, base, alternatives...)
}

func diff(base, alt *domain.ProjectionResult) Diff {
	b, a := base.Summary, alt.Summary
	d := Diff{
		Name:              alt.Name,
		FirstYearIncome:   a.FirstYearIncome.Sub(b.FirstYearIncome),
		FirstYearNet:      a.FirstYearNetIncome.Sub(b.FirstYearNetIncome),
		LifetimeIncome:    a.TotalLifetimeIncome.Sub(b.TotalLifetimeIncome),
		NetLifetimeIncome: a.NetLifetimeIncome.Sub(b.NetLifetimeIncome),
		ReplacementRatio:  a.ReplacementRatio.Sub(b.ReplacementRatio),
		ReductionPercent:  alt.Option.ReductionPercent.Sub(base.Option.ReductionPercent),
		SurvivorPension:   alt.Option.AnnualSurvivorPension.Sub(base.Option.AnnualSurvivorPension),
		OptimizationScore: a.OptimizationScore.Sub(b.OptimizationScore),
		RiskScore:         a.RiskScore.Sub(b.RiskScore),
		FlexibilityScore:  a.FlexibilityScore.Sub(b.FlexibilityScore),
	}
	if be, err := calculation.CumulativeBreakEven(base, alt); err == nil {
		d.BreakEven = be
	}
	return d
}

// recommend picks the best outcome per category. Ties go to the earlier
// scenario, so the base wins any tie.
func recommend(outcomes []Outcome) []Recommendation {
	if len(outcomes) == 0 {
		return nil
	}
	best := func(score func(*domain.ProjectionResult) decimal.Decimal, lower bool) Outcome {
		pick := outcomes[0]
		for _, o := range outcomes[1:] {
			s, p := score(o.Result), score(pick.Result)
			if (!lower && s.GreaterThan(p)) || (lower && s.LessThan(p)) {
				pick = o
			}
		}
		return pick
	}

	income := best(func(r *domain.ProjectionResult) decimal.Decimal { return r.Summary.FirstYearNetIncome }, false)
	lifetime := best(func(r *domain.ProjectionResult) decimal.Decimal { return r.Summary.NetLifetimeIncome }, false)
	risk := best(func(r *domain.ProjectionResult) decimal.Decimal { return r.Summary.RiskScore }, true)
	overall := best(func(r *domain.ProjectionResult) decimal.Decimal { return r.Summary.OptimizationScore }, false)

	recs := []Recommendation{
		{CategoryIncome, income.Name, income.Result.Summary.FirstYearNetIncome},
		{CategoryLifetime, lifetime.Name, lifetime.Result.Summary.NetLifetimeIncome},
		{CategoryRisk, risk.Name, risk.Result.Summary.RiskScore},
		{CategoryOverall, overall.Name, overall.Result.Summary.OptimizationScore},
	}

	survivor := best(func(r *domain.ProjectionResult) decimal.Decimal { return r.Option.AnnualSurvivorPension }, false)
	if survivor.Result.Option.AnnualSurvivorPension.IsPositive() {
		recs = append(recs, Recommendation{CategorySurvivor, survivor.Name, survivor.Result.Option.AnnualSurvivorPension})
	}
	return recs
}

// IsCanceled reports whether err came from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
