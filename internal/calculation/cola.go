package calculation

import (
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// ProjectCOLA applies the capped-base COLA for years consecutive years.
// Each year only the first BaseCap dollars of the current pension earn Rate,
// and the increase never exceeds the per-year cap. Increases are paid in
// whole cents, so every row satisfies Starting + Increase = Ending.
func (e *Engine) ProjectCOLA(startingPension decimal.Decimal, params domain.COLAParameters, years int) ([]domain.COLARow, error) {
	if startingPension.IsNegative() {
		return nil, domain.Invalid("starting_pension", "must be non-negative, got %s", startingPension)
	}
	if years < 0 {
		return nil, domain.Invalid("years", "must be non-negative, got %d", years)
	}
	if err := params.Validate(e.Rules.COLA.MaxRate); err != nil {
		return nil, err
	}

	rows := make([]domain.COLARow, 0, years)
	current := money.Cents(startingPension)
	for year := 1; year <= years; year++ {
		increase := colaIncrease(current, params)
		ending := current.Add(increase)
		rows = append(rows, domain.COLARow{
			Year:              year,
			StartingPension:   current,
			Increase:          increase,
			EndingPension:     ending,
			MonthlyEquivalent: money.Cents(money.MonthlyOf(ending)),
		})
		current = ending
	}
	return rows, nil
}

// COLAPensionAt returns the pension after t annual increases (t=0 is the
// starting pension).
func (e *Engine) COLAPensionAt(startingPension decimal.Decimal, params domain.COLAParameters, t int) (decimal.Decimal, error) {
	rows, err := e.ProjectCOLA(startingPension, params, t)
	if err != nil {
		return decimal.Zero, err
	}
	if t == 0 {
		return money.Cents(startingPension), nil
	}
	return rows[t-1].EndingPension, nil
}

func colaIncrease(current decimal.Decimal, params domain.COLAParameters) decimal.Decimal {
	eligible := decimal.Min(current, params.BaseCap)
	increase := decimal.Min(eligible.Mul(params.Rate), params.PerYearCap)
	return money.Cents(increase)
}

// colaCoverage measures how much of the first-year pension the COLA
// protects: the first-year increase as a share of pension x MaxRate, in [0, 1].
func (e *Engine) colaCoverage(params domain.COLAParameters, firstYearPension decimal.Decimal) decimal.Decimal {
	maxIncrease := firstYearPension.Mul(e.Rules.COLA.MaxRate)
	if !maxIncrease.IsPositive() {
		return decimal.Zero
	}
	eligible := decimal.Min(firstYearPension, params.BaseCap)
	increase := decimal.Min(eligible.Mul(params.Rate), params.PerYearCap)
	return clamp01(increase.Div(maxIncrease))
}
