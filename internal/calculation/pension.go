package calculation

import (
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// CalculateBasePension computes the annual base pension before any payout
// election: factor x years x salary, capped at MaxBenefitPercent of salary.
func (e *Engine) CalculateBasePension(factor, serviceYears, averageSalary decimal.Decimal) (domain.BenefitResult, error) {
	if factor.IsNegative() || factor.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return domain.BenefitResult{}, domain.Invalid("factor", "must be in [0, 1), got %s", factor)
	}
	if serviceYears.IsNegative() {
		return domain.BenefitResult{}, domain.Invalid("service_years", "must be non-negative, got %s", serviceYears)
	}
	if averageSalary.IsNegative() {
		return domain.BenefitResult{}, domain.Invalid("average_salary", "must be non-negative, got %s", averageSalary)
	}

	annual, uncapped, capAmount := e.basePension(factor, serviceYears, averageSalary)

	return domain.BenefitResult{
		Factor:            factor,
		ServiceYears:      serviceYears,
		AverageSalary:     money.Cents(averageSalary),
		UncappedAmount:    money.Cents(uncapped),
		CapAmount:         money.Cents(capAmount),
		AnnualBase:        money.Cents(annual),
		MonthlyBase:       money.Cents(money.MonthlyOf(annual)),
		CappedAt80Percent: uncapped.GreaterThan(capAmount),
	}, nil
}

// basePension returns the unrounded (annual, uncapped, cap) triple.
func (e *Engine) basePension(factor, serviceYears, averageSalary decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	uncapped := factor.Mul(serviceYears).Mul(averageSalary)
	capAmount := e.Rules.MaxBenefitPercent.Mul(averageSalary)
	return decimal.Min(uncapped, capAmount), uncapped, capAmount
}
