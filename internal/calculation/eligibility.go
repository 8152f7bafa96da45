package calculation

import (
	"fmt"
	"strings"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// ResolveBenefitFactor looks up the (group, era) table and returns the
// benefit factor for a member retiring at age with serviceYears of credit.
// Falling short of a statutory minimum is a normal outcome reported through
// Eligible=false and Reason; only malformed input or a broken table is an error.
func (e *Engine) ResolveBenefitFactor(group domain.PlanGroup, age int, serviceYears decimal.Decimal, era domain.HireEra) (domain.BenefitFactorResult, error) {
	if age < 0 {
		return domain.BenefitFactorResult{}, domain.Invalid("age", "must be non-negative, got %d", age)
	}
	if serviceYears.IsNegative() {
		return domain.BenefitFactorResult{}, domain.Invalid("service_years", "must be non-negative, got %s", serviceYears)
	}
	g, err := domain.ParsePlanGroup(string(group))
	if err != nil {
		return domain.BenefitFactorResult{}, err
	}
	h, err := domain.ParseHireEra(string(era))
	if err != nil {
		return domain.BenefitFactorResult{}, err
	}

	table, ok := e.Rules.FactorTable(g, h)
	if !ok {
		return domain.BenefitFactorResult{}, domain.Broken("eligibility", "no factor table for %s/%s", g, h)
	}

	result := domain.BenefitFactorResult{
		Group:          g,
		HireEra:        h,
		Age:            age,
		ServiceYears:   serviceYears,
		MinimumAge:     table.MinAge,
		MinimumService: table.MinService,
		Flat:           table.Flat,
		Table:          fmt.Sprintf("%s/%s", g, h),
		Factor:         decimal.Zero,
	}

	var reasons []string
	if age < table.MinAge {
		reasons = append(reasons, fmt.Sprintf("age %d is below the minimum retirement age %d", age, table.MinAge))
	}
	if serviceYears.LessThan(table.MinService) {
		reasons = append(reasons, fmt.Sprintf("%s years of service is below the minimum %s", serviceYears, table.MinService))
	}
	if len(reasons) > 0 {
		result.Reason = strings.Join(reasons, "; ")
		e.Log().Debugf("%s not eligible: %s", result.Table, result.Reason)
		return result, nil
	}

	factor := table.BaseFactor
	if !table.Flat {
		steps := decimal.NewFromInt(int64(age - table.MinAge))
		factor = decimal.Min(table.BaseFactor.Add(table.Increment.Mul(steps)), table.Ceiling)
	}
	if !factor.IsPositive() || factor.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return domain.BenefitFactorResult{}, domain.Broken("eligibility", "factor %s for %s out of range", factor, result.Table)
	}

	result.Eligible = true
	result.Factor = factor
	e.Log().Debugf("%s age %d factor %s", result.Table, age, factor)
	return result, nil
}

// FactorSchedule returns the factor at every age from the table minimum (or
// fromAge when later) through toAge, for the member's service. Ages below the
// minimum are omitted.
func (e *Engine) FactorSchedule(group domain.PlanGroup, era domain.HireEra, serviceYears decimal.Decimal, fromAge, toAge int) ([]domain.BenefitFactorResult, error) {
	if toAge < fromAge {
		return nil, domain.Invalid("to_age", "must not precede from_age (%d < %d)", toAge, fromAge)
	}
	var out []domain.BenefitFactorResult
	for age := fromAge; age <= toAge; age++ {
		r, err := e.ResolveBenefitFactor(group, age, serviceYears, era)
		if err != nil {
			return nil, err
		}
		if r.Eligible {
			out = append(out, r)
		}
	}
	return out, nil
}
