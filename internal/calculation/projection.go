package calculation

import (
	"fmt"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// ProjectScenario runs the full pipeline for one scenario: eligibility at
// the retirement age (Horizon.StartAge), base pension, payout option, Social
// Security, then a year-by-year ledger from StartAge to EndAge inclusive with
// COLA, supplemental income and an estimated tax burden.
//
// A member who is not eligible at the retirement age gets a
// *domain.NotEligibleError. Missing Social Security or supplemental inputs
// are not errors; Components records what was included.
func (e *Engine) ProjectScenario(params domain.ScenarioParameters) (*domain.ProjectionResult, error) {
	if err := params.Validate(e.Rules); err != nil {
		return nil, err
	}

	member := params.Member
	startAge, endAge := params.Horizon.StartAge, params.Horizon.EndAge
	service := member.ServiceAt(startAge)

	factor, err := e.ResolveBenefitFactor(member.Group, startAge, service, member.HireEra)
	if err != nil {
		return nil, fmt.Errorf("resolving benefit factor: %w", err)
	}
	if !factor.Eligible {
		return nil, &domain.NotEligibleError{Result: factor}
	}

	benefit, err := e.CalculateBasePension(factor.Factor, service, member.AverageSalary)
	if err != nil {
		return nil, fmt.Errorf("calculating base pension: %w", err)
	}

	option, err := e.ApplyPayoutOption(benefit.AnnualBase, params.Election, startAge, member.AccumulatedContributions)
	if err != nil {
		return nil, fmt.Errorf("applying payout option: %w", err)
	}

	result := &domain.ProjectionResult{
		Name:    params.Name,
		Factor:  factor,
		Benefit: benefit,
		Option:  option,
		Components: domain.IncludedComponents{
			Pension:        true,
			SocialSecurity: params.SocialSecurity != nil,
			Supplemental:   len(params.Supplemental) > 0,
		},
	}
	if benefit.CappedAt80Percent {
		result.Warnings = append(result.Warnings, fmt.Sprintf("base pension capped at %s%% of average salary", money.Percent(e.Rules.MaxBenefitPercent)))
	}

	ssAnnual, ssClaimAge := decimal.Zero, 0
	if params.SocialSecurity != nil {
		ss, err := e.EstimateSocialSecurity(*params.SocialSecurity)
		if err != nil {
			return nil, fmt.Errorf("estimating social security: %w", err)
		}
		result.SocialSecurity = &ss
		ssAnnual, ssClaimAge = ss.AnnualTotal, ss.ClaimingAge
		if ssClaimAge > endAge {
			result.Warnings = append(result.Warnings, fmt.Sprintf("social security claiming age %d is after the projection end age %d", ssClaimAge, endAge))
		}
	}

	status, _ := domain.ParseFilingStatus(string(params.FilingStatus))
	streams := newIncomeStreams(params.Supplemental, member.BirthYear, startAge)
	ssGrowth := decimal.NewFromInt(1).Add(params.SocialSecurityCOLA)

	rows := make([]domain.ProjectionRow, 0, params.Horizon.Years())
	pension := option.AnnualMemberPension
	depleted := false
	for age := startAge; age <= endAge; age++ {
		i := age - startAge
		row := domain.ProjectionRow{YearIndex: i, Age: age}

		if i > 0 {
			row.COLAIncrease = colaIncrease(pension, params.COLA)
			pension = pension.Add(row.COLAIncrease)
		}
		row.Pension = pension
		row.PensionMonthly = money.Cents(money.MonthlyOf(pension))

		if params.SocialSecurity != nil && age >= ssClaimAge {
			paidFrom := ssClaimAge
			if paidFrom < startAge {
				paidFrom = startAge
			}
			ss := ssAnnual
			if params.SocialSecurityCOLA.IsPositive() {
				ss = ss.Mul(ssGrowth.Pow(decimal.NewFromInt(int64(age - paidFrom))))
			}
			row.SocialSecurity = money.Cents(ss)
		}

		sup := streams.next(age)
		row.AccountWithdrawal = money.Cents(sup.AccountWithdrawal)
		row.PartTimeIncome = money.Cents(sup.PartTime)
		row.RentalIncome = money.Cents(sup.Rental)
		row.Supplemental = row.AccountWithdrawal.Add(row.PartTimeIncome).Add(row.RentalIncome)
		row.AccountBalance = money.Cents(sup.EndBalance)
		row.RMDApplied = sup.RMDApplied

		row.TotalAnnual = row.Pension.Add(row.SocialSecurity).Add(row.Supplemental)
		row.TotalMonthly = money.Cents(money.MonthlyOf(row.TotalAnnual))

		tax := e.EstimateTax(TaxInput{
			Age:            age,
			FilingStatus:   status,
			Pension:        row.Pension,
			SocialSecurity: row.SocialSecurity,
			OtherTaxable:   sup.TaxableOther,
		})
		row.TaxableSocialSecurity = money.Cents(tax.TaxableSocialSecurity)
		row.FederalTax = money.Cents(tax.FederalTax)
		row.StateTax = money.Cents(tax.StateTax)
		row.EstimatedTax = row.FederalTax.Add(row.StateTax)
		row.NetIncome = row.TotalAnnual.Sub(row.EstimatedTax)

		if !depleted && hasAccounts(params.Supplemental) && i > 0 && !row.AccountBalance.IsPositive() {
			depleted = true
			result.Warnings = append(result.Warnings, fmt.Sprintf("supplemental accounts depleted at age %d", age))
		}
		rows = append(rows, row)
	}
	result.Rows = rows
	result.Summary = e.summarize(params, result)

	e.Log().Infof("projected %q: %d years, first-year income %s", params.Name, len(rows), result.Summary.FirstYearIncome.StringFixed(2))
	return result, nil
}

func (e *Engine) summarize(params domain.ScenarioParameters, result *domain.ProjectionResult) domain.ProjectionSummary {
	rows := result.Rows
	first, last := rows[0], rows[len(rows)-1]

	s := domain.ProjectionSummary{
		RetirementAge:       first.Age,
		EndAge:              last.Age,
		Years:               len(rows),
		FirstYearIncome:     first.TotalAnnual,
		FirstYearMonthly:    first.TotalMonthly,
		FirstYearNetIncome:  first.NetIncome,
		FinalAccountBalance: last.AccountBalance,
	}
	for _, r := range rows {
		s.TotalLifetimeIncome = s.TotalLifetimeIncome.Add(r.TotalAnnual)
		s.TotalPension = s.TotalPension.Add(r.Pension)
		s.TotalSocialSecurity = s.TotalSocialSecurity.Add(r.SocialSecurity)
		s.TotalSupplemental = s.TotalSupplemental.Add(r.Supplemental)
		s.TotalEstimatedTax = s.TotalEstimatedTax.Add(r.EstimatedTax)
	}
	s.NetLifetimeIncome = s.TotalLifetimeIncome.Sub(s.TotalEstimatedTax)
	s.AverageTaxRate = money.Rate(ratio(s.TotalEstimatedTax, s.TotalLifetimeIncome))

	replacement := ratio(first.TotalAnnual, params.Member.AverageSalary)
	coverage := e.colaCoverage(params.COLA, first.Pension)
	div := diversification(first.Pension, first.SocialSecurity, first.AccountWithdrawal, first.PartTimeIncome.Add(first.RentalIncome))

	sc := computeScores(scoreInputs{
		colaCoverage:       coverage,
		diversification:    div,
		reduction:          result.Option.ReductionPercent,
		replacementRatio:   replacement,
		supplementalShare:  ratio(first.Supplemental, first.TotalAnnual),
		survivorProtection: survivorProtection(params.Election),
	})

	s.ReplacementRatio = money.Rate(replacement)
	s.COLACoverage = money.Rate(coverage)
	s.Diversification = money.Rate(div)
	s.OptimizationScore = sc.Optimization
	s.RiskScore = sc.Risk
	s.FlexibilityScore = sc.Flexibility
	return s
}

func hasAccounts(sources []domain.IncomeSource) bool {
	for _, s := range sources {
		if s.Kind == domain.IncomeAccountWithdrawal && s.Balance.IsPositive() {
			return true
		}
	}
	return false
}
