package calculation

import (
	"errors"
	"testing"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseScenario() domain.ScenarioParameters {
	return domain.ScenarioParameters{
		Name: "base",
		Member: domain.MemberProfile{
			Age:           60,
			BirthYear:     1965,
			Group:         domain.Group2,
			HireEra:       domain.PreCutoff,
			ServiceYears:  dec("30"),
			AverageSalary: dec("80000"),
		},
		Election: domain.JointSurvivor{Fraction: dec("0.6667"), BeneficiaryAge: 58},
		COLA:     statutoryCOLA(),
		Horizon:  domain.Horizon{StartAge: 60, EndAge: 62},
	}
}

func TestProjectScenario_Base(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.ProjectScenario(baseScenario())
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)

	assert.Equal(t, "base", result.Name)
	assert.True(t, result.Factor.Factor.Equal(dec("0.025")))
	assert.True(t, result.Benefit.AnnualBase.Equal(dec("60000")))
	assert.True(t, result.Option.AnnualMemberPension.Equal(dec("55200")))

	expected := []string{"55200", "55590", "55980"}
	for i, row := range result.Rows {
		assert.Equal(t, i, row.YearIndex)
		assert.Equal(t, 60+i, row.Age)
		assert.True(t, row.Pension.Equal(dec(expected[i])), "year %d: expected %s, got %s", i, expected[i], row.Pension)
		assert.True(t, row.SocialSecurity.IsZero())
		assert.True(t, row.Supplemental.IsZero())
		assert.True(t, row.TotalAnnual.Equal(row.Pension))
		assert.True(t, row.NetIncome.Equal(row.TotalAnnual.Sub(row.EstimatedTax)))
	}
	assert.True(t, result.Rows[0].COLAIncrease.IsZero())
	assert.True(t, result.Rows[1].COLAIncrease.Equal(dec("390")))

	first := result.Rows[0]
	assert.True(t, first.EstimatedTax.Equal(dec("4585.5")), "got %s", first.EstimatedTax)
	assert.True(t, first.NetIncome.Equal(dec("50614.5")))
	assert.True(t, first.PensionMonthly.Equal(dec("4600")))

	s := result.Summary
	assert.Equal(t, 60, s.RetirementAge)
	assert.Equal(t, 62, s.EndAge)
	assert.Equal(t, 3, s.Years)
	assert.True(t, s.TotalPension.Equal(dec("166770")))
	assert.True(t, s.TotalLifetimeIncome.Equal(s.TotalPension))
	assert.True(t, s.ReplacementRatio.Equal(dec("0.69")))
	assert.True(t, s.RiskScore.Equal(dec("71")), "risk %s", s.RiskScore)
	assert.True(t, s.OptimizationScore.Equal(dec("62.27")), "optimization %s", s.OptimizationScore)
	assert.True(t, s.FlexibilityScore.Equal(dec("20")), "flexibility %s", s.FlexibilityScore)

	assert.Equal(t, domain.IncludedComponents{Pension: true}, result.Components)
	assert.Empty(t, result.Warnings)
}

func TestProjectScenario_LedgerInvariants(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Horizon.EndAge = 90
	params.SocialSecurity = &domain.SocialSecurityProfile{ClaimingAge: 67, BirthYear: 1965, FullBenefit: dec("1800")}
	params.Supplemental = []domain.IncomeSource{
		{Name: "ira", Kind: domain.IncomeAccountWithdrawal, Balance: dec("250000"), WithdrawalRate: dec("0.04"), GrowthRate: dec("0.05"), TaxDeferred: true},
	}

	result, err := e.ProjectScenario(params)
	require.NoError(t, err)
	require.Len(t, result.Rows, 31)

	for i, row := range result.Rows {
		assert.Equal(t, params.Horizon.StartAge+i, row.Age)
		assert.True(t, row.TotalAnnual.Equal(row.Pension.Add(row.SocialSecurity).Add(row.Supplemental)), "age %d", row.Age)
		assert.True(t, row.NetIncome.Equal(row.TotalAnnual.Sub(row.EstimatedTax)), "age %d", row.Age)
		assert.True(t, row.EstimatedTax.Equal(row.FederalTax.Add(row.StateTax)))
		if i > 0 {
			prev := result.Rows[i-1]
			assert.True(t, row.Pension.GreaterThanOrEqual(prev.Pension))
			assert.True(t, row.Pension.Equal(prev.Pension.Add(row.COLAIncrease)))
		}
	}
	assert.True(t, result.Components.SocialSecurity)
	assert.True(t, result.Components.Supplemental)
}

func TestProjectScenario_NotEligible(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Member.Group = domain.Group1
	params.Member.Age = 50
	params.Member.ServiceYears = dec("25")
	params.Horizon = domain.Horizon{StartAge: 50, EndAge: 80}

	_, err := e.ProjectScenario(params)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotEligible)

	var ne *domain.NotEligibleError
	require.True(t, errors.As(err, &ne))
	assert.False(t, ne.Result.Eligible)
	assert.Contains(t, ne.Result.Reason, "minimum retirement age")
}

func TestProjectScenario_FutureRetirementAccruesService(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Member.Group = domain.Group1
	params.Member.Age = 52
	params.Member.ServiceYears = dec("20")
	params.Election = domain.FullAllowance{}
	params.Horizon = domain.Horizon{StartAge: 55, EndAge: 60}

	result, err := e.ProjectScenario(params)
	require.NoError(t, err)
	assert.True(t, result.Factor.Factor.Equal(dec("0.015")), "got %s", result.Factor.Factor)
	assert.True(t, result.Benefit.ServiceYears.Equal(dec("23")))
	assert.Equal(t, 55, result.Summary.RetirementAge)
}

func TestProjectScenario_SocialSecurityStartsAtClaimingAge(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Horizon.EndAge = 64
	params.SocialSecurity = &domain.SocialSecurityProfile{ClaimingAge: 62, BirthYear: 1965, FullBenefit: dec("2400")}

	result, err := e.ProjectScenario(params)
	require.NoError(t, err)

	assert.True(t, result.Rows[0].SocialSecurity.IsZero())
	assert.True(t, result.Rows[1].SocialSecurity.IsZero())
	assert.True(t, result.Rows[2].SocialSecurity.Equal(dec("20160")), "got %s", result.Rows[2].SocialSecurity)
	// flat by default
	assert.True(t, result.Rows[4].SocialSecurity.Equal(dec("20160")))

	params.SocialSecurityCOLA = dec("0.02")
	result, err = e.ProjectScenario(params)
	require.NoError(t, err)
	assert.True(t, result.Rows[2].SocialSecurity.Equal(dec("20160")))
	assert.True(t, result.Rows[3].SocialSecurity.Equal(dec("20563.2")), "got %s", result.Rows[3].SocialSecurity)
}

func TestProjectScenario_ClaimAfterHorizonWarns(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.SocialSecurity = &domain.SocialSecurityProfile{ClaimingAge: 70, BirthYear: 1965, FullBenefit: dec("2400")}

	result, err := e.ProjectScenario(params)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "claiming age 70")
	assert.True(t, result.Summary.TotalSocialSecurity.IsZero())
}

func TestProjectScenario_Supplemental(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Supplemental = []domain.IncomeSource{
		{Name: "brokerage", Kind: domain.IncomeAccountWithdrawal, Balance: dec("100000"), WithdrawalRate: dec("0.04")},
		{Name: "consulting", Kind: domain.IncomePartTime, AnnualAmount: dec("15000"), StartAge: 60, EndAge: 61},
	}

	result, err := e.ProjectScenario(params)
	require.NoError(t, err)

	assert.True(t, result.Rows[0].AccountWithdrawal.Equal(dec("4000")))
	assert.True(t, result.Rows[1].AccountWithdrawal.Equal(dec("3840")))
	assert.True(t, result.Rows[0].PartTimeIncome.Equal(dec("15000")))
	assert.True(t, result.Rows[2].PartTimeIncome.IsZero())
	assert.True(t, result.Rows[0].Supplemental.Equal(dec("19000")))
	assert.True(t, result.Summary.Diversification.IsPositive())
	assert.True(t, result.Summary.FlexibilityScore.GreaterThan(dec("20")))
}

func TestProjectScenario_DepletionWarning(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Horizon.EndAge = 65
	params.Supplemental = []domain.IncomeSource{
		{Name: "cash", Kind: domain.IncomeAccountWithdrawal, Balance: dec("10000"), WithdrawalRate: dec("1")},
	}

	result, err := e.ProjectScenario(params)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "depleted at age 61")
	assert.True(t, result.Rows[1].AccountWithdrawal.IsZero())
}

func TestProjectScenario_CappedWarning(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Member.Age = 65
	params.Member.ServiceYears = dec("40")
	params.Election = domain.FullAllowance{}
	params.Horizon = domain.Horizon{StartAge: 65, EndAge: 66}

	result, err := e.ProjectScenario(params)
	require.NoError(t, err)
	assert.True(t, result.Benefit.CappedAt80Percent)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "80")
}

func TestProjectScenario_RiskFallsWithCOLA(t *testing.T) {
	e := newTestEngine(t)

	high, err := e.ProjectScenario(baseScenario())
	require.NoError(t, err)

	testCases := []struct {
		name   string
		weaken func(*domain.ScenarioParameters)
	}{
		{"lower rate", func(p *domain.ScenarioParameters) { p.COLA.Rate = dec("0.01") }},
		{"lower base cap", func(p *domain.ScenarioParameters) { p.COLA.BaseCap = dec("5000") }},
		{"tight per-year cap", func(p *domain.ScenarioParameters) { p.COLA.PerYearCap = dec("0.01") }},
		{"zero per-year cap", func(p *domain.ScenarioParameters) { p.COLA.PerYearCap = decimal.Zero }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseScenario()
			tc.weaken(&p)
			low, err := e.ProjectScenario(p)
			require.NoError(t, err)

			assert.True(t, low.Summary.RiskScore.GreaterThan(high.Summary.RiskScore),
				"risk %s should exceed %s", low.Summary.RiskScore, high.Summary.RiskScore)
			assert.True(t, low.Summary.COLACoverage.LessThan(high.Summary.COLACoverage))
		})
	}
}

func TestProjectScenario_ScoresBounded(t *testing.T) {
	e := newTestEngine(t)

	elections := []domain.PayoutElection{
		domain.FullAllowance{},
		domain.AnnuityProtection{},
		domain.JointSurvivor{Fraction: dec("1"), BeneficiaryAge: 45},
	}
	hundred := decimal.NewFromInt(100)
	for _, el := range elections {
		result, err := e.ProjectScenario(baseScenario().WithElection(el))
		require.NoError(t, err)
		for _, score := range []decimal.Decimal{result.Summary.RiskScore, result.Summary.OptimizationScore, result.Summary.FlexibilityScore} {
			assert.False(t, score.IsNegative())
			assert.True(t, score.LessThanOrEqual(hundred))
		}
	}
}

func TestProjectScenario_SingleYearAndInvalid(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Horizon = domain.Horizon{StartAge: 60, EndAge: 60}
	result, err := e.ProjectScenario(params)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)

	params.Horizon = domain.Horizon{StartAge: 60, EndAge: 59}
	_, err = e.ProjectScenario(params)
	assert.ErrorIs(t, err, domain.ErrValidation)

	params = baseScenario()
	params.Horizon.StartAge = 58
	_, err = e.ProjectScenario(params)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProjectScenario_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t)

	params := baseScenario()
	params.Supplemental = []domain.IncomeSource{
		{Name: "ira", Kind: domain.IncomeAccountWithdrawal, Balance: dec("50000"), WithdrawalRate: dec("0.1")},
	}
	before := params.Supplemental[0].Balance

	first, err := e.ProjectScenario(params)
	require.NoError(t, err)
	second, err := e.ProjectScenario(params)
	require.NoError(t, err)

	assert.True(t, params.Supplemental[0].Balance.Equal(before))
	assert.Equal(t, first.Rows, second.Rows)
}

func TestCumulativeBreakEven(t *testing.T) {
	mk := func(nets ...string) *domain.ProjectionResult {
		r := &domain.ProjectionResult{}
		for i, n := range nets {
			r.Rows = append(r.Rows, domain.ProjectionRow{YearIndex: i, Age: 60 + i, NetIncome: dec(n)})
		}
		return r
	}

	be, err := CumulativeBreakEven(mk("100", "100", "100"), mk("0", "150", "200"))
	require.NoError(t, err)
	require.NotNil(t, be)
	assert.Equal(t, 2, be.YearIndex)
	assert.True(t, be.Fraction.Equal(dec("0.5")))
	assert.True(t, be.Age.Equal(dec("62.5")))
	assert.True(t, be.CumulativeAmount.Equal(dec("250")))
	assert.Equal(t, "b", be.Leader)

	be, err = CumulativeBreakEven(mk("100", "100"), mk("50", "50"))
	require.NoError(t, err)
	assert.Nil(t, be)

	other := mk("100")
	other.Rows[0].Age = 61
	_, err = CumulativeBreakEven(mk("100"), other)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
