package calculation

import (
	"testing"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTax(t *testing.T) {
	e := newTestEngine(t)

	testCases := []struct {
		name      string
		in        TaxInput
		taxableSS string
		federal   string
		state     string
	}{
		{
			name:    "single pension only",
			in:      TaxInput{Age: 60, FilingStatus: domain.FilingSingle, Pension: dec("60000")},
			federal: "5161.5", taxableSS: "0", state: "0",
		},
		{
			name:    "joint over 65 with social security",
			in:      TaxInput{Age: 66, FilingStatus: domain.FilingMarriedJoint, Pension: dec("40000"), SocialSecurity: dec("30000")},
			federal: "2375", taxableSS: "15350", state: "0",
		},
		{
			name:    "below the standard deduction",
			in:      TaxInput{Age: 62, FilingStatus: domain.FilingSingle, Pension: dec("12000")},
			federal: "0", taxableSS: "0", state: "0",
		},
		{
			name:    "other income is state taxable",
			in:      TaxInput{Age: 60, FilingStatus: domain.FilingSingle, OtherTaxable: dec("10000")},
			federal: "0", taxableSS: "0", state: "307",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.EstimateTax(tc.in)
			assert.True(t, got.FederalTax.Equal(dec(tc.federal)), "Expected federal %s, got %s", tc.federal, got.FederalTax)
			assert.True(t, got.TaxableSocialSecurity.Equal(dec(tc.taxableSS)), "Expected taxable SS %s, got %s", tc.taxableSS, got.TaxableSocialSecurity)
			assert.True(t, got.StateTax.Equal(dec(tc.state)), "Expected state %s, got %s", tc.state, got.StateTax)
			assert.True(t, got.Total().Equal(got.FederalTax.Add(got.StateTax)))
		})
	}
}

func TestEstimateTax_StateWithoutExemptions(t *testing.T) {
	rs := brokenRules(t)
	rs.Tax.StateExemptsPension = false
	rs.Tax.StateExemptsSS = false
	e := NewEngine(rs)

	got := e.EstimateTax(TaxInput{Age: 66, Pension: dec("10000"), SocialSecurity: dec("10000")})
	assert.True(t, got.StateTax.Equal(dec("614")), "got %s", got.StateTax)
}

func TestTaxableSocialSecurity(t *testing.T) {
	e := newTestEngine(t)

	testCases := []struct {
		name     string
		benefits string
		other    string
		status   domain.FilingStatus
		expected string
	}{
		{"under base threshold", "20000", "10000", domain.FilingSingle, "0"},
		{"middle band", "20000", "20000", domain.FilingSingle, "2500"},
		{"above adjusted threshold", "30000", "40000", domain.FilingMarriedJoint, "15350"},
		{"capped at 85 percent", "20000", "200000", domain.FilingSingle, "17000"},
		{"no benefits", "0", "200000", domain.FilingSingle, "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.TaxableSocialSecurity(dec(tc.benefits), dec(tc.other), tc.status)
			assert.True(t, got.Equal(dec(tc.expected)), "Expected %s, got %s", tc.expected, got)
		})
	}
}

func TestTaxableSocialSecurity_NeverAbove85Percent(t *testing.T) {
	e := newTestEngine(t)
	benefits := dec("36000")
	limit := benefits.Mul(dec("0.85"))

	for other := int64(0); other <= 300000; other += 10000 {
		got := e.TaxableSocialSecurity(benefits, decimal.NewFromInt(other), domain.FilingSingle)
		assert.True(t, got.LessThanOrEqual(limit), "other %d: %s", other, got)
		assert.False(t, got.IsNegative())
	}
}

func TestProgressiveTax(t *testing.T) {
	brackets := []domain.TaxBracket{
		{Min: dec("0"), Max: dec("10000"), Rate: dec("0.1")},
		{Min: dec("10000"), Max: dec("0"), Rate: dec("0.2")},
	}
	assert.True(t, progressiveTax(dec("5000"), brackets).Equal(dec("500")))
	assert.True(t, progressiveTax(dec("15000"), brackets).Equal(dec("2000")))
	assert.True(t, progressiveTax(decimal.Zero, brackets).IsZero())
}

func TestRequiredMinimumDistribution(t *testing.T) {
	testCases := []struct {
		name      string
		balance   string
		age       int
		birthYear int
		expected  string
	}{
		{"first RMD year for 1950", "274000", 72, 1950, "10000"},
		{"before RMD age for 1960", "274000", 74, 1960, "0"},
		{"RMD age 75 for 1960", "246000", 75, 1960, "10000"},
		{"after the table", "60000", 101, 1950, "10000"},
		{"empty account", "0", 80, 1950, "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RequiredMinimumDistribution(dec(tc.balance), tc.age, tc.birthYear)
			assert.True(t, got.Equal(dec(tc.expected)), "Expected %s, got %s", tc.expected, got)
		})
	}
}

func TestIncomeStreams(t *testing.T) {
	t.Run("account withdrawal without growth", func(t *testing.T) {
		s := newIncomeStreams([]domain.IncomeSource{
			{Name: "ira", Kind: domain.IncomeAccountWithdrawal, Balance: dec("100000"), WithdrawalRate: dec("0.04")},
		}, 1965, 60)

		y := s.next(60)
		assert.True(t, y.AccountWithdrawal.Equal(dec("4000")))
		assert.True(t, y.EndBalance.Equal(dec("96000")))
		assert.True(t, y.TaxableOther.IsZero())

		y = s.next(61)
		assert.True(t, y.AccountWithdrawal.Equal(dec("3840")))
	})

	t.Run("tax deferred account takes the RMD", func(t *testing.T) {
		s := newIncomeStreams([]domain.IncomeSource{
			{Name: "403b", Kind: domain.IncomeAccountWithdrawal, Balance: dec("274000"), WithdrawalRate: dec("0.01"), TaxDeferred: true},
		}, 1950, 72)

		y := s.next(72)
		assert.True(t, y.RMDApplied)
		assert.True(t, y.AccountWithdrawal.Equal(dec("10000")))
		assert.True(t, y.TaxableOther.Equal(dec("10000")))
	})

	t.Run("withdrawal never exceeds balance", func(t *testing.T) {
		s := newIncomeStreams([]domain.IncomeSource{
			{Name: "cash", Kind: domain.IncomeAccountWithdrawal, Balance: dec("1000"), WithdrawalRate: dec("1")},
		}, 1965, 60)

		y := s.next(60)
		assert.True(t, y.AccountWithdrawal.Equal(dec("1000")))
		assert.True(t, y.EndBalance.IsZero())
		assert.True(t, s.next(61).AccountWithdrawal.IsZero())
	})

	t.Run("part time and rental", func(t *testing.T) {
		s := newIncomeStreams([]domain.IncomeSource{
			{Name: "consulting", Kind: domain.IncomePartTime, AnnualAmount: dec("20000"), StartAge: 60, EndAge: 61},
			{Name: "duplex", Kind: domain.IncomeRental, AnnualAmount: dec("12000"), GrowthRate: dec("0.02"), StartAge: 61},
		}, 1965, 60)

		y := s.next(60)
		assert.True(t, y.PartTime.Equal(dec("20000")))
		assert.True(t, y.Rental.IsZero())

		y = s.next(61)
		assert.True(t, y.Rental.Equal(dec("12000")))
		assert.True(t, y.Total().Equal(dec("32000")))

		y = s.next(62)
		assert.True(t, y.PartTime.IsZero())
		assert.True(t, y.Rental.Equal(dec("12240")), "got %s", y.Rental)
		assert.True(t, y.TaxableOther.Equal(y.Rental))
	})
}

func TestDiversification(t *testing.T) {
	assert.True(t, diversification(dec("1000")).IsZero())
	assert.True(t, diversification(decimal.Zero, decimal.Zero).IsZero())

	even := diversification(dec("100"), dec("100"), dec("100"), dec("100"))
	assert.True(t, even.Equal(decimal.NewFromInt(1)), "got %s", even)

	half := diversification(dec("100"), dec("100"), decimal.Zero, decimal.Zero)
	require.True(t, half.GreaterThan(decimal.Zero))
	assert.True(t, half.LessThan(even))
}
