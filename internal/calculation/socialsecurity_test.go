package calculation

import (
	"testing"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ssProfile(claimingAge int) domain.SocialSecurityProfile {
	return domain.SocialSecurityProfile{
		ClaimingAge: claimingAge,
		BirthYear:   1965, // FRA 67
		FullBenefit: dec("2400"),
	}
}

func TestEstimateSocialSecurity_OwnBenefit(t *testing.T) {
	e := newTestEngine(t)

	testCases := []struct {
		claimingAge int
		expected    string
		factor      string
		months      int
	}{
		{62, "1680", "0.7", -60},
		{63, "1800", "0.75", -48},
		{64, "1920", "0.8", -36},
		{65, "2080", "0.8667", -24},
		{66, "2240", "0.9333", -12},
		{67, "2400", "1", 0},
		{68, "2592", "1.08", 12},
		{69, "2784", "1.16", 24},
		{70, "2976", "1.24", 36},
	}

	for _, tc := range testCases {
		t.Run(decimal.NewFromInt(int64(tc.claimingAge)).String(), func(t *testing.T) {
			result, err := e.EstimateSocialSecurity(ssProfile(tc.claimingAge))
			require.NoError(t, err)
			assert.True(t, result.MonthlyBenefit.Equal(dec(tc.expected)), "Expected %s, got %s", tc.expected, result.MonthlyBenefit)
			assert.True(t, result.AdjustmentFactor.Equal(dec(tc.factor)), "Expected factor %s, got %s", tc.factor, result.AdjustmentFactor)
			assert.Equal(t, tc.months, result.MonthsFromFRA)
			assert.Equal(t, 67*12, result.FRAMonths)
			assert.True(t, result.MonthlyTotal.Equal(result.MonthlyBenefit))
			assert.True(t, result.AnnualTotal.Equal(result.MonthlyTotal.Mul(decimal.NewFromInt(12))))
		})
	}
}

func TestEstimateSocialSecurity_ClaimAtFRAIsFullBenefit(t *testing.T) {
	e := newTestEngine(t)

	for _, benefit := range []string{"1000", "2417.33", "3822.01"} {
		p := domain.SocialSecurityProfile{ClaimingAge: 67, FullRetirementAge: 67, FullBenefit: dec(benefit)}
		result, err := e.EstimateSocialSecurity(p)
		require.NoError(t, err)
		assert.True(t, result.MonthlyBenefit.Equal(dec(benefit)), "Expected %s, got %s", benefit, result.MonthlyBenefit)
	}
}

func TestEstimateSocialSecurity_MonotoneInClaimingAge(t *testing.T) {
	e := newTestEngine(t)

	spousal := domain.SocialSecurityProfile{BirthYear: 1960, FullBenefit: dec("800"),
		Spousal: &domain.SpousalClaim{SpouseFullBenefit: dec("2600")}}
	survivor := domain.SocialSecurityProfile{BirthYear: 1958, FullBenefit: dec("900"),
		Survivor: &domain.SurvivorClaim{DeceasedBenefit: dec("2200")}}
	profiles := map[string]domain.SocialSecurityProfile{
		"own only":      ssProfile(62),
		"with spousal":  spousal,
		"with survivor": survivor,
	}

	for name, p := range profiles {
		t.Run(name, func(t *testing.T) {
			prev := decimal.Zero
			for age := 62; age <= 70; age++ {
				p.ClaimingAge = age
				result, err := e.EstimateSocialSecurity(p)
				require.NoError(t, err)
				assert.True(t, result.MonthlyTotal.GreaterThanOrEqual(prev), "total decreased at %d: %s < %s", age, result.MonthlyTotal, prev)
				prev = result.MonthlyTotal
			}
		})
	}
}

func TestEstimateSocialSecurity_FRAWithMonths(t *testing.T) {
	e := newTestEngine(t)

	// born 1957: FRA 66 and 6 months
	p := domain.SocialSecurityProfile{ClaimingAge: 66, BirthYear: 1957, FullBenefit: dec("2400")}
	result, err := e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	assert.Equal(t, -6, result.MonthsFromFRA)
	assert.True(t, result.MonthlyBenefit.Equal(dec("2320")), "got %s", result.MonthlyBenefit)

	// explicit FRA wins over birth year
	p = domain.SocialSecurityProfile{ClaimingAge: 67, FullRetirementAge: 66, FullRetirementAgeMonths: 10, FullBenefit: dec("2400")}
	result, err = e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	assert.Equal(t, 2, result.MonthsFromFRA)
	assert.True(t, result.MonthlyBenefit.Equal(dec("2432")), "got %s", result.MonthlyBenefit)
}

func TestEstimateSocialSecurity_Spousal(t *testing.T) {
	e := newTestEngine(t)

	p := domain.SocialSecurityProfile{
		ClaimingAge: 67,
		BirthYear:   1962,
		FullBenefit: dec("800"),
		Spousal:     &domain.SpousalClaim{SpouseFullBenefit: dec("2400")},
	}
	result, err := e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	assert.True(t, result.SpousalBenefit.Equal(dec("400")))
	assert.True(t, result.MonthlyTotal.Equal(dec("1200")))

	// early spousal claim uses the spousal curve: 25/36% x 36 + 5/12% x 24 = 35%
	p.ClaimingAge = 62
	result, err = e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	assert.True(t, result.MonthlyBenefit.Equal(dec("560")))
	assert.True(t, result.SpousalBenefit.Equal(dec("260")), "got %s", result.SpousalBenefit)
	assert.True(t, result.MonthlyTotal.Equal(dec("820")))

	// no delayed credits on the spousal part
	p.ClaimingAge = 70
	result, err = e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	assert.True(t, result.SpousalBenefit.Equal(dec("400")))

	// own benefit above half the spouse's leaves nothing
	p.FullBenefit = dec("1500")
	p.ClaimingAge = 67
	result, err = e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	assert.True(t, result.SpousalBenefit.IsZero())
}

func TestEstimateSocialSecurity_Survivor(t *testing.T) {
	e := newTestEngine(t)

	p := domain.SocialSecurityProfile{
		ClaimingAge: 62,
		BirthYear:   1962,
		FullBenefit: dec("500"),
		Survivor:    &domain.SurvivorClaim{DeceasedBenefit: dec("2000"), ClaimingAge: 60},
	}
	result, err := e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	// 84 months early would be a 40% cut; the 71.5% floor applies
	assert.True(t, result.MonthlyBenefit.Equal(dec("350")))
	assert.True(t, result.SurvivorBenefit.Equal(dec("1080")), "got %s", result.SurvivorBenefit)
	assert.True(t, result.MonthlyTotal.Equal(dec("1430")))

	// at FRA the survivor receives 100% of the deceased's benefit
	p.ClaimingAge = 67
	p.Survivor.ClaimingAge = 67
	result, err = e.EstimateSocialSecurity(p)
	require.NoError(t, err)
	assert.True(t, result.MonthlyTotal.Equal(dec("2000")))
}

func TestApplyOffsets(t *testing.T) {
	e := newTestEngine(t)

	t.Run("WEP fraction on own benefit", func(t *testing.T) {
		p := ssProfile(67)
		p.Offsets = []domain.Offset{{Kind: domain.OffsetWEP, Fraction: dec("0.25")}}
		result, err := e.EstimateSocialSecurity(p)
		require.NoError(t, err)
		assert.True(t, result.MonthlyBenefit.Equal(dec("2400")))
		assert.True(t, result.OffsetReduction.Equal(dec("600")))
		assert.True(t, result.MonthlyTotal.Equal(dec("1800")))
	})

	t.Run("GPO amount on spousal benefit", func(t *testing.T) {
		p := domain.SocialSecurityProfile{
			ClaimingAge: 67, BirthYear: 1962, FullBenefit: dec("800"),
			Spousal: &domain.SpousalClaim{SpouseFullBenefit: dec("2400")},
			Offsets: []domain.Offset{{Kind: domain.OffsetGPO, MonthlyAmount: dec("300")}},
		}
		result, err := e.EstimateSocialSecurity(p)
		require.NoError(t, err)
		assert.True(t, result.MonthlyTotal.Equal(dec("900")))

		p.Offsets[0].MonthlyAmount = dec("1000")
		result, err = e.EstimateSocialSecurity(p)
		require.NoError(t, err)
		assert.True(t, result.OffsetReduction.Equal(dec("400")))
		assert.True(t, result.MonthlyTotal.Equal(dec("800")))
	})

	t.Run("GPO does not touch own benefit", func(t *testing.T) {
		p := ssProfile(67)
		p.Offsets = []domain.Offset{{Kind: domain.OffsetGPO, Fraction: dec("1")}}
		result, err := e.EstimateSocialSecurity(p)
		require.NoError(t, err)
		assert.True(t, result.MonthlyTotal.Equal(dec("2400")))
	})

	t.Run("idempotent", func(t *testing.T) {
		result, err := e.EstimateSocialSecurity(ssProfile(67))
		require.NoError(t, err)
		offsets := []domain.Offset{{Kind: domain.OffsetWEP, MonthlyAmount: dec("150")}}
		once := ApplyOffsets(result, offsets)
		twice := ApplyOffsets(once, offsets)
		assert.True(t, once.MonthlyTotal.Equal(twice.MonthlyTotal))
		assert.True(t, once.MonthlyTotal.Equal(dec("2250")))
	})
}

func TestGPOOffsetFromPension(t *testing.T) {
	e := newTestEngine(t)

	o := e.GPOOffsetFromPension(dec("1500"))
	assert.Equal(t, domain.OffsetGPO, o.Kind)
	assert.True(t, o.MonthlyAmount.Equal(dec("1000")), "got %s", o.MonthlyAmount)
	assert.NoError(t, o.Validate())
}

func TestClaimingBreakEvenAge(t *testing.T) {
	e := newTestEngine(t)

	age, err := e.ClaimingBreakEvenAge(ssProfile(67), 62, 70)
	require.NoError(t, err)
	assert.True(t, age.Equal(dec("80.37")), "got %s", age)

	_, err = e.ClaimingBreakEvenAge(ssProfile(67), 70, 62)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEstimateSocialSecurity_InvalidInput(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.EstimateSocialSecurity(ssProfile(61))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.EstimateSocialSecurity(ssProfile(71))
	assert.ErrorIs(t, err, domain.ErrValidation)

	p := ssProfile(67)
	p.BirthYear = 0
	_, err = e.EstimateSocialSecurity(p)
	assert.ErrorIs(t, err, domain.ErrValidation)

	p = ssProfile(67)
	p.Survivor = &domain.SurvivorClaim{DeceasedBenefit: dec("1000"), ClaimingAge: 59}
	_, err = e.EstimateSocialSecurity(p)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = EstimateSocialSecurity(domain.SocialSecurityProfile{ClaimingAge: 67, FullRetirementAge: 67, FullBenefit: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
