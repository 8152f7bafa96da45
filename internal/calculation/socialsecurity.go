package calculation

import (
	"strings"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/pkg/dateutil"
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// EstimateSocialSecurity computes the monthly benefit for a claim, including
// spousal and survivor benefits and any WEP/GPO offsets in the profile.
//
// Own benefit: reduced by EarlyFirstRate per month for the first
// EarlyFirstMonths months before FRA and EarlyAfterRate beyond; increased by
// DelayedCreditRate per month after FRA up to the maximum claiming age.
// Spousal and survivor benefits are paid as the excess over the own benefit;
// when both are present only the larger is paid.
func (e *Engine) EstimateSocialSecurity(profile domain.SocialSecurityProfile) (domain.SocialSecurityResult, error) {
	rules := e.Rules.SocialSecurity
	if err := profile.Validate(rules); err != nil {
		return domain.SocialSecurityResult{}, err
	}

	fraMonths := e.fraMonths(profile)
	claimMonths := profile.ClaimingAge * 12
	factor := e.ownAdjustment(claimMonths, fraMonths)
	if factor.IsNegative() {
		return domain.SocialSecurityResult{}, domain.Broken("social_security", "adjustment factor %s is negative", factor)
	}

	own := money.Cents(profile.FullBenefit.Mul(factor))
	result := domain.SocialSecurityResult{
		ClaimingAge:      profile.ClaimingAge,
		FRAMonths:        fraMonths,
		MonthsFromFRA:    claimMonths - fraMonths,
		AdjustmentFactor: money.Rate(factor),
		MonthlyBenefit:   own,
	}

	if s := profile.Spousal; s != nil {
		claimAge := s.ClaimingAge
		if claimAge == 0 {
			claimAge = profile.ClaimingAge
		}
		excess := decimal.Max(decimal.Zero, rules.SpousalMaxFraction.Mul(s.SpouseFullBenefit).Sub(profile.FullBenefit))
		early := earlyReduction(fraMonths-claimAge*12, rules.EarlyFirstMonths, rules.SpousalEarlyFirstRate, rules.SpousalEarlyAfterRate)
		result.SpousalBenefit = money.Cents(excess.Mul(decimal.NewFromInt(1).Sub(early)))
	}

	if s := profile.Survivor; s != nil {
		claimAge := s.ClaimingAge
		if claimAge == 0 {
			claimAge = profile.ClaimingAge
		}
		early := earlyReduction(fraMonths-claimAge*12, rules.EarlyFirstMonths, rules.EarlyFirstRate, rules.EarlyAfterRate)
		survivorFactor := decimal.Max(rules.SurvivorFloor, decimal.NewFromInt(1).Sub(early))
		full := s.DeceasedBenefit.Mul(survivorFactor)
		result.SurvivorBenefit = money.Cents(decimal.Max(decimal.Zero, full.Sub(own)))
	}

	result = ApplyOffsets(result, profile.Offsets)
	e.Log().Debugf("social security at %d: factor %s, total %s/month", profile.ClaimingAge, result.AdjustmentFactor, result.MonthlyTotal)
	return result, nil
}

// ApplyOffsets reduces a result by WEP and GPO offsets. WEP reduces the own
// benefit, GPO reduces the auxiliary (spousal or survivor) benefit. Neither
// can take its target below zero. The result's component benefits are left
// unreduced; OffsetReduction and the totals reflect the offsets, so applying
// the same offsets again yields the same result.
func ApplyOffsets(result domain.SocialSecurityResult, offsets []domain.Offset) domain.SocialSecurityResult {
	own := result.MonthlyBenefit
	auxiliary := decimal.Max(result.SpousalBenefit, result.SurvivorBenefit)

	ownCut, auxCut := decimal.Zero, decimal.Zero
	for _, o := range offsets {
		switch domain.OffsetKind(strings.ToLower(string(o.Kind))) {
		case domain.OffsetWEP:
			ownCut = ownCut.Add(offsetAmount(o, own))
		case domain.OffsetGPO:
			auxCut = auxCut.Add(offsetAmount(o, auxiliary))
		}
	}
	ownCut = decimal.Min(ownCut, own)
	auxCut = decimal.Min(auxCut, auxiliary)

	result.OffsetReduction = money.Cents(ownCut.Add(auxCut))
	result.MonthlyTotal = money.Cents(own.Add(auxiliary).Sub(ownCut).Sub(auxCut))
	result.AnnualTotal = money.Cents(money.AnnualOf(result.MonthlyTotal))
	return result
}

func offsetAmount(o domain.Offset, target decimal.Decimal) decimal.Decimal {
	if !o.Fraction.IsZero() {
		return target.Mul(o.Fraction)
	}
	return o.MonthlyAmount
}

// GPOOffsetFromPension builds the government pension offset for a monthly
// non-covered pension: GPOPensionFraction (two-thirds) of the pension.
func (e *Engine) GPOOffsetFromPension(monthlyPension decimal.Decimal) domain.Offset {
	return domain.Offset{
		Kind:          domain.OffsetGPO,
		MonthlyAmount: money.Cents(monthlyPension.Mul(e.Rules.SocialSecurity.GPOPensionFraction.Value())),
	}
}

// ClaimingBreakEvenAge returns the age at which cumulative benefits from
// claiming at lateAge catch up with claiming at earlyAge. Offsets and
// auxiliary benefits are included as EstimateSocialSecurity computes them.
func (e *Engine) ClaimingBreakEvenAge(profile domain.SocialSecurityProfile, earlyAge, lateAge int) (decimal.Decimal, error) {
	if lateAge <= earlyAge {
		return decimal.Zero, domain.Invalid("late_age", "must be after early age (%d <= %d)", lateAge, earlyAge)
	}
	profile.ClaimingAge = earlyAge
	early, err := e.EstimateSocialSecurity(profile)
	if err != nil {
		return decimal.Zero, err
	}
	profile.ClaimingAge = lateAge
	late, err := e.EstimateSocialSecurity(profile)
	if err != nil {
		return decimal.Zero, err
	}

	b1, b2 := early.MonthlyTotal, late.MonthlyTotal
	if b2.LessThanOrEqual(b1) {
		return decimal.Zero, domain.Invalid("late_age", "claiming at %d pays no more than at %d, there is no break-even", lateAge, earlyAge)
	}
	// b1 x (x - early) = b2 x (x - late)  =>  x = (b2 late - b1 early) / (b2 - b1)
	num := b2.Mul(decimal.NewFromInt(int64(lateAge))).Sub(b1.Mul(decimal.NewFromInt(int64(earlyAge))))
	return money.Years(num.Div(b2.Sub(b1))), nil
}

// fraMonths returns full retirement age in months, derived from the birth
// year when the profile does not give it.
func (e *Engine) fraMonths(profile domain.SocialSecurityProfile) int {
	if profile.FullRetirementAge != 0 {
		return profile.FullRetirementAge*12 + profile.FullRetirementAgeMonths
	}
	years, months := dateutil.FullRetirementAgeMonths(profile.BirthYear)
	return years*12 + months
}

// ownAdjustment returns the multiplier for the worker's own benefit.
func (e *Engine) ownAdjustment(claimMonths, fraMonths int) decimal.Decimal {
	rules := e.Rules.SocialSecurity
	if claimMonths <= fraMonths {
		early := earlyReduction(fraMonths-claimMonths, rules.EarlyFirstMonths, rules.EarlyFirstRate, rules.EarlyAfterRate)
		return decimal.NewFromInt(1).Sub(early)
	}
	delayed := claimMonths - fraMonths
	if limit := rules.MaxClaimingAge*12 - fraMonths; delayed > limit {
		delayed = limit
	}
	if delayed < 0 {
		delayed = 0
	}
	return decimal.NewFromInt(1).Add(rules.DelayedCreditRate.Times(delayed))
}

// earlyReduction is the reduction for claiming monthsEarly months before FRA.
// Non-positive monthsEarly means no reduction.
func earlyReduction(monthsEarly, firstMonths int, firstRate, afterRate domain.Ratio) decimal.Decimal {
	if monthsEarly <= 0 {
		return decimal.Zero
	}
	first := monthsEarly
	if first > firstMonths {
		first = firstMonths
	}
	return firstRate.Times(first).Add(afterRate.Times(monthsEarly - first))
}
