package calculation

import (
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/pkg/money"
	"github.com/shopspring/decimal"
)

// ApplyPayoutOption converts the base pension into the amount payable under
// election. memberAge is the age at retirement; contributions are the
// member's accumulated contributions, refunded under AnnuityProtection.
func (e *Engine) ApplyPayoutOption(basePension decimal.Decimal, election domain.PayoutElection, memberAge int, contributions decimal.Decimal) (domain.OptionResult, error) {
	if basePension.IsNegative() {
		return domain.OptionResult{}, domain.Invalid("base_pension", "must be non-negative, got %s", basePension)
	}
	if memberAge < 0 {
		return domain.OptionResult{}, domain.Invalid("member_age", "must be non-negative, got %d", memberAge)
	}
	if contributions.IsNegative() {
		return domain.OptionResult{}, domain.Invalid("accumulated_contributions", "must be non-negative, got %s", contributions)
	}
	if err := domain.ValidateElection(election); err != nil {
		return domain.OptionResult{}, err
	}

	reduction, err := e.OptionReduction(election, memberAge)
	if err != nil {
		return domain.OptionResult{}, err
	}

	result := domain.OptionResult{
		Election:         election.Kind(),
		BasePension:      money.Cents(basePension),
		ReductionPercent: reduction,
	}

	member := money.Cents(basePension.Mul(decimal.NewFromInt(1).Sub(reduction)))
	if basePension.IsPositive() && !member.IsPositive() {
		return domain.OptionResult{}, domain.Broken("payout_option", "member pension %s is not positive for base %s", member, basePension)
	}
	result.AnnualMemberPension = member
	result.MonthlyMemberPension = money.Cents(money.MonthlyOf(member))

	switch v := election.(type) {
	case domain.FullAllowance:
	case domain.AnnuityProtection:
		result.SurvivorRefund = money.Cents(contributions)
	case domain.JointSurvivor:
		// survivor is derived from the already-rounded member amount so the
		// two always agree to the cent
		survivor := money.Cents(member.Mul(v.Fraction))
		result.SurvivorFraction = v.Fraction
		result.AnnualSurvivorPension = survivor
		result.MonthlySurvivorPension = money.Cents(money.MonthlyOf(survivor))
	default:
		return domain.OptionResult{}, domain.Broken("payout_option", "unsupported payout election %T", election)
	}

	e.Log().Debugf("%s reduction %s: member %s", result.Election, reduction, member)
	return result, nil
}

// OptionReduction returns the reduction ratio the election carries for a
// member retiring at memberAge. The result is always in [0, 1).
func (e *Engine) OptionReduction(election domain.PayoutElection, memberAge int) (decimal.Decimal, error) {
	var reduction decimal.Decimal

	switch v := election.(type) {
	case domain.FullAllowance:
		reduction = decimal.Zero
	case domain.AnnuityProtection:
		band, ok := e.annuityProtectionBand(memberAge)
		if !ok {
			return decimal.Zero, domain.Broken("payout_option", "no annuity protection band for age %d", memberAge)
		}
		reduction = band.Reduction
	case domain.JointSurvivor:
		tier, ok := e.survivorTier(v.Fraction)
		if !ok {
			return decimal.Zero, domain.Broken("payout_option", "no joint survivor tier for fraction %s", v.Fraction)
		}
		gap := decimal.NewFromInt(int64(memberAge - v.BeneficiaryAge))
		reduction = tier.Base.Add(tier.PerYearGap.Mul(gap))
		reduction = decimal.Max(tier.Floor, decimal.Min(reduction, tier.Cap))
	default:
		return decimal.Zero, domain.Broken("payout_option", "unsupported payout election %T", election)
	}

	if reduction.IsNegative() || reduction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, domain.Broken("payout_option", "reduction %s outside [0, 1)", reduction)
	}
	return reduction, nil
}

func (e *Engine) annuityProtectionBand(age int) (domain.AgeBand, bool) {
	for _, b := range e.Rules.AnnuityProtection {
		if b.MaxAge == 0 || age <= b.MaxAge {
			return b, true
		}
	}
	return domain.AgeBand{}, false
}

func (e *Engine) survivorTier(fraction decimal.Decimal) (domain.SurvivorTier, bool) {
	for _, t := range e.Rules.JointSurvivor {
		if fraction.LessThanOrEqual(t.MaxFraction) {
			return t, true
		}
	}
	return domain.SurvivorTier{}, false
}

// survivorProtection scores how much of the pension continues after the
// member's death: 1 for a survivor annuity, 0.5 for a contribution refund.
func survivorProtection(election domain.PayoutElection) decimal.Decimal {
	switch election.(type) {
	case domain.JointSurvivor:
		return decimal.NewFromInt(1)
	case domain.AnnuityProtection:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}
