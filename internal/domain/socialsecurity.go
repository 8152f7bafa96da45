package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SocialSecurityProfile describes a claim. FullBenefit is the monthly
// benefit payable at full retirement age. When FullRetirementAge is zero it
// is derived from BirthYear.
type SocialSecurityProfile struct {
	ClaimingAge             int             `yaml:"claiming_age" json:"claiming_age"`
	FullRetirementAge       int             `yaml:"full_retirement_age,omitempty" json:"full_retirement_age,omitempty"`
	FullRetirementAgeMonths int             `yaml:"full_retirement_age_months,omitempty" json:"full_retirement_age_months,omitempty"`
	BirthYear               int             `yaml:"birth_year,omitempty" json:"birth_year,omitempty"`
	FullBenefit             decimal.Decimal `yaml:"full_benefit" json:"full_benefit"`
	Spousal                 *SpousalClaim   `yaml:"spousal,omitempty" json:"spousal,omitempty"`
	Survivor                *SurvivorClaim  `yaml:"survivor,omitempty" json:"survivor,omitempty"`
	Offsets                 []Offset        `yaml:"offsets,omitempty" json:"offsets,omitempty"`
}

// SpousalClaim requests a spousal benefit on the other spouse's record.
type SpousalClaim struct {
	SpouseFullBenefit decimal.Decimal `yaml:"spouse_full_benefit" json:"spouse_full_benefit"`
	ClaimingAge       int             `yaml:"claiming_age,omitempty" json:"claiming_age,omitempty"`
}

// SurvivorClaim requests a survivor benefit on a deceased worker's record.
type SurvivorClaim struct {
	DeceasedBenefit decimal.Decimal `yaml:"deceased_benefit" json:"deceased_benefit"`
	ClaimingAge     int             `yaml:"claiming_age,omitempty" json:"claiming_age,omitempty"`
}

// OffsetKind selects which benefits an offset reduces.
type OffsetKind string

const (
	// OffsetWEP reduces the worker's own benefit.
	OffsetWEP OffsetKind = "wep"
	// OffsetGPO reduces spousal and survivor benefits.
	OffsetGPO OffsetKind = "gpo"
)

// Offset is a reduction for a pension from non-covered employment. Exactly
// one of Fraction (of the targeted benefit) or MonthlyAmount is set.
type Offset struct {
	Kind          OffsetKind      `yaml:"kind" json:"kind"`
	Fraction      decimal.Decimal `yaml:"fraction,omitempty" json:"fraction,omitempty"`
	MonthlyAmount decimal.Decimal `yaml:"monthly_amount,omitempty" json:"monthly_amount,omitempty"`
}

// Validate checks the offset shape.
func (o Offset) Validate() error {
	switch OffsetKind(strings.ToLower(string(o.Kind))) {
	case OffsetWEP, OffsetGPO:
	default:
		return Invalid("offset.kind", "must be wep or gpo, got %q", o.Kind)
	}
	hasFraction := !o.Fraction.IsZero()
	hasAmount := !o.MonthlyAmount.IsZero()
	if hasFraction == hasAmount {
		return Invalid("offset", "exactly one of fraction or monthly_amount is required")
	}
	if hasFraction && (o.Fraction.IsNegative() || o.Fraction.GreaterThan(decimal.NewFromInt(1))) {
		return Invalid("offset.fraction", "must be in (0, 1], got %s", o.Fraction)
	}
	if hasAmount && o.MonthlyAmount.IsNegative() {
		return Invalid("offset.monthly_amount", "must be positive, got %s", o.MonthlyAmount)
	}
	return nil
}

// SocialSecurityResult is the estimator output. Monthly amounts are rounded
// to the cent; AdjustmentFactor is the multiplier applied to FullBenefit.
type SocialSecurityResult struct {
	ClaimingAge      int             `json:"claiming_age"`
	FRAMonths        int             `json:"fra_months"`
	MonthsFromFRA    int             `json:"months_from_fra"`
	AdjustmentFactor decimal.Decimal `json:"adjustment_factor"`
	MonthlyBenefit   decimal.Decimal `json:"monthly_benefit"`
	SpousalBenefit   decimal.Decimal `json:"spousal_benefit"`
	SurvivorBenefit  decimal.Decimal `json:"survivor_benefit"`
	OffsetReduction  decimal.Decimal `json:"offset_reduction"`
	MonthlyTotal     decimal.Decimal `json:"monthly_total"`
	AnnualTotal      decimal.Decimal `json:"annual_total"`
}

// Validate checks claiming ages and amounts against the configured limits.
func (p SocialSecurityProfile) Validate(rules SocialSecurityRules) error {
	if p.ClaimingAge < rules.MinClaimingAge || p.ClaimingAge > rules.MaxClaimingAge {
		return Invalid("social_security.claiming_age", "must be between %d and %d, got %d",
			rules.MinClaimingAge, rules.MaxClaimingAge, p.ClaimingAge)
	}
	if p.FullRetirementAge == 0 && p.BirthYear <= 0 {
		return Invalid("social_security.full_retirement_age", "required when birth_year is not given")
	}
	if p.FullRetirementAge != 0 && (p.FullRetirementAge < rules.MinClaimingAge || p.FullRetirementAge > rules.MaxClaimingAge) {
		return Invalid("social_security.full_retirement_age", "must be between %d and %d, got %d",
			rules.MinClaimingAge, rules.MaxClaimingAge, p.FullRetirementAge)
	}
	if p.FullRetirementAgeMonths < 0 || p.FullRetirementAgeMonths > 11 {
		return Invalid("social_security.full_retirement_age_months", "must be between 0 and 11, got %d", p.FullRetirementAgeMonths)
	}
	if p.FullBenefit.IsNegative() {
		return Invalid("social_security.full_benefit", "must be non-negative, got %s", p.FullBenefit)
	}
	if s := p.Spousal; s != nil {
		if s.SpouseFullBenefit.IsNegative() {
			return Invalid("social_security.spousal.spouse_full_benefit", "must be non-negative, got %s", s.SpouseFullBenefit)
		}
		if s.ClaimingAge != 0 && (s.ClaimingAge < rules.MinClaimingAge || s.ClaimingAge > rules.MaxClaimingAge) {
			return Invalid("social_security.spousal.claiming_age", "must be between %d and %d, got %d",
				rules.MinClaimingAge, rules.MaxClaimingAge, s.ClaimingAge)
		}
	}
	if s := p.Survivor; s != nil {
		if s.DeceasedBenefit.IsNegative() {
			return Invalid("social_security.survivor.deceased_benefit", "must be non-negative, got %s", s.DeceasedBenefit)
		}
		if s.ClaimingAge != 0 && (s.ClaimingAge < rules.SurvivorMinClaimingAge || s.ClaimingAge > rules.MaxClaimingAge) {
			return Invalid("social_security.survivor.claiming_age", "must be between %d and %d, got %d",
				rules.SurvivorMinClaimingAge, rules.MaxClaimingAge, s.ClaimingAge)
		}
	}
	for _, o := range p.Offsets {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}
