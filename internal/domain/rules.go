package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ratio is an exact fraction such as 5/900 (five-ninths of one percent).
// Multiplying by a month count before dividing keeps the statutory
// reduction curves exact at their breakpoints.
type Ratio struct {
	Num decimal.Decimal
	Den decimal.Decimal
}

// NewRatio builds num/den.
func NewRatio(num, den int64) Ratio {
	return Ratio{Num: decimal.NewFromInt(num), Den: decimal.NewFromInt(den)}
}

// Times returns n x Num / Den.
func (r Ratio) Times(n int) decimal.Decimal {
	if r.Den.IsZero() {
		return decimal.Zero
	}
	return r.Num.Mul(decimal.NewFromInt(int64(n))).Div(r.Den)
}

// Value returns the ratio as a decimal.
func (r Ratio) Value() decimal.Decimal { return r.Times(1) }

// UnmarshalText accepts "a/b" or a plain decimal.
func (r *Ratio) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	num, den, found := strings.Cut(s, "/")
	if !found {
		den = "1"
	}
	n, err := decimal.NewFromString(strings.TrimSpace(num))
	if err != nil {
		return fmt.Errorf("ratio %q: %w", s, err)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(den))
	if err != nil {
		return fmt.Errorf("ratio %q: %w", s, err)
	}
	if d.IsZero() {
		return fmt.Errorf("ratio %q: zero denominator", s)
	}
	r.Num, r.Den = n, d
	return nil
}

// MarshalText renders "a/b".
func (r Ratio) MarshalText() ([]byte, error) {
	return []byte(r.Num.String() + "/" + r.Den.String()), nil
}

// FactorTable is the benefit-factor rule for one (group, hire era) pair.
// The factor starts at BaseFactor at MinAge and rises by Increment per year
// of age up to Ceiling. Flat tables ignore age.
type FactorTable struct {
	Group      PlanGroup       `yaml:"group"`
	HireEra    HireEra         `yaml:"hire_era"`
	MinAge     int             `yaml:"min_age"`
	MinService decimal.Decimal `yaml:"min_service"`
	BaseFactor decimal.Decimal `yaml:"base_factor"`
	Increment  decimal.Decimal `yaml:"increment"`
	Ceiling    decimal.Decimal `yaml:"ceiling"`
	Flat       bool            `yaml:"flat"`
}

// CeilingAge is the first age at which the ceiling applies.
func (t FactorTable) CeilingAge() int {
	if t.Flat || !t.Increment.IsPositive() {
		return t.MinAge
	}
	steps := t.Ceiling.Sub(t.BaseFactor).Div(t.Increment).Ceil()
	return t.MinAge + int(steps.IntPart())
}

// AgeBand is one row of the annuity-protection reduction table. A band with
// MaxAge zero is open-ended and must be last.
type AgeBand struct {
	MaxAge    int             `yaml:"max_age"`
	Reduction decimal.Decimal `yaml:"reduction"`
}

// SurvivorTier is the joint-survivor reduction rule for fractions up to
// MaxFraction. reduction = clamp(Base + PerYearGap x (memberAge - beneficiaryAge), Floor, Cap).
type SurvivorTier struct {
	MaxFraction decimal.Decimal `yaml:"max_fraction"`
	Base        decimal.Decimal `yaml:"base"`
	PerYearGap  decimal.Decimal `yaml:"per_year_gap"`
	Floor       decimal.Decimal `yaml:"floor"`
	Cap         decimal.Decimal `yaml:"cap"`
}

// COLARules holds the statutory COLA limits and defaults.
type COLARules struct {
	MaxRate     decimal.Decimal `yaml:"max_rate"`
	DefaultRate decimal.Decimal `yaml:"default_rate"`
	BaseCap     decimal.Decimal `yaml:"base_cap"`
	PerYearCap  decimal.Decimal `yaml:"per_year_cap"`
}

// Defaults returns parameters at the statutory defaults.
func (c COLARules) Defaults() COLAParameters {
	return COLAParameters{Rate: c.DefaultRate, BaseCap: c.BaseCap, PerYearCap: c.PerYearCap}
}

// SocialSecurityRules configures the claiming-age curves.
type SocialSecurityRules struct {
	MinClaimingAge         int             `yaml:"min_claiming_age"`
	MaxClaimingAge         int             `yaml:"max_claiming_age"`
	EarlyFirstMonths       int             `yaml:"early_first_months"`
	EarlyFirstRate         Ratio           `yaml:"early_first_rate"`
	EarlyAfterRate         Ratio           `yaml:"early_after_rate"`
	DelayedCreditRate      Ratio           `yaml:"delayed_credit_rate"`
	SpousalMaxFraction     decimal.Decimal `yaml:"spousal_max_fraction"`
	SpousalEarlyFirstRate  Ratio           `yaml:"spousal_early_first_rate"`
	SpousalEarlyAfterRate  Ratio           `yaml:"spousal_early_after_rate"`
	SurvivorMinClaimingAge int             `yaml:"survivor_min_claiming_age"`
	SurvivorFloor          decimal.Decimal `yaml:"survivor_floor"`
	GPOPensionFraction     Ratio           `yaml:"gpo_pension_fraction"`
}

// TaxBracket is one marginal bracket. Max zero means unbounded.
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min"`
	Max  decimal.Decimal `yaml:"max"`
	Rate decimal.Decimal `yaml:"rate"`
}

// ProvisionalThresholds are the two Social Security taxation thresholds.
type ProvisionalThresholds struct {
	Base     decimal.Decimal `yaml:"base"`
	Adjusted decimal.Decimal `yaml:"adjusted"`
}

// TaxRules configures the tax-burden estimate.
type TaxRules struct {
	StandardDeductionSingle decimal.Decimal       `yaml:"standard_deduction_single"`
	StandardDeductionJoint  decimal.Decimal       `yaml:"standard_deduction_joint"`
	AdditionalDeduction65   decimal.Decimal       `yaml:"additional_deduction_65"`
	BracketsSingle          []TaxBracket          `yaml:"brackets_single"`
	BracketsJoint           []TaxBracket          `yaml:"brackets_joint"`
	ProvisionalSingle       ProvisionalThresholds `yaml:"provisional_single"`
	ProvisionalJoint        ProvisionalThresholds `yaml:"provisional_joint"`
	StateRate               decimal.Decimal       `yaml:"state_rate"`
	StateExemptsPension     bool                  `yaml:"state_exempts_pension"`
	StateExemptsSS          bool                  `yaml:"state_exempts_social_security"`
}

// RuleSet is the complete declarative statute used by the engine.
type RuleSet struct {
	Version           string              `yaml:"version"`
	HireEraCutoff     string              `yaml:"hire_era_cutoff"`
	MinimumHireAge    int                 `yaml:"minimum_hire_age"`
	MaxBenefitPercent decimal.Decimal     `yaml:"max_benefit_percent"`
	FactorTables      []FactorTable       `yaml:"factor_tables"`
	AnnuityProtection []AgeBand           `yaml:"annuity_protection"`
	JointSurvivor     []SurvivorTier      `yaml:"joint_survivor"`
	COLA              COLARules           `yaml:"cola"`
	SocialSecurity    SocialSecurityRules `yaml:"social_security"`
	Tax               TaxRules            `yaml:"tax"`
}

// Cutoff parses HireEraCutoff.
func (rs *RuleSet) Cutoff() (time.Time, error) {
	return time.Parse("2006-01-02", rs.HireEraCutoff)
}

// FactorTable returns the table for (group, era).
func (rs *RuleSet) FactorTable(group PlanGroup, era HireEra) (FactorTable, bool) {
	for _, t := range rs.FactorTables {
		if t.Group == group && t.HireEra == era {
			return t, true
		}
	}
	return FactorTable{}, false
}

// Validate checks the schema so rule drift fails at load time instead of
// inside a calculation.
func (rs *RuleSet) Validate() error {
	one := decimal.NewFromInt(1)

	if _, err := rs.Cutoff(); err != nil {
		return fmt.Errorf("hire_era_cutoff: %w", err)
	}
	if rs.MinimumHireAge < 0 {
		return fmt.Errorf("minimum_hire_age must be non-negative")
	}
	if !rs.MaxBenefitPercent.IsPositive() || rs.MaxBenefitPercent.GreaterThan(one) {
		return fmt.Errorf("max_benefit_percent must be in (0, 1]")
	}

	seen := make(map[string]bool)
	for i, t := range rs.FactorTables {
		key := string(t.Group) + "/" + string(t.HireEra)
		if seen[key] {
			return fmt.Errorf("factor_tables[%d]: duplicate table for %s", i, key)
		}
		seen[key] = true
		if _, err := ParsePlanGroup(string(t.Group)); err != nil {
			return fmt.Errorf("factor_tables[%d]: %w", i, err)
		}
		if _, err := ParseHireEra(string(t.HireEra)); err != nil {
			return fmt.Errorf("factor_tables[%d]: %w", i, err)
		}
		if t.MinAge < 0 || t.MinService.IsNegative() {
			return fmt.Errorf("factor_tables[%d] %s: minimums must be non-negative", i, key)
		}
		if !t.BaseFactor.IsPositive() {
			return fmt.Errorf("factor_tables[%d] %s: base_factor must be positive", i, key)
		}
		if t.Ceiling.LessThan(t.BaseFactor) || t.Ceiling.GreaterThanOrEqual(one) {
			return fmt.Errorf("factor_tables[%d] %s: ceiling must be in [base_factor, 1)", i, key)
		}
		if t.Flat {
			if !t.Increment.IsZero() || !t.Ceiling.Equal(t.BaseFactor) {
				return fmt.Errorf("factor_tables[%d] %s: flat tables need zero increment and ceiling == base_factor", i, key)
			}
		} else if !t.Increment.IsPositive() {
			return fmt.Errorf("factor_tables[%d] %s: graduated tables need a positive increment", i, key)
		}
	}
	for _, g := range PlanGroups {
		for _, e := range HireEras {
			if !seen[string(g)+"/"+string(e)] {
				return fmt.Errorf("factor_tables: missing table for %s/%s", g, e)
			}
		}
	}

	if len(rs.AnnuityProtection) == 0 {
		return fmt.Errorf("annuity_protection: at least one band is required")
	}
	prevAge, prevRed := -1, decimal.Zero
	for i, b := range rs.AnnuityProtection {
		last := i == len(rs.AnnuityProtection)-1
		if b.MaxAge == 0 && !last {
			return fmt.Errorf("annuity_protection[%d]: open-ended band must be last", i)
		}
		if b.MaxAge != 0 && b.MaxAge <= prevAge {
			return fmt.Errorf("annuity_protection[%d]: max_age must increase", i)
		}
		if b.Reduction.IsNegative() || b.Reduction.GreaterThanOrEqual(one) {
			return fmt.Errorf("annuity_protection[%d]: reduction must be in [0, 1)", i)
		}
		if b.Reduction.LessThan(prevRed) {
			return fmt.Errorf("annuity_protection[%d]: reduction must not decrease with age", i)
		}
		prevAge, prevRed = b.MaxAge, b.Reduction
	}
	if rs.AnnuityProtection[len(rs.AnnuityProtection)-1].MaxAge != 0 {
		return fmt.Errorf("annuity_protection: last band must be open-ended (max_age 0)")
	}

	if len(rs.JointSurvivor) == 0 {
		return fmt.Errorf("joint_survivor: at least one tier is required")
	}
	prevFraction := decimal.Zero
	for i, t := range rs.JointSurvivor {
		if t.MaxFraction.LessThanOrEqual(prevFraction) {
			return fmt.Errorf("joint_survivor[%d]: max_fraction must increase", i)
		}
		if t.Floor.IsNegative() || t.Floor.GreaterThan(t.Base) || t.Base.GreaterThan(t.Cap) || t.Cap.GreaterThanOrEqual(one) {
			return fmt.Errorf("joint_survivor[%d]: need 0 <= floor <= base <= cap < 1", i)
		}
		if t.PerYearGap.IsNegative() {
			return fmt.Errorf("joint_survivor[%d]: per_year_gap must be non-negative", i)
		}
		prevFraction = t.MaxFraction
	}
	if !prevFraction.Equal(one) {
		return fmt.Errorf("joint_survivor: last tier must cover fraction 1")
	}

	c := rs.COLA
	if c.MaxRate.IsNegative() || c.BaseCap.IsNegative() || c.PerYearCap.IsNegative() {
		return fmt.Errorf("cola: limits must be non-negative")
	}
	if c.DefaultRate.IsNegative() || c.DefaultRate.GreaterThan(c.MaxRate) {
		return fmt.Errorf("cola: default_rate must be within [0, max_rate]")
	}

	ss := rs.SocialSecurity
	if ss.MinClaimingAge <= 0 || ss.MaxClaimingAge < ss.MinClaimingAge {
		return fmt.Errorf("social_security: claiming ages must satisfy 0 < min <= max")
	}
	if ss.EarlyFirstMonths < 0 {
		return fmt.Errorf("social_security: early_first_months must be non-negative")
	}
	for name, r := range map[string]Ratio{
		"early_first_rate":         ss.EarlyFirstRate,
		"early_after_rate":         ss.EarlyAfterRate,
		"delayed_credit_rate":      ss.DelayedCreditRate,
		"spousal_early_first_rate": ss.SpousalEarlyFirstRate,
		"spousal_early_after_rate": ss.SpousalEarlyAfterRate,
		"gpo_pension_fraction":     ss.GPOPensionFraction,
	} {
		if r.Den.IsZero() || r.Value().IsNegative() {
			return fmt.Errorf("social_security: %s must be a non-negative ratio", name)
		}
	}
	if ss.SpousalMaxFraction.IsNegative() || ss.SpousalMaxFraction.GreaterThan(one) {
		return fmt.Errorf("social_security: spousal_max_fraction must be in [0, 1]")
	}
	if ss.SurvivorFloor.IsNegative() || ss.SurvivorFloor.GreaterThan(one) {
		return fmt.Errorf("social_security: survivor_floor must be in [0, 1]")
	}

	for name, brackets := range map[string][]TaxBracket{
		"brackets_single": rs.Tax.BracketsSingle,
		"brackets_joint":  rs.Tax.BracketsJoint,
	} {
		if err := validateBrackets(brackets); err != nil {
			return fmt.Errorf("tax.%s: %w", name, err)
		}
	}
	if rs.Tax.StateRate.IsNegative() || rs.Tax.StateRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("tax.state_rate must be in [0, 1)")
	}
	return nil
}

func validateBrackets(brackets []TaxBracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	if !brackets[0].Min.IsZero() {
		return fmt.Errorf("first bracket must start at 0")
	}
	for i, b := range brackets {
		last := i == len(brackets)-1
		if b.Rate.IsNegative() || b.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("bracket %d: rate must be in [0, 1)", i)
		}
		if !last {
			if b.Max.LessThanOrEqual(b.Min) {
				return fmt.Errorf("bracket %d: max must exceed min", i)
			}
			if !brackets[i+1].Min.Equal(b.Max) {
				return fmt.Errorf("bracket %d: next bracket must start at %s", i, b.Max)
			}
		} else if !b.Max.IsZero() {
			return fmt.Errorf("last bracket must be unbounded (max 0)")
		}
	}
	return nil
}
