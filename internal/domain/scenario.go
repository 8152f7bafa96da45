package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxHorizonYears bounds a projection so a run stays a few hundred iterations.
const MaxHorizonYears = 100

// IncomeKind is the closed set of supplemental income sources.
type IncomeKind string

const (
	IncomeAccountWithdrawal IncomeKind = "account_withdrawal"
	IncomePartTime          IncomeKind = "part_time"
	IncomeRental            IncomeKind = "rental"
)

// IncomeSource is one supplemental stream. Account withdrawals use Balance,
// WithdrawalRate, GrowthRate and TaxDeferred; part-time and rental income use
// AnnualAmount (rental grows by GrowthRate). EndAge zero means open-ended.
type IncomeSource struct {
	Name           string          `yaml:"name" json:"name"`
	Kind           IncomeKind      `yaml:"kind" json:"kind"`
	StartAge       int             `yaml:"start_age,omitempty" json:"start_age,omitempty"`
	EndAge         int             `yaml:"end_age,omitempty" json:"end_age,omitempty"`
	Balance        decimal.Decimal `yaml:"balance,omitempty" json:"balance,omitempty"`
	WithdrawalRate decimal.Decimal `yaml:"withdrawal_rate,omitempty" json:"withdrawal_rate,omitempty"`
	GrowthRate     decimal.Decimal `yaml:"growth_rate,omitempty" json:"growth_rate,omitempty"`
	TaxDeferred    bool            `yaml:"tax_deferred,omitempty" json:"tax_deferred,omitempty"`
	AnnualAmount   decimal.Decimal `yaml:"annual_amount,omitempty" json:"annual_amount,omitempty"`
}

// Validate checks the source against its kind.
func (s IncomeSource) Validate() error {
	field := "supplemental." + s.Name
	if s.EndAge != 0 && s.EndAge < s.StartAge {
		return Invalid(field+".end_age", "must not precede start_age")
	}
	if s.GrowthRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return Invalid(field+".growth_rate", "must be greater than -100%%")
	}
	switch s.Kind {
	case IncomeAccountWithdrawal:
		if s.Balance.IsNegative() {
			return Invalid(field+".balance", "must be non-negative")
		}
		if s.WithdrawalRate.IsNegative() || s.WithdrawalRate.GreaterThan(decimal.NewFromInt(1)) {
			return Invalid(field+".withdrawal_rate", "must be between 0 and 1, got %s", s.WithdrawalRate)
		}
	case IncomePartTime, IncomeRental:
		if s.AnnualAmount.IsNegative() {
			return Invalid(field+".annual_amount", "must be non-negative")
		}
	default:
		return Invalid(field+".kind", "unknown income kind %q", s.Kind)
	}
	return nil
}

// ActiveAt reports whether the source pays at age.
func (s IncomeSource) ActiveAt(age int) bool {
	return age >= s.StartAge && (s.EndAge == 0 || age <= s.EndAge)
}

// FilingStatus selects the tax brackets used by the tax estimate.
type FilingStatus string

const (
	FilingSingle       FilingStatus = "single"
	FilingMarriedJoint FilingStatus = "married_joint"
)

// ParseFilingStatus defaults an empty value to single.
func ParseFilingStatus(s string) (FilingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return FilingSingle, nil
	case "married_joint", "mfj", "joint":
		return FilingMarriedJoint, nil
	}
	return "", Invalid("filing_status", "must be single or married_joint, got %q", s)
}

// Horizon is the inclusive age range of a projection. StartAge is the
// retirement age.
type Horizon struct {
	StartAge int `yaml:"start_age" json:"start_age"`
	EndAge   int `yaml:"end_age" json:"end_age"`
}

// Validate checks ordering and length.
func (h Horizon) Validate() error {
	if h.StartAge < 0 {
		return Invalid("horizon.start_age", "must be non-negative")
	}
	if h.EndAge < h.StartAge {
		return Invalid("horizon.end_age", "must not precede start_age (%d < %d)", h.EndAge, h.StartAge)
	}
	if h.EndAge-h.StartAge >= MaxHorizonYears {
		return Invalid("horizon", "at most %d years may be projected", MaxHorizonYears)
	}
	return nil
}

// Years returns the number of rows the horizon produces.
func (h Horizon) Years() int { return h.EndAge - h.StartAge + 1 }

// ScenarioParameters is the full input of a projection. It is built per
// request and never mutated by the engine.
type ScenarioParameters struct {
	Name           string                 `yaml:"name" json:"name"`
	Member         MemberProfile          `yaml:"member" json:"member"`
	Election       PayoutElection         `yaml:"-" json:"-"`
	COLA           COLAParameters         `yaml:"cola" json:"cola"`
	SocialSecurity *SocialSecurityProfile `yaml:"social_security,omitempty" json:"social_security,omitempty"`
	Supplemental   []IncomeSource         `yaml:"supplemental,omitempty" json:"supplemental,omitempty"`
	Horizon        Horizon                `yaml:"horizon" json:"horizon"`
	// SocialSecurityCOLA compounds Social Security yearly when positive. The
	// default of zero keeps it flat at the estimator output.
	SocialSecurityCOLA decimal.Decimal `yaml:"social_security_cola,omitempty" json:"social_security_cola,omitempty"`
	FilingStatus       FilingStatus    `yaml:"filing_status,omitempty" json:"filing_status,omitempty"`
}

// WithElection returns a copy carrying a different election.
func (p ScenarioParameters) WithElection(e PayoutElection) ScenarioParameters {
	p.Supplemental = append([]IncomeSource(nil), p.Supplemental...)
	p.Election = e
	return p
}

// Validate checks every part of the scenario against the rule set. It runs
// before any computation.
func (p ScenarioParameters) Validate(rs *RuleSet) error {
	if err := p.Member.Validate(rs.MinimumHireAge); err != nil {
		return err
	}
	if err := ValidateElection(p.Election); err != nil {
		return err
	}
	if err := p.COLA.Validate(rs.COLA.MaxRate); err != nil {
		return err
	}
	if err := p.Horizon.Validate(); err != nil {
		return err
	}
	if p.Horizon.StartAge < p.Member.Age {
		return Invalid("horizon.start_age", "retirement age %d precedes current age %d", p.Horizon.StartAge, p.Member.Age)
	}
	if p.SocialSecurity != nil {
		if err := p.SocialSecurity.Validate(rs.SocialSecurity); err != nil {
			return err
		}
	}
	names := make(map[string]bool, len(p.Supplemental))
	for _, s := range p.Supplemental {
		if s.Name == "" {
			return Invalid("supplemental.name", "is required")
		}
		if names[s.Name] {
			return Invalid("supplemental.name", "duplicate source %q", s.Name)
		}
		names[s.Name] = true
		if err := s.Validate(); err != nil {
			return err
		}
	}
	if p.SocialSecurityCOLA.IsNegative() {
		return Invalid("social_security_cola", "must be non-negative, got %s", p.SocialSecurityCOLA)
	}
	if _, err := ParseFilingStatus(string(p.FilingStatus)); err != nil {
		return err
	}
	return nil
}
