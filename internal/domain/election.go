package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ElectionKind names a payout election in results and input files.
type ElectionKind string

const (
	KindFullAllowance     ElectionKind = "full_allowance"
	KindAnnuityProtection ElectionKind = "annuity_protection"
	KindJointSurvivor     ElectionKind = "joint_survivor"
)

// ElectionKinds lists the kinds in the order comparisons present them.
var ElectionKinds = []ElectionKind{KindFullAllowance, KindAnnuityProtection, KindJointSurvivor}

// PayoutElection is the closed set of irrevocable payout choices. Only the
// three variants in this file implement it; consumers switch over them
// exhaustively and treat any other value as a computation error.
type PayoutElection interface {
	Kind() ElectionKind
	isPayoutElection()
}

// FullAllowance pays the unreduced allowance with no survivor provision.
type FullAllowance struct{}

// AnnuityProtection pays a slightly reduced allowance and refunds the
// member's unrecovered contributions on death.
type AnnuityProtection struct{}

// JointSurvivor pays a reduced allowance and continues Fraction of it to the
// beneficiary for life.
type JointSurvivor struct {
	Fraction       decimal.Decimal
	BeneficiaryAge int
}

func (FullAllowance) Kind() ElectionKind     { return KindFullAllowance }
func (AnnuityProtection) Kind() ElectionKind { return KindAnnuityProtection }
func (JointSurvivor) Kind() ElectionKind     { return KindJointSurvivor }

func (FullAllowance) isPayoutElection()     {}
func (AnnuityProtection) isPayoutElection() {}
func (JointSurvivor) isPayoutElection()     {}

// TwoThirds is the customary joint-survivor fraction.
var TwoThirds = decimal.NewFromInt(2).Div(decimal.NewFromInt(3))

// ValidateElection enforces per-variant invariants.
func ValidateElection(e PayoutElection) error {
	switch v := e.(type) {
	case FullAllowance, AnnuityProtection:
		return nil
	case JointSurvivor:
		if !v.Fraction.IsPositive() || v.Fraction.GreaterThan(decimal.NewFromInt(1)) {
			return Invalid("election.fraction", "must be in (0, 1], got %s", v.Fraction)
		}
		if v.BeneficiaryAge <= 0 {
			return Invalid("election.beneficiary_age", "required and positive for joint survivor, got %d", v.BeneficiaryAge)
		}
		return nil
	case nil:
		return Invalid("election", "is required")
	default:
		return Broken("election", "unsupported payout election %T", e)
	}
}

// ElectionSpec is the serializable form of a PayoutElection.
type ElectionSpec struct {
	Kind           string          `yaml:"kind" json:"kind"`
	Fraction       decimal.Decimal `yaml:"fraction,omitempty" json:"fraction,omitempty"`
	BeneficiaryAge int             `yaml:"beneficiary_age,omitempty" json:"beneficiary_age,omitempty"`
}

// Build converts the spec into a validated PayoutElection. The statute's
// letter names (option A/B/C) are accepted as aliases.
func (s ElectionSpec) Build() (PayoutElection, error) {
	var e PayoutElection
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case "", "full_allowance", "full", "a", "option_a":
		if s.BeneficiaryAge != 0 {
			return nil, Invalid("election.beneficiary_age", "only allowed for joint survivor")
		}
		e = FullAllowance{}
	case "annuity_protection", "b", "option_b":
		if s.BeneficiaryAge != 0 {
			return nil, Invalid("election.beneficiary_age", "only allowed for joint survivor")
		}
		e = AnnuityProtection{}
	case "joint_survivor", "c", "option_c":
		fraction := s.Fraction
		if fraction.IsZero() {
			fraction = TwoThirds
		}
		e = JointSurvivor{Fraction: fraction, BeneficiaryAge: s.BeneficiaryAge}
	default:
		return nil, Invalid("election.kind", "unknown payout election %q", s.Kind)
	}
	if err := ValidateElection(e); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseElection builds an election from its textual parts.
func ParseElection(kind string, fraction decimal.Decimal, beneficiaryAge int) (PayoutElection, error) {
	return ElectionSpec{Kind: kind, Fraction: fraction, BeneficiaryAge: beneficiaryAge}.Build()
}

// SpecOf is the inverse of Build.
func SpecOf(e PayoutElection) ElectionSpec {
	switch v := e.(type) {
	case JointSurvivor:
		return ElectionSpec{Kind: string(KindJointSurvivor), Fraction: v.Fraction, BeneficiaryAge: v.BeneficiaryAge}
	case nil:
		return ElectionSpec{}
	default:
		return ElectionSpec{Kind: string(e.Kind())}
	}
}
