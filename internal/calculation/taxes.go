package calculation

import (
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxInput is one year of income for the tax-burden estimate. All amounts
// are annual.
type TaxInput struct {
	Age            int
	FilingStatus   domain.FilingStatus
	Pension        decimal.Decimal
	SocialSecurity decimal.Decimal
	// OtherTaxable is ordinary income other than the pension: part-time
	// wages, rental income and tax-deferred account withdrawals.
	OtherTaxable decimal.Decimal
}

// TaxEstimate is the unrounded result of EstimateTax.
type TaxEstimate struct {
	TaxableSocialSecurity decimal.Decimal
	FederalTaxableIncome  decimal.Decimal
	FederalTax            decimal.Decimal
	StateTax              decimal.Decimal
}

// Total returns federal plus state tax.
func (t TaxEstimate) Total() decimal.Decimal {
	return t.FederalTax.Add(t.StateTax)
}

// EstimateTax computes the federal and state tax for one year. The federal
// part applies the standard deduction (plus the 65+ addition) and
// progressive brackets to ordinary income and the taxable share of Social
// Security. The state part is a flat rate with optional pension and Social
// Security exemptions.
func (e *Engine) EstimateTax(in TaxInput) TaxEstimate {
	rules := e.Rules.Tax
	joint := in.FilingStatus == domain.FilingMarriedJoint

	ordinary := in.Pension.Add(in.OtherTaxable)
	taxableSS := e.TaxableSocialSecurity(in.SocialSecurity, ordinary, in.FilingStatus)

	deduction := rules.StandardDeductionSingle
	brackets := rules.BracketsSingle
	if joint {
		deduction = rules.StandardDeductionJoint
		brackets = rules.BracketsJoint
	}
	if in.Age >= 65 {
		deduction = deduction.Add(rules.AdditionalDeduction65)
	}

	federalTaxable := decimal.Max(decimal.Zero, ordinary.Add(taxableSS).Sub(deduction))
	federal := progressiveTax(federalTaxable, brackets)

	stateBase := in.OtherTaxable
	if !rules.StateExemptsPension {
		stateBase = stateBase.Add(in.Pension)
	}
	if !rules.StateExemptsSS {
		stateBase = stateBase.Add(in.SocialSecurity)
	}

	return TaxEstimate{
		TaxableSocialSecurity: taxableSS,
		FederalTaxableIncome:  federalTaxable,
		FederalTax:            federal,
		StateTax:              stateBase.Mul(rules.StateRate),
	}
}

// TaxableSocialSecurity determines the federally taxable portion of annual
// Social Security benefits from provisional income (other income plus half
// the benefits):
//   - at or below the base threshold nothing is taxable
//   - up to the adjusted threshold, the lesser of 50% of the excess or 50% of benefits
//   - above it, the lesser of 85% of benefits or 85% of the excess over the
//     adjusted threshold plus the lesser of the middle-band amount or 50% of benefits
func (e *Engine) TaxableSocialSecurity(benefits, otherIncome decimal.Decimal, status domain.FilingStatus) decimal.Decimal {
	if !benefits.IsPositive() {
		return decimal.Zero
	}
	thresholds := e.Rules.Tax.ProvisionalSingle
	if status == domain.FilingMarriedJoint {
		thresholds = e.Rules.Tax.ProvisionalJoint
	}

	half := decimal.NewFromFloat(0.5)
	eightyFive := decimal.NewFromFloat(0.85)
	provisional := otherIncome.Add(benefits.Mul(half))

	switch {
	case provisional.LessThanOrEqual(thresholds.Base):
		return decimal.Zero
	case provisional.LessThanOrEqual(thresholds.Adjusted):
		return decimal.Min(provisional.Sub(thresholds.Base).Mul(half), benefits.Mul(half))
	default:
		middle := decimal.Min(thresholds.Adjusted.Sub(thresholds.Base).Mul(half), benefits.Mul(half))
		upper := provisional.Sub(thresholds.Adjusted).Mul(eightyFive).Add(middle)
		return decimal.Min(benefits.Mul(eightyFive), upper)
	}
}

// progressiveTax applies marginal brackets. A bracket with a zero Max is
// unbounded.
func progressiveTax(taxable decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	tax := decimal.Zero
	for _, b := range brackets {
		if taxable.LessThanOrEqual(b.Min) {
			break
		}
		top := taxable
		if !b.Max.IsZero() {
			top = decimal.Min(taxable, b.Max)
		}
		tax = tax.Add(top.Sub(b.Min).Mul(b.Rate))
	}
	return tax
}
