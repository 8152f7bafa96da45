package domain

import (
	"github.com/shopspring/decimal"
)

// ProjectionRow is one year of the combined-income ledger. All amounts are
// annual unless the field name says monthly.
type ProjectionRow struct {
	YearIndex int `json:"year_index"`
	Age       int `json:"age"`

	// Income Sources
	Pension           decimal.Decimal `json:"pension"`
	PensionMonthly    decimal.Decimal `json:"pension_monthly"`
	COLAIncrease      decimal.Decimal `json:"cola_increase"`
	SocialSecurity    decimal.Decimal `json:"social_security"`
	AccountWithdrawal decimal.Decimal `json:"account_withdrawal"`
	PartTimeIncome    decimal.Decimal `json:"part_time_income"`
	RentalIncome      decimal.Decimal `json:"rental_income"`
	Supplemental      decimal.Decimal `json:"supplemental"`
	TotalAnnual       decimal.Decimal `json:"total_annual"`
	TotalMonthly      decimal.Decimal `json:"total_monthly"`

	// Taxes
	TaxableSocialSecurity decimal.Decimal `json:"taxable_social_security"`
	FederalTax            decimal.Decimal `json:"federal_tax"`
	StateTax              decimal.Decimal `json:"state_tax"`
	EstimatedTax          decimal.Decimal `json:"estimated_tax"`
	NetIncome             decimal.Decimal `json:"net_income"`

	// Account balance at end of year, after growth and withdrawals
	AccountBalance decimal.Decimal `json:"account_balance"`
	RMDApplied     bool            `json:"rmd_applied"`
}

// IncludedComponents records which income streams the projection used.
type IncludedComponents struct {
	Pension        bool `json:"pension"`
	SocialSecurity bool `json:"social_security"`
	Supplemental   bool `json:"supplemental"`
}

// ProjectionSummary aggregates the ledger. Scores are 0-100.
type ProjectionSummary struct {
	RetirementAge       int             `json:"retirement_age"`
	EndAge              int             `json:"end_age"`
	Years               int             `json:"years"`
	FirstYearIncome     decimal.Decimal `json:"first_year_income"`
	FirstYearMonthly    decimal.Decimal `json:"first_year_monthly"`
	FirstYearNetIncome  decimal.Decimal `json:"first_year_net_income"`
	TotalLifetimeIncome decimal.Decimal `json:"total_lifetime_income"`
	TotalPension        decimal.Decimal `json:"total_pension"`
	TotalSocialSecurity decimal.Decimal `json:"total_social_security"`
	TotalSupplemental   decimal.Decimal `json:"total_supplemental"`
	TotalEstimatedTax   decimal.Decimal `json:"total_estimated_tax"`
	NetLifetimeIncome   decimal.Decimal `json:"net_lifetime_income"`
	AverageTaxRate      decimal.Decimal `json:"average_tax_rate"`
	ReplacementRatio    decimal.Decimal `json:"replacement_ratio"`
	FinalAccountBalance decimal.Decimal `json:"final_account_balance"`
	COLACoverage        decimal.Decimal `json:"cola_coverage"`
	Diversification     decimal.Decimal `json:"diversification"`
	OptimizationScore   decimal.Decimal `json:"optimization_score"`
	RiskScore           decimal.Decimal `json:"risk_score"`
	FlexibilityScore    decimal.Decimal `json:"flexibility_score"`
}

// ProjectionResult is the projector output. It is a fresh value per call.
type ProjectionResult struct {
	Name           string                `json:"name"`
	Factor         BenefitFactorResult   `json:"factor"`
	Benefit        BenefitResult         `json:"benefit"`
	Option         OptionResult          `json:"option"`
	SocialSecurity *SocialSecurityResult `json:"social_security,omitempty"`
	Rows           []ProjectionRow       `json:"rows"`
	Summary        ProjectionSummary     `json:"summary"`
	Components     IncludedComponents    `json:"components"`
	Warnings       []string              `json:"warnings,omitempty"`
}

// RowAtAge returns the row for age, if the horizon covers it.
func (r *ProjectionResult) RowAtAge(age int) (ProjectionRow, bool) {
	if len(r.Rows) == 0 {
		return ProjectionRow{}, false
	}
	i := age - r.Rows[0].Age
	if i < 0 || i >= len(r.Rows) {
		return ProjectionRow{}, false
	}
	return r.Rows[i], true
}
