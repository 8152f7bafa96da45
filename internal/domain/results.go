package domain

import "github.com/shopspring/decimal"

// BenefitFactorResult is the resolver outcome. An ineligible member gets
// Eligible=false, a zero Factor and a Reason; that is a normal result.
type BenefitFactorResult struct {
	Group          PlanGroup       `json:"group"`
	HireEra        HireEra         `json:"hire_era"`
	Age            int             `json:"age"`
	ServiceYears   decimal.Decimal `json:"service_years"`
	Eligible       bool            `json:"eligible"`
	Factor         decimal.Decimal `json:"factor"`
	MinimumAge     int             `json:"minimum_age"`
	MinimumService decimal.Decimal `json:"minimum_service"`
	Flat           bool            `json:"flat"`
	Table          string          `json:"table"`
	Reason         string          `json:"reason,omitempty"`
}

// BenefitResult is the base pension before any payout election.
type BenefitResult struct {
	Factor            decimal.Decimal `json:"factor"`
	ServiceYears      decimal.Decimal `json:"service_years"`
	AverageSalary     decimal.Decimal `json:"average_salary"`
	UncappedAmount    decimal.Decimal `json:"uncapped_amount"`
	CapAmount         decimal.Decimal `json:"cap_amount"`
	AnnualBase        decimal.Decimal `json:"annual_base"`
	MonthlyBase       decimal.Decimal `json:"monthly_base"`
	CappedAt80Percent bool            `json:"capped_at_80_percent"`
}

// OptionResult is the payable pension under an election. ReductionPercent is
// the ratio relative to the full allowance (0.08 means 8%).
type OptionResult struct {
	Election               ElectionKind    `json:"election"`
	BasePension            decimal.Decimal `json:"base_pension"`
	ReductionPercent       decimal.Decimal `json:"reduction_percent"`
	AnnualMemberPension    decimal.Decimal `json:"annual_member_pension"`
	MonthlyMemberPension   decimal.Decimal `json:"monthly_member_pension"`
	SurvivorFraction       decimal.Decimal `json:"survivor_fraction"`
	AnnualSurvivorPension  decimal.Decimal `json:"annual_survivor_pension"`
	MonthlySurvivorPension decimal.Decimal `json:"monthly_survivor_pension"`
	SurvivorRefund         decimal.Decimal `json:"survivor_refund"`
}
