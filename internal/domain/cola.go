package domain

import "github.com/shopspring/decimal"

// COLAParameters describes the capped-base cost-of-living adjustment. Every
// field is taken literally: a zero PerYearCap allows no increase.
type COLAParameters struct {
	Rate       decimal.Decimal `yaml:"rate" json:"rate"`
	BaseCap    decimal.Decimal `yaml:"base_cap" json:"base_cap"`
	PerYearCap decimal.Decimal `yaml:"per_year_cap" json:"per_year_cap"`
}

// COLAInput is a COLA block as written in a scenario file or request. Fields
// left out take their value from the parameters it is laid over.
type COLAInput struct {
	Rate       *decimal.Decimal `yaml:"rate,omitempty" json:"rate,omitempty"`
	BaseCap    *decimal.Decimal `yaml:"base_cap,omitempty" json:"base_cap,omitempty"`
	PerYearCap *decimal.Decimal `yaml:"per_year_cap,omitempty" json:"per_year_cap,omitempty"`
}

// Over returns base with every field set in c replaced.
func (c COLAInput) Over(base COLAParameters) COLAParameters {
	if c.Rate != nil {
		base.Rate = *c.Rate
	}
	if c.BaseCap != nil {
		base.BaseCap = *c.BaseCap
	}
	if c.PerYearCap != nil {
		base.PerYearCap = *c.PerYearCap
	}
	return base
}

// COLAInputOf writes every field of p explicitly.
func COLAInputOf(p COLAParameters) COLAInput {
	return COLAInput{Rate: &p.Rate, BaseCap: &p.BaseCap, PerYearCap: &p.PerYearCap}
}

// Validate checks the rate against the statutory maximum and the caps for sign.
func (c COLAParameters) Validate(maxRate decimal.Decimal) error {
	if c.Rate.IsNegative() || c.Rate.GreaterThan(maxRate) {
		return Invalid("cola.rate", "must be between 0 and %s, got %s", maxRate, c.Rate)
	}
	if c.BaseCap.IsNegative() {
		return Invalid("cola.base_cap", "must be non-negative, got %s", c.BaseCap)
	}
	if c.PerYearCap.IsNegative() {
		return Invalid("cola.per_year_cap", "must be non-negative, got %s", c.PerYearCap)
	}
	return nil
}

// COLARow is one year of a COLA projection.
type COLARow struct {
	Year              int             `json:"year"`
	StartingPension   decimal.Decimal `json:"starting_pension"`
	Increase          decimal.Decimal `json:"increase"`
	EndingPension     decimal.Decimal `json:"ending_pension"`
	MonthlyEquivalent decimal.Decimal `json:"monthly_equivalent"`
}
