package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpgo/pension-engine/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// PlanGroup is the statutory classification of a member's position.
type PlanGroup string

const (
	Group1 PlanGroup = "group1" // general employees
	Group2 PlanGroup = "group2" // hazardous duty
	Group3 PlanGroup = "group3" // state police, flat rate
	Group4 PlanGroup = "group4" // public safety
)

// PlanGroups lists every supported group in table order.
var PlanGroups = []PlanGroup{Group1, Group2, Group3, Group4}

// ParsePlanGroup accepts "group2", "Group 2" or "2".
func ParsePlanGroup(s string) (PlanGroup, error) {
	n := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if !strings.HasPrefix(n, "group") {
		n = "group" + n
	}
	for _, g := range PlanGroups {
		if string(g) == n {
			return g, nil
		}
	}
	return "", Invalid("group", "unknown plan group %q", s)
}

// HireEra separates members hired before the statutory cutoff from those hired on or after it.
type HireEra string

const (
	PreCutoff  HireEra = "pre_cutoff"
	PostCutoff HireEra = "post_cutoff"
)

// HireEras lists both eras.
var HireEras = []HireEra{PreCutoff, PostCutoff}

// ParseHireEra accepts "pre", "pre_cutoff", "post" or "post_cutoff".
func ParseHireEra(s string) (HireEra, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pre", "pre_cutoff", "pre-cutoff":
		return PreCutoff, nil
	case "post", "post_cutoff", "post-cutoff":
		return PostCutoff, nil
	}
	return "", Invalid("hire_era", "unknown hire era %q", s)
}

// HireEraForDate classifies a hire date against the cutoff.
func HireEraForDate(hireDate, cutoff time.Time) HireEra {
	if dateutil.IsOnOrAfter(hireDate, cutoff) {
		return PostCutoff
	}
	return PreCutoff
}

// MemberProfile is the per-calculation description of a plan member.
type MemberProfile struct {
	Age                      int             `yaml:"age" json:"age"`
	BirthYear                int             `yaml:"birth_year" json:"birth_year"`
	Group                    PlanGroup       `yaml:"group" json:"group"`
	HireEra                  HireEra         `yaml:"hire_era" json:"hire_era"`
	ServiceYears             decimal.Decimal `yaml:"service_years" json:"service_years"`
	AverageSalary            decimal.Decimal `yaml:"average_salary" json:"average_salary"`
	AccumulatedContributions decimal.Decimal `yaml:"accumulated_contributions,omitempty" json:"accumulated_contributions,omitempty"`
}

// Validate checks the profile invariants. minHireAge bounds creditable
// service: a member cannot have worked longer than Age-minHireAge years.
func (m MemberProfile) Validate(minHireAge int) error {
	if m.Age < 0 {
		return Invalid("age", "must be non-negative, got %d", m.Age)
	}
	if m.BirthYear <= 0 {
		return Invalid("birth_year", "must be positive, got %d", m.BirthYear)
	}
	if _, err := ParsePlanGroup(string(m.Group)); err != nil {
		return err
	}
	if _, err := ParseHireEra(string(m.HireEra)); err != nil {
		return err
	}
	if m.ServiceYears.IsNegative() {
		return Invalid("service_years", "must be non-negative, got %s", m.ServiceYears)
	}
	maxService := m.Age - minHireAge
	if maxService < 0 {
		maxService = 0
	}
	if m.ServiceYears.GreaterThan(decimal.NewFromInt(int64(maxService))) {
		return Invalid("service_years", "%s exceeds the %d years possible between hire age %d and age %d",
			m.ServiceYears, maxService, minHireAge, m.Age)
	}
	if m.AverageSalary.IsNegative() {
		return Invalid("average_salary", "must be non-negative, got %s", m.AverageSalary)
	}
	if m.AccumulatedContributions.IsNegative() {
		return Invalid("accumulated_contributions", "must be non-negative, got %s", m.AccumulatedContributions)
	}
	return nil
}

// ServiceAt returns creditable service at retirementAge, assuming the member
// keeps working until then.
func (m MemberProfile) ServiceAt(retirementAge int) decimal.Decimal {
	if retirementAge <= m.Age {
		return m.ServiceYears
	}
	return m.ServiceYears.Add(decimal.NewFromInt(int64(retirementAge - m.Age)))
}

func (m MemberProfile) String() string {
	return fmt.Sprintf("%s/%s age %d, %s years, salary %s", m.Group, m.HireEra, m.Age, m.ServiceYears, m.AverageSalary.StringFixed(2))
}
