package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultEndAge is used when a scenario omits horizon.end_age.
const DefaultEndAge = 90

// ScenarioInput is the file/HTTP form of a scenario. The election is given as
// an ElectionSpec, and the COLA block or any of its fields may be omitted to
// take the statutory defaults.
type ScenarioInput struct {
	Name               string                        `yaml:"name" json:"name"`
	Member             domain.MemberProfile          `yaml:"member" json:"member"`
	Election           domain.ElectionSpec           `yaml:"election" json:"election"`
	COLA               *domain.COLAInput             `yaml:"cola,omitempty" json:"cola,omitempty"`
	SocialSecurity     *domain.SocialSecurityProfile `yaml:"social_security,omitempty" json:"social_security,omitempty"`
	Supplemental       []domain.IncomeSource         `yaml:"supplemental,omitempty" json:"supplemental,omitempty"`
	Horizon            domain.Horizon                `yaml:"horizon,omitempty" json:"horizon,omitempty"`
	SocialSecurityCOLA decimal.Decimal               `yaml:"social_security_cola,omitempty" json:"social_security_cola,omitempty"`
	FilingStatus       domain.FilingStatus           `yaml:"filing_status,omitempty" json:"filing_status,omitempty"`
	// HireDate (YYYY-MM-DD) may replace member.hire_era; the era is taken
	// from the rule set's cutoff date.
	HireDate string `yaml:"hire_date,omitempty" json:"hire_date,omitempty"`
}

// ScenarioFile is a document holding one or more scenarios. The first one is
// the base for comparisons.
type ScenarioFile struct {
	Scenarios []ScenarioInput `yaml:"scenarios" json:"scenarios"`
}

// InputParser turns scenario documents into validated ScenarioParameters.
type InputParser struct {
	Rules *domain.RuleSet
}

// NewInputParser creates a parser bound to a rule set.
func NewInputParser(rules *domain.RuleSet) *InputParser {
	return &InputParser{Rules: rules}
}

// LoadFromFile loads scenarios from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) ([]domain.ScenarioParameters, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	defer f.Close()
	return ip.Load(f)
}

// Load decodes and validates a scenario document.
func (ip *InputParser) Load(r io.Reader) ([]domain.ScenarioParameters, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file ScenarioFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("no scenarios provided")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return ip.ResolveAll(file.Scenarios)
}

// ResolveAll resolves every scenario and checks that names are unique.
func (ip *InputParser) ResolveAll(inputs []ScenarioInput) ([]domain.ScenarioParameters, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no scenarios provided")
	}
	seen := make(map[string]bool, len(inputs))
	out := make([]domain.ScenarioParameters, 0, len(inputs))
	for i, in := range inputs {
		p, err := ip.Resolve(in)
		if err != nil {
			return nil, fmt.Errorf("scenario %d validation failed: %w", i, err)
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("scenario-%d", i+1)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("scenario %d validation failed: %w", i, domain.Invalid("name", "duplicate scenario name %q", p.Name))
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out, nil
}

// Resolve applies defaults and validates a single scenario.
func (ip *InputParser) Resolve(in ScenarioInput) (domain.ScenarioParameters, error) {
	p := domain.ScenarioParameters{
		Name:               in.Name,
		Member:             in.Member,
		SocialSecurity:     in.SocialSecurity,
		Supplemental:       append([]domain.IncomeSource(nil), in.Supplemental...),
		Horizon:            in.Horizon,
		SocialSecurityCOLA: in.SocialSecurityCOLA,
		FilingStatus:       in.FilingStatus,
	}

	election, err := in.Election.Build()
	if err != nil {
		return p, err
	}
	p.Election = election

	p.COLA = ip.Rules.COLA.Defaults()
	if in.COLA != nil {
		p.COLA = in.COLA.Over(p.COLA)
	}

	if p.Horizon.StartAge == 0 {
		p.Horizon.StartAge = p.Member.Age
	}
	if p.Horizon.EndAge == 0 {
		p.Horizon.EndAge = DefaultEndAge
		if p.Horizon.StartAge > DefaultEndAge {
			p.Horizon.EndAge = p.Horizon.StartAge
		}
	}

	if p.Member.Group != "" {
		if g, err := domain.ParsePlanGroup(string(p.Member.Group)); err == nil {
			p.Member.Group = g
		}
	}
	if p.Member.HireEra != "" {
		if e, err := domain.ParseHireEra(string(p.Member.HireEra)); err == nil {
			p.Member.HireEra = e
		}
	}

	if in.HireDate != "" {
		era, err := ip.hireEra(in.HireDate)
		if err != nil {
			return p, err
		}
		if p.Member.HireEra != "" && p.Member.HireEra != era {
			return p, domain.Invalid("hire_date", "%s falls in era %s but member.hire_era is %s", in.HireDate, era, p.Member.HireEra)
		}
		p.Member.HireEra = era
	}

	status, err := domain.ParseFilingStatus(string(p.FilingStatus))
	if err != nil {
		return p, err
	}
	p.FilingStatus = status

	if ss := p.SocialSecurity; ss != nil {
		copied := *ss
		if copied.BirthYear == 0 && copied.FullRetirementAge == 0 {
			copied.BirthYear = p.Member.BirthYear
		}
		copied.Offsets = append([]domain.Offset(nil), ss.Offsets...)
		p.SocialSecurity = &copied
	}

	if err := p.Validate(ip.Rules); err != nil {
		return p, err
	}
	return p, nil
}

func (ip *InputParser) hireEra(hireDate string) (domain.HireEra, error) {
	hired, err := time.Parse("2006-01-02", hireDate)
	if err != nil {
		return "", domain.Invalid("hire_date", "must be YYYY-MM-DD, got %q", hireDate)
	}
	cutoff, err := ip.Rules.Cutoff()
	if err != nil {
		return "", domain.Broken("rules", "hire_era_cutoff: %v", err)
	}
	return domain.HireEraForDate(hired, cutoff), nil
}

// ToInput converts resolved parameters back into their document form.
func ToInput(p domain.ScenarioParameters) ScenarioInput {
	cola := domain.COLAInputOf(p.COLA)
	return ScenarioInput{
		Name:               p.Name,
		Member:             p.Member,
		Election:           domain.SpecOf(p.Election),
		COLA:               &cola,
		SocialSecurity:     p.SocialSecurity,
		Supplemental:       p.Supplemental,
		Horizon:            p.Horizon,
		SocialSecurityCOLA: p.SocialSecurityCOLA,
		FilingStatus:       p.FilingStatus,
	}
}

// MarshalScenarios renders scenarios as a YAML scenario document.
func MarshalScenarios(params ...domain.ScenarioParameters) ([]byte, error) {
	file := ScenarioFile{Scenarios: make([]ScenarioInput, 0, len(params))}
	for _, p := range params {
		file.Scenarios = append(file.Scenarios, ToInput(p))
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return data, nil
}
