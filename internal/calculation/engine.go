package calculation

import (
	"github.com/rpgo/pension-engine/internal/config"
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine evaluates the pension statute for one rule set. It holds only
// immutable tables and a logger, so a single Engine may serve concurrent
// callers and every call returns freshly allocated results.
type Engine struct {
	Rules  *domain.RuleSet
	Logger Logger
}

// NewEngine creates an engine bound to rules. The rule set must already be
// validated (config.LoadRules does this).
func NewEngine(rules *domain.RuleSet) *Engine {
	return &Engine{Rules: rules, Logger: NopLogger{}}
}

// Default returns an engine over the embedded statutory tables.
func Default() *Engine {
	return NewEngine(config.MustDefaultRules())
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Log returns the engine logger, never nil.
func (e *Engine) Log() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}

// The package-level functions below evaluate against the embedded default rules.

// ResolveBenefitFactor is Engine.ResolveBenefitFactor on the default rules.
func ResolveBenefitFactor(group domain.PlanGroup, age int, serviceYears decimal.Decimal, era domain.HireEra) (domain.BenefitFactorResult, error) {
	return Default().ResolveBenefitFactor(group, age, serviceYears, era)
}

// CalculateBasePension is Engine.CalculateBasePension on the default rules.
func CalculateBasePension(factor, serviceYears, averageSalary decimal.Decimal) (domain.BenefitResult, error) {
	return Default().CalculateBasePension(factor, serviceYears, averageSalary)
}

// ApplyPayoutOption is Engine.ApplyPayoutOption on the default rules.
func ApplyPayoutOption(basePension decimal.Decimal, election domain.PayoutElection, memberAge int, contributions decimal.Decimal) (domain.OptionResult, error) {
	return Default().ApplyPayoutOption(basePension, election, memberAge, contributions)
}

// ProjectCOLA is Engine.ProjectCOLA on the default rules.
func ProjectCOLA(startingPension decimal.Decimal, params domain.COLAParameters, years int) ([]domain.COLARow, error) {
	return Default().ProjectCOLA(startingPension, params, years)
}

// EstimateSocialSecurity is Engine.EstimateSocialSecurity on the default rules.
func EstimateSocialSecurity(profile domain.SocialSecurityProfile) (domain.SocialSecurityResult, error) {
	return Default().EstimateSocialSecurity(profile)
}

// ProjectScenario is Engine.ProjectScenario on the default rules.
func ProjectScenario(params domain.ScenarioParameters) (*domain.ProjectionResult, error) {
	return Default().ProjectScenario(params)
}
