package output

import (
	"github.com/rpgo/pension-engine/internal/compare"
	"github.com/rpgo/pension-engine/internal/domain"
)

// Report is what every formatter renders: either a set of independent
// projections or a comparison.
type Report struct {
	Title        string                     `json:"title"`
	RulesVersion string                     `json:"rules_version,omitempty"`
	Projections  []*domain.ProjectionResult `json:"projections,omitempty"`
	Comparison   *compare.Comparison        `json:"comparison,omitempty"`
}

// NewProjectionReport wraps one or more projections.
func NewProjectionReport(rulesVersion string, results ...*domain.ProjectionResult) *Report {
	return &Report{Title: "Pension Projection", RulesVersion: rulesVersion, Projections: results}
}

// NewComparisonReport wraps a comparison.
func NewComparisonReport(rulesVersion string, c *compare.Comparison) *Report {
	return &Report{Title: "Pension Scenario Comparison", RulesVersion: rulesVersion, Comparison: c}
}

// Scenarios returns the projections to render in order: the plain
// projections, or the base and every successful alternative of a
// comparison.
func (r *Report) Scenarios() []*domain.ProjectionResult {
	if r.Comparison == nil {
		return r.Projections
	}
	var out []*domain.ProjectionResult
	for _, o := range r.Comparison.Successful() {
		out = append(out, o.Result)
	}
	return out
}

// Failures returns the comparison alternatives that did not project.
func (r *Report) Failures() []compare.Outcome {
	if r.Comparison == nil {
		return nil
	}
	var out []compare.Outcome
	for _, o := range r.Comparison.Alternatives {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}
