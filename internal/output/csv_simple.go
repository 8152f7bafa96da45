package output

import (
	"bytes"
	"encoding/csv"
)

// CSVSummarizer implements the summary CSV output (one row per scenario).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Scenario", "Election", "RetirementAge", "EndAge", "BenefitFactor", "BasePension", "ReductionPercent",
		"MemberPension", "SurvivorPension", "FirstYearIncome", "FirstYearNetIncome", "TotalLifetimeIncome", "NetLifetimeIncome",
		"TotalEstimatedTax", "ReplacementRatio", "OptimizationScore", "RiskScore", "FlexibilityScore"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range report.Scenarios() {
		s := r.Summary
		row := []string{
			r.Name,
			string(r.Option.Election),
			intToString(s.RetirementAge),
			intToString(s.EndAge),
			r.Factor.Factor.String(),
			r.Benefit.AnnualBase.StringFixed(2),
			r.Option.ReductionPercent.StringFixed(4),
			r.Option.AnnualMemberPension.StringFixed(2),
			r.Option.AnnualSurvivorPension.StringFixed(2),
			s.FirstYearIncome.StringFixed(2),
			s.FirstYearNetIncome.StringFixed(2),
			s.TotalLifetimeIncome.StringFixed(2),
			s.NetLifetimeIncome.StringFixed(2),
			s.TotalEstimatedTax.StringFixed(2),
			s.ReplacementRatio.StringFixed(4),
			s.OptimizationScore.StringFixed(2),
			s.RiskScore.StringFixed(2),
			s.FlexibilityScore.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
