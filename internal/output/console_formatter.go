package output

import (
	"fmt"
	"strings"

	"github.com/rpgo/pension-engine/internal/compare"
	"github.com/rpgo/pension-engine/internal/domain"
)

// ConsoleFormatter renders projections and comparisons as fixed-width text.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString(strings.ToUpper(report.Title) + "\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	if report.RulesVersion != "" {
		fmt.Fprintf(&sb, "Rule tables: %s\n", report.RulesVersion)
	}

	for _, r := range report.Scenarios() {
		sb.WriteString("\n")
		writeProjection(&sb, r)
	}

	if report.Comparison != nil {
		writeComparison(&sb, report.Comparison)
	}
	for _, f := range report.Failures() {
		fmt.Fprintf(&sb, "\nFAILED %s: %s\n", f.Name, f.Error)
	}
	return []byte(sb.String()), nil
}

func writeProjection(sb *strings.Builder, r *domain.ProjectionResult) {
	fmt.Fprintf(sb, "SCENARIO: %s\n", r.Name)
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	fmt.Fprintf(sb, "Benefit factor:    %s (%s, age %d, %s years)\n",
		FormatPercentage(r.Factor.Factor), r.Factor.Table, r.Factor.Age, r.Benefit.ServiceYears.StringFixed(2))
	capped := ""
	if r.Benefit.CappedAt80Percent {
		capped = " (capped)"
	}
	fmt.Fprintf(sb, "Base pension:      %s/yr, %s/mo%s\n", FormatCurrency(r.Benefit.AnnualBase), FormatCurrency(r.Benefit.MonthlyBase), capped)
	fmt.Fprintf(sb, "Payout election:   %s, reduction %s\n", r.Option.Election, FormatPercentage(r.Option.ReductionPercent))
	fmt.Fprintf(sb, "Member pension:    %s/yr, %s/mo\n", FormatCurrency(r.Option.AnnualMemberPension), FormatCurrency(r.Option.MonthlyMemberPension))
	if r.Option.AnnualSurvivorPension.IsPositive() {
		fmt.Fprintf(sb, "Survivor pension:  %s/yr (%s of member)\n", FormatCurrency(r.Option.AnnualSurvivorPension), FormatPercentage(r.Option.SurvivorFraction))
	}
	if r.Option.SurvivorRefund.IsPositive() {
		fmt.Fprintf(sb, "Survivor refund:   %s\n", FormatCurrency(r.Option.SurvivorRefund))
	}
	if ss := r.SocialSecurity; ss != nil {
		fmt.Fprintf(sb, "Social Security:   %s/mo from age %d (factor %s)\n", FormatCurrency(ss.MonthlyTotal), ss.ClaimingAge, ss.AdjustmentFactor.StringFixed(4))
	}
	sb.WriteString("\n")

	fmt.Fprintf(sb, "%-5s %12s %12s %12s %12s %11s %12s\n", "Age", "Pension", "Social Sec", "Supplement", "Total", "Tax", "Net")
	for _, row := range r.Rows {
		fmt.Fprintf(sb, "%-5d %12s %12s %12s %12s %11s %12s\n",
			row.Age,
			FormatCurrency(row.Pension),
			FormatCurrency(row.SocialSecurity),
			FormatCurrency(row.Supplemental),
			FormatCurrency(row.TotalAnnual),
			FormatCurrency(row.EstimatedTax),
			FormatCurrency(row.NetIncome))
	}
	sb.WriteString("\n")

	s := r.Summary
	fmt.Fprintf(sb, "Lifetime income:   %s (net %s, average tax %s)\n", FormatCurrency(s.TotalLifetimeIncome), FormatCurrency(s.NetLifetimeIncome), FormatPercentage(s.AverageTaxRate))
	fmt.Fprintf(sb, "Replacement ratio: %s\n", FormatPercentage(s.ReplacementRatio))
	fmt.Fprintf(sb, "Scores:            optimization %s, risk %s, flexibility %s\n",
		s.OptimizationScore.StringFixed(2), s.RiskScore.StringFixed(2), s.FlexibilityScore.StringFixed(2))
	for _, w := range r.Warnings {
		fmt.Fprintf(sb, "WARNING: %s\n", w)
	}
}

func writeComparison(sb *strings.Builder, c *compare.Comparison) {
	sb.WriteString("\nCOMPARISON TO BASE (" + c.Base.Name + ")\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	fmt.Fprintf(sb, "%-32s %14s %16s %9s %9s\n", "Scenario", "1st Year Net", "Lifetime Net", "Risk", "Optim.")
	for _, d := range c.Diffs {
		fmt.Fprintf(sb, "%-32s %14s %16s %9s %9s\n",
			d.Name,
			FormatSigned(d.FirstYearNet),
			FormatSigned(d.NetLifetimeIncome),
			d.RiskScore.StringFixed(2),
			d.OptimizationScore.StringFixed(2))
		if d.BreakEven != nil {
			fmt.Fprintf(sb, "  cumulative break-even at age %s, %s ahead afterwards\n", d.BreakEven.Age.StringFixed(1), leaderName(c, d))
		}
	}

	if len(c.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		for _, rec := range c.Recommendations {
			fmt.Fprintf(sb, "  %-9s %s: %s\n", rec.Category, rec.Scenario, RecommendationDetail(rec))
		}
	}
}

func leaderName(c *compare.Comparison, d compare.Diff) string {
	if d.BreakEven.Leader == "a" {
		return c.Base.Name
	}
	return d.Name
}
