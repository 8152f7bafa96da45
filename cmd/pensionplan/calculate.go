package main

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/internal/output"
)

// parseDecimal reads an optional decimal flag. Empty means zero.
func parseDecimal(flag, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return d, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func factorCmd(opts *globalOptions) *cobra.Command {
	var (
		group, era, service string
		age, scheduleTo     int
		asJSON              bool
	)
	cmd := &cobra.Command{
		Use:   "factor",
		Short: "Resolve the statutory benefit factor for a member",
		Example: `  pensionplan factor --group 2 --era pre --age 60 --service 30
  pensionplan factor --group 1 --era post --age 60 --service 25 --schedule-to 65`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			g, err := domain.ParsePlanGroup(group)
			if err != nil {
				return err
			}
			e, err := domain.ParseHireEra(era)
			if err != nil {
				return err
			}
			years, err := parseDecimal("service", service)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if scheduleTo > 0 {
				rows, err := engine.FactorSchedule(g, e, years, age, scheduleTo)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(out, rows)
				}
				fmt.Fprintf(out, "FACTOR SCHEDULE: %s/%s, %s years of service\n", g, e, years)
				fmt.Fprintf(out, "%-5s %10s\n", "Age", "Factor")
				for _, r := range rows {
					fmt.Fprintf(out, "%-5d %10s\n", r.Age, output.FormatPercentage(r.Factor))
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "not eligible at any age in range")
				}
				return nil
			}

			result, err := engine.ResolveBenefitFactor(g, age, years, e)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "Group:            %s (%s)\n", result.Group, result.HireEra)
			fmt.Fprintf(out, "Age / service:    %d / %s years\n", result.Age, result.ServiceYears)
			fmt.Fprintf(out, "Eligible:         %s\n", yesNo(result.Eligible))
			if !result.Eligible {
				fmt.Fprintf(out, "Reason:           %s\n", result.Reason)
				return nil
			}
			fmt.Fprintf(out, "Benefit factor:   %s\n", output.FormatPercentage(result.Factor))
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Plan group (1-4)")
	cmd.Flags().StringVar(&era, "era", "pre", "Hire era relative to the cutoff (pre, post)")
	cmd.Flags().IntVar(&age, "age", 0, "Age at retirement")
	cmd.Flags().StringVar(&service, "service", "0", "Creditable service years")
	cmd.Flags().IntVar(&scheduleTo, "schedule-to", 0, "Print the factor for every age from --age through this age")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func pensionCmd(opts *globalOptions) *cobra.Command {
	var (
		factor, service, salary string
		asJSON                  bool
	)
	cmd := &cobra.Command{
		Use:     "pension",
		Short:   "Compute the base pension from factor, service and average salary",
		Example: `  pensionplan pension --factor 0.025 --service 30 --salary 80000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			f, err := parseDecimal("factor", factor)
			if err != nil {
				return err
			}
			years, err := parseDecimal("service", service)
			if err != nil {
				return err
			}
			avg, err := parseDecimal("salary", salary)
			if err != nil {
				return err
			}
			result, err := engine.CalculateBasePension(f, years, avg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "Annual base pension:  %s\n", output.FormatCurrency(result.AnnualBase))
			fmt.Fprintf(out, "Monthly base pension: %s\n", output.FormatCurrency(result.MonthlyBase))
			if result.CappedAt80Percent {
				fmt.Fprintf(out, "Capped at 80%% of average salary (%s uncapped)\n", output.FormatCurrency(result.UncappedAmount))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&factor, "factor", "", "Benefit factor, e.g. 0.025")
	cmd.Flags().StringVar(&service, "service", "", "Creditable service years")
	cmd.Flags().StringVar(&salary, "salary", "", "Average annual salary")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("factor")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("salary")
	return cmd
}

func optionCmd(opts *globalOptions) *cobra.Command {
	var (
		base, kind, fraction, contributions string
		age, beneficiaryAge                 int
		asJSON                              bool
	)
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Apply a payout election to a base pension",
		Example: `  pensionplan option --base 60000 --election annuity_protection --age 60
  pensionplan option --base 60000 --election joint_survivor --fraction 0.5 --beneficiary-age 55 --age 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			annual, err := parseDecimal("base", base)
			if err != nil {
				return err
			}
			frac, err := parseDecimal("fraction", fraction)
			if err != nil {
				return err
			}
			contrib, err := parseDecimal("contributions", contributions)
			if err != nil {
				return err
			}
			election, err := domain.ElectionSpec{Kind: kind, Fraction: frac, BeneficiaryAge: beneficiaryAge}.Build()
			if err != nil {
				return err
			}
			result, err := engine.ApplyPayoutOption(annual, election, age, contrib)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "Election:         %s\n", result.Election)
			fmt.Fprintf(out, "Reduction:        %s\n", output.FormatPercentage(result.ReductionPercent))
			fmt.Fprintf(out, "Member pension:   %s/yr (%s/mo)\n",
				output.FormatCurrency(result.AnnualMemberPension), output.FormatCurrency(result.MonthlyMemberPension))
			if result.SurvivorFraction.IsPositive() {
				fmt.Fprintf(out, "Survivor pension: %s/yr (%s of member)\n",
					output.FormatCurrency(result.AnnualSurvivorPension), output.FormatPercentage(result.SurvivorFraction))
			}
			if result.SurvivorRefund.IsPositive() {
				fmt.Fprintf(out, "Refund on death:  %s\n", output.FormatCurrency(result.SurvivorRefund))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "Annual base pension")
	cmd.Flags().StringVar(&kind, "election", "full_allowance", "Payout election (full_allowance, annuity_protection, joint_survivor)")
	cmd.Flags().StringVar(&fraction, "fraction", "", "Joint survivor continuation fraction (default two-thirds)")
	cmd.Flags().IntVar(&beneficiaryAge, "beneficiary-age", 0, "Joint survivor beneficiary age")
	cmd.Flags().IntVar(&age, "age", 0, "Member age at retirement")
	cmd.Flags().StringVar(&contributions, "contributions", "", "Accumulated member contributions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func colaCmd(opts *globalOptions) *cobra.Command {
	var (
		pension, rate, baseCap, perYearCap string
		years                              int
		asJSON                             bool
	)
	cmd := &cobra.Command{
		Use:     "cola",
		Short:   "Project the capped-base cost-of-living adjustment",
		Example: `  pensionplan cola --pension 60000 --years 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			start, err := parseDecimal("pension", pension)
			if err != nil {
				return err
			}
			params := engine.Rules.COLA.Defaults()
			overrides := []struct {
				flag, value string
				dst         *decimal.Decimal
			}{
				{"rate", rate, &params.Rate},
				{"base-cap", baseCap, &params.BaseCap},
				{"per-year-cap", perYearCap, &params.PerYearCap},
			}
			for _, o := range overrides {
				if o.value == "" {
					continue
				}
				if *o.dst, err = parseDecimal(o.flag, o.value); err != nil {
					return err
				}
			}
			rows, err := engine.ProjectCOLA(start, params, years)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, map[string]any{"parameters": params, "rows": rows})
			}
			fmt.Fprintf(out, "COLA: %s on the first %s, at most %s per year\n",
				output.FormatPercentage(params.Rate), output.FormatCurrency(params.BaseCap), output.FormatCurrency(params.PerYearCap))
			fmt.Fprintf(out, "%-5s %14s %12s %14s %12s\n", "Year", "Starting", "Increase", "Ending", "Monthly")
			for _, r := range rows {
				fmt.Fprintf(out, "%-5d %14s %12s %14s %12s\n", r.Year,
					output.FormatCurrency(r.StartingPension), output.FormatCurrency(r.Increase),
					output.FormatCurrency(r.EndingPension), output.FormatCurrency(r.MonthlyEquivalent))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pension, "pension", "", "Starting annual pension")
	cmd.Flags().IntVar(&years, "years", 10, "Number of annual adjustments")
	cmd.Flags().StringVar(&rate, "rate", "", "COLA rate (default: statutory)")
	cmd.Flags().StringVar(&baseCap, "base-cap", "", "Pension amount the rate applies to (default: statutory)")
	cmd.Flags().StringVar(&perYearCap, "per-year-cap", "", "Maximum increase per year (default: rate x base cap)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("pension")
	return cmd
}

func ssCmd(opts *globalOptions) *cobra.Command {
	var (
		benefit, spouseBenefit, deceasedBenefit string
		wep, gpoPension                         string
		claimAge, birthYear, fra, fraMonths     int
		breakEvenLate                           int
		asJSON                                  bool
	)
	cmd := &cobra.Command{
		Use:   "ss",
		Short: "Estimate Social Security benefits at a claiming age",
		Example: `  pensionplan ss --benefit 2400 --birth-year 1965 --claim-age 62
  pensionplan ss --benefit 800 --birth-year 1965 --claim-age 67 --spouse-benefit 2600
  pensionplan ss --benefit 2400 --birth-year 1965 --claim-age 62 --break-even 70`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			full, err := parseDecimal("benefit", benefit)
			if err != nil {
				return err
			}
			profile := domain.SocialSecurityProfile{
				ClaimingAge:             claimAge,
				BirthYear:               birthYear,
				FullRetirementAge:       fra,
				FullRetirementAgeMonths: fraMonths,
				FullBenefit:             full,
			}
			if spouseBenefit != "" {
				v, err := parseDecimal("spouse-benefit", spouseBenefit)
				if err != nil {
					return err
				}
				profile.Spousal = &domain.SpousalClaim{SpouseFullBenefit: v}
			}
			if deceasedBenefit != "" {
				v, err := parseDecimal("deceased-benefit", deceasedBenefit)
				if err != nil {
					return err
				}
				profile.Survivor = &domain.SurvivorClaim{DeceasedBenefit: v}
			}
			if wep != "" {
				v, err := parseDecimal("wep", wep)
				if err != nil {
					return err
				}
				profile.Offsets = append(profile.Offsets, domain.Offset{Kind: domain.OffsetWEP, Fraction: v})
			}
			if gpoPension != "" {
				v, err := parseDecimal("gpo-pension", gpoPension)
				if err != nil {
					return err
				}
				profile.Offsets = append(profile.Offsets, engine.GPOOffsetFromPension(v))
			}

			result, err := engine.EstimateSocialSecurity(profile)
			if err != nil {
				return err
			}
			var breakEven *decimal.Decimal
			if breakEvenLate > 0 {
				age, err := engine.ClaimingBreakEvenAge(profile, claimAge, breakEvenLate)
				if err != nil {
					return err
				}
				breakEven = &age
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, struct {
					domain.SocialSecurityResult
					BreakEvenAge *decimal.Decimal `json:"break_even_age,omitempty"`
				}{result, breakEven})
			}
			fmt.Fprintf(out, "Claiming age:      %d (%+d months from full retirement age)\n", result.ClaimingAge, result.MonthsFromFRA)
			fmt.Fprintf(out, "Adjustment factor: %s\n", result.AdjustmentFactor.StringFixed(4))
			fmt.Fprintf(out, "Own benefit:       %s/mo\n", output.FormatCurrency(result.MonthlyBenefit))
			if result.SpousalBenefit.IsPositive() {
				fmt.Fprintf(out, "Spousal benefit:   %s/mo\n", output.FormatCurrency(result.SpousalBenefit))
			}
			if result.SurvivorBenefit.IsPositive() {
				fmt.Fprintf(out, "Survivor benefit:  %s/mo\n", output.FormatCurrency(result.SurvivorBenefit))
			}
			if result.OffsetReduction.IsPositive() {
				fmt.Fprintf(out, "Offsets:           -%s/mo\n", output.FormatCurrency(result.OffsetReduction))
			}
			fmt.Fprintf(out, "Total:             %s/mo, %s/yr\n", output.FormatCurrency(result.MonthlyTotal), output.FormatCurrency(result.AnnualTotal))
			if breakEven != nil {
				fmt.Fprintf(out, "Break-even:        claiming at %d catches up with %d at age %s\n", breakEvenLate, claimAge, breakEven.StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&benefit, "benefit", "", "Monthly benefit at full retirement age")
	cmd.Flags().IntVar(&claimAge, "claim-age", 67, "Claiming age (62-70)")
	cmd.Flags().IntVar(&birthYear, "birth-year", 0, "Birth year, used to derive full retirement age")
	cmd.Flags().IntVar(&fra, "fra", 0, "Full retirement age in years (overrides --birth-year)")
	cmd.Flags().IntVar(&fraMonths, "fra-months", 0, "Additional months of full retirement age")
	cmd.Flags().StringVar(&spouseBenefit, "spouse-benefit", "", "Spouse's full benefit, to claim a spousal benefit")
	cmd.Flags().StringVar(&deceasedBenefit, "deceased-benefit", "", "Deceased spouse's benefit, to claim a survivor benefit")
	cmd.Flags().StringVar(&wep, "wep", "", "Windfall elimination reduction as a fraction of the own benefit")
	cmd.Flags().StringVar(&gpoPension, "gpo-pension", "", "Monthly non-covered pension subject to the government pension offset")
	cmd.Flags().IntVar(&breakEvenLate, "break-even", 0, "Also compute the break-even age against claiming at this later age")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("benefit")
	return cmd
}
