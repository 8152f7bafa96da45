package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rpgo/pension-engine/internal/calculation"
	"github.com/rpgo/pension-engine/internal/compare"
	"github.com/rpgo/pension-engine/internal/config"
	"github.com/rpgo/pension-engine/internal/domain"
	"github.com/rpgo/pension-engine/internal/output"
)

// reportOptions are the output flags shared by project and compare.
type reportOptions struct {
	format    string
	outputDir string
}

func (r *reportOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&r.format, "format", "f", "console", "Output format (console, csv, detailed-csv, html, json)")
	cmd.Flags().StringVarP(&r.outputDir, "output-dir", "o", "", "Write the report to a timestamped file in this directory instead of stdout")
}

func (r *reportOptions) write(cmd *cobra.Command, report *output.Report) error {
	f, err := output.GetFormatterByName(r.format)
	if err != nil {
		return err
	}
	if r.outputDir == "" {
		return output.Write(cmd.OutOrStdout(), f, report)
	}
	filename, err := output.WriteFormatted(f, report, r.outputDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
	return nil
}

func loadScenarios(engine *calculation.Engine, filename string) ([]domain.ScenarioParameters, error) {
	return config.NewInputParser(engine.Rules).LoadFromFile(filename)
}

func projectCmd(opts *globalOptions) *cobra.Command {
	var (
		ro   reportOptions
		only string
	)
	cmd := &cobra.Command{
		Use:   "project [scenario-file]",
		Short: "Project every scenario in a file year by year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			scenarios, err := loadScenarios(engine, args[0])
			if err != nil {
				return err
			}

			var results []*domain.ProjectionResult
			for _, p := range scenarios {
				if only != "" && p.Name != only {
					continue
				}
				result, err := engine.ProjectScenario(p)
				if err != nil {
					return fmt.Errorf("scenario %q: %w", p.Name, err)
				}
				results = append(results, result)
			}
			if len(results) == 0 {
				return fmt.Errorf("scenario %q not found in %s", only, args[0])
			}
			return ro.write(cmd, output.NewProjectionReport(engine.Rules.Version, results...))
		},
	}
	ro.register(cmd)
	cmd.Flags().StringVar(&only, "scenario", "", "Project only the named scenario")
	return cmd
}

func compareCmd(opts *globalOptions) *cobra.Command {
	var (
		ro        reportOptions
		elections bool
	)
	cmd := &cobra.Command{
		Use:   "compare [scenario-file]",
		Short: "Compare scenarios against the first one in the file",
		Long: `Compare scenarios against a base.

The first scenario in the file is the base and every other scenario is an
alternative. With --elections the base is instead compared under each payout
election.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			scenarios, err := loadScenarios(engine, args[0])
			if err != nil {
				return err
			}

			ce := compare.New(engine)
			var c *compare.Comparison
			if elections {
				c, err = ce.CompareElections(cmd.Context(), scenarios[0])
			} else {
				if len(scenarios) < 2 {
					return fmt.Errorf("%s has one scenario; add alternatives or use --elections", args[0])
				}
				c, err = ce.Compare(cmd.Context(), scenarios[0], scenarios[1:]...)
			}
			if err != nil {
				return err
			}
			return ro.write(cmd, output.NewComparisonReport(engine.Rules.Version, c))
		},
	}
	ro.register(cmd)
	cmd.Flags().BoolVar(&elections, "elections", false, "Compare the first scenario under every payout election")
	return cmd
}

func validateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario-file]",
		Short: "Validate a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			scenarios, err := loadScenarios(engine, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scenario file %s is valid (%d scenarios)\n", args[0], len(scenarios))
			return nil
		},
	}
}

func exampleCmd() *cobra.Command {
	var rules bool
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print an example scenario file",
		Long:  "Print an example scenario file, or with --rule-tables the embedded statutory rule tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rules {
				_, err := cmd.OutOrStdout().Write(config.DefaultRulesYAML())
				return err
			}
			data, err := config.MarshalScenarios(exampleScenarios()...)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&rules, "rule-tables", false, "Print the rule tables instead")
	return cmd
}

// exampleScenarios is a group 2 member retiring now under the full allowance,
// and the same member working three more years and taking a joint survivor
// election with Social Security and a deferred account.
func exampleScenarios() []domain.ScenarioParameters {
	statutory := domain.COLAParameters{
		Rate:       decimal.RequireFromString("0.03"),
		BaseCap:    decimal.NewFromInt(13000),
		PerYearCap: decimal.NewFromInt(390),
	}
	member := domain.MemberProfile{
		Age:                      60,
		BirthYear:                1965,
		Group:                    domain.Group2,
		HireEra:                  domain.PreCutoff,
		ServiceYears:             decimal.NewFromInt(30),
		AverageSalary:            decimal.NewFromInt(80000),
		AccumulatedContributions: decimal.NewFromInt(150000),
	}
	now := domain.ScenarioParameters{
		Name:         "retire_now",
		Member:       member,
		Election:     domain.FullAllowance{},
		COLA:         statutory,
		Horizon:      domain.Horizon{StartAge: 60, EndAge: 90},
		FilingStatus: domain.FilingSingle,
	}
	later := domain.ScenarioParameters{
		Name:     "work_to_63_joint_survivor",
		Member:   member,
		Election: domain.JointSurvivor{Fraction: decimal.RequireFromString("0.6667"), BeneficiaryAge: 61},
		COLA:     statutory,
		SocialSecurity: &domain.SocialSecurityProfile{
			ClaimingAge: 67,
			BirthYear:   1965,
			FullBenefit: decimal.NewFromInt(1900),
		},
		Supplemental: []domain.IncomeSource{{
			Name:           "deferred_comp",
			Kind:           domain.IncomeAccountWithdrawal,
			Balance:        decimal.NewFromInt(250000),
			WithdrawalRate: decimal.RequireFromString("0.04"),
			GrowthRate:     decimal.RequireFromString("0.05"),
			TaxDeferred:    true,
		}},
		Horizon:      domain.Horizon{StartAge: 63, EndAge: 90},
		FilingStatus: domain.FilingMarriedJoint,
	}
	return []domain.ScenarioParameters{now, later}
}
