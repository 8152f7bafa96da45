package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/rpgo/pension-engine/internal/calculation"
	"github.com/rpgo/pension-engine/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	rulesFile string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "pensionplan",
		Short: "Public pension benefit calculator",
		Long: `Benefit computation and projection for a defined-benefit public pension plan.

Resolves statutory benefit factors, computes the base pension and payout
election, projects capped-base COLAs and Social Security, and builds
multi-year income projections that can be compared side by side.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "Path to a rule table YAML file (default: embedded statutory tables)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log calculation details to stderr")

	cmd.AddCommand(
		factorCmd(opts),
		pensionCmd(opts),
		optionCmd(opts),
		colaCmd(opts),
		ssCmd(opts),
		projectCmd(opts),
		compareCmd(opts),
		validateCmd(opts),
		exampleCmd(),
		serveCmd(opts),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pensionplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

// newLogger builds the colored stderr logger used by the CLI and server.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}

// newEngine loads the rule tables and, with --verbose, attaches a logger.
func (o *globalOptions) newEngine(cmd *cobra.Command) (*calculation.Engine, error) {
	rules, err := config.LoadRulesFile(o.rulesFile)
	if err != nil {
		return nil, err
	}
	engine := calculation.NewEngine(rules)
	if o.verbose {
		engine.SetLogger(calculation.NewSlogLogger(newLogger(cmd.ErrOrStderr(), true)))
	}
	return engine, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
