package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/rgehrsitz/assetplan/internal/config"
	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/rgehrsitz/assetplan/internal/output"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries process settings and shared collaborators to the subcommands.
type app struct {
	settings *config.Settings
	logger   *logrus.Logger
	parser   *config.InputParser
	now      func() time.Time
}

func (a *app) dateParser() calculation.DateParser {
	p := calculation.NewDateParser()
	p.Mode = a.settings.DateMode
	p.Now = a.now
	p.Logger = a.logger
	return p
}

func (a *app) loanEngine() *calculation.LoanEngine {
	e := calculation.NewLoanEngine()
	e.SetLogger(a.logger)
	e.Dates = a.dateParser()
	return e
}

func (a *app) policies(cmd *cobra.Command) (*calculation.TaxPolicyProvider, error) {
	file, _ := cmd.Flags().GetString("policies")
	if file == "" {
		file = a.settings.TaxPolicyFile
	}
	if file == "" {
		return calculation.DefaultTaxPolicyProvider(), nil
	}
	loaded, err := a.parser.LoadTaxPolicies(file)
	if err != nil {
		return nil, err
	}
	provider, err := calculation.NewTaxPolicyProvider(loaded...)
	if err != nil {
		return nil, fmt.Errorf("invalid tax policies in %s: %w", file, err)
	}
	a.logger.Debugf("loaded tax policies for years %v from %s", provider.Years(), file)
	return provider, nil
}

// render formats reports with the --format flag and writes them to --output-file
// or the command's output.
func (a *app) render(cmd *cobra.Command, reports ...interface{}) error {
	name, _ := cmd.Flags().GetString("format")
	f, err := output.GetFormatterByName(name)
	if err != nil {
		return err
	}
	var report interface{} = reports
	if len(reports) == 1 {
		report = reports[0]
	}
	f = output.Sequence(f)

	if path, _ := cmd.Flags().GetString("output-file"); path != "" {
		written, err := output.WriteFormatted(f, report, path, a.now())
		if err != nil {
			return err
		}
		a.logger.Infof("wrote %s report to %s", f.Name(), written)
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", written)
		return nil
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger
}

func newRootCmd() *cobra.Command {
	a := &app{parser: config.NewInputParser(), now: time.Now}

	root := &cobra.Command{
		Use:           "assetplan",
		Short:         "Asset depreciation, loan and liquidation scenario calculator",
		Long:          "Depreciation schedules, loan amortization and payoff, sale recapture and liquidate-and-replace scenario analysis for business assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			settings, err := config.LoadSettings(files...)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				levelName, _ := cmd.Flags().GetString("log-level")
				if settings.LogLevel, err = logrus.ParseLevel(levelName); err != nil {
					return err
				}
			}
			if strict, _ := cmd.Flags().GetBool("strict-dates"); strict {
				settings.DateMode = calculation.DateStrict
			}
			if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
				day, err := domain.ParseDate(asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of date: %w", err)
				}
				a.now = func() time.Time { return day.Time }
			}
			a.settings = settings
			a.logger = newLogger(cmd.ErrOrStderr(), settings.LogLevel)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("format", "f", "console", "Output format (console, json, csv)")
	flags.StringP("output-file", "o", "", "Write the report to this file, or to a timestamped file when given a directory")
	flags.String("env-file", "", "Path to a .env file (default: .env if it exists)")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Bool("strict-dates", false, "Reject malformed dates instead of falling back to today")
	flags.String("as-of", "", "Run calculations as of this date (YYYY-MM-DD) instead of today")
	flags.String("policies", "", "Tax policy YAML file (default: built-in policies)")

	root.AddCommand(
		scheduleCmd(a),
		amortizeCmd(a),
		payoffCmd(a),
		saleCmd(a),
		scenarioCmd(a),
		loanImpactCmd(a),
		policyCmd(a),
		validateCmd(a),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "assetplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
