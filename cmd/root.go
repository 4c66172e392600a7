package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/attunehq/vernier/benchmark"
	"github.com/attunehq/vernier/export"
	"github.com/attunehq/vernier/logging"
	"github.com/attunehq/vernier/suite"
	"github.com/attunehq/vernier/ux"
)

var (
	// Version is set at build time
	Version = "dev"

	// Flags for root command (single benchmark session)
	runs          int
	minRuns       int
	maxRuns       int
	warmup        int
	paramLists    []string
	paramScans    []string
	commandNames  []string
	setupCmd      string
	prepareCmd    string
	cleanupCmd    string
	shellOverride string
	envFlags      []string
	ignoreFailure bool
	showOutput    bool
	exportJSON    string
	exportCSV     string
	exportMD      string
	exportAdoc    string
	styleFlag     string
	timeUnitFlag  string
	suiteFile     string
	sessionName   string
	debug         bool
)

var rootCmd = &cobra.Command{
	Use:   "vernier [flags] COMMAND...",
	Short: "A CLI tool for benchmarking commands",
	Long: `Vernier benchmarks shell commands: it runs them repeatedly, measures wall
and CPU time, and reports statistics with outlier detection and a
relative-speed ranking.

Benchmark two commands against each other:
  vernier 'sleep 0.3' 'sleep 0.5'

Sweep a parameter and export the results:
  vernier -P threads=1:8 --export-json build.json 'make -j{threads}'

Run benchmarks across multiple CPU/RAM configurations:
  vernier matrix --image ubuntu:22.04 --configs "2:8,4:16" -- 'make build'`,
	Version:      Version,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runBenchmark,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string (called from main)
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&runs, "runs", "n", 0, "Exact number of timed runs per command")
	f.IntVar(&minRuns, "min-runs", 0, "Minimum number of timed runs per command (default 10)")
	f.IntVar(&maxRuns, "max-runs", 0, "Maximum number of timed runs per command")
	f.IntVarP(&warmup, "warmup", "w", 0, "Number of untimed warmup runs per command")
	f.StringArrayVarP(&paramLists, "parameter-list", "L", nil, "Parameter with explicit values: NAME=v1,v2,... (repeatable)")
	f.StringArrayVarP(&paramScans, "parameter-scan", "P", nil, "Parameter swept over a numeric range: NAME=MIN:MAX[:STEP] (repeatable)")
	f.StringArrayVar(&commandNames, "command-name", nil, "Display name for the corresponding command (repeatable, in order)")
	f.StringVar(&setupCmd, "setup", "", "Command run once per benchmark before all runs")
	f.StringVar(&prepareCmd, "prepare", "", "Command run before every timed and warmup run")
	f.StringVar(&cleanupCmd, "cleanup", "", "Command run once per benchmark after all runs")
	f.StringVarP(&shellOverride, "shell", "S", "", "Shell to run commands through, e.g. \"bash --norc\"")
	f.StringArrayVar(&envFlags, "env", nil, "Extra environment variable KEY=VALUE for spawned commands (repeatable)")
	f.BoolVarP(&ignoreFailure, "ignore-failure", "i", false, "Keep benchmarking when a command exits non-zero")
	f.BoolVar(&showOutput, "show-output", false, "Pass command stdout/stderr through instead of discarding them")
	f.StringVar(&exportJSON, "export-json", "", "Write full results to FILE as JSON")
	f.StringVar(&exportCSV, "export-csv", "", "Write summary statistics to FILE as CSV")
	f.StringVar(&exportMD, "export-markdown", "", "Write a summary table to FILE as Markdown")
	f.StringVar(&exportAdoc, "export-asciidoc", "", "Write a summary table to FILE as AsciiDoc")
	f.StringVar(&styleFlag, "style", "auto", "Output style: auto, basic, full, or nocolor")
	f.StringVarP(&timeUnitFlag, "time-unit", "u", "", "Unit for reported times: s or ms (default: picked per result)")
	f.StringVarP(&suiteFile, "file", "f", "", "Read commands and settings from a YAML suite file")
	f.StringVar(&sessionName, "name", "", "Session name recorded in export metadata")

	// Persistent so the matrix subcommands get it too.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	logging.Setup(logging.Config{Debug: debug})

	// No commands anywhere means the user wants help, not an error.
	if len(args) == 0 && suiteFile == "" {
		return cmd.Help()
	}

	opts, suiteExport, err := buildOptions(cmd, args)
	if err != nil {
		return err
	}

	style, err := ux.ParseStyle(styleFlag)
	if err != nil {
		return err
	}
	reporter := ux.NewReporter(os.Stderr, style.Detect(os.Stderr), opts.PreferredUnit)
	opts.Progress = reporter

	exporters := export.NewManager(export.Metadata{Tool: "vernier", Version: Version})
	exporters.Add(export.JSON, firstNonEmpty(exportJSON, suiteExport.JSON))
	exporters.Add(export.CSV, firstNonEmpty(exportCSV, suiteExport.CSV))
	exporters.Add(export.Markdown, firstNonEmpty(exportMD, suiteExport.Markdown))
	exporters.Add(export.AsciiDoc, firstNonEmpty(exportAdoc, suiteExport.AsciiDoc))
	if !exporters.Empty() {
		// Export paths must be usable before anything runs.
		if err := exporters.Validate(); err != nil {
			return err
		}
		opts.OnResult = exporters.Flush
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := benchmark.Run(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}

	reporter.Summary(report)
	return nil
}

// buildOptions merges the suite file (when given) with command-line flags.
// Flags win; suite commands and parameters apply only when none are given on
// the command line.
func buildOptions(cmd *cobra.Command, args []string) (benchmark.Options, suite.Export, error) {
	var opts benchmark.Options
	var suiteExport suite.Export

	if suiteFile != "" {
		f, err := suite.Load(suiteFile)
		if err != nil {
			return opts, suiteExport, err
		}
		opts, err = f.Options()
		if err != nil {
			return opts, suiteExport, err
		}
		suiteExport = f.Export
	}

	if len(args) > 0 {
		opts.Commands = nil
		for i, a := range args {
			t := benchmark.CommandTemplate{Command: a}
			if i < len(commandNames) {
				t.Name = commandNames[i]
			}
			opts.Commands = append(opts.Commands, t)
		}
	}
	for i := range opts.Commands {
		if cmd.Flags().Changed("setup") {
			opts.Commands[i].Setup = setupCmd
		}
		if cmd.Flags().Changed("prepare") {
			opts.Commands[i].Prepare = prepareCmd
		}
		if cmd.Flags().Changed("cleanup") {
			opts.Commands[i].Cleanup = cleanupCmd
		}
	}

	if len(paramLists) > 0 || len(paramScans) > 0 {
		opts.Params = nil
		for _, arg := range paramLists {
			def, err := benchmark.ParseParameterList(arg)
			if err != nil {
				return opts, suiteExport, err
			}
			opts.Params = append(opts.Params, def)
		}
		for _, arg := range paramScans {
			def, err := benchmark.ParseParameterScan(arg)
			if err != nil {
				return opts, suiteExport, err
			}
			opts.Params = append(opts.Params, def)
		}
	}

	if cmd.Flags().Changed("runs") || cmd.Flags().Changed("min-runs") || cmd.Flags().Changed("max-runs") {
		opts.Runs = benchmark.RunCounts{}
		if cmd.Flags().Changed("runs") {
			opts.Runs.Exact = runs
		}
		if cmd.Flags().Changed("min-runs") {
			opts.Runs.Min = minRuns
		}
		if cmd.Flags().Changed("max-runs") {
			opts.Runs.Max = maxRuns
		}
	}
	if cmd.Flags().Changed("warmup") {
		opts.Warmup = warmup
	}
	if cmd.Flags().Changed("shell") {
		opts.Shell = shellOverride
	}
	if cmd.Flags().Changed("ignore-failure") {
		opts.IgnoreFailure = ignoreFailure
	}
	if cmd.Flags().Changed("name") {
		opts.Name = sessionName
	}
	opts.ShowOutput = showOutput

	// Later entries win when keys collide, so flag values override the suite.
	for _, arg := range envFlags {
		v, err := benchmark.ParseEnvVar(arg)
		if err != nil {
			return opts, suiteExport, err
		}
		opts.Env = append(opts.Env, v)
	}

	if timeUnitFlag != "" {
		u, err := benchmark.ParseTimeUnit(timeUnitFlag)
		if err != nil {
			return opts, suiteExport, err
		}
		opts.PreferredUnit = &u
	}

	return opts, suiteExport, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
