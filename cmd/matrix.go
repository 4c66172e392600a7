package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/attunehq/vernier/logging"
	"github.com/attunehq/vernier/matrix"
)

var (
	// Flags shared by the whole matrix command family
	matrixImage         string
	matrixRepo          string
	matrixRuns          int
	matrixWarmup        int
	matrixIgnoreFailure bool
	matrixOutputDir     string
	matrixName          string

	// Parent command only
	matrixConfigs string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix [flags] -- COMMAND",
	Short: "Benchmark a command across CPU/RAM configurations in Docker",
	Long: `Benchmark a command across CPU/RAM configurations in Docker containers.

Each configuration gets a fresh container pinned to the given CPU count and
memory limit. A static vernier binary is copied in and run there, so the
statistics match what vernier reports natively. Results are summarized in a
table, scaling graphs, and JSON/CSV/Markdown files.`,
	Example: `  vernier matrix \
    --image ubuntu:24.04 \
    --repo https://github.com/BurntSushi/ripgrep \
    --configs "2:8,4:16,8:32" \
    -- 'cargo build --release'`,
	Args: cobra.ExactArgs(1),
	RunE: runMatrix,
}

func init() {
	pf := matrixCmd.PersistentFlags()
	pf.StringVar(&matrixImage, "image", "", "Docker image to run benchmarks in (required)")
	pf.StringVar(&matrixRepo, "repo", "", "Git repository cloned into the container before benchmarking")
	pf.IntVarP(&matrixRuns, "runs", "n", 10, "Timed runs per configuration")
	pf.IntVarP(&matrixWarmup, "warmup", "w", 0, "Warmup runs per configuration")
	pf.BoolVarP(&matrixIgnoreFailure, "ignore-failure", "i", false, "Keep benchmarking when the command exits non-zero")
	pf.StringVar(&matrixOutputDir, "output-dir", "./matrix-results", "Directory for summary files")
	pf.StringVar(&matrixName, "name", "", "Session name for reports (default: timestamp)")
	matrixCmd.MarkPersistentFlagRequired("image")

	matrixCmd.Flags().StringVar(&matrixConfigs, "configs", "", `CPU:RAM pairs to test, e.g. "2:8,4:16" (required)`)
	matrixCmd.MarkFlagRequired("configs")

	rootCmd.AddCommand(matrixCmd)
}

func runMatrix(cmd *cobra.Command, args []string) error {
	configs, err := matrix.ParseConfigs(matrixConfigs)
	if err != nil {
		return err
	}

	cfg := newMatrixConfig(args[0], configs)
	cfg.Type = matrix.BenchmarkTypeCustom
	return runMatrixBenchmark(cfg)
}

// newMatrixConfig assembles the session config shared by the matrix command
// family from the persistent flags.
func newMatrixConfig(command string, configs []matrix.ResourceConfig) matrix.Config {
	name := matrixName
	if name == "" {
		name = fmt.Sprintf("matrix_%s", time.Now().Format("20060102_150405"))
	}
	return matrix.Config{
		Image:         matrixImage,
		RepoURL:       matrixRepo,
		Command:       command,
		Runs:          matrixRuns,
		Warmup:        matrixWarmup,
		IgnoreFailure: matrixIgnoreFailure,
		OutputDir:     matrixOutputDir,
		Name:          name,
		Configs:       configs,
	}
}

// runMatrixBenchmark drives a matrix session end to end: build the static
// binary, run every configuration, then print and save the summaries.
func runMatrixBenchmark(cfg matrix.Config) error {
	logging.Setup(logging.Config{Debug: debug})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tmpBinary := filepath.Join(os.TempDir(), "vernier-linux")
	fmt.Println("Building static vernier binary...")
	if err := matrix.BuildStaticBinary(tmpBinary); err != nil {
		return err
	}
	defer os.Remove(tmpBinary)

	result, runErr := matrix.Run(ctx, cfg, tmpBinary)

	// Summarize whatever completed, even after an interrupt.
	if result != nil && len(result.Results) > 0 {
		matrix.PrintSummaryTable(result)
		if cfg.Type == matrix.BenchmarkTypeAll {
			matrix.PrintAllGraphs(result)
		} else {
			matrix.PrintMeanTimeGraph(result)
		}
		saveMatrixSummaries(result)
	}
	if runErr != nil {
		return runErr
	}

	if failed := countFailed(result); failed > 0 {
		return fmt.Errorf("%d of %d configurations failed", failed, len(result.Results))
	}
	return nil
}

func saveMatrixSummaries(result *matrix.Result) {
	prefix := fmt.Sprintf("%s_%s_summary", result.Config.RepoName(), result.Config.Type)

	jsonPath := filepath.Join(result.Config.OutputDir, prefix+".json")
	if err := matrix.SaveSummaryJSON(result, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save JSON summary: %v\n", err)
	} else {
		fmt.Printf("JSON summary saved to: %s\n", jsonPath)
	}

	csvPath := filepath.Join(result.Config.OutputDir, prefix+".csv")
	if err := matrix.SaveSummaryCSV(result, csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save CSV summary: %v\n", err)
	} else {
		fmt.Printf("CSV summary saved to: %s\n", csvPath)
	}

	mdPath := filepath.Join(result.Config.OutputDir, prefix+".md")
	if err := matrix.SaveSummaryMarkdown(result, mdPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save Markdown report: %v\n", err)
	} else {
		fmt.Printf("Markdown report saved to: %s\n", mdPath)
	}
}

func countFailed(result *matrix.Result) int {
	n := 0
	for _, r := range result.Results {
		if !r.Success {
			n++
		}
	}
	return n
}
