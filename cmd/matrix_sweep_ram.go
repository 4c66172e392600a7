package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attunehq/vernier/matrix"
)

var (
	sweepRAMRams string
	sweepRAMCpu  int
)

var sweepRAMCmd = &cobra.Command{
	Use:   "sweep-ram [flags] -- COMMAND",
	Short: "Benchmark across RAM sizes with fixed CPU count",
	Long: `Benchmark a command while varying the memory limit and holding the
CPU count constant, to see whether it is memory-bound.`,
	Example: `  vernier matrix sweep-ram \
    --image ubuntu:24.04 \
    --rams "8,16,32,64" \
    --cpu 4 \
    -- 'make -j build'`,
	Args: cobra.ExactArgs(1),
	RunE: runSweepRAM,
}

func init() {
	sweepRAMCmd.Flags().StringVar(&sweepRAMRams, "rams", "", `RAM sizes in GB to test, e.g. "8,16,32" (required)`)
	sweepRAMCmd.Flags().IntVar(&sweepRAMCpu, "cpu", 0, "Fixed CPU count (required)")
	sweepRAMCmd.MarkFlagRequired("rams")
	sweepRAMCmd.MarkFlagRequired("cpu")

	matrixCmd.AddCommand(sweepRAMCmd)
}

func runSweepRAM(cmd *cobra.Command, args []string) error {
	ramList, err := matrix.ParseIntList(sweepRAMRams)
	if err != nil {
		return err
	}
	if sweepRAMCpu <= 0 {
		return fmt.Errorf("--cpu must be a positive integer")
	}

	cfg := newMatrixConfig(args[0], matrix.GenerateSweepRAMConfigs(ramList, sweepRAMCpu))
	cfg.Type = matrix.BenchmarkTypeSweepRAM
	cfg.FixedCPU = sweepRAMCpu
	cfg.RAMList = ramList
	return runMatrixBenchmark(cfg)
}
