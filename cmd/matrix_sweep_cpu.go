package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attunehq/vernier/matrix"
)

var (
	sweepCPUCpus string
	sweepCPURam  int
)

var sweepCPUCmd = &cobra.Command{
	Use:   "sweep-cpu [flags] -- COMMAND",
	Short: "Benchmark across CPU counts with fixed RAM",
	Long: `Benchmark a command while varying the CPU count and holding RAM
constant, to see how it scales with cores.`,
	Example: `  vernier matrix sweep-cpu \
    --image ubuntu:24.04 \
    --cpus "2,4,8,16,32" \
    --ram 16 \
    -- 'make -j build'`,
	Args: cobra.ExactArgs(1),
	RunE: runSweepCPU,
}

func init() {
	sweepCPUCmd.Flags().StringVar(&sweepCPUCpus, "cpus", "", `CPU counts to test, e.g. "2,4,8,16" (required)`)
	sweepCPUCmd.Flags().IntVar(&sweepCPURam, "ram", 0, "Fixed RAM in GB (required)")
	sweepCPUCmd.MarkFlagRequired("cpus")
	sweepCPUCmd.MarkFlagRequired("ram")

	matrixCmd.AddCommand(sweepCPUCmd)
}

func runSweepCPU(cmd *cobra.Command, args []string) error {
	cpuList, err := matrix.ParseIntList(sweepCPUCpus)
	if err != nil {
		return err
	}
	if sweepCPURam <= 0 {
		return fmt.Errorf("--ram must be a positive integer")
	}

	cfg := newMatrixConfig(args[0], matrix.GenerateSweepCPUConfigs(cpuList, sweepCPURam))
	cfg.Type = matrix.BenchmarkTypeSweepCPU
	cfg.FixedRAM = sweepCPURam
	cfg.CPUList = cpuList
	return runMatrixBenchmark(cfg)
}
