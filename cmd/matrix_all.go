package cmd

import (
	"github.com/spf13/cobra"

	"github.com/attunehq/vernier/matrix"
)

var (
	allCpus string
	allRams string
)

var allCmd = &cobra.Command{
	Use:   "all [flags] -- COMMAND",
	Short: "Benchmark across a full CPU x RAM grid",
	Long: `Benchmark a command across every combination of the given CPU and RAM
values. Scaling graphs are printed for both dimensions: one CPU graph per
RAM value and one RAM graph per CPU value.`,
	Example: `  vernier matrix all \
    --image ubuntu:24.04 \
    --cpus "2,4,8,16" \
    --rams "8,16,32" \
    -- 'make -j build'`,
	Args: cobra.ExactArgs(1),
	RunE: runMatrixAll,
}

func init() {
	allCmd.Flags().StringVar(&allCpus, "cpus", "", `CPU counts to test, e.g. "2,4,8,16" (required)`)
	allCmd.Flags().StringVar(&allRams, "rams", "", `RAM sizes in GB to test, e.g. "8,16,32" (required)`)
	allCmd.MarkFlagRequired("cpus")
	allCmd.MarkFlagRequired("rams")

	matrixCmd.AddCommand(allCmd)
}

func runMatrixAll(cmd *cobra.Command, args []string) error {
	cpuList, err := matrix.ParseIntList(allCpus)
	if err != nil {
		return err
	}
	ramList, err := matrix.ParseIntList(allRams)
	if err != nil {
		return err
	}

	cfg := newMatrixConfig(args[0], matrix.GenerateGridConfigs(cpuList, ramList))
	cfg.Type = matrix.BenchmarkTypeAll
	cfg.CPUList = cpuList
	cfg.RAMList = ramList
	return runMatrixBenchmark(cfg)
}
