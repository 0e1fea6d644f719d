package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l0l1/sqlsense/internal/benchmark"
)

// NewBenchmarkCmd creates the 'benchmark' command.
func NewBenchmarkCmd() *cobra.Command {
	var (
		rounds int
		calls  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure learning and suggestion throughput",
		Long: `Run a synthetic workload against an in-memory workspace and report
record throughput and suggestion latency. Nothing is persisted.`,
		Example: `  sqlsense benchmark

  sqlsense benchmark --rounds 100 --calls 500 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := benchmark.Run(rounds, calls)
			if err != nil {
				return fmt.Errorf("benchmark failed: %w", err)
			}

			if asJSON {
				return printJSON(result)
			}

			fmt.Printf("Benchmark %s\n", result.RunID)
			fmt.Println("==================")
			fmt.Printf("Queries recorded:   %d in %s (%.0f/s)\n",
				result.QueriesRecorded, result.RecordDuration, result.RecordsPerSecond)
			fmt.Printf("Suggestion calls:   %d in %s (avg %s)\n",
				result.SuggestCalls, result.SuggestDuration, result.AvgSuggestLatency)
			fmt.Printf("Triples stored:     %d\n", result.TriplesStored)
			return nil
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", 10, "Times to replay the synthetic query corpus")
	cmd.Flags().IntVar(&calls, "calls", 100, "Number of suggestion calls to time")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
