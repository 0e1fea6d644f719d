package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/l0l1/sqlsense/internal/insights"
	"github.com/l0l1/sqlsense/internal/relation"
)

// NewInsightsCmd creates the 'insights' command for workspace-level
// summary statistics.
func NewInsightsCmd() *cobra.Command {
	var (
		workspaceID string
		asJSON      bool
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show aggregated insights for a workspace",
		Long: `Scan the workspace's relation store and report what has been learned:
query volume, most used tables, common patterns, the performance
distribution and the overall complexity trend.

With --watch and a configured insights cron expression the command stays
running and reprints the summary on schedule.`,
		Example: `  sqlsense insights

  sqlsense insights --workspace analytics --json

  # Refresh on the configured cron schedule (insightsCron in config)
  sqlsense insights --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cfg, err := newManager()
			if err != nil {
				return err
			}
			defer manager.CloseAll()

			ws, err := manager.Open(workspaceID)
			if err != nil {
				return err
			}

			snapshot, err := ws.Aggregator.Insights()
			if err != nil {
				return fmt.Errorf("insights scan failed: %w", err)
			}
			if err := printInsights(snapshot, asJSON); err != nil {
				return err
			}

			if !watch {
				return nil
			}
			if cfg.InsightsCron == "" {
				return fmt.Errorf("--watch requires insightsCron in the configuration")
			}

			scheduler, err := insights.NewScheduler(ws.Aggregator, cfg.InsightsCron, func(s insights.WorkspaceInsights) {
				fmt.Println()
				if err := printInsights(s, asJSON); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			})
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			fmt.Printf("\nWatching on schedule %q; press Ctrl-C to stop.\n", cfg.InsightsCron)
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", defaultWorkspaceID, "Workspace to summarize")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and refresh on the configured cron schedule")

	return cmd
}

func printInsights(s insights.WorkspaceInsights, asJSON bool) error {
	if asJSON {
		return printJSON(s)
	}

	fmt.Printf("Workspace Insights (%s)\n", s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println("=======================")
	fmt.Printf("Queries analyzed:  %d\n", s.TotalQueriesAnalyzed)
	fmt.Printf("Unique tables:     %d\n", s.UniqueTables)
	fmt.Printf("Complexity trend:  %s\n", s.ComplexityTrend)
	fmt.Printf("Performance:       fast=%d medium=%d slow=%d\n",
		s.PerformanceDistribution[relation.PerformanceFast],
		s.PerformanceDistribution[relation.PerformanceMedium],
		s.PerformanceDistribution[relation.PerformanceSlow])

	if len(s.MostUsedTables) > 0 {
		fmt.Println("Most used tables:")
		for _, e := range s.MostUsedTables {
			fmt.Printf("  %-24s %d\n", e.Name, e.Count)
		}
	}
	if len(s.CommonPatterns) > 0 {
		fmt.Println("Common patterns:")
		for _, e := range s.CommonPatterns {
			fmt.Printf("  %-24s %d\n", e.Name, e.Count)
		}
	}
	return nil
}
