/*
Package main is the entry point for the sqlsense CLI.

sqlsense learns from the SQL queries a team executes and turns that
history into live suggestions: related tables, join clauses, commonly
selected columns, missing patterns and performance warnings.

Usage:
  sqlsense [command]

Available Commands:
  record      Record an executed query so sqlsense can learn from it
  suggest     Suggest completions for an in-progress query
  analyze     Show the structural features extracted from a query
  insights    Show aggregated insights for a workspace
  workspace   Manage learning workspaces
  learning    Control the query learning pipeline
  benchmark   Measure learning and suggestion throughput
  help        Help about any command

Examples:
  # Teach it a query
  sqlsense record "SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id" --time 180

  # Ask what usually comes next
  sqlsense suggest "SELECT * FROM users"

  # See what a workspace has learned
  sqlsense insights
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l0l1/sqlsense/internal/cli"
	"github.com/l0l1/sqlsense/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sqlsense",
		Short: "Learn from executed SQL and suggest what comes next",
		Long: `sqlsense is a SQL query learning system. Every recorded execution is
decomposed into facts (tables used, joins performed, patterns present,
how fast it ran) stored in an append-only relation store. Those facts
power three read paths:
  • suggest   - completions for a query still being written
  • analyze   - structural features of a statement, without recording
  • insights  - workspace-level usage and performance summaries

Knowledge is per workspace, so separate databases or projects never
contaminate each other's suggestions.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(cli.NewRecordCmd())
	rootCmd.AddCommand(cli.NewSuggestCmd())
	rootCmd.AddCommand(cli.NewAnalyzeCmd())
	rootCmd.AddCommand(cli.NewInsightsCmd())
	rootCmd.AddCommand(cli.NewWorkspaceCmd())
	rootCmd.AddCommand(cli.NewLearningCmd())
	rootCmd.AddCommand(cli.NewBenchmarkCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
