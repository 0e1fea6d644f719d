package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l0l1/sqlsense/internal/analyzer"
)

// NewAnalyzeCmd creates the 'analyze' command: structural analysis of a
// query without recording anything.
func NewAnalyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [sql]",
		Short: "Show the structural features extracted from a query",
		Long: `Analyze a SQL statement and print the extracted features: statement
type, tables, columns, joins, patterns, aggregations, filters and the
complexity score. Nothing is stored; this is a dry run of what 'record'
would learn.`,
		Example: `  sqlsense analyze "SELECT u.name FROM users u JOIN orders o ON u.id = o.user_id"

  sqlsense analyze --json "SELECT COUNT(*) FROM orders GROUP BY status"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlText, err := readSQL(args)
			if err != nil {
				return err
			}

			a := analyzer.New().Analyze(sqlText)
			if asJSON {
				return printJSON(a)
			}

			fmt.Printf("Type:        %s\n", a.Type)
			fmt.Printf("Complexity:  %d\n", a.ComplexityScore)
			fmt.Printf("Tables:      %s\n", joinOrNone(a.Tables))
			fmt.Printf("Columns:     %s\n", joinOrNone(a.Columns))
			fmt.Printf("Patterns:    %s\n", joinOrNone(a.Patterns))

			if len(a.Joins) > 0 {
				fmt.Println("Joins:")
				for _, j := range a.Joins {
					fmt.Printf("  %s %s JOIN %s\n", j.LeftTable, j.JoinType, j.RightTable)
				}
			}
			if len(a.Aggregations) > 0 {
				fmt.Println("Aggregations:")
				for _, agg := range a.Aggregations {
					fmt.Printf("  %s(%s)\n", agg.Function, agg.Column)
				}
			}
			if len(a.Filters) > 0 {
				fmt.Println("Filters:")
				for _, f := range a.Filters {
					fmt.Printf("  %s %s\n", f.Column, f.Operator)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
