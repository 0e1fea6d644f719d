package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/l0l1/sqlsense/internal/learner"
)

// NewRecordCmd creates the 'record' command for feeding executed queries
// into the learning system.
func NewRecordCmd() *cobra.Command {
	var (
		workspaceID string
		timeMs      float64
		rows        int
		failed      bool
		userID      string
		department  string
	)

	cmd := &cobra.Command{
		Use:   "record [sql]",
		Short: "Record an executed query so sqlsense can learn from it",
		Long: `Record a query execution into a workspace's relation store.

The query text is analyzed for tables, columns, joins, patterns and
aggregations; the resulting facts feed future suggestions and insights.
The SQL is taken from the argument, or from stdin when omitted.`,
		Example: `  # Record a fast query
  sqlsense record "SELECT name FROM users" --time 42 --rows 120

  # Record a slow query with user context
  sqlsense record "SELECT * FROM audit_logs" --time 2400 --user alice --department finance

  # Pipe the SQL in
  cat query.sql | sqlsense record --time 180`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlText, err := readSQL(args)
			if err != nil {
				return err
			}

			manager, cfg, err := newManager()
			if err != nil {
				return err
			}
			defer manager.CloseAll()

			ws, err := manager.Open(workspaceID)
			if err != nil {
				return err
			}
			if !cfg.LearningEnabled {
				ws.Learner.Disable()
				fmt.Println("Learning is disabled; nothing recorded.")
				return nil
			}

			event := learner.ExecutionEvent{
				Query:           sqlText,
				ExecutionTimeMs: timeMs,
				ResultCount:     rows,
				Success:         !failed,
				UserID:          userID,
				Department:      department,
				Timestamp:       time.Now(),
			}

			// One-shot CLI invocations need the facts written before the
			// process exits, so bypass the background queue.
			ws.Learner.RecordSync(event)

			fmt.Printf("Recorded query %s in workspace %s\n", learner.QueryKey(sqlText), workspaceID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", defaultWorkspaceID, "Workspace to record into")
	cmd.Flags().Float64VarP(&timeMs, "time", "t", 0, "Execution time in milliseconds")
	cmd.Flags().IntVarP(&rows, "rows", "r", 0, "Number of rows returned")
	cmd.Flags().BoolVar(&failed, "failed", false, "Mark the execution as failed")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User who ran the query")
	cmd.Flags().StringVarP(&department, "department", "d", "", "Department context for the user")

	return cmd
}

// readSQL returns the query text from the positional argument or stdin.
func readSQL(args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
	}
	sqlText := strings.TrimSpace(string(data))
	if sqlText == "" {
		return "", fmt.Errorf("no SQL provided: pass it as an argument or on stdin")
	}
	return sqlText, nil
}
