package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l0l1/sqlsense/internal/suggest"
)

// NewSuggestCmd creates the 'suggest' command for completing an
// in-progress query from learned facts.
func NewSuggestCmd() *cobra.Command {
	var (
		workspaceID string
		ordering    string
		asJSON      bool
		similar     int
	)

	cmd := &cobra.Command{
		Use:   "suggest [partial-sql]",
		Short: "Suggest completions for an in-progress query",
		Long: `Generate suggestions for a partially written query based on what the
workspace has learned: related tables, join clauses, commonly selected
columns, missing patterns and performance warnings. At most 10
suggestions are returned.`,
		Example: `  sqlsense suggest "SELECT * FROM users"

  # Rank by confidence instead of category
  sqlsense suggest --order confidence "SELECT * FROM orders"

  # Also show previously recorded queries similar to the fragment
  sqlsense suggest --similar 3 "SELECT status FROM orders"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial, err := readSQL(args)
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

			engine := ws.Engine
			if ordering != "" && ordering != cfg.SuggestionOrdering {
				engine = suggest.NewEngine(ws.Store, suggest.Ordering(ordering))
			}

			suggestions, err := engine.Suggest(cmd.Context(), partial)
			if err != nil {
				return fmt.Errorf("suggestion generation failed: %w", err)
			}

			if asJSON {
				return printJSON(suggestions)
			}

			if len(suggestions) == 0 {
				fmt.Println("No suggestions. Record more queries to build up the knowledge base.")
			}
			for _, s := range suggestions {
				fmt.Printf("[%s] %s (%.0f%%)\n", s.Category, s.Text, s.Confidence*100)
				fmt.Printf("    %s\n", s.Reason)
			}

			if similar > 0 {
				entries, err := ws.History.Similar(partial, similar)
				if err != nil {
					return fmt.Errorf("history lookup failed: %w", err)
				}
				if len(entries) > 0 {
					fmt.Println("\nSimilar recorded queries:")
					for _, e := range entries {
						fmt.Printf("  (%.2f) %s\n", e.Score, e.Query)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", defaultWorkspaceID, "Workspace to suggest from")
	cmd.Flags().StringVarP(&ordering, "order", "o", "", "Suggestion ordering: category or confidence")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&similar, "similar", 0, "Also show up to N similar recorded queries")

	return cmd
}
