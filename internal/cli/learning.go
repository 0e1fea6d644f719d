package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l0l1/sqlsense/internal/config"
)

// NewLearningCmd creates the 'learning' command group for controlling
// and inspecting the learning pipeline.
func NewLearningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Control the query learning pipeline",
	}

	cmd.AddCommand(newLearningStatusCmd())
	cmd.AddCommand(newLearningEnableCmd())
	cmd.AddCommand(newLearningDisableCmd())
	return cmd
}

// newLearningStatusCmd shows the learning configuration and per-workspace
// fact counts.
func newLearningStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show learning status and stored fact counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cfg, err := newManager()
			if err != nil {
				return err
			}
			defer manager.CloseAll()

			fmt.Println("Learning Status")
			fmt.Println("===============")
			fmt.Printf("Enabled:      %t\n", cfg.LearningEnabled)
			fmt.Printf("Data dir:     %s\n", cfg.DataDir)
			fmt.Printf("Ordering:     %s\n", cfg.SuggestionOrdering)
			if cfg.InsightsCron != "" {
				fmt.Printf("Insights cron: %s\n", cfg.InsightsCron)
			}
			fmt.Println()

			for _, id := range manager.List() {
				ws, err := manager.Open(id)
				if err != nil {
					fmt.Printf("  %-24s (unavailable: %v)\n", id, err)
					continue
				}
				triples, err := ws.Store.All()
				if err != nil {
					fmt.Printf("  %-24s (store error: %v)\n", id, err)
					continue
				}
				queries, _ := ws.History.Count()
				fmt.Printf("  %-24s %d facts, %d queries\n", id, len(triples), queries)
			}
			return nil
		},
	}
}

// newLearningEnableCmd turns learning on in the config file.
func newLearningEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Turn on query learning",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setLearning(true)
		},
	}
}

// newLearningDisableCmd turns learning off in the config file.
func newLearningDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Turn off query learning",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setLearning(false)
		},
	}
}

func setLearning(enabled bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.LearningEnabled = enabled

	path, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("Learning %s (saved to %s)\n", state, path)
	fmt.Println("Note: SQLSENSE_LEARNING_ENABLED overrides this setting when set.")
	return nil
}
