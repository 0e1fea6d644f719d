package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWorkspaceCmd creates the 'workspace' command group.
func NewWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage learning workspaces",
		Long: `Workspaces isolate learned knowledge: each one has its own relation
store and query history under the data directory. Use them to keep
different databases or projects from polluting each other's suggestions.`,
	}

	cmd.AddCommand(newWorkspaceListCmd())
	cmd.AddCommand(newWorkspaceDeleteCmd())
	return cmd
}

// newWorkspaceListCmd lists known workspaces.
func newWorkspaceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cfg, err := newManager()
			if err != nil {
				return err
			}
			defer manager.CloseAll()

			ids := manager.List()
			if len(ids) == 0 {
				fmt.Printf("No workspaces yet under %s\n", cfg.DataDir)
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

// newWorkspaceDeleteCmd deletes one workspace and all its learned data.
func newWorkspaceDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workspace and all its learned data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if !yes {
				fmt.Printf("This will delete all learned data for workspace %q. Continue? (y/N): ", id)
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Cancelled")
					return nil
				}
			}

			manager, _, err := newManager()
			if err != nil {
				return err
			}
			defer manager.CloseAll()

			if err := manager.Delete(id); err != nil {
				return err
			}
			fmt.Printf("Deleted workspace %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}
