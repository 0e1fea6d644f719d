/*
Package cli implements the sqlsense commands.

Each command lives in its own file with a New*Cmd constructor so commands
stay independently testable. Commands that touch a workspace load the
shared configuration, build a workspace manager rooted at the configured
data directory, and tear it down before returning.
*/
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/l0l1/sqlsense/internal/config"
	"github.com/l0l1/sqlsense/internal/suggest"
	"github.com/l0l1/sqlsense/internal/workspace"
)

// defaultWorkspaceID is used when --workspace is not given.
const defaultWorkspaceID = "default"

// newManager loads configuration and returns a workspace manager rooted
// at the configured data directory.
func newManager() (*workspace.Manager, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return workspace.NewManager(cfg.DataDir, suggest.Ordering(cfg.SuggestionOrdering)), cfg, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
