// Package version exposes build version information set via ldflags.
package version

import "fmt"

var (
	// Version is the semantic version, overridden at build time.
	Version = "dev"

	// Commit is the git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the full version line shown by the CLI.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
