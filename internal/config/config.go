/*
Package config handles loading and saving sqlsense configuration.

Configuration lives in ~/.sqlsense.json; any field can be overridden
through SQLSENSE_* environment variables, which are applied after the
file is read. A missing config file yields defaults rather than an
error, so the tool works out of the box.
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config represents the root configuration structure.
type Config struct {
	// DataDir is the root directory for per-workspace databases and
	// history indexes.
	DataDir string `json:"dataDir" env:"SQLSENSE_DATA_DIR"`

	// LearningEnabled toggles recording of executed queries.
	LearningEnabled bool `json:"learningEnabled" env:"SQLSENSE_LEARNING_ENABLED"`

	// SuggestionOrdering selects suggestion ordering: "category"
	// (generator order, the historical behavior) or "confidence".
	SuggestionOrdering string `json:"suggestionOrdering" env:"SQLSENSE_SUGGESTION_ORDERING"`

	// InsightsCron is a cron expression for the background insights
	// scan. Empty disables the scheduler.
	InsightsCron string `json:"insightsCron" env:"SQLSENSE_INSIGHTS_CRON"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dataDir := ".sqlsense"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".sqlsense")
	}
	return &Config{
		DataDir:            dataDir,
		LearningEnabled:    true,
		SuggestionOrdering: "category",
	}
}

// DefaultConfigPath returns the path to ~/.sqlsense.json.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sqlsense.json"), nil
}

// Load reads the configuration from the default path and applies
// environment overrides.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from a specific path. A missing file
// is not an error; defaults are used. Environment overrides are applied
// last in either case.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides on defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
