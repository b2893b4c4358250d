// Package config loads revet configuration from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the effective tool configuration: defaults overlaid by the
// config file, overlaid by CLI flags.
type Config struct {
	Format       string   `toml:"format"`
	FailOn       string   `toml:"fail_on"`
	ContextLines int      `toml:"context_lines"`
	Workers      int      `toml:"workers"`
	Skip         []string `toml:"skip"`
	Exclude      []string `toml:"exclude"`

	// SeverityOverrides remaps a builtin rule ID to another tier.
	SeverityOverrides map[string]string `toml:"severity_overrides"`

	// Rules declares additional regex rules.
	Rules []RuleConfig `toml:"rules"`
}

// RuleConfig is one custom rule declared in the config file.
type RuleConfig struct {
	ID       string   `toml:"id"`
	Pattern  string   `toml:"pattern"`
	Message  string   `toml:"message"`
	Severity string   `toml:"severity"`
	Files    []string `toml:"files"`
}

// FileName is the per-repository config file looked up at the repo root.
const FileName = ".revet.toml"

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Format:       "text",
		FailOn:       "high",
		ContextLines: 3,
		Exclude:      []string{"vendor/*", "*.gen.go", "*.min.js"},
	}
}

// Load reads the config for repoDir: a repo-local .revet.toml wins, then the
// user config dir, then defaults. A missing file is not an error.
func Load(repoDir string) (Config, error) {
	cfg := Default()

	path, ok := findConfig(repoDir)
	if !ok {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func findConfig(repoDir string) (string, bool) {
	if repoDir != "" {
		local := filepath.Join(repoDir, FileName)
		if _, err := os.Stat(local); err == nil {
			return local, true
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		global := filepath.Join(configDir, "revet", "config.toml")
		if _, err := os.Stat(global); err == nil {
			return global, true
		}
	}
	return "", false
}
