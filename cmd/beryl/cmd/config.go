package cmd

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// replConfig holds the REPL preferences read from .berylrc.yaml (spec
// SPEC_FULL.md §1's config surface — the teacher's own CLI is flags-only,
// so this is the pack's nearest equivalent for per-user REPL defaults).
type replConfig struct {
	Prompt string `yaml:"prompt"`
	Color  bool   `yaml:"color"` // parsed, but the REPL output is uncolored either way
}

func defaultReplConfig() replConfig {
	return replConfig{Prompt: "beryl> "}
}

// loadReplConfig reads .berylrc.yaml from the current directory, then from
// the user's home directory, falling back to defaults if neither exists or
// parses cleanly. A malformed file is ignored rather than treated as fatal
// — REPL preferences are cosmetic.
func loadReplConfig() replConfig {
	cfg := defaultReplConfig()

	candidates := []string{".berylrc.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".berylrc.yaml"))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg
		}
	}
	return cfg
}
