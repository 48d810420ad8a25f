package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NOTICECHECK_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: NOTICECHECK_PORT -> port, etc.
	if err := k.Load(env.Provider("NOTICECHECK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "NOTICECHECK_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validJurisdictions is the set of recognized jurisdiction values.
var validJurisdictions = map[string]bool{
	"england": true,
	"wales":   true,
}

// validNegativePolicies is the set of recognized negative balance
// handling values.
var validNegativePolicies = map[string]bool{
	"offset": true,
	"floor":  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.DefaultJurisdiction != "" && !validJurisdictions[c.DefaultJurisdiction] {
		return fmt.Errorf("invalid default_jurisdiction %q: must be one of england, wales", c.DefaultJurisdiction)
	}

	if c.NegativeBalancePolicy != "" && !validNegativePolicies[c.NegativeBalancePolicy] {
		return fmt.Errorf("invalid negative_balance_policy %q: must be one of offset, floor", c.NegativeBalancePolicy)
	}

	return nil
}
