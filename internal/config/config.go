package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional tool configuration. Every field has a working
// default; a missing config file is not an error unless the user asked for
// a specific one.
type Config struct {
	// OrgRegion is the region for the Organizations client. The
	// Organizations endpoint is global, so this is normally empty.
	OrgRegion string `yaml:"org_region,omitempty"`
	// CostExplorerRegion is the region for the Cost Explorer client.
	CostExplorerRegion string `yaml:"cost_explorer_region,omitempty"`
	// DefaultValue is the category value for unmatched costs.
	DefaultValue string `yaml:"default_value,omitempty"`
	// RunLog is the path of the publish audit log. Empty disables it.
	RunLog string `yaml:"run_log,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		CostExplorerRegion: "us-east-1",
	}
}

// Load reads a YAML config file from disk. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
