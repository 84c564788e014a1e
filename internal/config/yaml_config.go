package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Lists that are awkward to express as env vars live here.
type YAMLConfig struct {
	// Platforms replaces the built-in social platform catalog when non-empty.
	Platforms []PlatformConfig `yaml:"platforms"`

	// ReservedSlugs are added to the built-in reserved slugs.
	ReservedSlugs []string `yaml:"reserved_slugs"`
}

// PlatformConfig defines a social platform in the YAML config.
type PlatformConfig struct {
	ID          string `yaml:"id"`      // one of the link types, e.g. "instagram"
	Name        string `yaml:"name"`    // display name
	Pattern     string `yaml:"pattern"` // regular expression matched against link URLs
	Placeholder string `yaml:"placeholder,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Color       string `yaml:"color,omitempty"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFile loads the YAML configuration from path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetReservedSlugs returns the configured reserved slugs. Safe on a nil config.
func (c *YAMLConfig) GetReservedSlugs() []string {
	if c == nil {
		return nil
	}
	return c.ReservedSlugs
}

// GetPlatforms returns the configured platform catalog. Safe on a nil config.
func (c *YAMLConfig) GetPlatforms() []PlatformConfig {
	if c == nil {
		return nil
	}
	return c.Platforms
}
