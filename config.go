package lazyload

import (
	"github.com/hazyhaar/lazyload/internal/config"
)

// Config is the top-level lazyload configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// PageConfig defines a page to load.
type PageConfig = config.PageConfig

// SettingsConfig is the YAML form of Settings.
type SettingsConfig = config.SettingsConfig

// SinkConfig defines an output backend.
type SinkConfig = config.SinkConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// NormalizeConfig applies defaults to a configuration built in code and
// validates it.
func NormalizeConfig(c *Config) (*Config, error) {
	return config.Normalize(c)
}

// SettingsFrom converts configured settings into Settings. Sanitize installs
// SanitizePolicy.
func SettingsFrom(c SettingsConfig) Settings {
	s := Settings{Icon: c.Icon, Offset: c.Offset, Type: c.Type}
	if c.Sanitize {
		s.Policy = SanitizePolicy()
	}
	return s
}
