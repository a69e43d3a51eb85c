// Package config loads lazyload run configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level lazyload configuration.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Settings SettingsConfig `yaml:"settings"`
	Pages    []PageConfig   `yaml:"pages"`
	Sinks    []SinkConfig   `yaml:"sinks"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string   `yaml:"remote"`
	Stealth          string   `yaml:"stealth"` // headless | plain
	Width            int      `yaml:"width"`
	Height           int      `yaml:"height"`
	ResourceBlocking []string `yaml:"resource_blocking"`
}

// ThrottleConfig controls how often scroll and resize trigger a scan.
type ThrottleConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// SettingsConfig mirrors lazyload.Settings minus the callbacks.
type SettingsConfig struct {
	Icon     string `yaml:"icon"`
	Offset   int    `yaml:"offset"`
	Type     string `yaml:"type"`
	Sanitize bool   `yaml:"sanitize"`
}

// PageConfig defines a page to load.
type PageConfig struct {
	ID          string          `yaml:"id"`
	URL         string          `yaml:"url"`
	Settings    *SettingsConfig `yaml:"settings"`
	ScrollStep  int             `yaml:"scroll_step"`
	ScrollPause time.Duration   `yaml:"scroll_pause"`
	MaxScrolls  int             `yaml:"max_scrolls"`
}

// SinkConfig defines an output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook | sqlite
	URL  string `yaml:"url"`  // for webhook
	Path string `yaml:"path"` // for sqlite

	// SQLite tuning. Zero values keep the dbopen defaults.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	Synchronous string        `yaml:"synchronous"` // off | normal | full | extra
}

// Defaults.
const (
	DefaultWidth       = 1280
	DefaultHeight      = 800
	DefaultThrottle    = 66 * time.Millisecond
	DefaultScrollPause = 200 * time.Millisecond
	DefaultMaxScrolls  = 50
)

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	return Normalize(&cfg)
}

// Normalize applies defaults to a configuration built in code and
// validates it.
func Normalize(c *Config) (*Config, error) {
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.Width <= 0 {
		c.Browser.Width = DefaultWidth
	}
	if c.Browser.Height <= 0 {
		c.Browser.Height = DefaultHeight
	}
	if c.Throttle.Delay <= 0 {
		c.Throttle.Delay = DefaultThrottle
	}
	for i := range c.Pages {
		p := &c.Pages[i]
		if p.ID == "" {
			p.ID = fmt.Sprintf("page-%d", i+1)
		}
		if p.ScrollStep <= 0 {
			p.ScrollStep = c.Browser.Height
		}
		if p.ScrollPause <= 0 {
			p.ScrollPause = DefaultScrollPause
		}
		if p.MaxScrolls <= 0 {
			p.MaxScrolls = DefaultMaxScrolls
		}
	}
	for i := range c.Sinks {
		if c.Sinks[i].Type == "" {
			c.Sinks[i].Type = "stdout"
		}
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Browser.Stealth {
	case "headless", "plain":
	default:
		errs = append(errs, fmt.Errorf("config: browser.stealth %q: want headless or plain", c.Browser.Stealth))
	}
	for i, p := range c.Pages {
		if err := validatePageURL(p.URL); err != nil {
			errs = append(errs, fmt.Errorf("config: pages[%d] (%s): %w", i, p.ID, err))
		}
		// IDs name snapshot files.
		if !validID(p.ID) {
			errs = append(errs, fmt.Errorf("config: pages[%d]: id %q: want letters, digits, '-' or '_'", i, p.ID))
		}
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "stdout":
		case "webhook":
			if s.URL == "" {
				errs = append(errs, fmt.Errorf("config: sinks[%d]: webhook needs url", i))
			}
		case "sqlite":
			if s.Path == "" {
				errs = append(errs, fmt.Errorf("config: sinks[%d]: sqlite needs path", i))
			}
			switch strings.ToUpper(s.Synchronous) {
			case "", "OFF", "NORMAL", "FULL", "EXTRA":
			default:
				errs = append(errs, fmt.Errorf("config: sinks[%d]: synchronous %q: want off, normal, full or extra", i, s.Synchronous))
			}
			if s.BusyTimeout < 0 {
				errs = append(errs, fmt.Errorf("config: sinks[%d]: negative busy_timeout", i))
			}
		default:
			errs = append(errs, fmt.Errorf("config: sinks[%d]: unknown type %q", i, s.Type))
		}
	}
	return errors.Join(errs...)
}

// PageSettings layers a page's settings block over the global one.
// Zero-valued page fields inherit; Sanitize is enabled if either enables it.
func (c *Config) PageSettings(p PageConfig) SettingsConfig {
	s := c.Settings
	if p.Settings == nil {
		return s
	}
	if p.Settings.Icon != "" {
		s.Icon = p.Settings.Icon
	}
	if p.Settings.Offset != 0 {
		s.Offset = p.Settings.Offset
	}
	if p.Settings.Type != "" {
		s.Type = p.Settings.Type
	}
	s.Sanitize = s.Sanitize || p.Settings.Sanitize
	return s
}

func validatePageURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("url %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("url %q: no host", raw)
	}
	return nil
}

func validID(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}
