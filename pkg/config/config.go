// Package config holds the immutable runtime configuration: API base URL, the
// three endpoint paths, the default map coordinate and zoom, and the
// validation pattern overrides. Create once at startup; never mutate.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Endpoints are the backend paths the remote-call client targets.
type Endpoints struct {
	Login      string `yaml:"login"`
	Signup     string `yaml:"signup"`
	Newsletter string `yaml:"newsletter"`
}

// MapConfig describes the map widget defaults.
type MapConfig struct {
	Lat       float64 `yaml:"lat"`
	Lon       float64 `yaml:"lon"`
	Zoom      int     `yaml:"zoom"`
	Container string  `yaml:"container"`
}

// ValidationConfig overrides the built-in rule patterns. Empty values keep the
// defaults.
type ValidationConfig struct {
	EmailPattern      string `yaml:"email_pattern"`
	CouponPattern     string `yaml:"coupon_pattern"`
	PasswordMinLength int    `yaml:"password_min_length"`
}

// Config is the full runtime configuration record.
type Config struct {
	BaseURL    string           `yaml:"base_url"`
	Endpoints  Endpoints        `yaml:"endpoints"`
	Map        MapConfig        `yaml:"map"`
	Validation ValidationConfig `yaml:"validation"`
	// ClearStaleErrors opts in to blanking error slots for forms with no
	// active error on every repaint. Off by default: the historical surfaces
	// leave stale text in place until the form errors or clears explicitly.
	ClearStaleErrors bool `yaml:"clear_stale_errors"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		BaseURL: "https://api.example.com",
		Endpoints: Endpoints{
			Login:      "/auth/login",
			Signup:     "/auth/signup",
			Newsletter: "/newsletter/subscribe",
		},
		Map: MapConfig{
			Lat:       40.7128,
			Lon:       -74.0060,
			Zoom:      13,
			Container: "map",
		},
	}
}

// Parse decodes YAML data over the defaults, so a partial document only
// overrides the keys it names.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the record for the mistakes a hand-edited file tends to
// introduce.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("config: base_url is required")
	}
	for name, path := range map[string]string{
		"endpoints.login":      c.Endpoints.Login,
		"endpoints.signup":     c.Endpoints.Signup,
		"endpoints.newsletter": c.Endpoints.Newsletter,
	} {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("config: %s is required", name)
		}
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("config: %s must start with /", name)
		}
	}
	if c.Map.Zoom < 0 {
		return errors.New("config: map.zoom cannot be negative")
	}
	if c.Map.Lat < -90 || c.Map.Lat > 90 {
		return fmt.Errorf("config: map.lat %v out of range", c.Map.Lat)
	}
	if c.Map.Lon < -180 || c.Map.Lon > 180 {
		return fmt.Errorf("config: map.lon %v out of range", c.Map.Lon)
	}
	return nil
}
