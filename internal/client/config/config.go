// Package config handles configuration for the client: defaults, optional
// JSON overlay, then command-line flags, each layer overriding the previous.
package config

import "time"

// Config holds runtime settings for the Life Weeks CLI.
type Config struct {
	// ServerBaseURL is the base URL of the sync server's REST API.
	ServerBaseURL string
	// DatabaseDSN is the path of the local SQLite database.
	DatabaseDSN string
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "lifeweeks.db"
	c.OnlineCheckInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
