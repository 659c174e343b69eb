// Package config holds runtime settings for the client and the layered
// loading order: defaults, then a JSON file, then command-line flags, later
// sources overriding earlier ones.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend API.
//   - RequestTimeout: budget for login and profile-save calls.
//   - CheckTimeout: budget for passive background checks, which must give
//     up quickly rather than stall the UI.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DatabaseDSN: location of the cache backend; a plain path opens the
//     local SQLite database, a redis:// URL the shared Redis cache.
type Config struct {
	ServerEndpointAddr  string
	RequestTimeout      time.Duration
	CheckTimeout        time.Duration
	OnlineCheckInterval time.Duration
	DatabaseDSN         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "https://www.coffy.app"
	c.RequestTimeout = 30 * time.Second
	c.CheckTimeout = 3 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabaseDSN = "coffy.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
