// Package config loads settings of the terminal client. Sources are applied
// in order: built-in defaults, a JSON file given with -c/-config, and short
// command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the Rose Bud Thorn client.
type Config struct {
	// ServerURL is the base URL of the REST API.
	ServerURL string
	// DatabasePath is the SQLite file of the local store. "~" expands to the
	// home directory.
	DatabasePath string
	// OnlineCheckInterval is how often the REPL probes server reachability.
	OnlineCheckInterval time.Duration
	// RequestTimeout bounds a single REST call.
	RequestTimeout time.Duration
	// CodeRetryDelay is the wait between group code checks that failed on the
	// network.
	CodeRetryDelay time.Duration
	// Timezone is the IANA zone in which "today" is decided. "Local" uses the
	// machine's zone.
	Timezone string
	LogFile  string
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "~/.rosebudthorn/local.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.CodeRetryDelay = 2 * time.Second
	c.Timezone = "Local"
	c.LogFile = "~/.rosebudthorn/client.log"
	c.LogLevel = "info"
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
