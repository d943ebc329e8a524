package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rosebudthorn/internal/flagx"
	"github.com/dmitrijs2005/rosebudthorn/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL           string          `json:"server_url"`
	DatabasePath        string          `json:"database_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	CodeRetryDelay      *timex.Duration `json:"code_retry_delay"`
	Timezone            string          `json:"timezone"`
	LogFile             string          `json:"log_file"`
	LogLevel            string          `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config. It panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.ServerURL, jc.ServerURL)
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.Timezone, jc.Timezone)
	set(&cfg.LogFile, jc.LogFile)
	set(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CodeRetryDelay != nil {
		cfg.CodeRetryDelay = jc.CodeRetryDelay.Duration
	}
}
