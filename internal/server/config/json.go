package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rosebudthorn/internal/flagx"
	"github.com/dmitrijs2005/rosebudthorn/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "15m" or
// integer nanoseconds. Absent fields keep the value from earlier sources.
type JsonConfig struct {
	HTTPAddr        string          `json:"http_addr"`
	DatabaseDSN     string          `json:"database_dsn"`
	SecretKey       string          `json:"secret_key"`
	AccessTokenTTL  *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL *timex.Duration `json:"refresh_token_ttl"`
	Timezone        string          `json:"timezone"`
	RedisAddr       string          `json:"redis_addr"`
	RedisPassword   string          `json:"redis_password"`
	RedisDB         *int            `json:"redis_db"`
	S3AccessKey     string          `json:"s3_access_key"`
	S3SecretKey     string          `json:"s3_secret_key"`
	S3Bucket        string          `json:"s3_bucket"`
	S3Region        string          `json:"s3_region"`
	S3Endpoint      string          `json:"s3_endpoint"`
	LogFile         string          `json:"log_file"`
	LogLevel        string          `json:"log_level"`
	AllowedOrigins  string          `json:"allowed_origins"`
}

func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.HTTPAddr, c.HTTPAddr)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	if c.AccessTokenTTL != nil {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL != nil {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	set(&config.Timezone, c.Timezone)
	set(&config.RedisAddr, c.RedisAddr)
	set(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	set(&config.S3AccessKey, c.S3AccessKey)
	set(&config.S3SecretKey, c.S3SecretKey)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3Endpoint, c.S3Endpoint)
	set(&config.LogFile, c.LogFile)
	set(&config.LogLevel, c.LogLevel)
	set(&config.AllowedOrigins, c.AllowedOrigins)
}
