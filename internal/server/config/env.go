package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "RBT_"

// dotEnvLookup returns a lookup that prefers the process environment and
// falls back to the values of the .env file at path, if it exists.
func dotEnvLookup(path string) func(string) (string, bool) {
	fileEnv, err := godotenv.Read(path)
	if err != nil {
		fileEnv = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
}

func parseEnv(c *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("DATABASE_DSN", &c.DatabaseDSN)
	str("SECRET_KEY", &c.SecretKey)
	dur("ACCESS_TOKEN_TTL", &c.AccessTokenTTL)
	dur("REFRESH_TOKEN_TTL", &c.RefreshTokenTTL)
	str("TIMEZONE", &c.Timezone)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	str("S3_ACCESS_KEY", &c.S3AccessKey)
	str("S3_SECRET_KEY", &c.S3SecretKey)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_REGION", &c.S3Region)
	str("S3_ENDPOINT", &c.S3Endpoint)
	str("LOG_FILE", &c.LogFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("ALLOWED_ORIGINS", &c.AllowedOrigins)
}
