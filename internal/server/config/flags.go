package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/flagx"
)

// parseFlags overlays short command-line flags:
//
//	-a  HTTP bind address          -R  Redis address
//	-d  PostgreSQL DSN             -u  S3 access key
//	-s  JWT secret                 -p  S3 secret key
//	-t  access token TTL, minutes  -b  S3 bucket
//	-r  refresh token TTL, minutes -g  S3 region
//	-z  timezone                   -e  S3 endpoint
//	-l  log file
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-r", "-z", "-R", "-u", "-p", "-b", "-g", "-e", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTTL := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token validity (in minutes)")
	refreshTTL := fs.Int("r", int(config.RefreshTokenTTL.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.Timezone, "z", config.Timezone, "IANA time zone deciding the current day")
	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "Redis address")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.LogFile, "l", config.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Minute flags only override when given, so sub-minute values from
	// other sources survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenTTL = time.Duration(*accessTTL) * time.Minute
		case "r":
			config.RefreshTokenTTL = time.Duration(*refreshTTL) * time.Minute
		}
	})
}
