package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the server
//	-i int      online check interval in seconds
//	-f string   local database file
//	-w int      group code retry delay in seconds
//	-z string   time zone
//	-l string   log file
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-f", "-w", "-z", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	retryDelay := fs.Int("w", int(cfg.CodeRetryDelay.Seconds()), "group code retry delay (in seconds)")
	fs.StringVar(&cfg.Timezone, "z", cfg.Timezone, "time zone deciding the current day")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "w":
			cfg.CodeRetryDelay = time.Duration(*retryDelay) * time.Second
		}
	})
}
