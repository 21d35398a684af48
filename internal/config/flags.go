package config

import (
	"flag"
	"os"

	"github.com/glycorisk/riskdash/internal/flagx"
)

// parseFlags overlays cfg with the command-line flags it owns. Other flags in
// os.Args are filtered out first so they do not make the parse fail.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "dashboard listen address")
	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "backend base url")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "credential store dsn")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
