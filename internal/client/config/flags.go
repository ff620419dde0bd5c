package config

import (
	"flag"
	"os"
	"time"

	"github.com/clientpro-app/clientpro/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   relay base URL
//	-d string   local database file
//	-e string   export directory
//	-i int      inbox poll interval in seconds
//
// Args are filtered through flagx.FilterArgs so this flag set does not
// interfere with flags owned by other packages.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-e", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RelayAddr, "a", cfg.RelayAddr, "relay base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database file")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "export directory")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "inbox poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
