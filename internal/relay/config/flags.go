package config

import (
	"flag"
	"os"

	"github.com/clientpro-app/clientpro/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   listen address
//	-d string   postgres DSN
//	-k string   device-signature secret key
//
// Args are filtered through flagx.FilterArgs so this flag set does not
// interfere with flags owned by other packages.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "postgres DSN")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "device-signature secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
