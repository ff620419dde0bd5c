// Package config loads client settings: defaults, then an optional JSON
// file (-c/-config), then command-line flags. Later sources win.
package config

import "time"

// Config holds runtime settings for the ClientPro CLI.
type Config struct {
	// RelayAddr is the base URL of the relay endpoint.
	RelayAddr string

	// DBPath is the local SQLite database file.
	DBPath string

	// ExportDir is where .cpb files are written.
	ExportDir string

	// PollInterval is the inbox watcher period.
	PollInterval time.Duration

	// AutoBackupPeriod is the distance between automatic backups.
	AutoBackupPeriod time.Duration

	// LegacySecret, when set, enables restoring pre-envelope passphrase
	// backups.
	LegacySecret string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RelayAddr = "http://127.0.0.1:8080"
	c.DBPath = "clientpro.db"
	c.ExportDir = "exports"
	c.PollInterval = 30 * time.Second
	c.AutoBackupPeriod = 24 * time.Hour
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
