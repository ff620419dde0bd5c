// Package config loads the relay configuration: defaults, then an optional
// JSON file (-c/-config), then command-line flags.
package config

import "time"

type Config struct {
	Addr            string
	DatabaseDSN     string
	SecretKey       string
	SigTTL          time.Duration
	JanitorInterval time.Duration
	S3BaseEndpoint  string
	S3Region        string
	S3Bucket        string
	S3RootUser      string
	S3RootPassword  string
}

func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SigTTL = 720 * time.Hour
	c.JanitorInterval = time.Hour
	c.S3Region = "us-east-1"
	c.S3Bucket = "clientpro-drive"
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
