package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/clientpro-app/clientpro/internal/flagx"
	"github.com/clientpro-app/clientpro/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept either strings like "1h" or integer nanoseconds.
type JsonConfig struct {
	Addr            string         `json:"addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	SigTTL          timex.Duration `json:"sig_ttl"`
	JanitorInterval timex.Duration `json:"janitor_interval"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	S3Region        string         `json:"s3_region"`
	S3Bucket        string         `json:"s3_bucket"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Absent file path: no-op. Read or parse failures panic; the process has
// no useful way to continue with half a config.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Addr != "" {
		cfg.Addr = jc.Addr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.SigTTL.Duration != 0 {
		cfg.SigTTL = time.Duration(jc.SigTTL.Duration)
	}
	if jc.JanitorInterval.Duration != 0 {
		cfg.JanitorInterval = time.Duration(jc.JanitorInterval.Duration)
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3RootUser != "" {
		cfg.S3RootUser = jc.S3RootUser
	}
	if jc.S3RootPassword != "" {
		cfg.S3RootPassword = jc.S3RootPassword
	}
}
