package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/clientpro-app/clientpro/internal/flagx"
	"github.com/clientpro-app/clientpro/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept either strings like "30s" or integer nanoseconds.
type JsonConfig struct {
	RelayAddr        string         `json:"relay_addr"`
	DBPath           string         `json:"db_path"`
	ExportDir        string         `json:"export_dir"`
	PollInterval     timex.Duration `json:"poll_interval"`
	AutoBackupPeriod timex.Duration `json:"auto_backup_period"`
	LegacySecret     string         `json:"legacy_secret"`
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

	if jc.RelayAddr != "" {
		cfg.RelayAddr = jc.RelayAddr
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.ExportDir != "" {
		cfg.ExportDir = jc.ExportDir
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.AutoBackupPeriod.Duration != 0 {
		cfg.AutoBackupPeriod = time.Duration(jc.AutoBackupPeriod.Duration)
	}
	if jc.LegacySecret != "" {
		cfg.LegacySecret = jc.LegacySecret
	}
}
