package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 720*time.Hour, cfg.SigTTL)
	assert.Equal(t, time.Hour, cfg.JanitorInterval)
	assert.Equal(t, "clientpro-drive", cfg.S3Bucket)
}

func TestParseJson_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"addr": ":9090",
		"database_dsn": "postgres://relay",
		"secret_key": "shh",
		"janitor_interval": "10m"
	}`), 0o600))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"relay", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://relay", cfg.DatabaseDSN)
	assert.Equal(t, "shh", cfg.SecretKey)
	assert.Equal(t, 10*time.Minute, cfg.JanitorInterval)
	// untouched fields keep their defaults
	assert.Equal(t, 720*time.Hour, cfg.SigTTL)
}

func TestParseFlags_Overlay(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"relay", "-a", ":7070", "-d", "postgres://x", "-k", "key"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, "key", cfg.SecretKey)
}
