package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
owner: wallet1
web_addr: ":9090"
price_feed_url: "ws://localhost:7000/ticks"
check_interval: 10s
log:
  level: debug
  console: true
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := fromYaml(path)
	require.NoError(t, err)
	require.Equal(t, "wallet1", cfg.Owner)
	require.Equal(t, ":9090", cfg.WebAddr)
	require.Equal(t, "ws://localhost:7000/ticks", cfg.PriceFeedURL)
	require.Equal(t, 10*time.Second, cfg.CheckInterval)
	require.Equal(t, "debug", cfg.Log.Level)

	// unspecified fields keep defaults
	require.Equal(t, time.Second, cfg.KickDelay)
	require.Equal(t, "./data/state", cfg.DataDir)
}

func TestFromYamlMissingFile(t *testing.T) {
	_, err := fromYaml("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	require.NoError(t, cfg.validate())

	bad := defaults()
	bad.CheckInterval = 0
	require.Error(t, bad.validate())

	bad = defaults()
	bad.WebAddr = ""
	require.Error(t, bad.validate())
}
