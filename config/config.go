// Package config loads daemon settings from a yaml file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Log holds the logger settings.
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

// Config holds the daemon settings.
type Config struct {
	Owner         string        `yaml:"owner"`
	DataDir       string        `yaml:"data_dir"`
	JournalDir    string        `yaml:"journal_dir"`
	WebAddr       string        `yaml:"web_addr"`
	PriceFeedURL  string        `yaml:"price_feed_url"`
	CheckInterval time.Duration `yaml:"check_interval"`
	KickDelay     time.Duration `yaml:"kick_delay"`
	Log           Log           `yaml:"log"`
}

func defaults() Config {
	return Config{
		Owner:         "local",
		DataDir:       "./data/state",
		JournalDir:    "./wal/audit",
		WebAddr:       ":8080",
		CheckInterval: 30 * time.Second,
		KickDelay:     time.Second,
		Log: Log{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
			Console:    true,
		},
	}
}

// Get parses flags and, when -config is given, merges the yaml file on
// top of the defaults.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	owner := flag.String("owner", "", "wallet owner identifier")
	dataDir := flag.String("datadir", "", "state database directory")
	journalDir := flag.String("journaldir", "", "audit journal directory")
	webAddr := flag.String("webaddr", "", "dashboard listen address, example :8080")
	priceFeedURL := flag.String("pricefeed", "", "websocket price feed url, empty disables the feed")
	checkInterval := flag.Duration("checkinterval", 0, "monitor tick interval")
	flag.Parse()

	cfg := defaults()
	if *configPath != "" {
		loaded, err := fromYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	// flags override the file
	if *owner != "" {
		cfg.Owner = *owner
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *journalDir != "" {
		cfg.JournalDir = *journalDir
	}
	if *webAddr != "" {
		cfg.WebAddr = *webAddr
	}
	if *priceFeedURL != "" {
		cfg.PriceFeedURL = *priceFeedURL
	}
	if *checkInterval > 0 {
		cfg.CheckInterval = *checkInterval
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromYaml(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %s", c.CheckInterval)
	}
	if c.KickDelay <= 0 {
		return fmt.Errorf("kick_delay must be positive, got %s", c.KickDelay)
	}
	if c.WebAddr == "" {
		return fmt.Errorf("web_addr is required")
	}
	return nil
}
