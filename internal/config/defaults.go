package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 30,
		},
		Defaults: DefaultsConfig{
			Volume:  80,
			Shuffle: false,
			Repeat:  false,
		},
		Poller: PollerConfig{
			IntervalMS: 1000,
		},
		Search: SearchConfig{
			RatePerSecond: 2,
			Burst:         1,
		},
		History: HistoryConfig{
			Limit:  50,
			DBPath: defaultHistoryDB(),
		},
		TUI: TUIConfig{
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Server
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = d.Server.BaseURL
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = d.Server.Timeout
	}

	// Defaults
	if c.Defaults.Volume == 0 {
		c.Defaults.Volume = d.Defaults.Volume
	}

	// Poller
	if c.Poller.IntervalMS == 0 {
		c.Poller.IntervalMS = d.Poller.IntervalMS
	}

	// Search
	if c.Search.RatePerSecond == 0 {
		c.Search.RatePerSecond = d.Search.RatePerSecond
	}
	if c.Search.Burst == 0 {
		c.Search.Burst = d.Search.Burst
	}

	// History
	if c.History.Limit == 0 {
		c.History.Limit = d.History.Limit
	}
	if c.History.DBPath == "" {
		c.History.DBPath = d.History.DBPath
	}

	// TUI
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func defaultHistoryDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "strum-history.db"
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "strum", "history.db")
}
