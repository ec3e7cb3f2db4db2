package config

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Defaults DefaultsConfig `toml:"defaults"`
	Poller   PollerConfig   `toml:"poller"`
	Search   SearchConfig   `toml:"search"`
	History  HistoryConfig  `toml:"history"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds connection settings for the remote media service.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout int    `toml:"timeout"` // seconds
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume  int  `toml:"volume"`
	Shuffle bool `toml:"shuffle"`
	Repeat  bool `toml:"repeat"`
}

// PollerConfig holds download-job polling settings.
type PollerConfig struct {
	IntervalMS int `toml:"interval_ms"`
}

// SearchConfig holds request throttling settings for search calls.
type SearchConfig struct {
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
}

// HistoryConfig holds play-history settings.
type HistoryConfig struct {
	Limit  int    `toml:"limit"`
	DBPath string `toml:"db_path"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	RefreshInterval int `toml:"refresh_interval"` // milliseconds
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
