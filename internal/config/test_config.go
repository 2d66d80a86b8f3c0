package config

import "time"

// TestConfig returns a config suitable for testing.
func TestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:0",
		},
		Database: DatabaseConfig{
			Backend: "file",
		},
		Feed: FeedConfig{
			HTTPTimeout:     5 * time.Second,
			RefreshInterval: 1 * time.Minute,
			UserAgent:       "agora-test/1.0",
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}
