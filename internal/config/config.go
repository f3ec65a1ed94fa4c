package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gridpulse/internal/spikes"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server   ServerConfig      `yaml:"server"`
	Market   MarketConfig      `yaml:"market"`
	Detector spikes.Thresholds `yaml:"detector"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// MarketConfig pins the market's fixed operating timezone and the datasets
// a trading day is fetched from. TargetTimezone is the default presentation
// timezone; requests may override it.
type MarketConfig struct {
	SourceTimezone  string `yaml:"source_timezone"`
	TargetTimezone  string `yaml:"target_timezone"`
	DayAheadDataset string `yaml:"day_ahead_dataset"`
	RealTimeDataset string `yaml:"real_time_dataset"`
	LocationsFile   string `yaml:"locations_file"`
}

// Default returns the built-in configuration: CAISO hourly day-ahead and
// 5-minute real-time LMP datasets, presented in the market's own timezone.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"*"},
		},
		Market: MarketConfig{
			SourceTimezone:  "America/Los_Angeles",
			TargetTimezone:  "America/Los_Angeles",
			DayAheadDataset: "caiso_lmp_day_ahead_hourly",
			RealTimeDataset: "caiso_lmp_real_time_5_min",
		},
		Detector: spikes.DefaultThresholds(),
	}
}

// Load reads YAML config from path, overlays it on the defaults and
// validates the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, err
		}
	}
	// API_PORT from the environment wins, matching deploy conventions.
	if port := os.Getenv("API_PORT"); port != "" {
		c.Server.Port = port
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if _, err := time.LoadLocation(c.Market.SourceTimezone); err != nil {
		return fmt.Errorf("market.source_timezone invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.Market.TargetTimezone); err != nil {
		return fmt.Errorf("market.target_timezone invalid: %w", err)
	}
	return nil
}
