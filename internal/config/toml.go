// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Monitor MonitorConfig `toml:"monitor"`
}

// MonitorConfig maps monitor-related settings. Durations are in seconds.
type MonitorConfig struct {
	AnalysisWindow      *float64 `toml:"analysis-window"`
	UpdateInterval      *float64 `toml:"update-interval"`
	DataRetention       *float64 `toml:"data-retention"`
	InactivityThreshold *float64 `toml:"inactivity-threshold"`
	BaselineWPM         *float64 `toml:"baseline-wpm"`
	FatigueThreshold    *float64 `toml:"fatigue-threshold"`
	HealthThreshold     *float64 `toml:"health-threshold"`
	SaveInterval        *float64 `toml:"save-interval"`
	LogLevel            *string  `toml:"log-level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
