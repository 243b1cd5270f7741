// Package config provides YAML-based configuration loading for Twenty-Sol.
package config

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the top-level application configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Game        GameConfig        `yaml:"game"`
	Rewards     RewardsConfig     `yaml:"rewards"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// GameConfig controls engine construction.
type GameConfig struct {
	Seed int64 `yaml:"seed"` // 0 = platform random source
}

// RewardsConfig defines the reward policy.
type RewardsConfig struct {
	Threshold int `yaml:"threshold"` // Minimum final score for a reward
	Divisor   int `yaml:"divisor"`   // Points per token
	Decimals  int `yaml:"decimals"`  // Token decimals
}

// LeaderboardConfig controls leaderboard paging.
type LeaderboardConfig struct {
	PageSize int `yaml:"page_size"`
}

// Validate checks the configuration for values the services cannot use.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	if c.Rewards.Threshold < 0 {
		return fmt.Errorf("%w: rewards.threshold must not be negative", ErrInvalidConfig)
	}
	if c.Rewards.Divisor <= 0 {
		return fmt.Errorf("%w: rewards.divisor must be positive", ErrInvalidConfig)
	}
	if c.Rewards.Decimals < 0 || c.Rewards.Decimals > 18 {
		return fmt.Errorf("%w: rewards.decimals must be within 0..18", ErrInvalidConfig)
	}
	if c.Leaderboard.PageSize <= 0 {
		return fmt.Errorf("%w: leaderboard.page_size must be positive", ErrInvalidConfig)
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
