package config

import (
	_ "embed"
)

//go:embed defaults/twentysol.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Path: "~/.twentysol/twentysol.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Game: GameConfig{
			Seed: 0,
		},
		Rewards: RewardsConfig{
			Threshold: 1024,
			Divisor:   512,
			Decimals:  6,
		},
		Leaderboard: LeaderboardConfig{
			PageSize: 20,
		},
	}
}
