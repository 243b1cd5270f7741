package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/twenty-sol/internal/config"
	"github.com/vovakirdan/twenty-sol/internal/rewards"
	"github.com/vovakirdan/twenty-sol/internal/session"
	"github.com/vovakirdan/twenty-sol/internal/storage"
)

var errNoWallet = errors.New("no wallet: pass --wallet or set TWENTYSOL_WALLET")

// app holds the services a command runs against.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *storage.Store
	svc    *session.Service
}

// loadConfig loads configuration and applies the flags set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database.Path = flagDBPath
	}
	if flags.Changed("seed") {
		cfg.Game.Seed = flagSeed
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// openApp loads configuration and opens the store.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "twentysol",
		Level:           cfg.LogLevel(),
	})

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug("database opened", "path", cfg.Database.Path)

	svc := session.NewService(session.Config{
		Policy: rewards.Policy{
			Threshold: cfg.Rewards.Threshold,
			Divisor:   cfg.Rewards.Divisor,
			Decimals:  cfg.Rewards.Decimals,
		},
		Seed:     cfg.Game.Seed,
		PageSize: cfg.Leaderboard.PageSize,
	}, store, rewards.NewLedgerMinter(logger), logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		svc:    svc,
	}, nil
}

// Close releases the store.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("could not close database", "error", err)
	}
}

func requireWallet() (string, error) {
	if flagWallet == "" {
		return "", errNoWallet
	}
	if err := rewards.ValidateWallet(flagWallet); err != nil {
		return "", err
	}
	return flagWallet, nil
}
