package main

import (
	"os"
	"time"

	"github.com/mcdev12/cubedraft/go/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// loadConfig reads the server configuration and points the global logger
// at the console with the configured level.
func loadConfig() (*config.Config, error) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Info().
		Str("card_source", cfg.Cards.Source).
		Str("store_backend", cfg.Store.Backend).
		Str("namespace", cfg.Store.Namespace).
		Str("reward_table", cfg.Draft.RewardTable).
		Int("timer_seconds", cfg.Draft.Settings.TimerSeconds).
		Int("total_picks", cfg.Draft.Settings.TotalPicks).
		Int("initial_skips", cfg.Draft.Settings.InitialSkips).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("configuration loaded")
	return cfg, nil
}
