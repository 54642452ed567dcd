// Package app wires configuration into the services shared by the web server and the Telegram bot.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/Alias1177/HeartRisk/internal/api/predictor"
	"github.com/Alias1177/HeartRisk/internal/config"
	"github.com/Alias1177/HeartRisk/internal/history"
	"github.com/Alias1177/HeartRisk/internal/session"
	"github.com/Alias1177/HeartRisk/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PruneInterval is how often idle sessions are dropped
const PruneInterval = time.Hour

type App struct {
	Config   *config.Config
	Sessions *session.Manager
	store    storage.BlobStore
}

// SetupLogger points the global logger at a console writer with the configured level
func SetupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// New opens storage and builds the prediction client and the session manager
func New(cfg *config.Config) (*App, error) {
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.StorageDriver, err)
	}

	client := predictor.NewClient(predictor.ClientOptions{
		URL:             cfg.PredictURL,
		RequestTimeout:  cfg.Timeout(),
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetries:      cfg.MaxRetries,
		MaxRetryTimeout: cfg.Timeout(),
	})

	sessions := session.NewManager(cfg.HistoryKey, client, history.NewRepository(store))

	log.Info().
		Str("storage", cfg.StorageDriver).
		Str("predict_url", cfg.PredictURL).
		Dur("timeout", cfg.Timeout()).
		Msg("Services initialized")

	return &App{
		Config:   cfg,
		Sessions: sessions,
		store:    store,
	}, nil
}

func (a *App) Close() error {
	return a.store.Close()
}
