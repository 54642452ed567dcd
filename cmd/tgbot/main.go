package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Alias1177/HeartRisk/internal/app"
	"github.com/Alias1177/HeartRisk/internal/bot"
	"github.com/Alias1177/HeartRisk/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	app.SetupLogger(cfg.LogLevel)

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	services, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go services.Sessions.RunPruner(ctx, app.PruneInterval, cfg.SessionIdleTimeout())

	handler := bot.NewHandler(api, services.Sessions)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info().Msg("Bot stopped")
			return
		case update := <-updates:
			// a slow prediction for one chat must not hold up the others
			go handler.HandleUpdate(ctx, update)
		}
	}
}
