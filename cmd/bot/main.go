package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rpbot/internal/adapters/discord"
	"rpbot/internal/application"
	"rpbot/internal/config"
	"rpbot/internal/infrastructure/database"
	"rpbot/internal/infrastructure/i18n"
	"rpbot/internal/infrastructure/metrics"
	"rpbot/internal/infrastructure/scheduler"
	"rpbot/internal/infrastructure/webhook"
	"rpbot/internal/ports/output"
)

const activityQueueSize = 256

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(); err != nil {
		log.Error().Err(err).Msg("❌ Bot stopped with an error")
		os.Exit(1)
	}
}

// run owns every deferred shutdown step, so they all happen before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	translator, err := i18n.NewTranslator(cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	repo, closeDB, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("initialise database: %w", err)
	}
	defer closeDB()

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("❌ Metrics endpoint stopped")
			}
		}()
	}

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return err
	}

	var activity output.ActivityLog = webhook.Nop{}
	if cfg.LogWebhookURL != "" {
		a, err := webhook.NewActivityLog(session, cfg.LogWebhookURL, translator, translator.DefaultLocale())
		if err != nil {
			return fmt.Errorf("invalid LOG_WEBHOOK_URL: %w", err)
		}
		queue := webhook.NewQueue(a, activityQueueSize)
		queue.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = queue.Stop(stopCtx)
		}()
		activity = queue
	}

	ledger := application.NewLedgerService(repo, activity, collector, cfg.WhitelistedUsers)

	weekly, err := scheduler.NewWeekly(cfg.ResetSchedule, func(ctx context.Context) error {
		_, err := ledger.WeeklyRollover(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("invalid RESET_SCHEDULE: %w", err)
	}

	handler := discord.NewHandler(ledger, translator, translator.DefaultLocale(), collector, weekly.NextReset)
	bot := discord.NewBot(cfg, session, handler, translator, weekly)
	return bot.Start(ctx)
}
