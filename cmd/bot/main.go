package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvloznov/expense-tracker/internal/app"
	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/digest"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/telegram"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	noDigest := flag.Bool("no-digest", false, "Do not run the monthly digest scheduler alongside the bot")
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	bot, err := telegram.NewBot(cfg.TelegramToken, a.Tracker)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Telegram bot")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(logger.WithContext(gctx, logger.Component(log, "bot")))
	})

	if !*noDigest {
		scheduler := digest.NewScheduler(digest.New(a.Tracker, bot), cfg.DigestHour)
		g.Go(func() error {
			return scheduler.Run(logger.WithContext(gctx, logger.Component(log, "digest")))
		})
		log.Info().Int("hour", cfg.DigestHour).Msg("Monthly digest scheduled")
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Bot stopped with error")
		return
	}
	log.Info().Msg("Bot exited")
}
