package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/expense-tracker/internal/app"
	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/digest"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/telegram"
)

func main() {
	cfg := config.Load()

	once := flag.Bool("once", false, "Send last month's digest now and exit")
	hour := flag.Int("hour", cfg.DigestHour, "Hour of day 1 to send the digest (or set DIGEST_HOUR)")
	flag.Parse()
	cfg.DigestHour = *hour

	log := logger.NewWithLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, logger.Component(log, "digest"))

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	bot, err := telegram.NewBot(cfg.TelegramToken, a.Tracker)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Telegram client")
	}
	d := digest.New(a.Tracker, bot)

	if *once {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		res, err := d.Send(runCtx, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("Digest failed")
		}
		log.Info().
			Int("sent", res.Sent).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Msg("Digest sent")
		return
	}

	log.Info().Int("hour", cfg.DigestHour).Msg("Starting digest worker")
	if err := digest.NewScheduler(d, cfg.DigestHour).Run(ctx); err != nil {
		log.Error().Err(err).Msg("Digest worker stopped with error")
	}
	log.Info().Msg("Digest worker exited")
}
