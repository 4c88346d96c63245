package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/expense-tracker/internal/api"
	"github.com/dvloznov/expense-tracker/internal/app"
	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/jobs/inmemory"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/telegram"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT)")
	webhook := flag.Bool("webhook", cfg.TelegramToken != "", "Serve Telegram updates on POST /webhook")
	flag.Parse()
	cfg.Port = *port

	log := logger.NewWithLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.QueueBuffer, cfg.QueueWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, a.Tracker.HandleExtractJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start extraction workers")
	}
	log.Info().Int("workers", cfg.QueueWorkers).Msg("Extraction workers started")

	deps := api.Deps{
		Tracker:   a.Tracker,
		Publisher: jobQueue,
		Jobs:      jobStore,
		APIKey:    cfg.APIKey,
		Log:       log,
	}
	if a.Archive != nil {
		deps.Archive = a.Archive
	}

	if *webhook {
		if err := cfg.RequireTelegram(); err != nil {
			log.Fatal().Err(err).Msg("Webhook mode needs a bot token")
		}
		bot, err := telegram.NewBot(cfg.TelegramToken, a.Tracker)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Telegram bot")
		}
		deps.Bot = bot
		log.Info().Msg("Telegram webhook enabled on POST /webhook")
	}

	if cfg.APIKey == "" {
		log.Warn().Msg("API_KEY not set, the HTTP API is unauthenticated")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
