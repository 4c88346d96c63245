package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/expense-tracker/internal/app"
	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/gcsuploader"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/locale"
	"github.com/dvloznov/expense-tracker/internal/service"
)

func main() {
	cfg := config.Load()

	// Parse CLI flags
	gcsURI := flag.String("gcs-uri", "", "GCS URI of the receipt image (e.g. gs://bucket/receipts/1/r.jpg)")
	owner := flag.Int64("owner", 0, "Telegram id the expense belongs to")
	mimeType := flag.String("mime-type", "image/jpeg", "MIME type of the image")
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}
	if _, _, err := gcsuploader.ParseGCSURI(*gcsURI); err != nil {
		log.Fatal().Err(err).Msg("Error: --gcs-uri is not a gs:// URI")
	}
	if *owner <= 0 {
		log.Fatal().Msg("Error: --owner is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	log.Info().Str("gcs_uri", *gcsURI).Int64("telegram_id", *owner).Msg("Starting ingestion")

	outcome, err := a.Tracker.RecordArchivedImage(ctx, *owner, *gcsURI, *mimeType)
	if err != nil {
		if errors.Is(err, service.ErrExtractionUnavailable) {
			log.Fatal().Err(err).Msg("Model unavailable, try again later")
		}
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	if outcome.NeedsClarification {
		fmt.Println("No amount found on the receipt; nothing was stored.")
		return
	}

	rec := outcome.Record
	fmt.Printf("Stored expense %s: %s, %s (%s)\n", rec.ID, locale.FormatRupiah(rec.Amount), rec.Description, rec.Category)
}
