package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dvloznov/expense-tracker/internal/app"
	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/gcsuploader"
	"github.com/dvloznov/expense-tracker/internal/gemini"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/pipeline"
	"github.com/dvloznov/expense-tracker/internal/report"
	"github.com/dvloznov/expense-tracker/internal/service"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := logger.NewWithLevel(cfg.LogLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(cfg, log)
	case "report":
		runReport(cfg, log)
	case "recent":
		runRecent(cfg, log)
	case "upload":
		runUpload(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Expense Tracker CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract   Extract an expense from text or a receipt image")
	fmt.Println("  report    Print a monthly report for a user")
	fmt.Println("  recent    Print a user's latest expenses")
	fmt.Println("  upload    Archive a receipt image to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runExtract(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	text := fs.String("text", "", "Expense text, e.g. \"kopi 15rb\"")
	imagePath := fs.String("image", "", "Path to a receipt image")
	save := fs.Bool("save", false, "Store the expense in BigQuery")
	owner := fs.Int64("owner", 0, "Telegram id to store the expense for (required with -save)")
	fs.Parse(os.Args[2:])

	if (*text == "") == (*imagePath == "") {
		log.Fatal().Msg("Usage: cli extract (-text TEXT | -image PATH) [-save -owner ID]")
	}
	if *save && *owner <= 0 {
		log.Fatal().Msg("Error: -owner is required with -save")
	}

	var image []byte
	var mimeType string
	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			log.Fatal().Err(err).Str("file", *imagePath).Msg("Failed to read image")
		}
		image = data
		mimeType = http.DetectContentType(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	if *save {
		a, err := app.New(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize")
		}
		defer a.Close()

		var outcome service.Outcome
		if image != nil {
			outcome, err = a.Tracker.RecordImage(ctx, *owner, image, mimeType)
		} else {
			outcome, err = a.Tracker.RecordText(ctx, *owner, *text)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Extraction failed")
		}
		if outcome.NeedsClarification {
			printJSON(outcome.Draft)
			fmt.Println("No amount found; nothing was stored.")
			return
		}
		printJSON(outcome.Record)
		return
	}

	var model pipeline.ModelClient
	if client, err := gemini.NewClient(ctx, cfg.GeminiModel); err != nil {
		log.Warn().Err(err).Msg("Gemini unavailable, using keyword heuristics")
	} else {
		model = client
	}
	extractor := pipeline.NewExtractor(model)

	var (
		extraction pipeline.Extraction
		err        error
		kind       = domain.SourceText
	)
	if image != nil {
		kind = domain.SourceImage
		extraction, err = extractor.ExtractImage(ctx, image, mimeType)
	} else {
		extraction, err = extractor.ExtractText(ctx, *text)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	draft := pipeline.Canonicalize(extraction.Draft, *text, kind, time.Now())
	printJSON(draft)
	if draft.NeedsClarification() {
		fmt.Println("No amount found.")
	}
}

func runReport(cfg *config.Config, log zerolog.Logger) {
	now := time.Now()
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	owner := fs.Int64("owner", 0, "Telegram id")
	year := fs.Int("year", now.Year(), "Year")
	month := fs.Int("month", int(now.Month()), "Month (1-12)")
	insights := fs.Bool("insights", false, "Include AI insights")
	fs.Parse(os.Args[2:])

	if *owner <= 0 {
		log.Fatal().Msg("Usage: cli report -owner ID [-year Y -month M] [-insights]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	scope := domain.Scope{OwnerID: *owner, Year: *year, Month: *month}
	var view *service.MonthlyView
	if *insights {
		view, err = a.Tracker.MonthlyReportWithInsights(ctx, scope)
	} else {
		view, err = a.Tracker.MonthlyReport(ctx, scope)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build report")
	}

	fmt.Println(report.FormatMonthlyReport(view.Report, view.Insights))
}

func runRecent(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	owner := fs.Int64("owner", 0, "Telegram id")
	limit := fs.Int("limit", service.DefaultRecentLimit, "Number of expenses")
	fs.Parse(os.Args[2:])

	if *owner <= 0 {
		log.Fatal().Msg("Usage: cli recent -owner ID [-limit N]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	records, err := a.Tracker.Recent(ctx, *owner, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query expenses")
	}
	fmt.Println(report.FormatRecent(records))
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.GCSBucket, "GCS bucket name (or set GCS_BUCKET)")
	owner := fs.Int64("owner", 0, "Telegram id the receipt belongs to")
	filePath := fs.String("file", "", "Path to local receipt image")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" || *owner <= 0 {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -owner ID -file PATH")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	storage, err := gcsuploader.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer storage.Close()

	uri, err := gcsuploader.NewArchive(storage, *bucketName).ArchiveReceipt(ctx, *owner, data, http.DetectContentType(data))
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, uri)
	fmt.Printf("Ingest it with: ingest -gcs-uri %s -owner %d\n", uri, *owner)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
