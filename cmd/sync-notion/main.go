package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/dvloznov/expense-tracker/internal/domain"
	infraBQ "github.com/dvloznov/expense-tracker/internal/infra/bigquery"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/dvloznov/expense-tracker/internal/notionsync"
)

func main() {
	cfg := config.Load()
	now := time.Now()

	owner := flag.Int64("owner", 0, "Telegram id to export; 0 exports every user")
	year := flag.Int("year", now.Year(), "Year to export")
	month := flag.Int("month", int(now.Month()), "Month to export (1-12)")
	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", cfg.NotionDBID, "Notion database ID (or set NOTION_DB_ID)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg.NotionToken = *notionToken
	cfg.NotionDBID = *notionDBID

	log := logger.NewWithLevel(cfg.LogLevel)
	if err := cfg.RequireNotion(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.RequireStorage(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *month < 1 || *month > 12 {
		log.Fatal().Int("month", *month).Msg("Error: --month must be between 1 and 12")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewBigQueryRepository(ctx, cfg.GCPProject, cfg.BQDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	owners := []int64{*owner}
	if *owner == 0 {
		users, err := repo.ListUsers(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list users")
		}
		owners = owners[:0]
		for _, u := range users {
			owners = append(owners, u.TelegramID)
		}
	}

	notionClient := notionsync.NewNotionClient(cfg.NotionToken)

	var total notionsync.Result
	for _, id := range owners {
		scope := domain.Scope{OwnerID: id, Year: *year, Month: *month}
		res, err := notionsync.ExportExpenses(ctx, repo, notionClient, cfg.NotionDBID, scope, *dryRun)
		if err != nil {
			log.Fatal().Err(err).Int64("telegram_id", id).Msg("Export failed")
		}
		total.Total += res.Total
		total.Created += res.Created
		total.Skipped += res.Skipped
		total.Failed += res.Failed
	}

	fmt.Printf("Export completed: %d records, %d created, %d already present, %d failed.\n",
		total.Total, total.Created, total.Skipped, total.Failed)
}
