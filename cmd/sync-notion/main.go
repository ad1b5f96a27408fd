package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/infra"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/notionsync"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	cfg.BindFlags(fs)
	startDateStr := fs.String("start-date", "", "Start date in YYYY-MM-DD format (default: no lower bound)")
	endDateStr := fs.String("end-date", "", "End date in YYYY-MM-DD format (default: no upper bound)")
	fs.StringVar(&cfg.NotionToken, "notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN env)")
	fs.StringVar(&cfg.NotionDatabaseID, "notion-db-id", cfg.NotionDatabaseID, "Notion database ID (or set NOTION_EVENTS_DB_ID env)")
	update := fs.Bool("update", false, "Rewrite pages that already exist")
	dryRun := fs.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	_ = fs.Parse(os.Args[1:])

	log := logger.NewWithLevel(os.Stderr, cfg.LogLevel)

	if cfg.NotionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if cfg.NotionDatabaseID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	opts := notionsync.Options{Update: *update, DryRun: *dryRun}
	if *startDateStr != "" {
		if opts.Start, err = time.Parse("2006-01-02", *startDateStr); err != nil {
			log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
		}
	}
	if *endDateStr != "" {
		if opts.End, err = time.Parse("2006-01-02", *endDateStr); err != nil {
			log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
		}
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && opts.End.Before(opts.Start) {
		log.Fatal().
			Time("start_date", opts.Start).
			Time("end_date", opts.End).
			Msg("Error: end-date must be after start-date")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("start_date", *startDateStr).
		Str("end_date", *endDateStr).
		Str("backend", cfg.Backend).
		Bool("update", *update).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	repo, err := infra.OpenRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open event store")
	}
	defer repo.Close()

	db := notionsync.NewDatabase(cfg.NotionToken, cfg.NotionDatabaseID)

	res, err := notionsync.SyncEvents(ctx, repo, db, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d updated, %d skipped, %d archived, %d failed.\n",
		res.Created, res.Updated, res.Skipped, res.Archived, res.Failed)
	if res.Failed > 0 {
		os.Exit(1)
	}
}
