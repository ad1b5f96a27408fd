package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dvloznov/notification-ledger/internal/archive"
	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/infra"
	"github.com/dvloznov/notification-ledger/internal/ingest"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/normalize"
	"github.com/dvloznov/notification-ledger/internal/pipeline"
	"github.com/dvloznov/notification-ledger/internal/registry"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(cfg)
	case "batch":
		runBatch(cfg)
	case "events":
		runEvents(cfg)
	case "run":
		runShowRun(cfg)
	case "locales":
		runLocales()
	case "archive":
		runArchive(cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Notification Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Extract one notification without storing it")
	fmt.Println("  batch     Ingest a newline-separated batch into the event store")
	fmt.Println("  events    List stored events")
	fmt.Println("  run       Show an ingestion run")
	fmt.Println("  locales   List supported locales")
	fmt.Println("  archive   Upload a raw batch file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// newFlagSet returns a subcommand flag set carrying the shared config flags.
func newFlagSet(name string, cfg *config.Config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfg.BindFlags(fs)
	return fs
}

func setup(cfg config.Config) (context.Context, zerolog.Logger) {
	log := logger.NewWithLevel(os.Stderr, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	return logger.WithContext(context.Background(), log), log
}

func runProcess(cfg config.Config) {
	fs := newFlagSet("process", &cfg)
	text := fs.String("text", "", "Notification text (default: read stdin)")
	localeHint := fs.String("locale", "", "Locale hint, e.g. KR")
	asJSON := fs.Bool("json", false, "Print the full outcome as JSON")
	_ = fs.Parse(os.Args[2:])

	ctx, log := setup(cfg)

	msg := *text
	if msg == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		log.Fatal().Msg("Error: --text or stdin is required")
	}

	proc := pipeline.New(cfg, pipeline.WithLogger(logger.Component(log, "pipeline")))
	out := proc.ProcessMessage(ctx, msg, domain.Locale(strings.ToUpper(*localeHint)), 0)

	if *asJSON {
		printJSON(out)
		return
	}
	fmt.Println(describeOutcome(out))
}

func runBatch(cfg config.Config) {
	fs := newFlagSet("batch", &cfg)
	file := fs.String("file", "", "Batch file (default: read stdin)")
	localeHint := fs.String("locale", "", "Locale hint, e.g. KR")
	window := fs.Int("window", 0, "Duplicate window in minutes (0 uses the configured window)")
	_ = fs.Parse(os.Args[2:])

	ctx, log := setup(cfg)

	var (
		data []byte
		err  error
	)
	if *file == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read batch")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	repo, err := infra.OpenRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open event store")
	}
	defer repo.Close()

	opts := []ingest.Option{ingest.WithLogger(logger.Component(log, "ingest"))}
	if cfg.ArchiveBucket != "" {
		gcs, err := archive.New(ctx, cfg.ArchiveBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archive client")
		}
		defer gcs.Close()
		opts = append(opts, ingest.WithArchive(gcs))
	}

	proc := pipeline.New(cfg, pipeline.WithLogger(logger.Component(log, "pipeline")))
	svc := ingest.NewService(proc, repo, opts...)

	started := time.Now()
	rep, err := svc.IngestBatch(ctx, string(data), domain.Locale(strings.ToUpper(*localeHint)), *window)
	if err != nil {
		log.Fatal().Err(err).Str("run_id", rep.RunID).Msg("Batch ingestion failed")
	}

	fmt.Println(describeReport(rep, time.Since(started)))
}

func runEvents(cfg config.Config) {
	fs := newFlagSet("events", &cfg)
	category := fs.String("category", "", "Category filter, e.g. CARD_TRANSACTION")
	locale := fs.String("locale", "", "Locale filter, e.g. KR")
	start := fs.String("start-date", "", "Start date in YYYY-MM-DD format")
	end := fs.String("end-date", "", "End date in YYYY-MM-DD format")
	limit := fs.Int("limit", 50, "Maximum number of events")
	_ = fs.Parse(os.Args[2:])

	ctx, log := setup(cfg)

	filter := store.EventFilter{
		Category: domain.Category(strings.ToUpper(*category)),
		Limit:    *limit,
	}
	var err error
	if filter.Locale, err = domain.ParseLocale(*locale); err != nil {
		log.Fatal().Err(err).Msg("Invalid locale")
	}
	if filter.Start, err = parseDate(*start); err != nil {
		log.Fatal().Err(err).Msg("Invalid start-date")
	}
	if filter.End, err = parseDate(*end); err != nil {
		log.Fatal().Err(err).Msg("Invalid end-date")
	}

	repo, err := infra.OpenRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open event store")
	}
	defer repo.Close()

	events, err := repo.QueryEvents(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query events")
	}

	now := time.Now()
	fmt.Printf("\n=== Events (%s) ===\n", humanize.Comma(int64(len(events))))
	for i, e := range events {
		fmt.Printf("%d. %s\n", i+1, formatEvent(e, now))
	}
	fmt.Println()
}

func runShowRun(cfg config.Config) {
	fs := newFlagSet("run", &cfg)
	runID := fs.String("run-id", "", "Run ID to show")
	_ = fs.Parse(os.Args[2:])

	ctx, log := setup(cfg)
	if *runID == "" {
		log.Fatal().Msg("Error: --run-id is required")
	}

	repo, err := infra.OpenRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open event store")
	}
	defer repo.Close()

	run, err := repo.GetRun(ctx, *runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get run")
	}

	fmt.Println("\n=== Run Details ===")
	fmt.Printf("ID:         %s\n", run.RunID)
	fmt.Printf("Source:     %s\n", run.Source)
	fmt.Printf("Status:     %s\n", run.Status)
	fmt.Printf("Started:    %s (%s)\n", run.StartedAt.Format(time.RFC3339), humanize.Time(run.StartedAt))
	if !run.FinishedAt.IsZero() {
		fmt.Printf("Finished:   %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	fmt.Printf("Accepted:   %s\n", humanize.Comma(int64(run.Accepted)))
	fmt.Printf("Rejected:   %s\n", humanize.Comma(int64(run.Rejected)))
	fmt.Printf("Duplicates: %s\n", humanize.Comma(int64(run.Duplicates)))
	if run.Error != "" {
		fmt.Printf("Error:      %s\n", run.Error)
	}
}

func runLocales() {
	reg := registry.New()
	for _, l := range reg.Supported() {
		fmt.Printf("%s  %-14s %s\n", l, l.DisplayName(), normalize.CurrencyFor(l))
	}
}

func runArchive(cfg config.Config) {
	fs := newFlagSet("archive", &cfg)
	file := fs.String("file", "", "Path to local batch file")
	_ = fs.Parse(os.Args[2:])

	ctx, log := setup(cfg)
	if *file == "" || cfg.ArchiveBucket == "" {
		log.Fatal().Msg("Usage: cli archive -bucket NAME -file PATH")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	gcs, err := archive.New(ctx, cfg.ArchiveBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create archive client")
	}
	defer gcs.Close()

	uri, err := gcs.Put(ctx, string(data))
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s (%s) to %s\n", *file, humanize.Bytes(uint64(len(data))), uri)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func describeOutcome(out domain.Outcome) string {
	if out.Extraction == nil {
		return fmt.Sprintf("%s: %s", out.Status, out.Reason)
	}
	ext := out.Extraction
	line := fmt.Sprintf("%s %s locale=%s strategy=%s confidence=%.2f",
		out.Status, ext.Category(), ext.SourceLocale, ext.Strategy, ext.Confidence)
	if ext.Pattern != "" {
		line += " pattern=" + ext.Pattern
	}
	return line
}

func describeReport(rep ingest.BatchReport, elapsed time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %s lines in %s\n", rep.RunID, humanize.Comma(int64(len(rep.Items))), elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "  accepted   %s (stored %s)\n", humanize.Comma(int64(rep.Accepted)), humanize.Comma(int64(rep.Stored)))
	fmt.Fprintf(&b, "  rejected   %s\n", humanize.Comma(int64(rep.Rejected)))
	fmt.Fprintf(&b, "  duplicates %s", humanize.Comma(int64(rep.Duplicates)))
	if rep.Truncated > 0 {
		fmt.Fprintf(&b, "\n  truncated  %s", humanize.Comma(int64(rep.Truncated)))
	}
	if rep.ArchiveURI != "" {
		fmt.Fprintf(&b, "\n  archived   %s", rep.ArchiveURI)
	}
	return b.String()
}

func formatEvent(e *domain.Event, now time.Time) string {
	who := e.InstitutionName
	if who == "" {
		who = e.Institution
	}
	line := fmt.Sprintf("%s  %-18s %s  %s",
		humanize.RelTime(e.OccurredAt, now, "ago", "from now"),
		e.Category,
		normalize.FormatAmount(e.Amount, e.Locale),
		who,
	)
	if e.Counterparty != "" {
		line += " -> " + e.Counterparty
	}
	return line
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
