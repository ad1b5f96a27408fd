// Command migrate applies the embedded schema migrations to the configured
// event store and reports which versions are recorded.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/infra/bigquery"
	"github.com/dvloznov/notification-ledger/internal/infra/sqlite"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/migrate"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	cfg.BindFlags(fs)
	appliedBy := fs.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
	statusOnly := fs.Bool("status", false, "List applied and pending migrations without applying")
	_ = fs.Parse(os.Args[1:])

	log := logger.NewWithLevel(os.Stderr, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	target, replacements, closeFn, err := openTarget(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to open target")
	}
	defer closeFn()

	migrations, err := migrate.Load(cfg.Backend, replacements)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read migrations")
	}
	log.Info().Str("backend", cfg.Backend).Int("files", len(migrations)).Msg("Found migration files")

	if !*statusOnly {
		n, err := migrate.Run(ctx, target, migrations, *appliedBy, log)
		if err != nil {
			log.Fatal().Err(err).Int("applied", n).Msg("Migration failed")
		}
		if n == 0 {
			log.Info().Msg("No new migrations to apply. Database is up to date.")
		} else {
			log.Info().Int("applied", n).Msg("Migrations applied")
		}
	}

	if err := target.Ensure(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure schema_migrations")
	}
	applied, err := target.Applied(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list applied migrations")
	}
	for _, line := range statusLines(migrations, applied) {
		fmt.Println(line)
	}
}

// openTarget opens the backend named in cfg. Opening SQLite already applies
// its migrations, so a later Run finds nothing pending there.
func openTarget(ctx context.Context, cfg config.Config, log zerolog.Logger) (migrate.Target, map[string]string, func(), error) {
	switch cfg.Backend {
	case config.BackendBigQuery:
		wh, err := bigquery.New(ctx, cfg.GCPProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("project", cfg.GCPProject).Str("dataset", cfg.BigQueryDataset).Msg("Connected to BigQuery")
		return wh, wh.Replacements(), func() { wh.Close() }, nil
	default:
		st, err := sqlite.Open(ctx, cfg.SQLitePath, logger.Component(log, "sqlite"))
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Opened SQLite database")
		return st, nil, func() { st.Close() }, nil
	}
}

// statusLines renders one line per known migration, plus any recorded
// version with no matching file.
func statusLines(migrations []migrate.Migration, applied []migrate.Applied) []string {
	byVersion := make(map[int]migrate.Applied, len(applied))
	for _, a := range applied {
		byVersion[a.Version] = a
	}

	var lines []string
	for _, m := range migrations {
		a, ok := byVersion[m.Version]
		switch {
		case !ok:
			lines = append(lines, fmt.Sprintf("  [PENDING] %04d_%s", m.Version, m.Name))
		case a.Checksum != "" && a.Checksum != m.Checksum:
			lines = append(lines, fmt.Sprintf("  [CHANGED] %04d_%s (applied %s)", m.Version, m.Name, a.AppliedAt.Format(time.RFC3339)))
		default:
			lines = append(lines, fmt.Sprintf("  [OK]      %04d_%s (applied %s)", m.Version, m.Name, a.AppliedAt.Format(time.RFC3339)))
		}
		delete(byVersion, m.Version)
	}
	for _, a := range applied {
		if _, unknown := byVersion[a.Version]; unknown {
			lines = append(lines, fmt.Sprintf("  [UNKNOWN] %04d_%s", a.Version, a.Name))
		}
	}
	return lines
}
