// Package infra selects the configured storage backend.
package infra

import (
	"context"
	"fmt"

	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/infra/bigquery"
	"github.com/dvloznov/notification-ledger/internal/infra/sqlite"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/rs/zerolog"
)

// OpenRepository opens the backend named by cfg.Backend. The SQLite store
// migrates itself on open; the BigQuery dataset is migrated by cmd/migrate.
func OpenRepository(ctx context.Context, cfg config.Config, log zerolog.Logger) (store.Repository, error) {
	switch cfg.Backend {
	case config.BackendSQLite, "":
		st, err := sqlite.Open(ctx, cfg.SQLitePath, logger.Component(log, "sqlite"))
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendBigQuery:
		wh, err := bigquery.New(ctx, cfg.GCPProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, err
		}
		return wh, nil
	default:
		return nil, fmt.Errorf("infra.OpenRepository: unknown backend %q", cfg.Backend)
	}
}
