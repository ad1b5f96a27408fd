package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/notification-ledger/internal/migrate"
	"google.golang.org/api/iterator"
)

// Ensure creates the schema_migrations table if it doesn't exist.
func (w *Warehouse) Ensure(ctx context.Context) error {
	err := w.run(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version    INT64 NOT NULL,
			name       STRING NOT NULL,
			applied_at TIMESTAMP NOT NULL,
			checksum   STRING,
			applied_by STRING
		)
	`, w.table(migrationsTable)))
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}
	return nil
}

// Applied lists the recorded migrations.
func (w *Warehouse) Applied(ctx context.Context) ([]migrate.Applied, error) {
	q := w.client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s
		ORDER BY version ASC
	`, w.table(migrationsTable)))

	it, err := q.Read(ctx)
	if err != nil {
		// The table may not exist yet.
		if strings.Contains(err.Error(), "Not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []migrate.Applied
	for {
		var row struct {
			Version   int64               `bigquery:"version"`
			Name      string              `bigquery:"name"`
			AppliedAt time.Time           `bigquery:"applied_at"`
			Checksum  bigquery.NullString `bigquery:"checksum"`
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}
		applied = append(applied, migrate.Applied{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}
	return applied, nil
}

// Apply executes a migration and records it. BigQuery has no transactional
// DDL, so a failed record leaves the schema change in place and the next
// run retries it; migrations use IF NOT EXISTS for that reason.
func (w *Warehouse) Apply(ctx context.Context, m migrate.Migration, appliedBy string) error {
	if err := w.run(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing %s: %w", m.Filename, err)
	}

	err := w.run(ctx, fmt.Sprintf(`
		INSERT INTO %s (version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, @applied_at, @checksum, @applied_by)
	`, w.table(migrationsTable)),
		bigquery.QueryParameter{Name: "version", Value: m.Version},
		bigquery.QueryParameter{Name: "name", Value: m.Name},
		bigquery.QueryParameter{Name: "applied_at", Value: w.now()},
		bigquery.QueryParameter{Name: "checksum", Value: m.Checksum},
		bigquery.QueryParameter{Name: "applied_by", Value: appliedBy},
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", m.Filename, err)
	}
	return nil
}
