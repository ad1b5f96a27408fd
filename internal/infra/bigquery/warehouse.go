// Package bigquery is the analytical event store. Events and runs are
// written to a partitioned BigQuery dataset through one shared client.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/notification-ledger/internal/migrate"
	"github.com/dvloznov/notification-ledger/internal/store"
)

const (
	eventsTable     = "events"
	runsTable       = "ingest_runs"
	migrationsTable = "schema_migrations"
	dateFormat      = "2006-01-02"
)

// Warehouse implements store.Repository on BigQuery. It holds a shared
// client to avoid creating a new connection for each operation.
type Warehouse struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	now       func() time.Time
}

// New creates a Warehouse for the given project and dataset.
func New(ctx context.Context, projectID, datasetID string) (*Warehouse, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery.New: creating client: %w", err)
	}
	return &Warehouse{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		now:       time.Now,
	}, nil
}

// Close closes the BigQuery client connection.
func (w *Warehouse) Close() error {
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}

// Replacements returns the placeholder values the BigQuery migrations need.
func (w *Warehouse) Replacements() map[string]string {
	return map[string]string{
		"PROJECT_ID": w.projectID,
		"DATASET_ID": w.datasetID,
	}
}

func (w *Warehouse) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", w.projectID, w.datasetID, name)
}

// run executes a DML or DDL statement and waits for it to finish.
func (w *Warehouse) run(ctx context.Context, sql string, params ...bigquery.QueryParameter) error {
	q := w.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

var (
	_ store.Repository = (*Warehouse)(nil)
	_ migrate.Target   = (*Warehouse)(nil)
)
