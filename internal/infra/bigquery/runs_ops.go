package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// StartRun inserts a new row into ingest_runs with status=RUNNING and
// returns the generated run_id.
func (w *Warehouse) StartRun(ctx context.Context, source string) (string, error) {
	runID := uuid.NewString()

	err := w.run(ctx, fmt.Sprintf(`
		INSERT %s (run_id, source, status, started_ts)
		VALUES (@run_id, @source, @status, @started_ts)
	`, w.table(runsTable)),
		bigquery.QueryParameter{Name: "run_id", Value: runID},
		bigquery.QueryParameter{Name: "source", Value: source},
		bigquery.QueryParameter{Name: "status", Value: string(store.RunRunning)},
		bigquery.QueryParameter{Name: "started_ts", Value: w.now()},
	)
	if err != nil {
		return "", fmt.Errorf("StartRun: %w", err)
	}
	return runID, nil
}

// MarkRunSucceeded sets status=SUCCESS, finished_ts and the counts, and
// clears error.
func (w *Warehouse) MarkRunSucceeded(ctx context.Context, runID string, counts store.RunCounts) error {
	err := w.run(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    accepted = @accepted,
		    rejected = @rejected,
		    duplicates = @duplicates,
		    error = NULL
		WHERE run_id = @run_id
	`, w.table(runsTable)),
		bigquery.QueryParameter{Name: "status", Value: string(store.RunSuccess)},
		bigquery.QueryParameter{Name: "finished_ts", Value: w.now()},
		bigquery.QueryParameter{Name: "accepted", Value: counts.Accepted},
		bigquery.QueryParameter{Name: "rejected", Value: counts.Rejected},
		bigquery.QueryParameter{Name: "duplicates", Value: counts.Duplicates},
		bigquery.QueryParameter{Name: "run_id", Value: runID},
	)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: %w", err)
	}
	return nil
}

// MarkRunFailed sets status=FAILED, finished_ts and error.
func (w *Warehouse) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	log := logger.FromContext(ctx)

	err := w.run(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error = @error
		WHERE run_id = @run_id
	`, w.table(runsTable)),
		bigquery.QueryParameter{Name: "status", Value: string(store.RunFailed)},
		bigquery.QueryParameter{Name: "finished_ts", Value: w.now()},
		bigquery.QueryParameter{Name: "error", Value: store.TruncateError(runErr)},
		bigquery.QueryParameter{Name: "run_id", Value: runID},
	)
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkRunFailed: updating run")
	}
}

// GetRun returns one run by ID.
func (w *Warehouse) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	q := w.client.Query(fmt.Sprintf(`
		SELECT run_id, source, status, started_ts, finished_ts, accepted, rejected, duplicates, error
		FROM %s
		WHERE run_id = @run_id
		LIMIT 1
	`, w.table(runsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetRun: query read: %w", err)
	}

	var row RunRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, fmt.Errorf("GetRun: %s: %w", runID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetRun: iter next: %w", err)
	}
	return row.Run(), nil
}
