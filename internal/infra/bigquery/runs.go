package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/notification-ledger/internal/store"
)

// RunRow is one row of the ingest_runs table.
type RunRow struct {
	RunID  string `bigquery:"run_id"` // REQUIRED
	Source string `bigquery:"source"` // REQUIRED
	Status string `bigquery:"status"` // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Accepted   bigquery.NullInt64 `bigquery:"accepted"`
	Rejected   bigquery.NullInt64 `bigquery:"rejected"`
	Duplicates bigquery.NullInt64 `bigquery:"duplicates"`

	Error bigquery.NullString `bigquery:"error"` // NULLABLE
}

// Run maps the row to a store.Run.
func (r *RunRow) Run() *store.Run {
	run := &store.Run{
		RunID:      r.RunID,
		Source:     r.Source,
		Status:     store.RunStatus(r.Status),
		StartedAt:  r.StartedTS,
		Accepted:   int(r.Accepted.Int64),
		Rejected:   int(r.Rejected.Int64),
		Duplicates: int(r.Duplicates.Int64),
		Error:      r.Error.StringVal,
	}
	if r.FinishedTS.Valid {
		run.FinishedAt = r.FinishedTS.Timestamp
	}
	return run
}
