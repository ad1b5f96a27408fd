package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/google/uuid"
)

// StartRun inserts a RUNNING run and returns its ID.
func (s *Store) StartRun(ctx context.Context, source string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (run_id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		runID, source, string(store.RunRunning), formatTime(s.now()),
	)
	if err != nil {
		return "", fmt.Errorf("StartRun: inserting run: %w", err)
	}
	return runID, nil
}

// MarkRunSucceeded sets status=SUCCESS, finished_at and the outcome counts.
func (s *Store) MarkRunSucceeded(ctx context.Context, runID string, counts store.RunCounts) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ingest_runs
		SET status = ?, finished_at = ?, accepted = ?, rejected = ?, duplicates = ?, error = NULL
		WHERE run_id = ?`,
		string(store.RunSuccess), formatTime(s.now()), counts.Accepted, counts.Rejected, counts.Duplicates, runID,
	)
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkRunSucceeded: %s: %w", runID, store.ErrNotFound)
	}
	return nil
}

// MarkRunFailed sets status=FAILED, finished_at and the error message.
func (s *Store) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ingest_runs SET status = ?, finished_at = ?, error = ? WHERE run_id = ?`,
		string(store.RunFailed), formatTime(s.now()), store.TruncateError(runErr), runID,
	)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("run_id", runID).Msg("MarkRunFailed: updating run")
	}
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	var (
		r                   store.Run
		status, startedAt   string
		finishedAt, message sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, source, status, started_at, finished_at, accepted, rejected, duplicates, error
		FROM ingest_runs WHERE run_id = ?`, runID,
	).Scan(&r.RunID, &r.Source, &status, &startedAt, &finishedAt, &r.Accepted, &r.Rejected, &r.Duplicates, &message)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetRun: %s: %w", runID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetRun: %w", err)
	}

	r.Status = store.RunStatus(status)
	r.Error = message.String
	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("GetRun: parsing started_at: %w", err)
	}
	if finishedAt.Valid {
		if r.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return nil, fmt.Errorf("GetRun: parsing finished_at: %w", err)
		}
	}
	return &r, nil
}

var _ store.Repository = (*Store)(nil)
