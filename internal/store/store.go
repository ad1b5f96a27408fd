// Package store defines the persistence contract for accepted events and
// ingestion runs. Implementations live under internal/infra.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// RunStatus is the lifecycle state of an ingestion run.
type RunStatus string

const (
	RunRunning RunStatus = "RUNNING"
	RunSuccess RunStatus = "SUCCESS"
	RunFailed  RunStatus = "FAILED"
)

// EventFilter narrows an event query. Zero fields match everything.
type EventFilter struct {
	Category domain.Category
	Locale   domain.Locale
	// Start and End bound OccurredAt, both inclusive by calendar day.
	Start time.Time
	End   time.Time
	Limit int
}

// Run is one ingestion run: a single message, a batch or an archived object.
type Run struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Status     RunStatus `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Accepted   int       `json:"accepted"`
	Rejected   int       `json:"rejected"`
	Duplicates int       `json:"duplicates"`
	Error      string    `json:"error,omitempty"`
}

// RunCounts are the aggregate outcome counts of a finished run.
type RunCounts struct {
	Accepted   int
	Rejected   int
	Duplicates int
}

// EventRepository persists accepted events.
type EventRepository interface {
	// InsertEvents stores events, skipping ones whose fingerprint and
	// occurrence time are already stored. It returns how many were new.
	InsertEvents(ctx context.Context, events []*domain.Event) (int, error)

	// GetEvent returns one event or ErrNotFound.
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)

	// QueryEvents returns events ordered by occurrence time.
	QueryEvents(ctx context.Context, f EventFilter) ([]*domain.Event, error)
}

// RunRepository tracks ingestion runs.
type RunRepository interface {
	// StartRun records a RUNNING run and returns its ID.
	StartRun(ctx context.Context, source string) (string, error)

	// MarkRunSucceeded sets SUCCESS, the finish time and the counts.
	MarkRunSucceeded(ctx context.Context, runID string, counts RunCounts) error

	// MarkRunFailed sets FAILED and the error message. Failures to record
	// the failure are logged, not returned.
	MarkRunFailed(ctx context.Context, runID string, runErr error)

	// GetRun returns one run or ErrNotFound.
	GetRun(ctx context.Context, runID string) (*Run, error)
}

// Repository is a complete storage backend.
type Repository interface {
	EventRepository
	RunRepository
	Close() error
}

// MaxErrorMessage bounds the stored error text of a failed run.
const MaxErrorMessage = 2000

// TruncateError returns the error text cut to MaxErrorMessage bytes.
func TruncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > MaxErrorMessage {
		msg = msg[:MaxErrorMessage]
	}
	return msg
}
