// Package jobs runs batch ingestion asynchronously: jobs are published to a
// queue, consumed by workers and tracked in a job store.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

var (
	// ErrQueueClosed is returned when publishing to or starting a stopped queue.
	ErrQueueClosed = errors.New("queue is closed")
	// ErrJobNotFound is returned for unknown job IDs.
	ErrJobNotFound = errors.New("job not found")
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed and has no retries left.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is waiting to be retried.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies to jobs published without MaxRetries.
const DefaultMaxRetries = 3

// Summary holds the counts of a finished ingestion job.
type Summary struct {
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
	Duplicates int `json:"duplicates"`
	Stored     int `json:"stored"`
	Truncated  int `json:"truncated"`
}

// IngestBatchJob ingests a batch of newline-separated notifications, given
// either inline as Text or as an archived object at GCSURI.
type IngestBatchJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	Text          string        `json:"-"`
	GCSURI        string        `json:"gcs_uri,omitempty"`
	LocaleHint    domain.Locale `json:"locale_hint,omitempty"`
	WindowMinutes int           `json:"window_minutes,omitempty"`

	// RunID is the ingestion run of the last attempt.
	RunID      string `json:"run_id,omitempty"`
	ArchiveURI string `json:"archive_uri,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the last attempt failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	Summary *Summary `json:"summary,omitempty"`
}

// Publisher publishes jobs to a queue.
type Publisher interface {
	// Publish enqueues a job, assigning its ID and defaults.
	Publish(ctx context.Context, job *IngestBatchJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer consumes jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs. The handler is called for each job.
	Start(ctx context.Context, handler Handler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// Handler processes a job. A returned error makes the job eligible for retry.
type Handler func(ctx context.Context, job *IngestBatchJob) error

// Store tracks job state.
type Store interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *IngestBatchJob) error

	// GetJob retrieves a job by ID or ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*IngestBatchJob, error)

	// ListJobs retrieves jobs, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*IngestBatchJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}
