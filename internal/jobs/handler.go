package jobs

import (
	"context"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/ingest"
	"github.com/dvloznov/notification-ledger/internal/logger"
)

// Ingester is the part of ingest.Service a job needs.
type Ingester interface {
	IngestBatch(ctx context.Context, text string, hint domain.Locale, windowMinutes int) (ingest.BatchReport, error)
	IngestObject(ctx context.Context, uri string, hint domain.Locale, windowMinutes int) (ingest.BatchReport, error)
}

// NewIngestHandler returns a Handler that ingests a job's batch through svc
// and records the run and counts on the job.
func NewIngestHandler(svc Ingester) Handler {
	return func(ctx context.Context, job *IngestBatchJob) error {
		log := logger.FromContext(ctx).With().Str("job_id", job.JobID).Logger()

		var (
			rep ingest.BatchReport
			err error
		)
		if job.GCSURI != "" {
			rep, err = svc.IngestObject(ctx, job.GCSURI, job.LocaleHint, job.WindowMinutes)
		} else {
			rep, err = svc.IngestBatch(ctx, job.Text, job.LocaleHint, job.WindowMinutes)
		}
		job.RunID = rep.RunID
		if rep.ArchiveURI != "" {
			job.ArchiveURI = rep.ArchiveURI
		}
		if err != nil {
			log.Warn().Err(err).Int("retry_count", job.RetryCount).Msg("ingest job failed")
			return err
		}

		job.Summary = &Summary{
			Accepted:   rep.Accepted,
			Rejected:   rep.Rejected,
			Duplicates: rep.Duplicates,
			Stored:     rep.Stored,
			Truncated:  rep.Truncated,
		}
		log.Info().
			Str("run_id", rep.RunID).
			Int("accepted", rep.Accepted).
			Int("stored", rep.Stored).
			Msg("ingest job completed")
		return nil
	}
}
