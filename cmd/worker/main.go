// Command worker ingests batches in the background with retries. Each
// argument is a gs:// URI of an archived batch or a local file; "-" reads
// the batch from stdin. It exits once every job is completed or failed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/notification-ledger/internal/archive"
	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/infra"
	"github.com/dvloznov/notification-ledger/internal/ingest"
	"github.com/dvloznov/notification-ledger/internal/jobs"
	"github.com/dvloznov/notification-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/pipeline"
)

const pollInterval = 200 * time.Millisecond

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("worker", flag.ExitOnError)
	cfg.BindFlags(fs)
	workers := fs.Int("workers", 2, "Number of concurrent workers")
	localeHint := fs.String("locale", "", "Locale hint applied to every batch")
	window := fs.Int("window", 0, "Duplicate window in minutes (0 uses the configured window)")
	_ = fs.Parse(os.Args[1:])

	log := logger.NewWithLevel(os.Stderr, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	hint, err := domain.ParseLocale(*localeHint)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid locale hint")
	}

	batch, err := buildJobs(fs.Args(), hint, *window, os.Stdin, os.ReadFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read batches")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo, err := infra.OpenRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to open event store")
	}
	defer repo.Close()

	svcOpts := []ingest.Option{ingest.WithLogger(logger.Component(log, "ingest"))}
	if cfg.ArchiveBucket != "" || hasObjects(batch) {
		gcs, err := archive.New(ctx, cfg.ArchiveBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archive client")
		}
		defer gcs.Close()
		svcOpts = append(svcOpts, ingest.WithArchive(gcs))
	}
	proc := pipeline.New(cfg, pipeline.WithLogger(logger.Component(log, "pipeline")))
	svc := ingest.NewService(proc, repo, svcOpts...)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(len(batch), jobStore,
		inmemory.WithWorkers(*workers),
		inmemory.WithLogger(logger.Component(log, "jobs")),
	)

	if err := jobQueue.Start(logger.WithContext(ctx, log), jobs.NewIngestHandler(svc)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}
	log.Info().Int("jobs", len(batch)).Int("workers", *workers).Msg("Worker service started")

	for _, job := range batch {
		if err := jobQueue.Publish(ctx, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to publish job")
		}
	}

	failed := wait(ctx, jobStore, len(batch))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	list, _ := jobStore.ListJobs(context.Background(), jobs.JobFilter{})
	for _, job := range list {
		fmt.Println(describe(job))
	}

	if failed > 0 || ctx.Err() != nil {
		os.Exit(1)
	}
}

// buildJobs turns arguments into jobs. gs:// arguments replay archived
// objects; anything else is read as an inline batch.
func buildJobs(args []string, hint domain.Locale, window int, stdin io.Reader, readFile func(string) ([]byte, error)) ([]*jobs.IngestBatchJob, error) {
	if len(args) == 0 {
		return nil, errors.New("no batches given")
	}
	var out []*jobs.IngestBatchJob
	for _, arg := range args {
		job := &jobs.IngestBatchJob{LocaleHint: hint, WindowMinutes: window}
		switch {
		case strings.HasPrefix(arg, "gs://"):
			if _, _, err := archive.ParseURI(arg); err != nil {
				return nil, err
			}
			job.GCSURI = arg
		case arg == "-":
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			job.Text = string(data)
		default:
			data, err := readFile(arg)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", arg, err)
			}
			job.Text = string(data)
		}
		out = append(out, job)
	}
	return out, nil
}

func hasObjects(batch []*jobs.IngestBatchJob) bool {
	for _, job := range batch {
		if job.GCSURI != "" {
			return true
		}
	}
	return false
}

// wait polls the store until n jobs are terminal or ctx ends, returning the
// number of failed jobs.
func wait(ctx context.Context, st jobs.Store, n int) int {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		list, err := st.ListJobs(ctx, jobs.JobFilter{})
		if err == nil {
			done, failed := tally(list)
			if done == n {
				return failed
			}
		}
		select {
		case <-ctx.Done():
			return 0
		case <-ticker.C:
		}
	}
}

func tally(list []*jobs.IngestBatchJob) (done, failed int) {
	for _, job := range list {
		switch job.Status {
		case jobs.JobStatusCompleted:
			done++
		case jobs.JobStatusFailed:
			done++
			failed++
		}
	}
	return done, failed
}

func describe(job *jobs.IngestBatchJob) string {
	source := job.GCSURI
	if source == "" {
		source = "inline"
	}
	line := fmt.Sprintf("%s %-9s %s", job.JobID, job.Status, source)
	if s := job.Summary; s != nil {
		line += fmt.Sprintf(" accepted=%d rejected=%d duplicates=%d stored=%d", s.Accepted, s.Rejected, s.Duplicates, s.Stored)
	}
	if job.Error != "" {
		line += " error=" + job.Error
	}
	return line
}
