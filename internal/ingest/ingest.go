// Package ingest binds the extraction pipeline to persistence: accepted
// events are stored, batches are tracked as runs and raw batches can be
// archived to and replayed from Cloud Storage.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/notification-ledger/internal/archive"
	"github.com/dvloznov/notification-ledger/internal/dedup"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/grammar"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/pipeline"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/rs/zerolog"
)

// ErrNoArchive is returned by archive operations on a service built
// without an archive.
var ErrNoArchive = errors.New("no archive configured")

// Processor runs the extraction pipeline.
type Processor interface {
	ProcessMessage(ctx context.Context, text string, hint domain.Locale, windowMinutes int) domain.Outcome
	ProcessBatch(ctx context.Context, text string, hint domain.Locale, windowMinutes int) (pipeline.BatchResult, error)
}

// RawMessage is one notification as received.
type RawMessage struct {
	Text       string        `json:"text"`
	LocaleHint domain.Locale `json:"locale_hint,omitempty"`
	// WindowMinutes is the dedup window; zero uses the configured default.
	WindowMinutes int `json:"window_minutes,omitempty"`
}

// Receipt is the result of ingesting one message. Event is set when the
// outcome is accepted.
type Receipt struct {
	Outcome domain.Outcome `json:"outcome"`
	Event   *domain.Event  `json:"event,omitempty"`
	// Stored is false when the store already held the event.
	Stored bool `json:"stored"`
}

// BatchReport is the result of ingesting a batch.
type BatchReport struct {
	pipeline.BatchResult
	Stored     int    `json:"stored"`
	ArchiveURI string `json:"archive_uri,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithArchive enables raw batch archiving and object replay.
func WithArchive(a archive.Store) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithClock sets the time source for event creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// Service ingests notifications end to end.
type Service struct {
	proc    Processor
	events  store.EventRepository
	runs    store.RunRepository
	archive archive.Store
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a service persisting through repo.
func NewService(proc Processor, repo interface {
	store.EventRepository
	store.RunRepository
}, opts ...Option) *Service {
	s := &Service{
		proc:   proc,
		events: repo,
		runs:   repo,
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest processes one message and stores it when accepted. The outcome is
// returned even when storing fails.
func (s *Service) Ingest(ctx context.Context, msg RawMessage) (Receipt, error) {
	ctx = logger.WithContext(ctx, s.log)

	out := s.proc.ProcessMessage(ctx, msg.Text, msg.LocaleHint, msg.WindowMinutes)
	r := Receipt{Outcome: out}
	if out.Status != domain.StatusAccepted {
		return r, nil
	}

	r.Event = s.newEvent(out.Extraction, msg.Text, "")
	n, err := s.events.InsertEvents(ctx, []*domain.Event{r.Event})
	if err != nil {
		return r, fmt.Errorf("Ingest: storing event: %w", err)
	}
	r.Stored = n == 1
	return r, nil
}

// IngestBatch processes every line of text as one run. With an archive
// configured the raw text is uploaded first and its URI becomes the run
// source.
func (s *Service) IngestBatch(ctx context.Context, text string, hint domain.Locale, windowMinutes int) (BatchReport, error) {
	source := "batch"
	var uri string
	if s.archive != nil {
		var err error
		uri, err = s.archive.Put(ctx, text)
		if err != nil {
			return BatchReport{}, fmt.Errorf("IngestBatch: archiving raw batch: %w", err)
		}
		source = uri
	}

	rep, err := s.ingestRun(ctx, source, text, hint, windowMinutes)
	rep.ArchiveURI = uri
	if err != nil {
		return rep, fmt.Errorf("IngestBatch: %w", err)
	}
	return rep, nil
}

// IngestObject replays an archived batch from a gs:// URI.
func (s *Service) IngestObject(ctx context.Context, uri string, hint domain.Locale, windowMinutes int) (BatchReport, error) {
	if s.archive == nil {
		return BatchReport{}, fmt.Errorf("IngestObject: %w", ErrNoArchive)
	}
	data, err := s.archive.Fetch(ctx, uri)
	if err != nil {
		return BatchReport{}, fmt.Errorf("IngestObject: %w", err)
	}

	rep, err := s.ingestRun(ctx, uri, string(data), hint, windowMinutes)
	rep.ArchiveURI = uri
	if err != nil {
		return rep, fmt.Errorf("IngestObject: %w", err)
	}
	return rep, nil
}

func (s *Service) ingestRun(ctx context.Context, source, text string, hint domain.Locale, windowMinutes int) (BatchReport, error) {
	runID, err := s.runs.StartRun(ctx, source)
	if err != nil {
		return BatchReport{}, fmt.Errorf("starting run: %w", err)
	}
	log := s.log.With().Str("run_id", runID).Str("source", source).Logger()
	ctx = logger.WithContext(ctx, log)

	res, err := s.proc.ProcessBatch(ctx, text, hint, windowMinutes)
	res.RunID = runID
	rep := BatchReport{BatchResult: res}
	if err != nil {
		s.runs.MarkRunFailed(context.WithoutCancel(ctx), runID, err)
		return rep, fmt.Errorf("processing batch: %w", err)
	}

	var events []*domain.Event
	for _, item := range res.Items {
		if item.Outcome.Status == domain.StatusAccepted {
			events = append(events, s.newEvent(item.Outcome.Extraction, item.Text, runID))
		}
	}
	rep.Stored, err = s.events.InsertEvents(ctx, events)
	if err != nil {
		s.runs.MarkRunFailed(context.WithoutCancel(ctx), runID, err)
		return rep, fmt.Errorf("storing events: %w", err)
	}

	counts := store.RunCounts{Accepted: res.Accepted, Rejected: res.Rejected, Duplicates: res.Duplicates}
	if err := s.runs.MarkRunSucceeded(ctx, runID, counts); err != nil {
		return rep, fmt.Errorf("finishing run: %w", err)
	}

	log.Info().
		Int("accepted", res.Accepted).
		Int("stored", rep.Stored).
		Msg("batch ingested")
	return rep, nil
}

// newEvent flattens an accepted extraction. The fingerprint is the dedup
// key, so the store's uniqueness matches the in-memory dedup set.
func (s *Service) newEvent(ext *domain.Extraction, raw, runID string) *domain.Event {
	e := domain.NewEvent(ext, raw, string(dedup.KeyFor(ext.Candidate)), s.now())
	e.RunID = runID
	e.InstitutionName = grammar.InstitutionDisplayName(ext.SourceLocale, e.Institution)
	return e
}
