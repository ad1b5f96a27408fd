// Package pipeline turns one raw notification into a terminal outcome:
// classify, pick engines, extract, deduplicate.
package pipeline

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/dvloznov/notification-ledger/internal/classify"
	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/dedup"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/registry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the time source of the default registry and deduplicator.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) {
		p.log = log
	}
}

// WithRegistry replaces the engine registry.
func WithRegistry(a Arbitrator) Option {
	return func(p *Processor) {
		p.arbitrator = a
	}
}

// WithDeduplicator replaces the deduplicator.
func WithDeduplicator(d Deduplicator) Option {
	return func(p *Processor) {
		p.dedup = d
	}
}

// WithClassifier replaces the classifier.
func WithClassifier(c Classifier) Option {
	return func(p *Processor) {
		p.classifier = c
	}
}

// Processor owns the shared state of the ingestion core: the engine
// registry and the dedup set. It is safe for concurrent use.
type Processor struct {
	cfg        config.Config
	arbitrator Arbitrator
	dedup      Deduplicator
	classifier Classifier
	pipeline   *Pipeline
	now        func() time.Time
	log        zerolog.Logger
}

// New creates a processor with its own registry and deduplicator unless
// options supply them.
func New(cfg config.Config, opts ...Option) *Processor {
	p := &Processor{
		cfg: cfg,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.arbitrator == nil {
		p.arbitrator = registry.New(
			registry.WithClock(p.now),
			registry.WithFloor(cfg.ArbitrationFloor),
			registry.WithLogger(logger.Component(p.log, "registry")),
		)
	}
	if p.dedup == nil {
		p.dedup = dedup.New(dedup.WithClock(p.now), dedup.WithRetention(cfg.DedupRetention))
	}
	if p.classifier == nil {
		p.classifier = classify.New()
	}
	p.pipeline = NewPipeline(
		&ClassifyStep{Classifier: p.classifier},
		&SelectEnginesStep{Arbitrator: p.arbitrator},
		&ExtractStep{GrammarFloor: cfg.GrammarFloor, HeuristicFloor: cfg.HeuristicFloor},
		&DedupStep{Deduplicator: p.dedup},
	)
	return p
}

// Arbitrator returns the engine source of the processor.
func (p *Processor) Arbitrator() Arbitrator {
	return p.arbitrator
}

// ProcessMessage runs one message through the pipeline. A non-positive
// windowMinutes uses the configured window. It never fails: panics and
// step errors become Rejected(ExtractionFailed).
func (p *Processor) ProcessMessage(ctx context.Context, text string, hint domain.Locale, windowMinutes int) (out domain.Outcome) {
	log := p.log.With().Str("hint", string(hint)).Logger()
	ctx = logger.WithContext(ctx, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("message processing panicked")
			out = domain.Rejected(domain.RejectExtractionFailed)
		}
	}()

	state := &State{
		Text:   strings.TrimSpace(text),
		Hint:   hint,
		Window: p.cfg.Window(windowMinutes),
	}
	if err := p.pipeline.Execute(ctx, state); err != nil {
		log.Error().Err(err).Msg("message processing failed")
		return domain.Rejected(domain.RejectExtractionFailed)
	}

	out = *state.Outcome
	switch out.Status {
	case domain.StatusAccepted:
		ext := out.Extraction
		log.Info().
			Str("category", string(ext.Category())).
			Str("locale", string(ext.SourceLocale)).
			Str("strategy", string(ext.Strategy)).
			Str("pattern", ext.Pattern).
			Float64("confidence", ext.Confidence).
			Msg("message accepted")
	case domain.StatusDuplicate:
		log.Info().Str("category", string(out.Extraction.Category())).Msg("duplicate suppressed")
	default:
		log.Warn().Str("reason", string(out.Reason)).Str("category", string(state.Category)).Msg("message rejected")
	}
	return out
}

// BatchItem is the outcome of one line of a batch.
type BatchItem struct {
	Line    int            `json:"line"`
	Text    string         `json:"text"`
	Outcome domain.Outcome `json:"outcome"`
}

// BatchResult aggregates a batch run. Items keep input order.
type BatchResult struct {
	RunID      string      `json:"run_id"`
	Items      []BatchItem `json:"items"`
	Accepted   int         `json:"accepted"`
	Rejected   int         `json:"rejected"`
	Duplicates int         `json:"duplicates"`
	// Truncated counts non-blank lines beyond the batch limit that were not
	// processed.
	Truncated int `json:"truncated"`
}

// ProcessBatch splits text into lines and processes each non-blank line
// in order. It stops early when ctx is cancelled and returns what it
// processed together with the context error.
func (p *Processor) ProcessBatch(ctx context.Context, text string, hint domain.Locale, windowMinutes int) (BatchResult, error) {
	res := BatchResult{RunID: uuid.NewString()}
	log := p.log.With().Str("run_id", res.RunID).Logger()

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		msg := strings.TrimSpace(sc.Text())
		if msg == "" {
			continue
		}
		if p.cfg.MaxBatchLines > 0 && len(res.Items) >= p.cfg.MaxBatchLines {
			res.Truncated++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		out := p.ProcessMessage(ctx, msg, hint, windowMinutes)
		res.Items = append(res.Items, BatchItem{Line: line, Text: msg, Outcome: out})
		switch out.Status {
		case domain.StatusAccepted:
			res.Accepted++
		case domain.StatusDuplicate:
			res.Duplicates++
		default:
			res.Rejected++
		}
	}
	if err := sc.Err(); err != nil {
		return res, err
	}

	log.Info().
		Int("accepted", res.Accepted).
		Int("rejected", res.Rejected).
		Int("duplicates", res.Duplicates).
		Int("truncated", res.Truncated).
		Msg("batch processed")
	return res, nil
}
