// Package engine bundles the grammar set and heuristic extractor of one
// locale behind a uniform surface.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/grammar"
	"github.com/dvloznov/notification-ledger/internal/heuristic"
)

// ErrDisposed is returned when a disposed engine is initialized again.
var ErrDisposed = errors.New("engine disposed")

// Engine is the extraction capability of one locale.
type Engine interface {
	Locale() domain.Locale
	Initialize() error
	Dispose() error
	// ConfidenceFor scores how well text fits the locale, independent of
	// whether a full extraction succeeds.
	ConfidenceFor(text string) float64
	// Extract tries the grammar first and the heuristic second.
	Extract(text string, category domain.Category) (*domain.Extraction, bool)
	// ExtractWith runs a single strategy.
	ExtractWith(text string, category domain.Category, strategy domain.Strategy) (*domain.Extraction, bool)
}

// Option configures a LocaleEngine.
type Option func(*LocaleEngine)

// WithClock sets the time source used to fill in missing years and
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *LocaleEngine) {
		e.now = now
	}
}

// LocaleEngine is the Engine of every shipped locale.
type LocaleEngine struct {
	locale    domain.Locale
	grammar   *grammar.Set
	heuristic *heuristic.Extractor
	now       func() time.Time
	disposed  atomic.Bool
}

// New builds the engine of a locale.
func New(locale domain.Locale, opts ...Option) (*LocaleEngine, error) {
	set, err := grammar.For(locale)
	if err != nil {
		return nil, fmt.Errorf("engine.New: %w", err)
	}
	e := &LocaleEngine{
		locale:    locale,
		grammar:   set,
		heuristic: heuristic.New(set.Lexicon()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *LocaleEngine) Locale() domain.Locale { return e.locale }

// Initialize is a no-op for shipped locales beyond refusing reuse after
// Dispose.
func (e *LocaleEngine) Initialize() error {
	if e.disposed.Load() {
		return fmt.Errorf("engine %s: %w", e.locale, ErrDisposed)
	}
	return nil
}

func (e *LocaleEngine) Dispose() error {
	e.disposed.Store(true)
	return nil
}

func (e *LocaleEngine) ConfidenceFor(text string) float64 {
	if e.disposed.Load() {
		return 0
	}
	return e.grammar.Confidence(text)
}

func (e *LocaleEngine) Extract(text string, category domain.Category) (*domain.Extraction, bool) {
	if ext, ok := e.ExtractWith(text, category, domain.StrategyGrammar); ok {
		return ext, true
	}
	return e.ExtractWith(text, category, domain.StrategyHeuristic)
}

func (e *LocaleEngine) ExtractWith(text string, category domain.Category, strategy domain.Strategy) (*domain.Extraction, bool) {
	if e.disposed.Load() {
		return nil, false
	}
	switch strategy {
	case domain.StrategyGrammar:
		return e.grammar.Extract(text, category, e.now())
	case domain.StrategyHeuristic:
		return e.heuristic.Extract(text, category, e.now())
	}
	return nil, false
}

var _ Engine = (*LocaleEngine)(nil)
