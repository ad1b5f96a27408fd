// Package registry owns one lazily built engine per supported locale and
// arbitrates between them.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/engine"
	"github.com/rs/zerolog"
)

// DefaultFloor is the minimum confidence an engine needs to win arbitration.
const DefaultFloor = 0.5

// Factory builds the engine of a locale.
type Factory func(locale domain.Locale) (engine.Engine, error)

// Option configures a Registry.
type Option func(*Registry)

// WithLocales restricts and orders the registered locales. Arbitration ties
// go to the earlier locale.
func WithLocales(locales ...domain.Locale) Option {
	return func(r *Registry) {
		r.order = append([]domain.Locale(nil), locales...)
	}
}

// WithFactory replaces the engine constructor.
func WithFactory(f Factory) Option {
	return func(r *Registry) {
		r.factory = f
	}
}

// WithClock passes a time source to engines built by the default factory.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithFloor sets the arbitration floor.
func WithFloor(floor float64) Option {
	return func(r *Registry) {
		r.floor = floor
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// Registry maps locales to engines. Engines are built on first use and
// cached until disposed. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	engines map[domain.Locale]engine.Engine
	order   []domain.Locale
	factory Factory
	now     func() time.Time
	floor   float64
	log     zerolog.Logger
}

// New creates a registry over every declared locale.
func New(opts ...Option) *Registry {
	r := &Registry{
		engines: make(map[domain.Locale]engine.Engine),
		order:   append([]domain.Locale(nil), domain.Locales...),
		now:     time.Now,
		floor:   DefaultFloor,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.factory == nil {
		r.factory = func(locale domain.Locale) (engine.Engine, error) {
			return engine.New(locale, engine.WithClock(r.now))
		}
	}
	return r
}

// Supported lists registered locales in registration order.
func (r *Registry) Supported() []domain.Locale {
	return append([]domain.Locale(nil), r.order...)
}

// IsSupported reports whether a locale is registered.
func (r *Registry) IsSupported(locale domain.Locale) bool {
	for _, l := range r.order {
		if l == locale {
			return true
		}
	}
	return false
}

// Loaded lists the locales whose engines are currently built.
func (r *Registry) Loaded() []domain.Locale {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Locale
	for _, l := range r.order {
		if _, ok := r.engines[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Engine returns the engine of a locale, building and initializing it on
// first request.
func (r *Registry) Engine(locale domain.Locale) (engine.Engine, error) {
	if !r.IsSupported(locale) {
		return nil, fmt.Errorf("registry.Engine: %q: %w", locale, domain.ErrUnsupportedLocale)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.engines[locale]; ok {
		return e, nil
	}

	e, err := r.factory(locale)
	if err != nil {
		return nil, fmt.Errorf("registry.Engine: build %s: %w", locale, err)
	}
	if err := e.Initialize(); err != nil {
		return nil, fmt.Errorf("registry.Engine: initialize %s: %w", locale, err)
	}
	r.engines[locale] = e
	r.log.Debug().Str("locale", string(locale)).Msg("engine loaded")
	return e, nil
}

// SelectBestEngine asks every registered engine for its confidence and
// returns the strict maximum. Equal scores keep the earlier locale. It
// reports false when no engine reaches the floor.
func (r *Registry) SelectBestEngine(text string) (engine.Engine, float64, bool) {
	var (
		best      engine.Engine
		bestScore float64
	)
	for _, locale := range r.order {
		e, err := r.Engine(locale)
		if err != nil {
			r.log.Warn().Err(err).Str("locale", string(locale)).Msg("engine unavailable")
			continue
		}
		if score := e.ConfidenceFor(text); best == nil || score > bestScore {
			best, bestScore = e, score
		}
	}
	if best == nil || bestScore < r.floor {
		return nil, bestScore, false
	}
	return best, bestScore, true
}

// Dispose tears down and forgets the engine of a locale. The next request
// builds a fresh one.
func (r *Registry) Dispose(locale domain.Locale) error {
	r.mu.Lock()
	e, ok := r.engines[locale]
	delete(r.engines, locale)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if err := e.Dispose(); err != nil {
		return fmt.Errorf("registry.Dispose: %s: %w", locale, err)
	}
	return nil
}

// DisposeAll disposes every built engine.
func (r *Registry) DisposeAll() error {
	r.mu.Lock()
	engines := r.engines
	r.engines = make(map[domain.Locale]engine.Engine)
	r.mu.Unlock()

	var errs []error
	for locale, e := range engines {
		if err := e.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", locale, err))
		}
	}
	return errors.Join(errs...)
}
