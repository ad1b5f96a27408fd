package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/engine"
	"github.com/dvloznov/notification-ledger/internal/logger"
)

// Step is one stage of a message run. A step either advances the state or
// settles it with a terminal outcome.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *State) error
}

// State holds what the steps of one message run share.
type State struct {
	Text   string
	Hint   domain.Locale
	Window time.Duration

	Category   domain.Category
	Engines    []engine.Engine
	Extraction *domain.Extraction
	Outcome    *domain.Outcome
}

// Settle records the terminal outcome; later steps are skipped.
func (s *State) Settle(o domain.Outcome) {
	s.Outcome = &o
}

// Pipeline executes steps in order until one settles the state.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline from steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs the steps. It fails if a step fails or no step settles the
// state.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, step.Name(), err)
		}
		log.Debug().Str("step", step.Name()).Bool("settled", state.Outcome != nil).Msg("step done")
		if state.Outcome != nil {
			return nil
		}
	}
	return fmt.Errorf("pipeline: %d steps ran without an outcome", len(p.steps))
}

// ClassifyStep assigns the category and rejects unknown messages.
type ClassifyStep struct {
	Classifier Classifier
}

func (s *ClassifyStep) Name() string { return "classify" }

func (s *ClassifyStep) Execute(ctx context.Context, state *State) error {
	state.Category = s.Classifier.Classify(state.Text)
	if state.Category == domain.CategoryUnknown {
		state.Settle(domain.Rejected(domain.RejectUnclassifiedCategory))
	}
	return nil
}

// SelectEnginesStep lines up the engines to try: the pinned engine of the
// hint first, then the arbitration winner when it differs.
type SelectEnginesStep struct {
	Arbitrator Arbitrator
}

func (s *SelectEnginesStep) Name() string { return "select-engines" }

func (s *SelectEnginesStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	state.Engines = state.Engines[:0]
	if state.Hint != "" {
		pinned, err := s.Arbitrator.Engine(state.Hint)
		if err != nil {
			log.Warn().Err(err).Str("hint", string(state.Hint)).Msg("locale hint ignored")
		} else {
			state.Engines = append(state.Engines, pinned)
		}
	}

	best, score, ok := s.Arbitrator.SelectBestEngine(state.Text)
	if ok && (len(state.Engines) == 0 || state.Engines[0].Locale() != best.Locale()) {
		state.Engines = append(state.Engines, best)
	}
	if ok {
		log.Debug().Str("locale", string(best.Locale())).Float64("score", score).Msg("arbitration winner")
	}

	if len(state.Engines) == 0 {
		state.Settle(domain.Rejected(domain.RejectNoEngineAboveThreshold))
	}
	return nil
}

// ExtractStep tries every selected engine with the grammar, then every
// selected engine with the heuristic, and keeps the first extraction that
// clears its floor.
type ExtractStep struct {
	GrammarFloor   float64
	HeuristicFloor float64
}

func (s *ExtractStep) Name() string { return "extract" }

func (s *ExtractStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	tiers := []struct {
		strategy domain.Strategy
		floor    float64
	}{
		{domain.StrategyGrammar, s.GrammarFloor},
		{domain.StrategyHeuristic, s.HeuristicFloor},
	}
	for _, tier := range tiers {
		for _, e := range state.Engines {
			ext, ok := e.ExtractWith(state.Text, state.Category, tier.strategy)
			if !ok {
				continue
			}
			if ext.Confidence < tier.floor {
				log.Debug().
					Str("locale", string(e.Locale())).
					Str("strategy", string(tier.strategy)).
					Float64("confidence", ext.Confidence).
					Msg("extraction below floor")
				continue
			}
			state.Extraction = ext
			return nil
		}
	}

	state.Settle(domain.Rejected(domain.RejectExtractionFailed))
	return nil
}

// DedupStep settles an extraction as accepted or duplicate.
type DedupStep struct {
	Deduplicator Deduplicator
}

func (s *DedupStep) Name() string { return "dedup" }

func (s *DedupStep) Execute(ctx context.Context, state *State) error {
	if state.Extraction == nil {
		return fmt.Errorf("dedup: no extraction")
	}
	if s.Deduplicator.CheckAndRecord(state.Extraction.Candidate, state.Window) {
		state.Settle(domain.Duplicate(state.Extraction))
		return nil
	}
	state.Settle(domain.Accepted(state.Extraction))
	return nil
}
