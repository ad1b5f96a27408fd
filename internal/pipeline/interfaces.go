package pipeline

import (
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/engine"
)

// Arbitrator hands out locale engines. *registry.Registry implements it.
type Arbitrator interface {
	Engine(locale domain.Locale) (engine.Engine, error)
	SelectBestEngine(text string) (engine.Engine, float64, bool)
}

// Deduplicator suppresses repeated events. *dedup.Deduplicator implements it.
type Deduplicator interface {
	CheckAndRecord(c domain.Candidate, window time.Duration) bool
}

// Classifier assigns a category to raw text. *classify.Classifier
// implements it.
type Classifier interface {
	Classify(text string) domain.Category
}
