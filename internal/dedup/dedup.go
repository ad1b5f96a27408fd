// Package dedup suppresses repeated ingestion of the same financial event.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

const (
	// DefaultWindow is used when a caller passes a non-positive window.
	DefaultWindow = 5 * time.Minute
	// DefaultRetention bounds how long entries are kept.
	DefaultRetention = 24 * time.Hour
)

// Key is a fingerprint of a candidate's stable identity fields.
type Key string

// KeyFor computes the dedup key of a candidate. The occurrence time is not
// part of the key; it is compared against the window instead.
func KeyFor(c domain.Candidate) Key {
	var parts []string
	switch v := c.(type) {
	case *domain.CardTransaction:
		parts = []string{"card", v.Issuer, v.MaskedCardID, string(v.Direction), strconv.FormatInt(v.Amount, 10), v.Merchant}
	case *domain.IncomeTransaction:
		parts = []string{"income", v.Institution, v.MaskedAccountID, string(v.Direction), strconv.FormatInt(v.Amount, 10), strconv.FormatInt(v.BalanceAfter, 10)}
	case *domain.BalanceSnapshot:
		parts = []string{"balance", v.Institution, v.MaskedAccountID, strconv.FormatInt(v.Balance, 10)}
	default:
		return ""
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return Key(hex.EncodeToString(sum[:]))
}

// Entry is one accepted candidate.
type Entry struct {
	Key        Key
	OccurredAt time.Time
	RecordedAt time.Time
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithClock sets the time source used for retention.
func WithClock(now func() time.Time) Option {
	return func(d *Deduplicator) {
		d.now = now
	}
}

// WithRetention sets how long entries are kept.
func WithRetention(retention time.Duration) Option {
	return func(d *Deduplicator) {
		if retention > 0 {
			d.retention = retention
		}
	}
}

// Deduplicator is an in-memory set of recently accepted candidates. It is
// safe for concurrent use.
type Deduplicator struct {
	mu        sync.Mutex
	entries   map[Key][]Entry
	now       func() time.Time
	retention time.Duration
}

// New creates an empty deduplicator.
func New(opts ...Option) *Deduplicator {
	d := &Deduplicator{
		entries:   make(map[Key][]Entry),
		now:       time.Now,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsDuplicate reports whether an entry with the candidate's key was
// recorded with an occurrence time within window of the candidate's.
func (d *Deduplicator) IsDuplicate(c domain.Candidate, window time.Duration) bool {
	key := KeyFor(c)
	if key == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen(key, c.Timestamp(), normaliseWindow(window))
}

// Record stores an accepted candidate and purges expired entries.
func (d *Deduplicator) Record(c domain.Candidate) {
	key := KeyFor(c)
	if key == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(key, c.Timestamp())
}

// CheckAndRecord atomically checks for a duplicate and records the
// candidate when it is new. It returns true for duplicates.
func (d *Deduplicator) CheckAndRecord(c domain.Candidate, window time.Duration) bool {
	key := KeyFor(c)
	if key == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen(key, c.Timestamp(), normaliseWindow(window)) {
		return true
	}
	d.record(key, c.Timestamp())
	return false
}

// Len returns the number of stored entries.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, es := range d.entries {
		n += len(es)
	}
	return n
}

// Reset drops every entry.
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make(map[Key][]Entry)
}

func (d *Deduplicator) seen(key Key, at time.Time, window time.Duration) bool {
	for _, e := range d.entries[key] {
		diff := at.Sub(e.OccurredAt)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			return true
		}
	}
	return false
}

func (d *Deduplicator) record(key Key, at time.Time) {
	now := d.now()
	d.purge(now)
	d.entries[key] = append(d.entries[key], Entry{Key: key, OccurredAt: at, RecordedAt: now})
}

// purge must be called with mu held.
func (d *Deduplicator) purge(now time.Time) {
	cutoff := now.Add(-d.retention)
	for key, es := range d.entries {
		kept := es[:0]
		for _, e := range es {
			if e.RecordedAt.After(cutoff) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(d.entries, key)
			continue
		}
		d.entries[key] = kept
	}
}

func normaliseWindow(w time.Duration) time.Duration {
	if w <= 0 {
		return DefaultWindow
	}
	return w
}
