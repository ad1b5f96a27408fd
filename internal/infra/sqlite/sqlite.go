// Package sqlite is the local event store, backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/notification-ledger/internal/migrate"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// timeLayout keeps stored timestamps lexically ordered.
const timeLayout = "2006-01-02T15:04:05.000Z"

// MemoryDSN opens a private in-memory database.
const MemoryDSN = "file::memory:"

// Store persists events and runs in SQLite. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source of run bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens the database at dsn and applies pending migrations.
func Open(ctx context.Context, dsn string, log zerolog.Logger, opts ...Option) (*Store, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dsn+sep+"_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: opening database: %w", err)
	}
	if dsn == MemoryDSN {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	migrations, err := migrate.Load(migrate.BackendSQLite, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	if _, err := migrate.Run(ctx, s, migrations, "sqlite.Open", log); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure implements migrate.Target.
func (s *Store) Ensure(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL,
			checksum   TEXT,
			applied_by TEXT
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}
	return nil
}

// Applied implements migrate.Target.
func (s *Store) Applied(ctx context.Context) ([]migrate.Applied, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, name, applied_at, COALESCE(checksum, ''), COALESCE(applied_by, '')
		FROM schema_migrations
		ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()

	var out []migrate.Applied
	for rows.Next() {
		var (
			a  migrate.Applied
			at string
		)
		if err := rows.Scan(&a.Version, &a.Name, &at, &a.Checksum, &a.AppliedBy); err != nil {
			return nil, fmt.Errorf("scanning applied migration: %w", err)
		}
		a.AppliedAt, _ = time.Parse(timeLayout, at)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Apply implements migrate.Target. The migration and its record share a
// transaction.
func (s *Store) Apply(ctx context.Context, m migrate.Migration, appliedBy string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing %s: %w", m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at, checksum, applied_by) VALUES (?, ?, ?, ?, ?)`,
		m.Version, m.Name, formatTime(s.now()), m.Checksum, appliedBy,
	); err != nil {
		return fmt.Errorf("recording %s: %w", m.Filename, err)
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

var _ migrate.Target = (*Store)(nil)
