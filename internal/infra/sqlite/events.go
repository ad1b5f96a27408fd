package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/store"
)

const eventColumns = `event_id, fingerprint, run_id, category, kind, locale, strategy, pattern,
	confidence, institution, institution_name, account_ref, holder, direction, flow,
	counterparty, transfer_type, installment_plan, amount, net_amount, balance, currency,
	occurred_at, raw_text, created_at`

// InsertEvents stores events in one transaction. Events whose fingerprint
// and occurrence time are already stored are ignored.
func (s *Store) InsertEvents(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("InsertEvents: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("InsertEvents: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		res, err := stmt.ExecContext(ctx,
			e.EventID, e.Fingerprint, nullString(e.RunID), string(e.Category), nullString(e.Kind),
			string(e.Locale), string(e.Strategy), nullString(e.Pattern), e.Confidence,
			e.Institution, nullString(e.InstitutionName), e.AccountRef, nullString(e.Holder),
			nullString(e.Direction), string(e.Flow), nullString(e.Counterparty),
			nullString(e.TransferType), nullString(e.InstallmentPlan),
			e.Amount, e.NetAmount, e.Balance, e.Currency,
			formatTime(e.OccurredAt), e.RawText, formatTime(e.CreatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("InsertEvents: inserting %s: %w", e.EventID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("InsertEvents: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("InsertEvents: commit: %w", err)
	}
	return inserted, nil
}

// GetEvent returns one event by ID.
func (s *Store) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE event_id = ?`, eventID)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetEvent: %s: %w", eventID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return e, nil
}

// QueryEvents returns events matching f ordered by occurrence time.
func (s *Store) QueryEvents(ctx context.Context, f store.EventFilter) ([]*domain.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Locale != "" {
		where = append(where, "locale = ?")
		args = append(args, string(f.Locale))
	}
	if !f.Start.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, formatTime(startOfDay(f.Start)))
	}
	if !f.End.IsZero() {
		where = append(where, "occurred_at < ?")
		args = append(args, formatTime(startOfDay(f.End).AddDate(0, 0, 1)))
	}

	q := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY occurred_at, created_at`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("QueryEvents: query: %w", err)
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("QueryEvents: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("QueryEvents: iter: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (*domain.Event, error) {
	var (
		e                                                 domain.Event
		category, locale, strategy, flow                  string
		runID, kind, pattern, instName, holder, direction sql.NullString
		counterparty, transferType, installment           sql.NullString
		accountRef                                        sql.NullString
		occurredAt, createdAt                             string
	)
	err := sc.Scan(
		&e.EventID, &e.Fingerprint, &runID, &category, &kind, &locale, &strategy, &pattern,
		&e.Confidence, &e.Institution, &instName, &accountRef, &holder, &direction, &flow,
		&counterparty, &transferType, &installment, &e.Amount, &e.NetAmount, &e.Balance, &e.Currency,
		&occurredAt, &e.RawText, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.RunID = runID.String
	e.Category = domain.Category(category)
	e.Kind = kind.String
	e.Locale = domain.Locale(locale)
	e.Strategy = domain.Strategy(strategy)
	e.Pattern = pattern.String
	e.InstitutionName = instName.String
	e.AccountRef = accountRef.String
	e.Holder = holder.String
	e.Direction = direction.String
	e.Flow = domain.Flow(flow)
	e.Counterparty = counterparty.String
	e.TransferType = transferType.String
	e.InstallmentPlan = installment.String

	if e.OccurredAt, err = parseTime(occurredAt); err != nil {
		return nil, fmt.Errorf("parsing occurred_at %q: %w", occurredAt, err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	return &e, nil
}
