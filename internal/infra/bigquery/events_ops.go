package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/store"
	"google.golang.org/api/iterator"
)

const eventColumns = `event_id, fingerprint, run_id, category, kind, locale, strategy, pattern,
	confidence, institution, institution_name, account_ref, holder, direction, flow,
	counterparty, transfer_type, installment_plan, amount, net_amount, balance, currency,
	event_date, occurred_ts, raw_text, created_ts`

// InsertEvents streams events into the events table. Events whose
// fingerprint and occurrence time are already stored are skipped, and each
// row carries its event ID as the insert ID so retried puts do not repeat.
func (w *Warehouse) InsertEvents(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	stored, err := w.storedKeys(ctx, events)
	if err != nil {
		return 0, fmt.Errorf("InsertEvents: %w", err)
	}

	savers := make([]*bigquery.StructSaver, 0, len(events))
	for _, e := range freshEvents(events, stored) {
		savers = append(savers, &bigquery.StructSaver{Struct: NewEventRow(e), InsertID: e.EventID})
	}
	if len(savers) == 0 {
		return 0, nil
	}

	inserter := w.client.DatasetInProject(w.projectID, w.datasetID).Table(eventsTable).Inserter()
	if err := inserter.Put(ctx, savers); err != nil {
		return 0, fmt.Errorf("InsertEvents: inserting rows: %w", err)
	}
	return len(savers), nil
}

// storedKeys returns the fingerprint/time keys of events already in the table.
func (w *Warehouse) storedKeys(ctx context.Context, events []*domain.Event) (map[string]bool, error) {
	fingerprints := make([]string, 0, len(events))
	for _, e := range events {
		fingerprints = append(fingerprints, e.Fingerprint)
	}

	q := w.client.Query(fmt.Sprintf(`
		SELECT fingerprint, occurred_ts
		FROM %s
		WHERE fingerprint IN UNNEST(@fingerprints)
	`, w.table(eventsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "fingerprints", Value: fingerprints},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stored fingerprints: %w", err)
	}

	stored := make(map[string]bool)
	for {
		var row struct {
			Fingerprint string    `bigquery:"fingerprint"`
			OccurredTS  time.Time `bigquery:"occurred_ts"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		stored[eventKey(row.Fingerprint, row.OccurredTS)] = true
	}
	return stored, nil
}

// freshEvents drops events whose key is stored or repeated earlier in the slice.
func freshEvents(events []*domain.Event, stored map[string]bool) []*domain.Event {
	seen := make(map[string]bool, len(stored)+len(events))
	for k := range stored {
		seen[k] = true
	}

	var out []*domain.Event
	for _, e := range events {
		k := eventKey(e.Fingerprint, e.OccurredAt)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

func eventKey(fingerprint string, at time.Time) string {
	// BigQuery TIMESTAMP has microsecond precision.
	return fingerprint + "|" + at.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)
}

// GetEvent returns one event by ID.
func (w *Warehouse) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	q := w.client.Query(fmt.Sprintf(`SELECT %s FROM %s WHERE event_id = @event_id LIMIT 1`,
		eventColumns, w.table(eventsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "event_id", Value: eventID},
	}

	events, err := readEvents(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("GetEvent: %s: %w", eventID, store.ErrNotFound)
	}
	return events[0], nil
}

// QueryEvents returns events matching f ordered by occurrence time. Date
// bounds are applied to the partition column.
func (w *Warehouse) QueryEvents(ctx context.Context, f store.EventFilter) ([]*domain.Event, error) {
	where, params := eventConditions(f)

	sql := fmt.Sprintf(`SELECT %s FROM %s`, eventColumns, w.table(eventsTable))
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY occurred_ts, created_ts`
	if f.Limit > 0 {
		sql += ` LIMIT @limit`
		params = append(params, bigquery.QueryParameter{Name: "limit", Value: f.Limit})
	}

	q := w.client.Query(sql)
	q.Parameters = params

	events, err := readEvents(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("QueryEvents: %w", err)
	}
	return events, nil
}

func eventConditions(f store.EventFilter) ([]string, []bigquery.QueryParameter) {
	var (
		where  []string
		params []bigquery.QueryParameter
	)
	if f.Category != "" {
		where = append(where, "category = @category")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: string(f.Category)})
	}
	if f.Locale != "" {
		where = append(where, "locale = @locale")
		params = append(params, bigquery.QueryParameter{Name: "locale", Value: string(f.Locale)})
	}
	if !f.Start.IsZero() {
		where = append(where, "event_date >= @start_date")
		params = append(params, bigquery.QueryParameter{Name: "start_date", Value: f.Start.Format(dateFormat)})
	}
	if !f.End.IsZero() {
		where = append(where, "event_date <= @end_date")
		params = append(params, bigquery.QueryParameter{Name: "end_date", Value: f.End.Format(dateFormat)})
	}
	return where, params
}

func readEvents(ctx context.Context, q *bigquery.Query) ([]*domain.Event, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var events []*domain.Event
	for {
		var r EventRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		e, err := r.Event()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
