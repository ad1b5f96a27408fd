package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/store"
)

func TestEventRow_RoundTrip(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)

	tests := []struct {
		name     string
		event    *domain.Event
		wantDate civil.Date
		wantAmt  string
		prec     int
	}{
		{
			name: "KRW has no minor digits",
			event: &domain.Event{
				EventID: "e1", Fingerprint: "fp", Category: domain.CategoryCardTransaction,
				Locale: domain.LocaleKR, Strategy: domain.StrategyGrammar, Institution: "신한카드",
				Flow: domain.FlowIn, Amount: 98700, NetAmount: -98700, Balance: 1960854, Currency: "KRW",
				OccurredAt: time.Date(2025, 10, 13, 0, 30, 0, 0, kst),
			},
			wantDate: civil.Date{Year: 2025, Month: 10, Day: 13},
			wantAmt:  "98700",
			prec:     0,
		},
		{
			name: "USD cents",
			event: &domain.Event{
				EventID: "e2", Fingerprint: "fp2", Category: domain.CategoryIncomeTransaction,
				Kind: "SALARY", Locale: domain.LocaleUS, Strategy: domain.StrategyHeuristic,
				Institution: "Chase", Flow: domain.FlowIn, Amount: 4567, NetAmount: 4567, Currency: "USD",
				OccurredAt: time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC),
			},
			wantDate: civil.Date{Year: 2025, Month: 10, Day: 13},
			wantAmt:  "45.67",
			prec:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := NewEventRow(tt.event)
			if row.EventDate != tt.wantDate {
				t.Errorf("EventDate = %v, want %v", row.EventDate, tt.wantDate)
			}
			if got := row.Amount.FloatString(tt.prec); got != tt.wantAmt {
				t.Errorf("Amount = %s, want %s", got, tt.wantAmt)
			}
			if row.Kind.Valid != (tt.event.Kind != "") {
				t.Errorf("Kind.Valid = %v for %q", row.Kind.Valid, tt.event.Kind)
			}

			back, err := row.Event()
			if err != nil {
				t.Fatalf("Event: %v", err)
			}
			if back.Amount != tt.event.Amount || back.NetAmount != tt.event.NetAmount || back.Balance != tt.event.Balance {
				t.Errorf("amounts = %d/%d/%d, want %d/%d/%d",
					back.Amount, back.NetAmount, back.Balance,
					tt.event.Amount, tt.event.NetAmount, tt.event.Balance)
			}
			if back.Kind != tt.event.Kind || back.Category != tt.event.Category {
				t.Errorf("back = %+v", back)
			}
		})
	}
}

func TestFreshEvents(t *testing.T) {
	at := time.Date(2025, 10, 13, 15, 48, 0, 0, time.UTC)
	ev := func(id, fp string, when time.Time) *domain.Event {
		return &domain.Event{EventID: id, Fingerprint: fp, OccurredAt: when}
	}

	stored := map[string]bool{eventKey("a", at): true}
	events := []*domain.Event{
		ev("1", "a", at.In(time.FixedZone("KST", 9*3600))),
		ev("2", "a", at.Add(time.Minute)),
		ev("3", "b", at),
		ev("4", "b", at),
	}

	got := freshEvents(events, stored)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.EventID)
	}
	if len(ids) != 2 || ids[0] != "2" || ids[1] != "3" {
		t.Errorf("fresh = %v, want [2 3]", ids)
	}
}

func TestEventConditions(t *testing.T) {
	tests := []struct {
		name   string
		filter store.EventFilter
		want   int
	}{
		{"empty", store.EventFilter{}, 0},
		{"category and locale", store.EventFilter{Category: domain.CategoryBalanceSnapshot, Locale: domain.LocaleGB}, 2},
		{"date range", store.EventFilter{Start: time.Now(), End: time.Now()}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, params := eventConditions(tt.filter)
			if len(where) != tt.want || len(params) != tt.want {
				t.Errorf("got %d conditions and %d params, want %d", len(where), len(params), tt.want)
			}
		})
	}
}

func TestRunRow_Run(t *testing.T) {
	row := &RunRow{RunID: "r1", Source: "batch", Status: "RUNNING", StartedTS: time.Unix(0, 0)}
	run := row.Run()
	if run.Status != store.RunRunning || !run.FinishedAt.IsZero() || run.Accepted != 0 {
		t.Errorf("Run() = %+v", run)
	}
}
