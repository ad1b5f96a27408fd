package main

import (
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/ingest"
	"github.com/dvloznov/notification-ledger/internal/pipeline"
)

func TestFormatEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		event *domain.Event
		want  []string
	}{
		{
			name: "card with counterparty",
			event: &domain.Event{
				Category: domain.CategoryCardTransaction, Locale: domain.LocaleKR,
				Amount: 1234500, Institution: "SHINHAN", InstitutionName: "Shinhan Card",
				Counterparty: "Starbucks", OccurredAt: now.Add(-3 * time.Hour),
			},
			want: []string{"3 hours ago", "CARD_TRANSACTION", "1234500 KRW", "Shinhan Card -> Starbucks"},
		},
		{
			name: "falls back to institution code",
			event: &domain.Event{
				Category: domain.CategoryBalanceSnapshot, Locale: domain.LocaleUS,
				Amount: 4567, Institution: "CHASE", OccurredAt: now.Add(-48 * time.Hour),
			},
			want: []string{"2 days ago", "45.67 USD", "CHASE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatEvent(tt.event, now)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatEvent = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestDescribeReport(t *testing.T) {
	rep := ingest.BatchReport{
		BatchResult: pipeline.BatchResult{
			RunID:    "run-1",
			Items:    make([]pipeline.BatchItem, 1200),
			Accepted: 1100, Rejected: 60, Duplicates: 40, Truncated: 3,
		},
		Stored:     1099,
		ArchiveURI: "gs://b/raw/x.txt",
	}
	got := describeReport(rep, 1500*time.Millisecond)
	for _, w := range []string{"1,200 lines", "1.5s", "accepted   1,100 (stored 1,099)", "truncated  3", "gs://b/raw/x.txt"} {
		if !strings.Contains(got, w) {
			t.Errorf("report missing %q:\n%s", w, got)
		}
	}
}

func TestDescribeOutcome(t *testing.T) {
	got := describeOutcome(domain.Rejected(domain.RejectExtractionFailed))
	if !strings.HasPrefix(got, string(domain.StatusRejected)) {
		t.Errorf("describeOutcome = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate(""); err != nil || !d.IsZero() {
		t.Errorf("empty = %v, %v", d, err)
	}
	if _, err := parseDate("2026/01/01"); err == nil {
		t.Error("expected error for bad layout")
	}
}
