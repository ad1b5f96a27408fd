package dedup

import (
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/notification-ledger/internal/domain"
)

var base = time.Date(2025, 10, 11, 21, 54, 0, 0, time.UTC)

func salary(at time.Time) *domain.IncomeTransaction {
	return &domain.IncomeTransaction{
		Institution:     "신한",
		MaskedAccountID: "100-***-159993",
		Direction:       domain.Deposit,
		Kind:            domain.KindSalary,
		Description:     "급여",
		Amount:          2500000,
		BalanceAfter:    3265147,
		OccurredAt:      at,
	}
}

func TestKeyFor(t *testing.T) {
	card := &domain.CardTransaction{Issuer: "신한카드", MaskedCardID: "1054", Direction: domain.CardApproved, Amount: 98700, Merchant: "가톨릭대병원", OccurredAt: base}
	later := *card
	later.OccurredAt = base.Add(time.Hour)
	later.RunningTotal = 42
	cancelled := *card
	cancelled.Direction = domain.CardCancelled

	tests := []struct {
		name string
		a, b domain.Candidate
		same bool
	}{
		{"time and running total are not identity", card, &later, true},
		{"direction is identity", card, &cancelled, false},
		{"income vs income with other balance", salary(base), func() domain.Candidate { s := salary(base); s.BalanceAfter = 1; return s }(), false},
		{"description is not identity", salary(base), func() domain.Candidate { s := salary(base); s.Description = "기타"; return s }(), true},
		{"balance snapshots", &domain.BalanceSnapshot{Institution: "우리은행", Balance: 10}, &domain.BalanceSnapshot{Institution: "우리은행", Balance: 10, AsOf: base}, true},
		{"categories never collide", &domain.BalanceSnapshot{Institution: "x", Balance: 1}, &domain.CardTransaction{Issuer: "x", Amount: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := KeyFor(tt.a), KeyFor(tt.b)
			if ka == "" || kb == "" {
				t.Fatal("empty key")
			}
			if (ka == kb) != tt.same {
				t.Errorf("same key = %v, want %v", ka == kb, tt.same)
			}
		})
	}
}

func TestCheckAndRecord_Window(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		window time.Duration
		want   bool
	}{
		{"identical time", 0, 5 * time.Minute, true},
		{"inside window", 4 * time.Minute, 5 * time.Minute, true},
		{"window is inclusive", 5 * time.Minute, 5 * time.Minute, true},
		{"earlier occurrence inside window", -3 * time.Minute, 5 * time.Minute, true},
		{"outside window", 6 * time.Minute, 5 * time.Minute, false},
		{"zero window falls back to default", 4 * time.Minute, 0, true},
		{"negative window falls back to default", 6 * time.Minute, -time.Minute, false},
		{"wide window", 50 * time.Minute, time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(WithClock(func() time.Time { return base }))
			if d.CheckAndRecord(salary(base), tt.window) {
				t.Fatal("first submission reported as duplicate")
			}
			if got := d.CheckAndRecord(salary(base.Add(tt.offset)), tt.window); got != tt.want {
				t.Errorf("second submission duplicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDuplicate_DoesNotRecord(t *testing.T) {
	d := New()
	if d.IsDuplicate(salary(base), time.Minute) {
		t.Fatal("empty deduplicator reported duplicate")
	}
	if d.Len() != 0 {
		t.Fatalf("IsDuplicate recorded an entry")
	}
	d.Record(salary(base))
	if !d.IsDuplicate(salary(base), time.Minute) {
		t.Error("recorded candidate not reported as duplicate")
	}
}

func TestPurge(t *testing.T) {
	now := base
	d := New(WithClock(func() time.Time { return now }))

	d.Record(salary(base))
	now = base.Add(DefaultRetention + time.Second)
	d.Record(&domain.BalanceSnapshot{Institution: "우리은행", Balance: 1, AsOf: now})

	if got := d.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1 after purge", got)
	}
	if d.IsDuplicate(salary(base), time.Minute) {
		t.Error("expired entry still suppresses duplicates")
	}
}

func TestWithRetention(t *testing.T) {
	now := base
	d := New(WithClock(func() time.Time { return now }), WithRetention(time.Hour))

	d.Record(salary(base))
	now = base.Add(30 * time.Minute)
	d.Record(salary(base.Add(30 * time.Minute)))
	now = base.Add(80 * time.Minute)
	d.Record(&domain.BalanceSnapshot{Institution: "x", Balance: 1})

	if got := d.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestReset(t *testing.T) {
	d := New()
	d.Record(salary(base))
	d.Reset()
	if d.Len() != 0 || d.IsDuplicate(salary(base), time.Minute) {
		t.Error("Reset kept entries")
	}
}

func TestCheckAndRecord_Concurrent(t *testing.T) {
	d := New()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !d.CheckAndRecord(salary(base), 5*time.Minute) {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if fresh != 1 {
		t.Errorf("%d submissions accepted, want exactly 1", fresh)
	}
}
