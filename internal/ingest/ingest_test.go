package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/infra/sqlite"
	"github.com/dvloznov/notification-ledger/internal/ingest"
	"github.com/dvloznov/notification-ledger/internal/pipeline"
	"github.com/dvloznov/notification-ledger/internal/store"
	"github.com/rs/zerolog"
)

const (
	cardText   = "신한카드(1054)승인 신*진 98,700원(일시불)10/13 15:48 가톨릭대병원 누적1,960,854원"
	salaryText = "신한 10/11 21:54 100-***-159993 입금 급여 2,500,000 잔액 3,265,147 급여"
)

func fixedNow() time.Time { return time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC) }

type mockArchive struct {
	objects map[string]string
	putErr  error
}

func (m *mockArchive) Put(_ context.Context, text string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	uri := "gs://ledger-raw/raw/2025/10/15/batch.txt"
	m.objects[uri] = text
	return uri, nil
}

func (m *mockArchive) Fetch(_ context.Context, uri string) ([]byte, error) {
	text, ok := m.objects[uri]
	if !ok {
		return nil, errors.New("object not found")
	}
	return []byte(text), nil
}

func newService(t *testing.T, opts ...ingest.Option) (*ingest.Service, *sqlite.Store) {
	t.Helper()
	st, err := sqlite.Open(context.Background(), sqlite.MemoryDSN, zerolog.Nop(), sqlite.WithClock(fixedNow))
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	proc := pipeline.New(config.Default(), pipeline.WithClock(fixedNow))
	return ingest.NewService(proc, st, append([]ingest.Option{ingest.WithClock(fixedNow)}, opts...)...), st
}

func TestIngest(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	r, err := svc.Ingest(ctx, ingest.RawMessage{Text: cardText, LocaleHint: domain.LocaleKR})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if r.Outcome.Status != domain.StatusAccepted || r.Event == nil || !r.Stored {
		t.Fatalf("receipt = %+v", r)
	}
	if r.Event.Fingerprint == "" || r.Event.Amount != 98700 || r.Event.Flow != domain.FlowOut {
		t.Errorf("event = %+v", r.Event)
	}
	if !r.Event.CreatedAt.Equal(fixedNow()) {
		t.Errorf("CreatedAt = %v", r.Event.CreatedAt)
	}

	got, err := st.GetEvent(ctx, r.Event.EventID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Counterparty != "가톨릭대병원" {
		t.Errorf("stored counterparty = %q", got.Counterparty)
	}

	dup, err := svc.Ingest(ctx, ingest.RawMessage{Text: cardText})
	if err != nil {
		t.Fatalf("Ingest duplicate: %v", err)
	}
	if dup.Outcome.Status != domain.StatusDuplicate || dup.Event != nil {
		t.Errorf("duplicate receipt = %+v", dup)
	}

	rej, err := svc.Ingest(ctx, ingest.RawMessage{Text: "hello world"})
	if err != nil || rej.Outcome.Status != domain.StatusRejected {
		t.Errorf("rejected receipt = %+v, %v", rej, err)
	}
}

func TestIngest_StoreKeepsFirstAcrossProcessors(t *testing.T) {
	_, st := newService(t)
	ctx := context.Background()

	// Two processors have separate dedup sets; the store still holds one row.
	for i := 0; i < 2; i++ {
		proc := pipeline.New(config.Default(), pipeline.WithClock(fixedNow))
		svc := ingest.NewService(proc, st, ingest.WithClock(fixedNow))
		r, err := svc.Ingest(ctx, ingest.RawMessage{Text: salaryText})
		if err != nil {
			t.Fatalf("Ingest %d: %v", i, err)
		}
		if wantStored := i == 0; r.Stored != wantStored {
			t.Errorf("run %d stored = %v, want %v", i, r.Stored, wantStored)
		}
	}

	events, err := st.QueryEvents(ctx, store.EventFilter{Category: domain.CategoryIncomeTransaction})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].InstitutionName != "신한은행" {
		t.Errorf("events = %+v", events)
	}
}

func TestIngestBatch(t *testing.T) {
	arch := &mockArchive{objects: map[string]string{}}
	svc, st := newService(t, ingest.WithArchive(arch))
	ctx := context.Background()

	text := strings.Join([]string{cardText, "hello world", salaryText, cardText}, "\n")
	rep, err := svc.IngestBatch(ctx, text, domain.LocaleKR, 0)
	if err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}
	if rep.Accepted != 2 || rep.Rejected != 1 || rep.Duplicates != 1 || rep.Stored != 2 {
		t.Errorf("report = %+v", rep)
	}
	if rep.ArchiveURI == "" || arch.objects[rep.ArchiveURI] != text {
		t.Errorf("archive uri %q not uploaded", rep.ArchiveURI)
	}

	run, err := st.GetRun(ctx, rep.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != store.RunSuccess || run.Source != rep.ArchiveURI || run.Accepted != 2 {
		t.Errorf("run = %+v", run)
	}

	events, _ := st.QueryEvents(ctx, store.EventFilter{})
	for _, e := range events {
		if e.RunID != rep.RunID {
			t.Errorf("event %s run id = %q, want %q", e.EventID, e.RunID, rep.RunID)
		}
	}
}

func TestIngestBatch_ArchiveFailure(t *testing.T) {
	svc, _ := newService(t, ingest.WithArchive(&mockArchive{putErr: errors.New("quota")}))
	if _, err := svc.IngestBatch(context.Background(), cardText, "", 0); err == nil {
		t.Error("expected archive error")
	}
}

type cancelledProc struct{}

func (cancelledProc) ProcessMessage(context.Context, string, domain.Locale, int) domain.Outcome {
	return domain.Rejected(domain.RejectExtractionFailed)
}

func (cancelledProc) ProcessBatch(context.Context, string, domain.Locale, int) (pipeline.BatchResult, error) {
	return pipeline.BatchResult{}, context.Canceled
}

func TestIngestBatch_FailureMarksRun(t *testing.T) {
	_, st := newService(t)
	svc := ingest.NewService(cancelledProc{}, st)

	rep, err := svc.IngestBatch(context.Background(), cardText, domain.LocaleKR, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	run, err := st.GetRun(context.Background(), rep.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != store.RunFailed {
		t.Errorf("status = %s, want FAILED", run.Status)
	}
}

func TestIngestObject(t *testing.T) {
	uri := "gs://ledger-raw/raw/2025/10/14/old.txt"
	arch := &mockArchive{objects: map[string]string{uri: salaryText + "\n"}}
	svc, st := newService(t, ingest.WithArchive(arch))
	ctx := context.Background()

	rep, err := svc.IngestObject(ctx, uri, "", 0)
	if err != nil {
		t.Fatalf("IngestObject: %v", err)
	}
	if rep.Accepted != 1 || rep.Stored != 1 || rep.ArchiveURI != uri {
		t.Errorf("report = %+v", rep)
	}
	if run, _ := st.GetRun(ctx, rep.RunID); run == nil || run.Source != uri {
		t.Errorf("run = %+v", run)
	}

	if _, err := svc.IngestObject(ctx, "gs://ledger-raw/missing", "", 0); err == nil {
		t.Error("expected fetch error")
	}

	plain, _ := newService(t)
	if _, err := plain.IngestObject(ctx, uri, "", 0); !errors.Is(err, ingest.ErrNoArchive) {
		t.Errorf("err = %v, want ErrNoArchive", err)
	}
}
