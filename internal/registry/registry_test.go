package registry

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dvloznov/notification-ledger/internal/domain"
	"github.com/dvloznov/notification-ledger/internal/engine"
)

// mockEngine scores every text with a fixed confidence.
type mockEngine struct {
	locale     domain.Locale
	score      float64
	disposed   atomic.Bool
	DisposeErr error
}

func (m *mockEngine) Locale() domain.Locale             { return m.locale }
func (m *mockEngine) Initialize() error                 { return nil }
func (m *mockEngine) ConfidenceFor(text string) float64 { return m.score }
func (m *mockEngine) Dispose() error {
	m.disposed.Store(true)
	return m.DisposeErr
}
func (m *mockEngine) Extract(text string, category domain.Category) (*domain.Extraction, bool) {
	return nil, false
}
func (m *mockEngine) ExtractWith(text string, category domain.Category, strategy domain.Strategy) (*domain.Extraction, bool) {
	return nil, false
}

func scoredFactory(scores map[domain.Locale]float64, built *atomic.Int32) Factory {
	return func(locale domain.Locale) (engine.Engine, error) {
		if built != nil {
			built.Add(1)
		}
		return &mockEngine{locale: locale, score: scores[locale]}, nil
	}
}

func TestSelectBestEngine(t *testing.T) {
	tests := []struct {
		name       string
		locales    []domain.Locale
		scores     map[domain.Locale]float64
		wantLocale domain.Locale
		wantOK     bool
	}{
		{
			name:       "strict maximum wins",
			locales:    []domain.Locale{domain.LocaleKR, domain.LocaleUS, domain.LocaleJP},
			scores:     map[domain.Locale]float64{domain.LocaleKR: 0.7, domain.LocaleUS: 0.9, domain.LocaleJP: 0.8},
			wantLocale: domain.LocaleUS,
			wantOK:     true,
		},
		{
			name:       "tie keeps registration order",
			locales:    []domain.Locale{domain.LocaleUS, domain.LocaleCA, domain.LocaleAU},
			scores:     map[domain.Locale]float64{domain.LocaleUS: 0.8, domain.LocaleCA: 0.8, domain.LocaleAU: 0.8},
			wantLocale: domain.LocaleUS,
			wantOK:     true,
		},
		{
			name:       "tie order follows registration, not declaration",
			locales:    []domain.Locale{domain.LocaleAU, domain.LocaleUS},
			scores:     map[domain.Locale]float64{domain.LocaleUS: 0.8, domain.LocaleAU: 0.8},
			wantLocale: domain.LocaleAU,
			wantOK:     true,
		},
		{
			name:       "floor is inclusive",
			locales:    []domain.Locale{domain.LocaleKR},
			scores:     map[domain.Locale]float64{domain.LocaleKR: 0.5},
			wantLocale: domain.LocaleKR,
			wantOK:     true,
		},
		{
			name:    "below floor",
			locales: []domain.Locale{domain.LocaleKR, domain.LocaleUS},
			scores:  map[domain.Locale]float64{domain.LocaleKR: 0.4, domain.LocaleUS: 0.3},
			wantOK:  false,
		},
		{
			name:    "all zero",
			locales: []domain.Locale{domain.LocaleKR, domain.LocaleUS},
			scores:  map[domain.Locale]float64{},
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(WithLocales(tt.locales...), WithFactory(scoredFactory(tt.scores, nil)))
			e, _, ok := r.SelectBestEngine("any")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && e.Locale() != tt.wantLocale {
				t.Errorf("locale = %s, want %s", e.Locale(), tt.wantLocale)
			}
		})
	}
}

func TestSelectBestEngine_RealEngines(t *testing.T) {
	r := New()
	e, score, ok := r.SelectBestEngine("신한카드(1054)승인 신*진 98,700원(일시불)10/13 15:48 가톨릭대병원 누적1,960,854원")
	if !ok || e.Locale() != domain.LocaleKR || score != 0.9 {
		t.Fatalf("got %v %v %v", e, score, ok)
	}

	e, _, ok = r.SelectBestEngine("Lloyds: £150.00 paid in to account ending 9876 on 11/10 ref J SMITH. Balance £1,234.56")
	if !ok || e.Locale() != domain.LocaleGB {
		t.Fatalf("british message arbitrated to %v (ok=%v)", e, ok)
	}

	if _, _, ok := r.SelectBestEngine("hello world"); ok {
		t.Error("hello world selected an engine")
	}
}

func TestEngine_LazyAndCached(t *testing.T) {
	var built atomic.Int32
	r := New(WithFactory(scoredFactory(nil, &built)))

	if got := r.Loaded(); len(got) != 0 {
		t.Fatalf("engines built eagerly: %v", got)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Engine(domain.LocaleKR); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := built.Load(); got != 1 {
		t.Errorf("factory called %d times, want 1", got)
	}
	if got := r.Loaded(); len(got) != 1 || got[0] != domain.LocaleKR {
		t.Errorf("Loaded() = %v", got)
	}
}

func TestEngine_Unsupported(t *testing.T) {
	r := New(WithLocales(domain.LocaleKR))

	if _, err := r.Engine(domain.LocaleUS); !errors.Is(err, domain.ErrUnsupportedLocale) {
		t.Errorf("error = %v, want ErrUnsupportedLocale", err)
	}
	if r.IsSupported(domain.LocaleUS) || !r.IsSupported(domain.LocaleKR) {
		t.Error("IsSupported disagrees with WithLocales")
	}
	if got := r.Supported(); len(got) != 1 {
		t.Errorf("Supported() = %v", got)
	}
}

func TestEngine_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	r := New(WithFactory(func(domain.Locale) (engine.Engine, error) { return nil, boom }))

	if _, err := r.Engine(domain.LocaleKR); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped factory error", err)
	}
	if _, _, ok := r.SelectBestEngine("x"); ok {
		t.Error("selected an engine although none could be built")
	}
}

func TestDispose(t *testing.T) {
	var built atomic.Int32
	r := New(WithFactory(scoredFactory(nil, &built)))

	first, _ := r.Engine(domain.LocaleKR)
	if err := r.Dispose(domain.LocaleKR); err != nil {
		t.Fatal(err)
	}
	if !first.(*mockEngine).disposed.Load() {
		t.Error("engine not disposed")
	}

	second, _ := r.Engine(domain.LocaleKR)
	if second == first {
		t.Error("disposed engine returned from cache")
	}
	if built.Load() != 2 {
		t.Errorf("factory called %d times, want 2", built.Load())
	}

	if err := r.Dispose(domain.LocaleJP); err != nil {
		t.Errorf("disposing an unbuilt engine: %v", err)
	}
}

func TestDisposeAll(t *testing.T) {
	boom := errors.New("boom")
	r := New(WithFactory(func(locale domain.Locale) (engine.Engine, error) {
		m := &mockEngine{locale: locale}
		if locale == domain.LocaleUS {
			m.DisposeErr = boom
		}
		return m, nil
	}))

	kr, _ := r.Engine(domain.LocaleKR)
	_, _ = r.Engine(domain.LocaleUS)

	err := r.DisposeAll()
	if !errors.Is(err, boom) {
		t.Errorf("DisposeAll error = %v, want joined boom", err)
	}
	if !kr.(*mockEngine).disposed.Load() {
		t.Error("KR engine not disposed")
	}
	if got := r.Loaded(); len(got) != 0 {
		t.Errorf("Loaded() after DisposeAll = %v", got)
	}
}
