package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/alert"
	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/notify"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo/memory"
	"github.com/oofcrazy123/futbin-price-monitor/internal/scraper"
)

type stubChecker struct {
	status map[domain.CardID]domain.Status
	calls  int
}

func (s *stubChecker) Check(ctx context.Context, card *domain.Card) (scraper.CheckResult, error) {
	s.calls++
	st, ok := s.status[card.ID]
	if !ok {
		st = domain.StatusNormal
	}
	return scraper.CheckResult{Status: st, ImageURL: "https://cdn.example/img.png", CheckedAt: time.Now().UTC()}, nil
}

type recordingNotifier struct {
	alerts   []*domain.ExtinctAlert
	messages []string
}

func (r *recordingNotifier) SendAlert(ctx context.Context, a *domain.ExtinctAlert) error {
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recordingNotifier) SendMessage(ctx context.Context, title, text string) error {
	r.messages = append(r.messages, title)
	return nil
}

var _ notify.Notifier = (*recordingNotifier)(nil)

func seedCard(t *testing.T, store *memory.Store, id, name string) *domain.Card {
	t.Helper()
	c := &domain.Card{
		ID:        domain.CardID(id),
		Name:      name,
		Rating:    90,
		SourceURL: "https://www.fut.gg/players/" + id + "/",
	}
	if err := store.Add(context.Background(), c); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return c
}

func newTestMonitor(store *memory.Store, checker scraper.Checker, engine *alert.Engine, n notify.Notifier, cfg MonitorConfig) *Monitor {
	return NewMonitor(zap.NewNop(), store, store, store, checker, engine, n, cfg)
}

func TestRunCycle_ExtinctCardAlertsOnce(t *testing.T) {
	store := memory.New()
	seedCard(t, store, "rare-gold-1", "Test Player")

	checker := &stubChecker{status: map[domain.CardID]domain.Status{
		"rare-gold-1": domain.StatusExtinct,
	}}
	notifier := &recordingNotifier{}
	engine := alert.NewEngine(alert.Config{Cooldown: 6 * time.Hour})
	m := newTestMonitor(store, checker, engine, notifier, MonitorConfig{Interval: time.Minute, CardsPerCycle: 10})

	info := m.RunCycle(context.Background())
	if info.Checked != 1 || info.Extinct != 1 || info.Alerted != 1 {
		t.Fatalf("cycle info = %+v, want checked=1 extinct=1 alerted=1", info)
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(notifier.alerts))
	}
	if notifier.alerts[0].ImageURL == "" {
		t.Error("alert missing image url from the check result")
	}

	// Second pass inside the cooldown window stays quiet.
	info = m.RunCycle(context.Background())
	if info.Alerted != 0 {
		t.Fatalf("second cycle alerted %d, want 0", info.Alerted)
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("got %d alerts after second cycle, want 1", len(notifier.alerts))
	}
}

func TestRunCycle_NormalCardsStayQuiet(t *testing.T) {
	store := memory.New()
	seedCard(t, store, "common-1", "Quiet Player")

	notifier := &recordingNotifier{}
	engine := alert.NewEngine(alert.Config{})
	m := newTestMonitor(store, &stubChecker{}, engine, notifier, MonitorConfig{Interval: time.Minute, CardsPerCycle: 10})

	info := m.RunCycle(context.Background())
	if info.Checked != 1 || info.Extinct != 0 || info.Alerted != 0 {
		t.Fatalf("cycle info = %+v, want checked=1 extinct=0 alerted=0", info)
	}
	if len(notifier.alerts) != 0 {
		t.Fatalf("got %d alerts, want 0", len(notifier.alerts))
	}
}

func TestRunCycle_AppendsHistoryAndSavesState(t *testing.T) {
	store := memory.New()
	seedCard(t, store, "rare-gold-2", "History Player")

	checker := &stubChecker{status: map[domain.CardID]domain.Status{
		"rare-gold-2": domain.StatusExtinct,
	}}
	engine := alert.NewEngine(alert.Config{})
	m := newTestMonitor(store, checker, engine, &recordingNotifier{}, MonitorConfig{Interval: time.Minute, CardsPerCycle: 10})

	m.RunCycle(context.Background())

	hist, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("got %d history rows, want 1", len(hist))
	}
	if hist[0].Status != domain.StatusExtinct {
		t.Errorf("history status = %s, want EXTINCT", hist[0].Status)
	}

	saved, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, ok := saved["rare-gold-2"]
	if !ok {
		t.Fatal("alert state not saved for rare-gold-2")
	}
	if rec.LastAlertedAt == nil {
		t.Error("saved record has nil LastAlertedAt after an alert")
	}
}

func TestRunCycle_SummaryFollowsVerifiedExtinctions(t *testing.T) {
	store := memory.New()
	seedCard(t, store, "rare-gold-3", "Summary Player")

	checker := &stubChecker{status: map[domain.CardID]domain.Status{
		"rare-gold-3": domain.StatusExtinct,
	}}
	notifier := &recordingNotifier{}
	engine := alert.NewEngine(alert.Config{Cooldown: 6 * time.Hour})
	m := newTestMonitor(store, checker, engine, notifier, MonitorConfig{Interval: time.Minute, CardsPerCycle: 10, SendSummaries: true})

	m.RunCycle(context.Background())
	if len(notifier.messages) != 1 {
		t.Fatalf("got %d summaries, want 1", len(notifier.messages))
	}

	// Cooldown suppresses the alert, but the extinction was still verified,
	// so the cycle reports it.
	info := m.RunCycle(context.Background())
	if info.Extinct != 1 || info.Alerted != 0 {
		t.Fatalf("cycle info = %+v, want extinct=1 alerted=0", info)
	}
	if len(notifier.messages) != 2 {
		t.Fatalf("got %d summaries after suppressed cycle, want 2", len(notifier.messages))
	}
}

func TestRunCycle_NoSummaryWithoutExtinctions(t *testing.T) {
	store := memory.New()
	seedCard(t, store, "common-2", "Available Player")

	notifier := &recordingNotifier{}
	engine := alert.NewEngine(alert.Config{})
	m := newTestMonitor(store, &stubChecker{}, engine, notifier, MonitorConfig{Interval: time.Minute, CardsPerCycle: 10, SendSummaries: true})

	m.RunCycle(context.Background())
	if len(notifier.messages) != 0 {
		t.Fatalf("got %d summaries for an all-normal cycle, want 0", len(notifier.messages))
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	store := memory.New()
	engine := alert.NewEngine(alert.Config{})
	m := newTestMonitor(store, &stubChecker{}, engine, &recordingNotifier{}, MonitorConfig{Interval: time.Hour, CardsPerCycle: 5})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
