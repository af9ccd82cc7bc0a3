package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/alert"
	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/ingest"
	"github.com/oofcrazy123/futbin-price-monitor/internal/notify"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
	"github.com/oofcrazy123/futbin-price-monitor/internal/scraper"
)

// CycleInfo summarizes the most recent monitoring cycle for the dashboard.
type CycleInfo struct {
	Number     int       `json:"number"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checked    int       `json:"checked"`
	Extinct    int       `json:"extinct"`
	Alerted    int       `json:"alerted"`
}

type MonitorConfig struct {
	Interval      time.Duration
	CardsPerCycle int
	SendSummaries bool
}

// Monitor drives one monitoring cycle at a time: sample cards, scrape their
// status, push observations through ingest into the engine, dispatch emitted
// alerts, then snapshot alert state. Cycles never overlap.
type Monitor struct {
	Logger   *zap.Logger
	Cards    repo.CardStore
	History  repo.HistoryStore
	State    repo.AlertStateStore // nil disables persistence between cycles
	Checker  scraper.Checker
	Ingest   *ingest.Ingest
	Engine   *alert.Engine
	Notifier notify.Notifier
	cfg      MonitorConfig

	mu     sync.Mutex
	cycles int
	last   CycleInfo
}

func NewMonitor(
	logger *zap.Logger,
	cards repo.CardStore,
	history repo.HistoryStore,
	state repo.AlertStateStore,
	checker scraper.Checker,
	engine *alert.Engine,
	notifier notify.Notifier,
	cfg MonitorConfig,
) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.CardsPerCycle < 1 {
		cfg.CardsPerCycle = 30
	}
	return &Monitor{
		Logger:   logger,
		Cards:    cards,
		History:  history,
		State:    state,
		Checker:  checker,
		Ingest:   ingest.New(logger, cards, engine),
		Engine:   engine,
		Notifier: notifier,
		cfg:      cfg,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.cfg.Interval)
	defer t.Stop()

	m.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			m.Logger.Info("monitor_stopped")
			return
		case <-t.C:
			m.RunCycle(ctx)
		}
	}
}

// RunCycle executes a single fetch → ingest → evaluate → dispatch pass.
func (m *Monitor) RunCycle(ctx context.Context) CycleInfo {
	m.mu.Lock()
	m.cycles++
	info := CycleInfo{Number: m.cycles, StartedAt: time.Now().UTC()}
	m.mu.Unlock()

	cards, err := m.Cards.Sample(ctx, m.cfg.CardsPerCycle)
	if err != nil {
		m.Logger.Warn("monitor_sample_error", zap.Error(err))
		return m.finish(info)
	}

	// Scrape sequentially; the scraper's limiter paces requests anyway and
	// one slow page must not pile up goroutines against fut.gg.
	batch := make([]domain.Observation, 0, len(cards))
	images := make(map[domain.CardID]string)
	for _, card := range cards {
		if ctx.Err() != nil {
			return m.finish(info)
		}
		out, err := m.Checker.Check(ctx, card)
		if err != nil {
			m.Logger.Warn("monitor_check_error",
				zap.String("card_id", string(card.ID)),
				zap.String("url", card.SourceURL),
				zap.Error(err),
			)
			continue
		}
		info.Checked++
		if out.ImageURL != "" {
			images[card.ID] = out.ImageURL
		}
		batch = append(batch, domain.Observation{
			CardID:     card.ID,
			Status:     out.Status,
			ObservedAt: out.CheckedAt,
		})
	}

	for _, res := range m.Ingest.Process(ctx, batch) {
		obs := res.Obs
		if err := m.History.AppendStatus(ctx, &obs); err != nil {
			m.Logger.Warn("monitor_history_error",
				zap.String("card_id", string(obs.CardID)),
				zap.Error(err),
			)
		}
		if obs.Status == domain.StatusExtinct {
			info.Extinct++
		}

		switch {
		case res.Decision.Emit:
			a := res.Decision.Alert
			if a.ImageURL == "" {
				a.ImageURL = images[a.CardID]
			}
			// Best-effort send; a failed dispatch is logged, never retried
			// here, and never rolls back the engine's decision.
			if err := m.Notifier.SendAlert(ctx, a); err != nil {
				m.Logger.Warn("monitor_dispatch_error",
					zap.String("card_id", string(a.CardID)),
					zap.Error(err),
				)
			}
			info.Alerted++
			m.Logger.Info("extinct_alert",
				zap.String("card_id", string(a.CardID)),
				zap.String("name", a.Name),
				zap.Int("rating", a.Rating),
			)
		case res.Decision.Recovered:
			m.Logger.Info("card_back_on_market", zap.String("card_id", string(obs.CardID)))
		}
	}

	// The summary follows verified extinctions, not sent alerts: a cycle
	// where every extinct card sits inside its cooldown still reports.
	if info.Extinct > 0 && m.cfg.SendSummaries {
		text := fmt.Sprintf(
			"Checked %d cards, %d extinct, %d alerts sent.\nNext check in %s.",
			info.Checked, info.Extinct, info.Alerted, m.cfg.Interval,
		)
		_ = m.Notifier.SendMessage(ctx, fmt.Sprintf("Cycle #%d complete", info.Number), text)
	}

	if m.State != nil {
		if err := m.State.Save(ctx, m.Engine.Snapshot()); err != nil {
			m.Logger.Warn("monitor_state_save_error", zap.Error(err))
		}
	}

	return m.finish(info)
}

func (m *Monitor) finish(info CycleInfo) CycleInfo {
	info.FinishedAt = time.Now().UTC()
	m.mu.Lock()
	m.last = info
	m.mu.Unlock()
	m.Logger.Info("cycle_complete",
		zap.Int("cycle", info.Number),
		zap.Int("checked", info.Checked),
		zap.Int("extinct", info.Extinct),
		zap.Int("alerted", info.Alerted),
	)
	return info
}

// LastCycle returns a copy of the most recent cycle summary.
func (m *Monitor) LastCycle() CycleInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
