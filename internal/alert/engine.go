package alert

import (
	"sync"
	"time"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
)

// SuppressReason says why an observation did not produce an alert.
type SuppressReason string

const (
	ReasonNotExtinct     SuppressReason = "NOT_EXTINCT"
	ReasonCooldownActive SuppressReason = "COOLDOWN_ACTIVE"
)

// Decision is the outcome of evaluating one observation.
type Decision struct {
	Emit   bool
	Reason SuppressReason // set when suppressed
	// Recovered marks an extinct -> normal transition. Informational only;
	// no notification is sent for recoveries.
	Recovered bool
	Alert     *domain.ExtinctAlert // set when Emit
}

type Config struct {
	Cooldown time.Duration
	// FutureTolerance bounds how far ahead of the clock an observation
	// timestamp may sit before it is clamped to now.
	FutureTolerance time.Duration
	// Now is the injected clock; defaults to time.Now.
	Now func() time.Time
}

// Engine is the sole authority on emit/suppress. It owns the per-card alert
// record map; callers feed it observations one cycle at a time.
type Engine struct {
	mu        sync.Mutex
	cooldown  time.Duration
	tolerance time.Duration
	now       func() time.Time
	records   map[domain.CardID]*repo.AlertRecord
}

func NewEngine(cfg Config) *Engine {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 6 * time.Hour
	}
	if cfg.FutureTolerance <= 0 {
		cfg.FutureTolerance = 2 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cooldown:  cfg.Cooldown,
		tolerance: cfg.FutureTolerance,
		now:       cfg.Now,
		records:   make(map[domain.CardID]*repo.AlertRecord),
	}
}

// Evaluate decides whether obs triggers an alert for card. The record for
// the card is created lazily on first observation and mutated in place; its
// last-known status always reflects obs, even when the result is suppressed.
func (e *Engine) Evaluate(card *domain.Card, obs domain.Observation) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	rec := e.records[card.ID]
	if rec == nil {
		rec = &repo.AlertRecord{CardID: card.ID}
		e.records[card.ID] = rec
	}

	// Clamp implausible timestamps instead of failing: missing or far-future
	// readings become now, regressions stick to the last seen time.
	observedAt := obs.ObservedAt
	if observedAt.IsZero() || observedAt.After(now.Add(e.tolerance)) {
		observedAt = now
	}
	if observedAt.Before(rec.LastObservedAt) {
		observedAt = rec.LastObservedAt
	}

	recovered := rec.LastStatus == domain.StatusExtinct && obs.Status != domain.StatusExtinct
	rec.LastStatus = obs.Status
	rec.LastObservedAt = observedAt

	if obs.Status != domain.StatusExtinct {
		return Decision{Reason: ReasonNotExtinct, Recovered: recovered}
	}

	if rec.LastAlertedAt != nil && now.Sub(*rec.LastAlertedAt) < e.cooldown {
		return Decision{Reason: ReasonCooldownActive}
	}

	sent := now
	rec.LastAlertedAt = &sent

	return Decision{
		Emit: true,
		Alert: &domain.ExtinctAlert{
			CardID:     card.ID,
			Name:       card.Name,
			Rating:     card.Rating,
			Position:   card.Position,
			Club:       card.Club,
			Nation:     card.Nation,
			ImageURL:   card.ImageURL,
			SourceURL:  card.SourceURL,
			ObservedAt: now,
		},
	}
}

// Record returns a copy of the card's alert record, or nil if the card has
// never been observed.
func (e *Engine) Record(id domain.CardID) *repo.AlertRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.records[id]
	if rec == nil {
		return nil
	}
	cp := *rec
	if rec.LastAlertedAt != nil {
		ts := *rec.LastAlertedAt
		cp.LastAlertedAt = &ts
	}
	return &cp
}

// Snapshot copies the record map for persistence. Taken between cycles,
// never mid-evaluation.
func (e *Engine) Snapshot() map[domain.CardID]repo.AlertRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[domain.CardID]repo.AlertRecord, len(e.records))
	for id, rec := range e.records {
		cp := *rec
		if rec.LastAlertedAt != nil {
			ts := *rec.LastAlertedAt
			cp.LastAlertedAt = &ts
		}
		out[id] = cp
	}
	return out
}

// Restore replaces the record map, typically from a snapshot loaded at
// startup or posted to the restore endpoint.
func (e *Engine) Restore(records map[domain.CardID]repo.AlertRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = make(map[domain.CardID]*repo.AlertRecord, len(records))
	for id, rec := range records {
		cp := rec
		if rec.LastAlertedAt != nil {
			ts := *rec.LastAlertedAt
			cp.LastAlertedAt = &ts
		}
		e.records[id] = &cp
	}
}
