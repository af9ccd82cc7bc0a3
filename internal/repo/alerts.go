package repo

import (
	"context"
	"time"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

// AlertRecord holds last-known state and the last time we sent an alert for
// a card. LastStatus is the most recent status we processed, LastAlertedAt
// is the last send time (nil means never alerted, used for cooldown).
type AlertRecord struct {
	CardID         domain.CardID `json:"card_id"`
	LastStatus     domain.Status `json:"last_status"`
	LastObservedAt time.Time     `json:"last_observed_at"`
	LastAlertedAt  *time.Time    `json:"last_alerted_at,omitempty"`
}

// AlertStateStore persists the alert-record map between process runs. The
// engine keeps the live map in memory; Load hydrates it on startup and Save
// snapshots it between cycles, never mid-evaluation.
type AlertStateStore interface {
	Load(ctx context.Context) (map[domain.CardID]AlertRecord, error)
	Save(ctx context.Context, records map[domain.CardID]AlertRecord) error
}
