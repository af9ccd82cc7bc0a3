package repo

import (
	"context"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

// Ports (interfaces) — swap in any storage adapter later.
type CardStore interface {
	Add(ctx context.Context, c *domain.Card) error
	// Get returns nil, nil when the card is unknown.
	Get(ctx context.Context, id domain.CardID) (*domain.Card, error)
	List(ctx context.Context) ([]*domain.Card, error)
	// Sample returns up to n cards chosen without a fixed order, so repeated
	// cycles spread coverage over the whole catalog.
	Sample(ctx context.Context, n int) ([]*domain.Card, error)
	Count(ctx context.Context) (int, error)
}

// HistoryStore records every evaluated observation for the dashboard.
type HistoryStore interface {
	AppendStatus(ctx context.Context, o *domain.Observation) error
	Recent(ctx context.Context, n int) ([]*domain.Observation, error)
}
