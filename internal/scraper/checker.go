package scraper

import (
	"context"
	"time"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

// CheckResult is the unified outcome of a single status check.
type CheckResult struct {
	Status    domain.Status
	ImageURL  string
	CheckedAt time.Time
}

// Checker verifies the market status of one card.
type Checker interface {
	Check(ctx context.Context, card *domain.Card) (CheckResult, error)
}
