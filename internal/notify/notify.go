package notify

import (
	"context"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

type Notifier interface {
	// SendAlert delivers an extinct-card alert.
	SendAlert(ctx context.Context, a *domain.ExtinctAlert) error
	// SendMessage delivers a general notice (startup, cycle summary).
	SendMessage(ctx context.Context, title, text string) error
}

// Multi fans out to every channel. A failing channel never blocks the
// others; the first error is reported so callers can log it.
type Multi []Notifier

func (m Multi) SendAlert(ctx context.Context, a *domain.ExtinctAlert) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.SendAlert(ctx, a); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) SendMessage(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.SendMessage(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
