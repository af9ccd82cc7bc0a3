package scraper

import (
	"context"
	"time"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

// RetryChecker wraps a Checker and retries transient failures.
type RetryChecker struct {
	Inner    Checker
	Attempts int
	Backoff  time.Duration
}

func (r *RetryChecker) Check(ctx context.Context, card *domain.Card) (CheckResult, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var (
		last CheckResult
		err  error
	)
	for i := 0; i < attempts; i++ {
		last, err = r.Inner.Check(ctx, card)
		if err == nil {
			return last, nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return last, ctx.Err()
			case <-time.After(r.Backoff):
			}
		}
	}
	return last, err
}
