package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
)

// Lister discovers cards from catalog listing pages.
type Lister interface {
	ScrapeListing(ctx context.Context, page int) ([]*domain.Card, error)
}

const seedThreshold = 100

// SeedCatalog fills a thin catalog by scraping listing pages, stopping at
// maxPages or the first empty page. A catalog at or above the threshold is
// left as-is so restarts do not re-scrape the site.
func SeedCatalog(ctx context.Context, logger *zap.Logger, cards repo.CardStore, lister Lister, maxPages int) (int, error) {
	count, err := cards.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count >= seedThreshold {
		logger.Info("seed_skipped", zap.Int("cards", count))
		return 0, nil
	}
	if maxPages < 1 {
		maxPages = 1
	}

	added := 0
	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			return added, ctx.Err()
		}
		found, err := lister.ScrapeListing(ctx, page)
		if err != nil {
			// A bad page ends discovery but keeps what we already have.
			logger.Warn("seed_page_error", zap.Int("page", page), zap.Error(err))
			break
		}
		for _, c := range found {
			if err := cards.Add(ctx, c); err != nil {
				logger.Warn("seed_add_error", zap.String("url", c.SourceURL), zap.Error(err))
				continue
			}
			added++
		}
		logger.Info("seed_page_done", zap.Int("page", page), zap.Int("found", len(found)))
	}
	logger.Info("seed_complete", zap.Int("added", added))
	return added, nil
}
