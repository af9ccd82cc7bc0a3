package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/alert"
	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
)

// Evaluator is the decision side of the alert engine.
type Evaluator interface {
	Evaluate(card *domain.Card, obs domain.Observation) alert.Decision
}

// Result pairs an observation with the decision it produced.
type Result struct {
	Card     *domain.Card
	Obs      domain.Observation
	Decision alert.Decision
}

// Ingest validates a batch of observations against the card catalog and
// forwards the valid ones, in order, to the engine. Observations for unknown
// cards are skipped and logged; one bad record never aborts the batch.
type Ingest struct {
	Logger *zap.Logger
	Cards  repo.CardStore
	Engine Evaluator
}

func New(logger *zap.Logger, cards repo.CardStore, engine Evaluator) *Ingest {
	return &Ingest{Logger: logger, Cards: cards, Engine: engine}
}

func (in *Ingest) Process(ctx context.Context, batch []domain.Observation) []Result {
	out := make([]Result, 0, len(batch))
	for _, obs := range batch {
		card, err := in.Cards.Get(ctx, obs.CardID)
		if err != nil {
			in.Logger.Warn("ingest_lookup_error",
				zap.String("card_id", string(obs.CardID)),
				zap.Error(err),
			)
			continue
		}
		if card == nil {
			in.Logger.Warn("ingest_unknown_card", zap.String("card_id", string(obs.CardID)))
			continue
		}
		out = append(out, Result{
			Card:     card,
			Obs:      obs,
			Decision: in.Engine.Evaluate(card, obs),
		})
	}
	return out
}
