package ingest

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/alert"
	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo/memory"
)

// countingEngine records the order cards were forwarded in.
type countingEngine struct {
	seen []domain.CardID
}

func (c *countingEngine) Evaluate(card *domain.Card, obs domain.Observation) alert.Decision {
	c.seen = append(c.seen, card.ID)
	return alert.Decision{Reason: alert.ReasonNotExtinct}
}

func TestProcess_SkipsUnknownCards(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	card := &domain.Card{Name: "A", SourceURL: "https://www.fut.gg/players/a/"}
	if err := store.Add(ctx, card); err != nil {
		t.Fatalf("Add: %v", err)
	}

	eng := &countingEngine{}
	in := New(zap.NewNop(), store, eng)

	batch := []domain.Observation{
		{CardID: card.ID, Status: domain.StatusNormal, ObservedAt: time.Now()},
		{CardID: "Z", Status: domain.StatusExtinct, ObservedAt: time.Now()}, // unknown -> skipped
		{CardID: card.ID, Status: domain.StatusExtinct, ObservedAt: time.Now()},
	}
	out := in.Process(ctx, batch)

	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if len(eng.seen) != 2 {
		t.Fatalf("unknown card must never reach the engine, got %d calls", len(eng.seen))
	}
}

func TestProcess_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	var ids []domain.CardID
	for i := 0; i < 3; i++ {
		c := &domain.Card{Name: "P", SourceURL: "https://www.fut.gg/players/" + string(rune('a'+i)) + "/"}
		if err := store.Add(ctx, c); err != nil {
			t.Fatalf("Add: %v", err)
		}
		ids = append(ids, c.ID)
		time.Sleep(time.Nanosecond)
	}

	eng := &countingEngine{}
	in := New(zap.NewNop(), store, eng)

	batch := make([]domain.Observation, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, domain.Observation{CardID: id, Status: domain.StatusNormal, ObservedAt: time.Now()})
	}
	in.Process(ctx, batch)

	for i, id := range ids {
		if eng.seen[i] != id {
			t.Fatalf("order not preserved at %d: want %s got %s", i, id, eng.seen[i])
		}
	}
}
