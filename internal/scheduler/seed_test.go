package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo/memory"
)

type stubLister struct {
	pages map[int][]*domain.Card
	err   error
	calls []int
}

func (s *stubLister) ScrapeListing(ctx context.Context, page int) ([]*domain.Card, error) {
	s.calls = append(s.calls, page)
	if s.err != nil {
		return nil, s.err
	}
	return s.pages[page], nil
}

func listCard(id string) *domain.Card {
	return &domain.Card{
		ID:        domain.CardID(id),
		Name:      "Player " + id,
		SourceURL: "https://www.fut.gg/players/" + id + "/",
	}
}

func TestSeedCatalog_AddsDiscoveredCards(t *testing.T) {
	store := memory.New()
	lister := &stubLister{pages: map[int][]*domain.Card{
		1: {listCard("a"), listCard("b")},
		2: {listCard("c")},
	}}

	added, err := SeedCatalog(context.Background(), zap.NewNop(), store, lister, 2)
	if err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}
	if added != 3 {
		t.Fatalf("added = %d, want 3", added)
	}
	count, _ := store.Count(context.Background())
	if count != 3 {
		t.Fatalf("catalog count = %d, want 3", count)
	}
}

func TestSeedCatalog_SkipsWhenCatalogFull(t *testing.T) {
	store := memory.New()
	for i := 0; i < seedThreshold; i++ {
		if err := store.Add(context.Background(), listCard(fmt.Sprintf("card-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	lister := &stubLister{}
	added, err := SeedCatalog(context.Background(), zap.NewNop(), store, lister, 5)
	if err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
	if len(lister.calls) != 0 {
		t.Fatalf("lister called %d times, want 0", len(lister.calls))
	}
}

func TestSeedCatalog_StopsOnPageError(t *testing.T) {
	store := memory.New()
	lister := &stubLister{err: errors.New("boom")}

	added, err := SeedCatalog(context.Background(), zap.NewNop(), store, lister, 3)
	if err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
	if len(lister.calls) != 1 {
		t.Fatalf("lister called %d times, want 1 (stop after first error)", len(lister.calls))
	}
}
