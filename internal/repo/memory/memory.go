package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
)

type Store struct {
	mu      sync.RWMutex
	cards   map[domain.CardID]*domain.Card
	history []*domain.Observation
	alerts  map[domain.CardID]repo.AlertRecord
}

func New() *Store {
	return &Store{
		cards:   make(map[domain.CardID]*domain.Card),
		history: make([]*domain.Observation, 0, 128),
		alerts:  make(map[domain.CardID]repo.AlertRecord),
	}
}

func (m *Store) Add(ctx context.Context, c *domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = domain.CardID(time.Now().UTC().Format("20060102T150405.000000000"))
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.cards[c.ID] = c
	return nil
}

func (m *Store) Get(ctx context.Context, id domain.CardID) (*domain.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cards[id], nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Card, 0, len(m.cards))
	for _, c := range m.cards {
		out = append(out, c)
	}
	return out, nil
}

func (m *Store) Sample(ctx context.Context, n int) ([]*domain.Card, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

func (m *Store) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cards), nil
}

func (m *Store) AppendStatus(ctx context.Context, o *domain.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, o)
	return nil
}

func (m *Store) Recent(ctx context.Context, n int) ([]*domain.Observation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n > len(m.history) {
		n = len(m.history)
	}
	out := make([]*domain.Observation, 0, n)
	for i := len(m.history) - n; i < len(m.history); i++ {
		out = append(out, m.history[i])
	}
	return out, nil
}

func (m *Store) Load(ctx context.Context) (map[domain.CardID]repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[domain.CardID]repo.AlertRecord, len(m.alerts))
	for id, r := range m.alerts {
		out[id] = r
	}
	return out, nil
}

func (m *Store) Save(ctx context.Context, records map[domain.CardID]repo.AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = make(map[domain.CardID]repo.AlertRecord, len(records))
	for id, r := range records {
		m.alerts[id] = r
	}
	return nil
}
