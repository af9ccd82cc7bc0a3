package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
)

var _ repo.CardStore = (*Store)(nil)
var _ repo.HistoryStore = (*Store)(nil)
var _ repo.AlertStateStore = (*Store)(nil)

//go:embed migrations.sql
var migrationsFS embed.FS

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func New(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = NORMAL")

	s := &Store{db: db, log: log}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- CardStore ----

func (s *Store) Add(ctx context.Context, c *domain.Card) error {
	if c.ID == "" {
		c.ID = domain.CardID(makeID())
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, name, rating, position, club, nation, league, image_url, source_url, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(source_url) DO NOTHING`,
		string(c.ID), c.Name, c.Rating, c.Position, c.Club, c.Nation, c.League,
		c.ImageURL, c.SourceURL, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.CardID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, rating, position, club, nation, league, image_url, source_url, created_at
		   FROM cards WHERE id = ?`, string(id))
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *Store) List(ctx context.Context) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT id, name, rating, position, club, nation, league, image_url, source_url, created_at
		   FROM cards ORDER BY created_at DESC, id DESC`)
}

func (s *Store) Sample(ctx context.Context, n int) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT id, name, rating, position, club, nation, league, image_url, source_url, created_at
		   FROM cards ORDER BY RANDOM() LIMIT ?`, n)
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n)
	return n, err
}

func (s *Store) queryCards(ctx context.Context, q string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []*domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(sc scanner) (*domain.Card, error) {
	var (
		c         domain.Card
		id        string
		createdAt string
	)
	if err := sc.Scan(&id, &c.Name, &c.Rating, &c.Position, &c.Club, &c.Nation,
		&c.League, &c.ImageURL, &c.SourceURL, &createdAt); err != nil {
		return nil, err
	}
	c.ID = domain.CardID(id)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		c.CreatedAt = ts
	}
	return &c, nil
}

// ---- HistoryStore ----

func (s *Store) AppendStatus(ctx context.Context, o *domain.Observation) error {
	if o.ObservedAt.IsZero() {
		o.ObservedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO status_history (card_id, status, observed_at) VALUES (?,?,?)`,
		string(o.CardID), string(o.Status), o.ObservedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert status: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, n int) ([]*domain.Observation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id, status, observed_at
		   FROM status_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent status: %w", err)
	}
	defer rows.Close()

	var out []*domain.Observation
	for rows.Next() {
		var (
			o          domain.Observation
			cardID     string
			status     string
			observedAt string
		)
		if err := rows.Scan(&cardID, &status, &observedAt); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		o.CardID = domain.CardID(cardID)
		o.Status = domain.Status(status)
		if ts, err := time.Parse(time.RFC3339Nano, observedAt); err == nil {
			o.ObservedAt = ts
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Oldest first, matching the memory adapter.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ID format mirrors the memory store: 20060102Thhmmss.nnnnnnnnn
func makeID() string {
	now := time.Now().UTC()
	return now.Format("20060102T150405.") + fmt.Sprintf("%09d", now.Nanosecond())
}
