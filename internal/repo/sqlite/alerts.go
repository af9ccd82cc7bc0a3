package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
)

func (s *Store) Load(ctx context.Context) (map[domain.CardID]repo.AlertRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id, last_status, last_observed_at, last_alerted_at FROM alert_state`)
	if err != nil {
		return nil, fmt.Errorf("load alert state: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.CardID]repo.AlertRecord)
	for rows.Next() {
		var (
			cardID     string
			lastStatus string
			observedAt string
			alertedAt  *string
		)
		if err := rows.Scan(&cardID, &lastStatus, &observedAt, &alertedAt); err != nil {
			return nil, fmt.Errorf("scan alert state: %w", err)
		}
		r := repo.AlertRecord{
			CardID:     domain.CardID(cardID),
			LastStatus: domain.Status(lastStatus),
		}
		if ts, err := time.Parse(time.RFC3339Nano, observedAt); err == nil {
			r.LastObservedAt = ts
		}
		if alertedAt != nil {
			if ts, err := time.Parse(time.RFC3339Nano, *alertedAt); err == nil {
				r.LastAlertedAt = &ts
			}
		}
		out[r.CardID] = r
	}
	return out, rows.Err()
}

func (s *Store) Save(ctx context.Context, records map[domain.CardID]repo.AlertRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO alert_state (card_id, last_status, last_observed_at, last_alerted_at)
		VALUES (?,?,?,?)
		ON CONFLICT(card_id)
		DO UPDATE SET last_status=excluded.last_status,
		              last_observed_at=excluded.last_observed_at,
		              last_alerted_at=excluded.last_alerted_at`
	for _, r := range records {
		var alertedAt *string
		if r.LastAlertedAt != nil {
			v := r.LastAlertedAt.Format(time.RFC3339Nano)
			alertedAt = &v
		}
		if _, err := tx.ExecContext(ctx, q,
			string(r.CardID), string(r.LastStatus),
			r.LastObservedAt.Format(time.RFC3339Nano), alertedAt,
		); err != nil {
			return fmt.Errorf("upsert alert state: %w", err)
		}
	}
	return tx.Commit()
}
