package sqlstore

import (
	"context"
	"fmt"
	"time"

	"storysync/internal/domain/entity"
)

// PairingRepository одноразовые токены сопряжения в sync_pairing_tokens
type PairingRepository struct {
	store *Store
}

func NewPairingRepository(store *Store) *PairingRepository {
	return &PairingRepository{store: store}
}

func (r *PairingRepository) Save(ctx context.Context, digest string, expiresAt, now time.Time) error {
	query := `INSERT INTO sync_pairing_tokens (token, expires_at, created_at, updated_at) VALUES (?, ?, ?, ?)`

	now = entity.Normalize(now)
	if _, err := r.store.exec(ctx, query, digest, entity.Normalize(expiresAt), now, now); err != nil {
		return fmt.Errorf("failed to save pairing token: %w", err)
	}
	return nil
}

// Consume удаляет токен одним оператором: из двух параллельных попыток строку удалит только одна
func (r *PairingRepository) Consume(ctx context.Context, digest string, now time.Time) (bool, error) {
	query := `DELETE FROM sync_pairing_tokens WHERE token = ? AND expires_at > ?`

	res, err := r.store.exec(ctx, query, digest, entity.Normalize(now))
	if err != nil {
		return false, fmt.Errorf("failed to consume pairing token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to consume pairing token: %w", err)
	}
	return n == 1, nil
}

func (r *PairingRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.store.exec(ctx, `DELETE FROM sync_pairing_tokens WHERE expires_at <= ?`, entity.Normalize(now))
	if err != nil {
		return 0, fmt.Errorf("failed to purge pairing tokens: %w", err)
	}
	return res.RowsAffected()
}
