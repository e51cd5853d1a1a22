package pairing

import (
	"context"
	"time"
)

// Repository хранилище одноразовых токенов сопряжения. Токены приходят уже в виде HashToken.
type Repository interface {
	Save(ctx context.Context, digest string, expiresAt, now time.Time) error
	// Consume атомарно удаляет неистекший токен; false если удалять нечего
	Consume(ctx context.Context, digest string, now time.Time) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
