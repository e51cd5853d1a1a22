package sqlstore

import (
	"context"
	"fmt"

	"storysync/internal/domain/entity"
	"storysync/internal/domain/sync"
)

// SyncLogRepository журнал примененных изменений
type SyncLogRepository struct {
	store *Store
}

func NewSyncLogRepository(store *Store) *SyncLogRepository {
	return &SyncLogRepository{store: store}
}

func (r *SyncLogRepository) Append(ctx context.Context, e sync.LogEntry) error {
	query := `
		INSERT INTO sync_log (device_id, entity_type, entity_id, operation, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.store.exec(ctx, query,
		e.DeviceID,
		e.EntityType,
		e.EntityID,
		string(e.Operation),
		e.Version,
		entity.Normalize(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}
