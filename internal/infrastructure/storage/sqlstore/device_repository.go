package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storysync/internal/domain/device"
	"storysync/internal/domain/entity"
)

// DeviceRepository реализация реестра устройств
type DeviceRepository struct {
	store *Store
}

func NewDeviceRepository(store *Store) *DeviceRepository {
	return &DeviceRepository{store: store}
}

const deviceColumns = `id, device_id, device_name, auth_token, is_active, last_sync, created_at, updated_at`

func scanDevice(row scanner) (*device.Device, error) {
	var (
		d        device.Device
		lastSync sql.NullTime
	)
	err := row.Scan(
		&d.ID,
		&d.DeviceID,
		&d.Name,
		&d.AuthToken,
		&d.IsActive,
		&lastSync,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSync.Valid {
		d.LastSync = entity.NormalizePtr(&lastSync.Time)
	}
	d.CreatedAt = entity.Normalize(d.CreatedAt)
	d.UpdatedAt = entity.Normalize(d.UpdatedAt)
	return &d, nil
}

func (r *DeviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*device.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM sync_devices WHERE device_id = ?`

	d, err := scanDevice(r.store.queryRow(ctx, query, deviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, device.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

func (r *DeviceRepository) GetActiveByToken(ctx context.Context, token string) (*device.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM sync_devices WHERE auth_token = ? AND is_active = ?`

	d, err := scanDevice(r.store.queryRow(ctx, query, token, true))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, device.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get device by token: %w", err)
	}
	return d, nil
}

func (r *DeviceRepository) Create(ctx context.Context, d *device.Device) error {
	query := `
		INSERT INTO sync_devices (device_id, device_name, auth_token, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (device_id) DO NOTHING
		RETURNING id`

	err := r.store.queryRow(ctx, query,
		d.DeviceID,
		d.Name,
		d.AuthToken,
		d.IsActive,
		entity.Normalize(d.CreatedAt),
		entity.Normalize(d.UpdatedAt),
	).Scan(&d.ID)

	if errors.Is(err, sql.ErrNoRows) {
		return device.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) Reactivate(ctx context.Context, deviceID, name, token string, now time.Time) error {
	query := `
		UPDATE sync_devices
		SET device_name = ?, auth_token = ?, is_active = ?, updated_at = ?, version = version + 1
		WHERE device_id = ?`

	return r.updateOne(ctx, "reactivate", query, name, token, true, entity.Normalize(now), deviceID)
}

func (r *DeviceRepository) Deactivate(ctx context.Context, deviceID string, now time.Time) error {
	query := `UPDATE sync_devices SET is_active = ?, updated_at = ? WHERE device_id = ?`

	return r.updateOne(ctx, "deactivate", query, false, entity.Normalize(now), deviceID)
}

func (r *DeviceRepository) TouchLastSync(ctx context.Context, deviceID string, at time.Time) error {
	query := `UPDATE sync_devices SET last_sync = ?, updated_at = ? WHERE device_id = ?`

	at = entity.Normalize(at)
	return r.updateOne(ctx, "touch", query, at, at, deviceID)
}

func (r *DeviceRepository) ListActive(ctx context.Context) ([]device.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM sync_devices WHERE is_active = ? ORDER BY created_at, id`

	rows, err := r.store.query(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := make([]device.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	return devices, nil
}

func (r *DeviceRepository) updateOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.store.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s device: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s device: %w", op, err)
	}
	if n == 0 {
		return device.ErrNotFound
	}
	return nil
}
