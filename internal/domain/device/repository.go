package device

import (
	"context"
	"time"
)

// Repository хранилище зарегистрированных устройств
type Repository interface {
	// GetByDeviceID возвращает устройство независимо от is_active, ErrNotFound если его нет
	GetByDeviceID(ctx context.Context, deviceID string) (*Device, error)
	// GetActiveByToken ищет активное устройство по точному совпадению токена
	GetActiveByToken(ctx context.Context, token string) (*Device, error)
	// Create вставляет устройство, ErrAlreadyExists если device_id занят
	Create(ctx context.Context, d *Device) error
	// Reactivate снова включает неактивное устройство с новым именем и токеном
	Reactivate(ctx context.Context, deviceID, name, token string, now time.Time) error
	// Deactivate снимает is_active, ErrNotFound если устройства нет
	Deactivate(ctx context.Context, deviceID string, now time.Time) error
	TouchLastSync(ctx context.Context, deviceID string, at time.Time) error
	ListActive(ctx context.Context) ([]Device, error)
}
