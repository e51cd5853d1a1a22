package sync

import (
	"context"
	"time"

	"storysync/internal/domain/device"
	"storysync/internal/domain/entity"
)

// EntityRepository доступ к таблицам сущностей
type EntityRepository interface {
	// Get возвращает сущность, включая мягко удаленную
	Get(ctx context.Context, t *entity.Type, id int64) (*entity.Record, error)
	// ListChangedSince отбирает строки с updated_at строго позже since в порядке (updated_at, id).
	// Метки сравниваются как моменты времени, а не как текст; since == nil означает все строки
	ListChangedSince(ctx context.Context, t *entity.Type, since *time.Time) ([]entity.Record, error)
	// CountChangedSince считает строки по тому же условию, что и ListChangedSince
	CountChangedSince(ctx context.Context, t *entity.Type, since *time.Time) (int, error)
	// Create вставляет строку как есть, entity.ErrAlreadyExists при занятом id
	Create(ctx context.Context, t *entity.Type, rec *entity.Record) error
	// Update применяет поля, если текущая версия равна expected, и возвращает новую версию
	Update(ctx context.Context, t *entity.Type, id, expected int64, values entity.Values, now time.Time) (int64, error)
	// SoftDelete помечает живую строку удаленной и возвращает новую версию.
	// entity.ErrNotFound и когда строки нет, и когда она уже удалена
	SoftDelete(ctx context.Context, t *entity.Type, id int64, now time.Time) (int64, error)
}

// LogRepository журнал примененных операций
type LogRepository interface {
	Append(ctx context.Context, e LogEntry) error
}

// DeviceToucher обновляет отметку последней синхронизации устройства
type DeviceToucher interface {
	TouchLastSync(ctx context.Context, d *device.Device) error
}

// Metrics счетчики движка синхронизации
type Metrics interface {
	ObserveChange(entityType string, op Operation, outcome Outcome)
	ObservePull(entityType string, n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveChange(string, Operation, Outcome) {}
func (nopMetrics) ObservePull(string, int)                  {}
