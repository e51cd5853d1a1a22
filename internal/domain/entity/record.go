package entity

import "time"

// TimeLayout формат временных меток в снимках сущностей
const TimeLayout = time.RFC3339Nano

// Системные поля, присутствующие у каждой синхронизируемой сущности.
const (
	FieldID        = "id"
	FieldVersion   = "version"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldDeletedAt = "deleted_at"
)

// Values типизированные значения колонок: string, int64, float64 или nil
type Values map[string]any

// Record строка таблицы сущности вместе с полями версионирования
type Record struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	Fields    Values
}

// IsDeleted возвращает true для мягко удаленной сущности
func (r *Record) IsDeleted() bool {
	return r.DeletedAt != nil
}

// IsSystemField сообщает, управляется ли поле механизмом синхронизации
func IsSystemField(name string) bool {
	switch name {
	case FieldID, FieldVersion, FieldCreatedAt, FieldUpdatedAt, FieldDeletedAt:
		return true
	}
	return false
}

// Normalize приводит временную метку к UTC с точностью до микросекунды.
// Хранилище может вернуть метку без зоны или в локальной зоне, поэтому
// любое сравнение выполняется только над нормализованными значениями.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NormalizePtr то же, что Normalize, для nullable меток
func NormalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := Normalize(*t)
	return &n
}
