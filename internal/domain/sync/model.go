package sync

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"storysync/internal/domain/entity"
)

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type Resolution string

const (
	// ResolutionDesktopWins существующая строка остается, входящий create не применен
	ResolutionDesktopWins Resolution = "desktop_wins"
	// ResolutionMerge кандидат на слияние по полям, входящее изменение не применено
	ResolutionMerge Resolution = "merge"
)

// Outcome итог обработки одного изменения в push
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeConflict Outcome = "conflict"
	OutcomeRejected Outcome = "rejected"
)

// Fields снимок полей сущности
type Fields map[string]any

func (Fields) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Description: "Entity field snapshot, null for deletes",
	}
}

// EntityChange состояние одной сущности на момент изменения
type EntityChange struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	EntityType string     `json:"entity_type" required:"false" doc:"Логическое имя типа сущности (actor, location, ...)"`
	EntityID   int64      `json:"entity_id" required:"false" doc:"Первичный ключ сущности"`
	Operation  Operation  `json:"operation" required:"false" doc:"create, update или delete"`
	Data       Fields     `json:"data" required:"false" doc:"Полный снимок полей, null для delete"`
	EntityData Fields     `json:"entity_data,omitempty" doc:"Устаревшее имя поля data"`
	Version    *int64     `json:"version,omitempty" doc:"Версия сущности, на которой основано изменение"`
	UpdatedAt  *Timestamp `json:"updated_at,omitempty" doc:"Время изменения"`

	decodeErr error
}

// Err ошибка разбора изменения из входящего пакета
func (c *EntityChange) Err() error {
	return c.decodeErr
}

// Changes входящий пакет push. Элементы разбираются по одному: неразобранное изменение
// остается в пакете с ошибкой и засчитывается как rejected.
type Changes []EntityChange

func (c *Changes) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}

	out := make(Changes, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &out[i]); err != nil {
			out[i].decodeErr = fmt.Errorf("%w: %v", ErrInvalidChange, err)
		}
	}
	*c = out
	return nil
}

// Schema не описывает элементы: их формат проверяет UnmarshalJSON
func (Changes) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeArray,
		Description: "Entity changes applied in order",
		Items: &huma.Schema{
			Description: "Entity change (entity_type, entity_id, operation, data, version, updated_at)",
		},
	}
}

// Normalize переносит entity_data в data и достает version/updated_at из данных,
// если клиент не прислал их на верхнем уровне.
func (c *EntityChange) Normalize() {
	if c.Data == nil && c.EntityData != nil {
		c.Data = c.EntityData
	}
	c.EntityData = nil

	if c.Data == nil {
		return
	}
	if c.Version == nil {
		if v, ok := integral(c.Data[entity.FieldVersion]); ok {
			c.Version = &v
		}
	}
	if c.UpdatedAt == nil {
		for _, key := range []string{entity.FieldUpdatedAt, entity.FieldCreatedAt} {
			if s, ok := c.Data[key].(string); ok {
				if t, err := ParseTimestamp(s); err == nil {
					ts := Timestamp{Time: t}
					c.UpdatedAt = &ts
					break
				}
			}
		}
	}
}

func integral(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// ConflictInfo обе стороны конфликта и принятое решение
type ConflictInfo struct {
	EntityType       string     `json:"entity_type"`
	EntityID         int64      `json:"entity_id"`
	MobileVersion    int64      `json:"mobile_version"`
	DesktopVersion   int64      `json:"desktop_version"`
	MobileUpdatedAt  Timestamp  `json:"mobile_updated_at"`
	DesktopUpdatedAt Timestamp  `json:"desktop_updated_at"`
	MobileData       Fields     `json:"mobile_data"`
	DesktopData      Fields     `json:"desktop_data"`
	Resolution       Resolution `json:"resolution"`
}

// PushResult сводка обработки пакета
type PushResult struct {
	Accepted  int            `json:"accepted"`
	Conflicts []ConflictInfo `json:"conflicts"`
	Rejected  int            `json:"rejected"`
}

// LogEntry строка журнала синхронизации
type LogEntry struct {
	DeviceID   string
	EntityType string
	EntityID   int64
	Operation  Operation
	Version    int64
	CreatedAt  time.Time
}
