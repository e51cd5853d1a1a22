package sync

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"storysync/internal/domain/entity"
)

// Timestamp метка времени на проводе. Принимает RFC3339 и ISO-8601 без зоны (считается UTC),
// отдает RFC3339 в UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: entity.Normalize(t)}
}

// ParseTimestamp разбирает метку времени в любом из поддерживаемых форматов
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.Normalize(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(entity.Normalize(t.Time).Format(entity.TimeLayout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Schema без type: формат проверяется при разборе, а null допустим
func (Timestamp) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Description: "ISO-8601 timestamp; values without a zone are treated as UTC",
		Examples:    []any{"2024-05-01T12:00:00Z"},
	}
}

// Ptr возвращает нормализованное время или nil
func (t *Timestamp) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	n := entity.Normalize(t.Time)
	return &n
}

func timestampPtr(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := NewTimestamp(*t)
	return &ts
}
