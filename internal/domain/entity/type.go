package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind тип значения колонки
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Column описывает одну доменную колонку таблицы
type Column struct {
	Name     string
	Kind     Kind
	Required bool
}

func Text(name string) Column  { return Column{Name: name, Kind: KindText} }
func Int(name string) Column   { return Column{Name: name, Kind: KindInt} }
func Float(name string) Column { return Column{Name: name, Kind: KindFloat} }

// NotNull помечает колонку обязательной
func (c Column) NotNull() Column {
	c.Required = true
	return c
}

// PatchMode определяет, как Patch обращается с набором полей
type PatchMode int

const (
	// PatchUpdate пропускает неизвестные поля: частичное обновление
	PatchUpdate PatchMode = iota
	// PatchCreate требует, чтобы все поля были колонками, а обязательные колонки присутствовали
	PatchCreate
)

// Type логический тип сущности и его таблица
type Type struct {
	Name    string
	Table   string
	Columns []Column

	index map[string]int
}

// NewType создает описание типа. Проверка имен выполняется в NewRegistry.
func NewType(name, table string, columns ...Column) *Type {
	t := &Type{
		Name:    name,
		Table:   table,
		Columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c.Name] = i
	}
	return t
}

// Column ищет колонку по имени
func (t *Type) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// ColumnNames возвращает имена доменных колонок в порядке объявления
func (t *Type) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Patch приводит разреженный набор полей из JSON к типизированным значениям.
// Системные поля никогда не берутся из данных клиента.
func (t *Type) Patch(data map[string]any, mode PatchMode) (Values, error) {
	values := make(Values, len(data))
	for key, raw := range data {
		if IsSystemField(key) {
			continue
		}
		col, ok := t.Column(key)
		if !ok {
			if mode == PatchCreate {
				return nil, fmt.Errorf("%w: %s has no column %q", ErrInvalidField, t.Name, key)
			}
			continue
		}
		v, err := col.convert(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidField, t.Name, key, err)
		}
		values[key] = v
	}

	if mode == PatchCreate {
		for _, col := range t.Columns {
			if col.Required && values[col.Name] == nil {
				return nil, fmt.Errorf("%w: %s.%s is required", ErrInvalidField, t.Name, col.Name)
			}
		}
	}

	return values, nil
}

// Snapshot полный снимок сущности для передачи по сети
func (t *Type) Snapshot(r *Record) map[string]any {
	out := make(map[string]any, len(t.Columns)+5)
	out[FieldID] = r.ID
	out[FieldVersion] = r.Version
	out[FieldCreatedAt] = Normalize(r.CreatedAt).Format(TimeLayout)
	out[FieldUpdatedAt] = Normalize(r.UpdatedAt).Format(TimeLayout)
	if r.DeletedAt != nil {
		out[FieldDeletedAt] = Normalize(*r.DeletedAt).Format(TimeLayout)
	} else {
		out[FieldDeletedAt] = nil
	}
	for _, c := range t.Columns {
		out[c.Name] = r.Fields[c.Name]
	}
	return out
}

func (c Column) convert(raw any) (any, error) {
	if raw == nil {
		if c.Required {
			return nil, errors.New("null is not allowed")
		}
		return nil, nil
	}

	switch c.Kind {
	case KindText:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	case KindInt:
		return toInt64(raw)
	case KindFloat:
		return toFloat64(raw)
	}
	return nil, fmt.Errorf("unsupported column kind %s", c.Kind)
}

func toInt64(raw any) (any, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, fmt.Errorf("expected integer, got %v", v)
		}
		if v > math.MaxInt64 || v < math.MinInt64 {
			return nil, fmt.Errorf("integer out of range: %v", v)
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q", v.String())
		}
		return n, nil
	}
	return nil, fmt.Errorf("expected integer, got %T", raw)
}

func toFloat64(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", v.String())
		}
		return f, nil
	}
	return nil, fmt.Errorf("expected number, got %T", raw)
}
