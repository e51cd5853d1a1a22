package entity

import (
	"fmt"
	"regexp"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Registry набор синхронизируемых типов сущностей.
// Имена таблиц и колонок подставляются в SQL, поэтому проверяются при создании.
type Registry struct {
	byName map[string]*Type
	order  []*Type
}

// NewRegistry создает реестр, сохраняя порядок объявления типов
func NewRegistry(types ...*Type) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Type, len(types)),
		order:  make([]*Type, 0, len(types)),
	}

	tables := make(map[string]string, len(types))
	for _, t := range types {
		if t == nil {
			return nil, fmt.Errorf("nil entity type")
		}
		if t.Name == "" {
			return nil, fmt.Errorf("entity type with empty name")
		}
		if !identRe.MatchString(t.Table) {
			return nil, fmt.Errorf("entity type %s: invalid table name %q", t.Name, t.Table)
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate entity type %s", t.Name)
		}
		if other, dup := tables[t.Table]; dup {
			return nil, fmt.Errorf("entity types %s and %s share table %s", other, t.Name, t.Table)
		}

		seen := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			if !identRe.MatchString(c.Name) {
				return nil, fmt.Errorf("entity type %s: invalid column name %q", t.Name, c.Name)
			}
			if IsSystemField(c.Name) {
				return nil, fmt.Errorf("entity type %s: column %s is a system field", t.Name, c.Name)
			}
			if _, dup := seen[c.Name]; dup {
				return nil, fmt.Errorf("entity type %s: duplicate column %s", t.Name, c.Name)
			}
			seen[c.Name] = struct{}{}
		}

		r.byName[t.Name] = t
		tables[t.Table] = t.Name
		r.order = append(r.order, t)
	}

	return r, nil
}

// MustNewRegistry как NewRegistry, но паникует при ошибке
func MustNewRegistry(types ...*Type) *Registry {
	r, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup ищет тип по логическому имени
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Types возвращает все типы в порядке объявления
func (r *Registry) Types() []*Type {
	out := make([]*Type, len(r.order))
	copy(out, r.order)
	return out
}

// Names возвращает логические имена всех типов
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, t := range r.order {
		names[i] = t.Name
	}
	return names
}

// Resolve отбирает типы по списку имен.
// Пустой список означает все типы, неизвестные имена молча пропускаются.
func (r *Registry) Resolve(names []string) []*Type {
	if len(names) == 0 {
		return r.Types()
	}

	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	out := make([]*Type, 0, len(want))
	for _, t := range r.order {
		if _, ok := want[t.Name]; ok {
			out = append(out, t)
		}
	}
	return out
}
