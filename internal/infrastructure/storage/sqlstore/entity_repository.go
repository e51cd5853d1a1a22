package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"storysync/internal/domain/entity"
)

// EntityRepository реализация доступа к таблицам сущностей
type EntityRepository struct {
	store *Store
}

func NewEntityRepository(store *Store) *EntityRepository {
	return &EntityRepository{store: store}
}

func selectList(t *entity.Type) string {
	cols := []string{entity.FieldID, entity.FieldVersion, entity.FieldCreatedAt, entity.FieldUpdatedAt, entity.FieldDeletedAt}
	for _, c := range t.Columns {
		cols = append(cols, quoteIdent(c.Name))
	}
	return strings.Join(cols, ", ")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, t *entity.Type) (*entity.Record, error) {
	var (
		rec       entity.Record
		deletedAt sql.NullTime
	)

	dest := make([]any, 0, len(t.Columns)+5)
	dest = append(dest, &rec.ID, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt, &deletedAt)
	for _, c := range t.Columns {
		switch c.Kind {
		case entity.KindInt:
			dest = append(dest, new(sql.NullInt64))
		case entity.KindFloat:
			dest = append(dest, new(sql.NullFloat64))
		default:
			dest = append(dest, new(sql.NullString))
		}
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	rec.CreatedAt = entity.Normalize(rec.CreatedAt)
	rec.UpdatedAt = entity.Normalize(rec.UpdatedAt)
	if deletedAt.Valid {
		rec.DeletedAt = entity.NormalizePtr(&deletedAt.Time)
	}

	rec.Fields = make(entity.Values, len(t.Columns))
	for i, c := range t.Columns {
		switch v := dest[i+5].(type) {
		case *sql.NullInt64:
			if v.Valid {
				rec.Fields[c.Name] = v.Int64
			} else {
				rec.Fields[c.Name] = nil
			}
		case *sql.NullFloat64:
			if v.Valid {
				rec.Fields[c.Name] = v.Float64
			} else {
				rec.Fields[c.Name] = nil
			}
		case *sql.NullString:
			if v.Valid {
				rec.Fields[c.Name] = v.String
			} else {
				rec.Fields[c.Name] = nil
			}
		}
	}

	return &rec, nil
}

func (r *EntityRepository) Get(ctx context.Context, t *entity.Type, id int64) (*entity.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, selectList(t), quoteIdent(t.Table))

	rec, err := scanRecord(r.store.queryRow(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", t.Name, err)
	}
	return rec, nil
}

func (r *EntityRepository) ListChangedSince(ctx context.Context, t *entity.Type, since *time.Time) ([]entity.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, selectList(t), quoteIdent(t.Table))
	var args []any
	if since != nil {
		query += ` WHERE ` + r.store.afterClause(entity.FieldUpdatedAt)
		args = append(args, r.store.timeArg(*since))
	}
	query += fmt.Sprintf(` ORDER BY %s, id`, r.store.timeOrder(entity.FieldUpdatedAt))

	rows, err := r.store.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.Name, err)
	}
	defer rows.Close()

	records := make([]entity.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows, t)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.Name, err)
		}
		if !changedAfter(rec.UpdatedAt, since) {
			continue
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", t.Name, err)
	}

	if r.store.exactFilter() {
		// julianday сортирует с точностью до миллисекунды
		sort.SliceStable(records, func(i, j int) bool {
			if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
				return records[i].UpdatedAt.Before(records[j].UpdatedAt)
			}
			return records[i].ID < records[j].ID
		})
	}
	return records, nil
}

func (r *EntityRepository) CountChangedSince(ctx context.Context, t *entity.Type, since *time.Time) (int, error) {
	if since != nil && r.store.exactFilter() {
		return r.countExact(ctx, t, *since)
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(t.Table))
	var args []any
	if since != nil {
		query += ` WHERE ` + r.store.afterClause(entity.FieldUpdatedAt)
		args = append(args, r.store.timeArg(*since))
	}

	var n int
	if err := r.store.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.Name, err)
	}
	return n, nil
}

// countExact досчитывает в Go то, что SQL отобрал с запасом
func (r *EntityRepository) countExact(ctx context.Context, t *entity.Type, since time.Time) (int, error) {
	query := fmt.Sprintf(`SELECT updated_at FROM %s WHERE %s`,
		quoteIdent(t.Table), r.store.afterClause(entity.FieldUpdatedAt))

	rows, err := r.store.query(ctx, query, r.store.timeArg(since))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.Name, err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var updatedAt time.Time
		if err := rows.Scan(&updatedAt); err != nil {
			return 0, fmt.Errorf("failed to scan %s: %w", t.Name, err)
		}
		if changedAfter(updatedAt, &since) {
			n++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.Name, err)
	}
	return n, nil
}

func (r *EntityRepository) Create(ctx context.Context, t *entity.Type, rec *entity.Record) error {
	cols := []string{entity.FieldID, entity.FieldVersion, entity.FieldCreatedAt, entity.FieldUpdatedAt}
	args := []any{rec.ID, rec.Version, entity.Normalize(rec.CreatedAt), entity.Normalize(rec.UpdatedAt)}
	if rec.DeletedAt != nil {
		cols = append(cols, entity.FieldDeletedAt)
		args = append(args, entity.Normalize(*rec.DeletedAt))
	}
	for _, name := range sortedKeys(rec.Fields) {
		cols = append(cols, quoteIdent(name))
		args = append(args, rec.Fields[name])
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO NOTHING`,
		quoteIdent(t.Table), strings.Join(cols, ", "), placeholders(len(cols)))

	res, err := r.store.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", t.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", t.Name, err)
	}
	if n == 0 {
		return entity.ErrAlreadyExists
	}
	return nil
}

// Update сравнивает и увеличивает версию одним оператором, поэтому два параллельных
// запроса с одной базовой версией не могут оба выиграть.
func (r *EntityRepository) Update(ctx context.Context, t *entity.Type, id, expected int64, values entity.Values, now time.Time) (int64, error) {
	sets := make([]string, 0, len(values)+2)
	args := make([]any, 0, len(values)+4)
	for _, name := range sortedKeys(values) {
		sets = append(sets, quoteIdent(name)+" = ?")
		args = append(args, values[name])
	}
	sets = append(sets, "version = version + 1", "updated_at = ?")
	args = append(args, entity.Normalize(now), id, expected)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND version = ? RETURNING version`,
		quoteIdent(t.Table), strings.Join(sets, ", "))

	var version int64
	err := r.store.queryRow(ctx, query, args...).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to update %s: %w", t.Name, err)
	}

	var current int64
	err = r.store.queryRow(ctx, fmt.Sprintf(`SELECT version FROM %s WHERE id = ?`, quoteIdent(t.Table)), id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, entity.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get %s version: %w", t.Name, err)
	}
	return 0, fmt.Errorf("%w: expected %d, current %d", entity.ErrVersionMismatch, expected, current)
}

func (r *EntityRepository) SoftDelete(ctx context.Context, t *entity.Type, id int64, now time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND deleted_at IS NULL
		RETURNING version`, quoteIdent(t.Table))

	now = entity.Normalize(now)
	var version int64
	err := r.store.queryRow(ctx, query, now, now, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, entity.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s: %w", t.Name, err)
	}
	return version, nil
}

func sortedKeys(values entity.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
