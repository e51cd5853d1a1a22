package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	// Blank import registers the sqlite3 database/sql driver
	_ "github.com/mattn/go-sqlite3"

	"storysync/internal/app/server/config"
	"storysync/internal/domain/entity"
)

const (
	sqliteParams = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	// naive UTC, julianday понимает его так же, как isoformat() хоста
	sqliteTimeLayout = "2006-01-02 15:04:05.999999"
)

// Store общее подключение для всех репозиториев.
// Запросы пишутся с плейсхолдерами "?" и переписываются под диалект драйвера.
type Store struct {
	db     *sql.DB
	pool   *pgxpool.Pool
	driver string
}

// Open подключается к SQLite-файлу настольного приложения или к PostgreSQL
func Open(ctx context.Context, driver, uri string) (*Store, error) {
	switch driver {
	case config.DriverSQLite:
		return openSQLite(ctx, uri)
	case config.DriverPostgres:
		return openPostgres(ctx, uri)
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

func openSQLite(ctx context.Context, path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite допускает одного писателя; один коннект убирает SQLITE_BUSY между запросами
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db, driver: config.DriverSQLite}, nil
}

func openPostgres(ctx context.Context, uri string) (*Store, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{
		db:     stdlib.OpenDBFromPool(pool),
		pool:   pool,
		driver: config.DriverPostgres,
	}, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// rebind заменяет "?" на $1..$n для PostgreSQL
func (s *Store) rebind(query string) string {
	if s.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// afterClause отбор строк, у которых column позже параметра.
// В SQLite метки хранятся текстом в разных форматах (хост пишет naive isoformat с "T",
// драйвер пишет с пробелом и зоной), поэтому сравнение идет через julianday.
// julianday точен до миллисекунды, так что в SQLite условие нестрогое и
// точный отбор делает вызывающий код через changedAfter.
func (s *Store) afterClause(column string) string {
	if s.driver == config.DriverSQLite {
		return fmt.Sprintf("julianday(%s) >= julianday(?)", column)
	}
	return column + " > ?"
}

// timeOrder выражение для сортировки по метке времени
func (s *Store) timeOrder(column string) string {
	if s.driver == config.DriverSQLite {
		return fmt.Sprintf("julianday(%s)", column)
	}
	return column
}

// timeArg значение метки для afterClause
func (s *Store) timeArg(t time.Time) any {
	t = entity.Normalize(t)
	if s.driver == config.DriverSQLite {
		return t.Format(sqliteTimeLayout)
	}
	return t
}

// exactFilter нужен, когда afterClause отбирает с запасом
func (s *Store) exactFilter() bool {
	return s.driver == config.DriverSQLite
}

func changedAfter(updatedAt time.Time, since *time.Time) bool {
	return since == nil || entity.Normalize(updatedAt).After(entity.Normalize(*since))
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
