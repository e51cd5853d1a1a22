package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Blank imports register the database drivers used by migration URLs
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"storysync/internal/app/server/config"
	"storysync/migrations"
)

// Migrator — интерфейс для самой библиотеки migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine — фабрика для создания мигратора (чтобы не лезть в БД в тестах)
type MigrationEngine func(src source.Driver, databaseURL string) (Migrator, error)

type Migration struct {
	driver      string
	databaseURI string
	engine      MigrationEngine
}

func NewMigration(driver, databaseURI string, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		driver:      driver,
		databaseURI: databaseURI,
		engine:      engine,
	}
}

// DefaultEngine — реальная реализация поверх встроенных SQL-файлов
func DefaultEngine(src source.Driver, databaseURL string) (Migrator, error) {
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}

// DatabaseURL переводит DSN хранилища в URL, понятный golang-migrate
func DatabaseURL(driver, databaseURI string) (string, error) {
	switch driver {
	case config.DriverSQLite:
		return "sqlite3://" + strings.TrimPrefix(databaseURI, "file:"), nil
	case config.DriverPostgres:
		return databaseURI, nil
	}
	return "", fmt.Errorf("unsupported driver %q", driver)
}

func (mg *Migration) Up() (err error) {
	dir, err := migrations.For(mg.driver)
	if err != nil {
		return err
	}
	url, err := DatabaseURL(mg.driver, mg.databaseURI)
	if err != nil {
		return err
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := mg.engine(src, url)
	if err != nil {
		_ = src.Close()
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration source error: %v", err, serr)
			} else {
				err = serr
			}
		}
		if dberr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration database error: %v", err, dberr)
			} else {
				err = dberr
			}
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
