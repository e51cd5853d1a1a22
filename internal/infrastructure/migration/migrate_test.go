package migration

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storysync/internal/app/server/config"
)

// MockMigrator — мок для интерфейса Migrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, nil)

	var gotURL string
	engine := func(src source.Driver, db string) (Migrator, error) {
		gotURL = db
		return mockM, nil
	}

	mg := NewMigration(config.DriverSQLite, "/tmp/app.db", engine)
	err := mg.Up()

	assert.NoError(t, err)
	assert.Equal(t, "sqlite3:///tmp/app.db", gotURL)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)

	// ErrNoChange не должна считаться ошибкой в методе Up()
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	engine := func(src source.Driver, db string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration(config.DriverPostgres, "postgres://localhost/db", engine).Up()

	assert.NoError(t, err)
}

func TestMigration_Up_CloseError(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, errors.New("db close"))

	engine := func(src source.Driver, db string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration(config.DriverSQLite, "app.db", engine).Up()

	assert.EqualError(t, err, "db close")
}

func TestMigration_Up_EngineError(t *testing.T) {
	// Ошибка на этапе создания мигратора (например, неверный драйвер)
	engine := func(src source.Driver, db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration(config.DriverSQLite, "app.db", engine).Up()

	assert.Error(t, err)
	assert.Equal(t, "engine crash", err.Error())
}

func TestMigration_Up_UnknownDriver(t *testing.T) {
	err := NewMigration("mysql", "x", DefaultEngine).Up()
	assert.Error(t, err)
}

func TestMigration_Up_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.db")

	require.NoError(t, NewMigration(config.DriverSQLite, path, nil).Up())
	// повторный запуск не должен падать на ErrNoChange
	require.NoError(t, NewMigration(config.DriverSQLite, path, nil).Up())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"actor", "location_", "sync_devices", "sync_pairing_tokens", "sync_log"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}
