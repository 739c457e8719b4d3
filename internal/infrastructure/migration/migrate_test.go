package migration

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMigrator реализует Migrator
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
	engine := func(db string) (Migrator, error) {
		gotURL = db
		return mockM, nil
	}

	mg := NewMigration("/tmp/sampark.db", engine)
	err := mg.Up()

	assert.NoError(t, err)
	assert.Equal(t, "sqlite3:///tmp/sampark.db", gotURL)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)

	// ErrNoChange не должна считаться ошибкой в методе Up()
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	engine := func(db string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration("x.db", engine).Up()

	assert.NoError(t, err)
}

func TestMigration_Up_EngineError(t *testing.T) {
	engine := func(db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	err := NewMigration("x.db", engine).Up()

	assert.Error(t, err)
	assert.Equal(t, "engine crash", err.Error())
}

func TestMigration_Up_CloseErrorIsReported(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, errors.New("database is locked"))

	engine := func(db string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration("x.db", engine).Up()

	assert.EqualError(t, err, "database is locked")
}

func TestDefaultEngine_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampark.db")

	require.NoError(t, NewMigration(path, nil).Up())
	// повторный запуск не должен падать
	require.NoError(t, NewMigration(path, nil).Up())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"surveys", "pending_sync", "sync_logs", "schemas", "drafts"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}
