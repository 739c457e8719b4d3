package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank import registers the sqlite3 database driver for migrations
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Migrator покрывает то, что нужно от migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine создает мигратор по URL базы, в тестах подменяется
type MigrationEngine func(databaseURL string) (Migrator, error)

type Migration struct {
	databaseURL string
	engine      MigrationEngine
}

// NewMigration принимает путь к файлу базы SQLite. Пустой engine означает DefaultEngine.
func NewMigration(dbPath string, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		databaseURL: "sqlite3://" + dbPath,
		engine:      engine,
	}
}

// DefaultEngine применяет встроенные в бинарник миграции к файлу SQLite
func DefaultEngine(databaseURL string) (Migrator, error) {
	src, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}

func (mg *Migration) Up() (err error) {
	m, err := mg.engine(mg.databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil || dberr != nil {
			err = errors.Join(err, serr, dberr)
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
