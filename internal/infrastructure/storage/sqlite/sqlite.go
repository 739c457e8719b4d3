package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	domainsync "sampark/internal/domain/sync"
	"sampark/internal/infrastructure/migration"
	"sampark/internal/infrastructure/storage"
)

// Storage is the device-local durable store. A single SQLite file holds the
// surveys, pending_sync, sync_logs, schemas and drafts tables.
type Storage struct {
	db  *sqlx.DB
	log *slog.Logger
	now func() time.Time
}

// New creates the database file if needed, applies migrations and opens it.
// It returns storage.ErrUnavailable when the file cannot be used.
func New(path string, log *slog.Logger) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty database path", storage.ErrUnavailable)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	if err := migration.NewMigration(path, nil).Up(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	db, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	s := NewWithDB(db, log)
	s.log.Info("local storage ready", "path", path)
	return s, nil
}

// NewWithDB wraps an already migrated connection.
func NewWithDB(db *sqlx.DB, log *slog.Logger) *Storage {
	return &Storage{
		db:  db,
		log: log.With("component", "sqlite"),
		now: time.Now,
	}
}

func dsn(path string) string {
	return path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) DB() *sqlx.DB {
	return s.db
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, context.Canceled) {
				s.log.Error("rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ClearAll wipes every collection. Used on logout or reset only.
func (s *Storage) ClearAll(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"surveys", "pending_sync", "sync_logs", "schemas", "drafts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Warn("local storage cleared")
	return nil
}

func (s *Storage) Stats(ctx context.Context) (*domainsync.StorageStats, error) {
	var stats domainsync.StorageStats

	err := s.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM surveys WHERE deleted = 0),
			(SELECT COUNT(*) FROM surveys WHERE deleted = 0 AND synced = 0),
			(SELECT COUNT(*) FROM pending_sync WHERE synced = 0),
			(SELECT COUNT(*) FROM sync_logs)
	`).Scan(&stats.TotalSurveys, &stats.UnsyncedSurveys, &stats.PendingOperations, &stats.TotalLogs)
	if err != nil {
		return nil, fmt.Errorf("storage stats: %w", err)
	}

	return &stats, nil
}
