package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	domainsync "sampark/internal/domain/sync"
	"sampark/internal/infrastructure/storage"
)

const defaultLogLimit = 50

// SyncRepository keeps the sync activity log and the cached form schemas.
type SyncRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewSyncRepository(s *Storage, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		s:   s,
		log: log.With("component", "sync_repository"),
	}
}

type logRow struct {
	ID        int64     `db:"id"`
	Status    string    `db:"status"`
	Message   string    `db:"message"`
	Details   string    `db:"details"`
	Timestamp time.Time `db:"timestamp"`
}

func (r *SyncRepository) AddSyncLog(ctx context.Context, e *domainsync.LogEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrSerialization, err)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.s.now()
	}

	res, err := r.s.db.ExecContext(ctx,
		`INSERT INTO sync_logs (status, message, details, timestamp) VALUES (?, ?, ?, ?)`,
		e.Status, e.Message, string(details), e.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("add sync log: %w", err)
	}

	e.ID, err = res.LastInsertId()
	return err
}

func (r *SyncRepository) ListSyncLogs(ctx context.Context, limit int) ([]domainsync.LogEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}

	var rows []logRow
	err := sqlx.SelectContext(ctx, r.s.db, &rows, `
		SELECT id, status, message, details, timestamp FROM sync_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}

	entries := make([]domainsync.LogEntry, 0, len(rows))
	for _, row := range rows {
		e := domainsync.LogEntry{
			ID:        row.ID,
			Status:    domainsync.LogStatus(row.Status),
			Message:   row.Message,
			Timestamp: row.Timestamp.UTC(),
		}
		if err := json.Unmarshal([]byte(row.Details), &e.Details); err != nil {
			r.log.Warn("broken sync log details", "id", row.ID, "error", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *SyncRepository) ClearSyncLogs(ctx context.Context) error {
	if _, err := r.s.db.ExecContext(ctx, `DELETE FROM sync_logs`); err != nil {
		return fmt.Errorf("clear sync logs: %w", err)
	}
	return nil
}

type schemaRow struct {
	Name      string    `db:"name"`
	Version   string    `db:"version"`
	Data      string    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *schemaRow) toBlob() domainsync.SchemaBlob {
	return domainsync.SchemaBlob{
		Name:      r.Name,
		Version:   r.Version,
		Data:      json.RawMessage(r.Data),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (r *SyncRepository) PutSchema(ctx context.Context, b *domainsync.SchemaBlob) error {
	if !json.Valid(b.Data) {
		return fmt.Errorf("%w: schema %s is not valid JSON", storage.ErrSerialization, b.Name)
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = r.s.now()
	}

	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO schemas (name, version, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		b.Name, b.Version, string(b.Data), b.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("put schema: %w", err)
	}
	return nil
}

func (r *SyncRepository) GetSchema(ctx context.Context, name string) (*domainsync.SchemaBlob, error) {
	var row schemaRow
	err := sqlx.GetContext(ctx, r.s.db, &row,
		`SELECT name, version, data, updated_at FROM schemas WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainsync.ErrSchemaNotFound
		}
		return nil, fmt.Errorf("get schema: %w", err)
	}
	b := row.toBlob()
	return &b, nil
}

func (r *SyncRepository) ListSchemas(ctx context.Context) ([]domainsync.SchemaBlob, error) {
	var rows []schemaRow
	if err := sqlx.SelectContext(ctx, r.s.db, &rows,
		`SELECT name, version, data, updated_at FROM schemas ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	out := make([]domainsync.SchemaBlob, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toBlob())
	}
	return out, nil
}
