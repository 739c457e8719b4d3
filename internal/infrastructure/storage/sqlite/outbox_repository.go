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

	"sampark/internal/domain/outbox"
	"sampark/internal/domain/survey"
)

// OutboxRepository persists the pending_sync queue.
type OutboxRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewOutboxRepository(s *Storage, log *slog.Logger) *OutboxRepository {
	return &OutboxRepository{
		s:   s,
		log: log.With("component", "outbox_repository"),
	}
}

const operationColumns = `id, action, payload, local_id, server_id, enqueued_at,
	synced, synced_at, attempts, last_error, server_response`

type operationRow struct {
	ID             int64          `db:"id"`
	Action         string         `db:"action"`
	Payload        sql.NullString `db:"payload"`
	LocalID        string         `db:"local_id"`
	ServerID       sql.NullString `db:"server_id"`
	EnqueuedAt     time.Time      `db:"enqueued_at"`
	Synced         bool           `db:"synced"`
	SyncedAt       sql.NullTime   `db:"synced_at"`
	Attempts       int            `db:"attempts"`
	LastError      sql.NullString `db:"last_error"`
	ServerResponse sql.NullString `db:"server_response"`
}

func (r *operationRow) toOperation() outbox.Operation {
	op := outbox.Operation{
		ID:         r.ID,
		Action:     outbox.Action(r.Action),
		LocalID:    r.LocalID,
		ServerID:   r.ServerID.String,
		EnqueuedAt: r.EnqueuedAt.UTC(),
		Synced:     r.Synced,
		Attempts:   r.Attempts,
		LastError:  r.LastError.String,
	}
	if r.Payload.Valid && r.Payload.String != "" {
		op.Payload = json.RawMessage(r.Payload.String)
	}
	if r.ServerResponse.Valid && r.ServerResponse.String != "" {
		op.ServerResponse = json.RawMessage(r.ServerResponse.String)
	}
	if r.SyncedAt.Valid {
		t := r.SyncedAt.Time.UTC()
		op.SyncedAt = &t
	}
	return op
}

func insertOperation(ctx context.Context, db sqlx.ExtContext, op *outbox.Operation) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO pending_sync (action, payload, local_id, server_id, enqueued_at, synced, attempts)
		VALUES (?, ?, ?, ?, ?, 0, 0)`,
		op.Action, nullBytes(op.Payload), op.LocalID, nullString(op.ServerID), op.EnqueuedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	return res.LastInsertId()
}

func (r *OutboxRepository) Insert(ctx context.Context, op *outbox.Operation) (int64, error) {
	return insertOperation(ctx, r.s.db, op)
}

func (r *OutboxRepository) Get(ctx context.Context, id int64) (*outbox.Operation, error) {
	var row operationRow
	err := sqlx.GetContext(ctx, r.s.db, &row,
		`SELECT `+operationColumns+` FROM pending_sync WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbox.ErrNotFound
		}
		return nil, fmt.Errorf("get operation: %w", err)
	}
	op := row.toOperation()
	return &op, nil
}

func (r *OutboxRepository) ListPending(ctx context.Context) ([]outbox.Operation, error) {
	var rows []operationRow
	err := sqlx.SelectContext(ctx, r.s.db, &rows, `
		SELECT `+operationColumns+` FROM pending_sync
		WHERE synced = 0
		ORDER BY enqueued_at, id`)
	if err != nil {
		r.log.Error("failed to list pending operations", "error", err)
		return nil, fmt.Errorf("list pending operations: %w", err)
	}

	ops := make([]outbox.Operation, 0, len(rows))
	for i := range rows {
		ops = append(ops, rows[i].toOperation())
	}
	return ops, nil
}

func (r *OutboxRepository) MarkCompleted(ctx context.Context, id int64, response []byte, at time.Time) error {
	res, err := r.s.db.ExecContext(ctx, `
		UPDATE pending_sync SET synced = 1, synced_at = ?, server_response = ?
		WHERE id = ? AND synced = 0`,
		at.UTC(), nullBytes(response), id)
	if err != nil {
		return fmt.Errorf("mark operation completed: %w", err)
	}
	return expectRows(res, outbox.ErrAlreadyCompleted)
}

// RecordFailure bumps attempts on the operation and flags its survey as failed.
func (r *OutboxRepository) RecordFailure(ctx context.Context, id int64, message string) error {
	return r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE pending_sync SET attempts = attempts + 1, last_error = ?
			WHERE id = ? AND synced = 0`, message, id)
		if err != nil {
			return fmt.Errorf("record failure: %w", err)
		}
		if err := expectRows(res, outbox.ErrNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE surveys SET sync_status = ?
			WHERE synced = 0 AND local_id = (SELECT local_id FROM pending_sync WHERE id = ?)`,
			survey.StatusFailed, id)
		if err != nil {
			return fmt.Errorf("flag survey failed: %w", err)
		}
		return nil
	})
}

func (r *OutboxRepository) DeleteCompletedBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.s.db.ExecContext(ctx,
		`DELETE FROM pending_sync WHERE synced = 1 AND synced_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete completed operations: %w", err)
	}
	return res.RowsAffected()
}

func (r *OutboxRepository) DeletePending(ctx context.Context) (int64, error) {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM pending_sync WHERE synced = 0`)
	if err != nil {
		return 0, fmt.Errorf("delete pending operations: %w", err)
	}
	return res.RowsAffected()
}

func (r *OutboxRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.s.db, &n, `SELECT COUNT(*) FROM pending_sync WHERE synced = 0`); err != nil {
		return 0, fmt.Errorf("count pending operations: %w", err)
	}
	return n, nil
}
