package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	"sampark/internal/domain/outbox"
	"sampark/internal/domain/survey"
	"sampark/internal/infrastructure/storage"
)

type SurveyRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewSurveyRepository(s *Storage, log *slog.Logger) *SurveyRepository {
	return &SurveyRepository{
		s:   s,
		log: log.With("component", "survey_repository"),
	}
}

const insertSurveyQuery = `
	INSERT INTO surveys (
		local_id, survey_id, client_survey_id, panchayat_id, village_name, modules,
		completion_percentage, is_complete, is_draft, synced, synced_at, sync_status,
		deleted, created_at, updated_at, client_timestamp, server_timestamp
	) VALUES (
		:local_id, :survey_id, :client_survey_id, :panchayat_id, :village_name, :modules,
		:completion_percentage, :is_complete, :is_draft, :synced, :synced_at, :sync_status,
		:deleted, :created_at, :updated_at, :client_timestamp, :server_timestamp
	)`

const updateSurveyQuery = `
	UPDATE surveys SET
		panchayat_id = :panchayat_id,
		village_name = :village_name,
		modules = :modules,
		completion_percentage = :completion_percentage,
		is_complete = :is_complete,
		is_draft = :is_draft,
		synced = :synced,
		synced_at = :synced_at,
		sync_status = :sync_status,
		updated_at = :updated_at,
		client_timestamp = :client_timestamp,
		server_timestamp = :server_timestamp
	WHERE local_id = :local_id AND deleted = 0`

// ApplyLocalMutation writes the survey row and appends the matching outbox
// operation in one transaction. A delete leaves a tombstone behind.
func (r *SurveyRepository) ApplyLocalMutation(ctx context.Context, action outbox.Action, sv *survey.Survey) (*outbox.Operation, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", outbox.ErrInvalidAction, action)
	}
	if sv.LocalID == "" {
		return nil, outbox.ErrMissingLocalID
	}

	now := r.s.now().UTC()
	op := &outbox.Operation{
		Action:     action,
		LocalID:    sv.LocalID,
		ServerID:   sv.ServerID,
		EnqueuedAt: now,
	}

	var row *surveyRow
	if action != outbox.ActionDelete {
		var err error
		if row, err = toSurveyRow(sv); err != nil {
			return nil, err
		}
		payload, err := json.Marshal(sv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrSerialization, err)
		}
		op.Payload = payload
	}

	err := r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		switch action {
		case outbox.ActionCreate:
			res, err := tx.NamedExecContext(ctx, insertSurveyQuery, row)
			if err != nil {
				return fmt.Errorf("insert survey: %w", err)
			}
			if sv.StorageKey, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("insert survey: %w", err)
			}
		case outbox.ActionUpdate:
			res, err := tx.NamedExecContext(ctx, updateSurveyQuery, row)
			if err != nil {
				return fmt.Errorf("update survey: %w", err)
			}
			if err := expectRows(res, survey.ErrNotFound); err != nil {
				return err
			}
		case outbox.ActionDelete:
			res, err := tx.ExecContext(ctx, `
				UPDATE surveys SET deleted = 1, synced = 0, sync_status = ?, updated_at = ?
				WHERE local_id = ? AND deleted = 0`,
				survey.StatusPending, now, sv.LocalID)
			if err != nil {
				return fmt.Errorf("tombstone survey: %w", err)
			}
			if err := expectRows(res, survey.ErrNotFound); err != nil {
				return err
			}
		}

		id, err := insertOperation(ctx, tx, op)
		if err != nil {
			return err
		}
		op.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	if action == outbox.ActionDelete {
		sv.Deleted = true
		sv.Synced = false
	}

	r.log.Debug("local mutation stored", "action", action, "local_id", sv.LocalID, "operation_id", op.ID)
	return op, nil
}

// ApplyRemoteSnapshot stores a server copy as synced without touching the outbox.
// It refuses to overwrite a local row that has unsynced changes.
func (r *SurveyRepository) ApplyRemoteSnapshot(ctx context.Context, sv *survey.Survey) error {
	if sv.ServerID == "" {
		return fmt.Errorf("%w: remote snapshot without survey_id", survey.ErrInvalidSurvey)
	}

	now := r.s.now().UTC()

	return r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		// A create whose response was lost is only known by its client survey id
		var existing surveyRow
		err := sqlx.GetContext(ctx, tx, &existing, `
			SELECT `+surveyColumns+` FROM surveys
			WHERE survey_id = ? OR (survey_id IS NULL AND client_survey_id = ?)
			ORDER BY survey_id = ? DESC
			LIMIT 1`, sv.ServerID, sv.ServerID, sv.ServerID)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if sv.LocalID == "" || strings.HasPrefix(sv.LocalID, survey.ServerIDPrefix) {
				sv.LocalID = survey.LocalIDForServer(sv.ServerID)
			}
		case err != nil:
			return fmt.Errorf("find survey %s: %w", sv.ServerID, err)
		default:
			if !existing.Synced {
				return survey.ErrUnsyncedLocal
			}
			sv.LocalID = existing.LocalID
			sv.StorageKey = existing.ID
			sv.ClientSurveyID = existing.ClientSurveyID.String
		}

		markRemote(sv, now)
		row, err := toSurveyRow(sv)
		if err != nil {
			return err
		}

		if existing.ID == 0 {
			res, err := tx.NamedExecContext(ctx, insertSurveyQuery, row)
			if err != nil {
				return fmt.Errorf("insert remote survey: %w", err)
			}
			sv.StorageKey, err = res.LastInsertId()
			return err
		}

		_, err = tx.NamedExecContext(ctx, `
			UPDATE surveys SET
				survey_id = :survey_id,
				panchayat_id = :panchayat_id,
				village_name = :village_name,
				modules = :modules,
				completion_percentage = :completion_percentage,
				is_complete = :is_complete,
				is_draft = 0,
				synced = 1,
				synced_at = :synced_at,
				sync_status = :sync_status,
				deleted = 0,
				created_at = :created_at,
				updated_at = :updated_at,
				client_timestamp = :client_timestamp,
				server_timestamp = :server_timestamp
			WHERE id = :id`, row)
		if err != nil {
			return fmt.Errorf("update remote survey: %w", err)
		}
		return nil
	})
}

func markRemote(sv *survey.Survey, now time.Time) {
	sv.Synced = true
	sv.SyncedAt = &now
	sv.SyncStatus = survey.StatusSynced
	sv.IsDraft = false
	sv.Deleted = false
	if sv.UpdatedAt.IsZero() {
		if sv.ServerTimestamp != nil {
			sv.UpdatedAt = *sv.ServerTimestamp
		} else {
			sv.UpdatedAt = now
		}
	}
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = sv.UpdatedAt
	}
	if sv.ClientTimestamp.IsZero() {
		sv.ClientTimestamp = sv.UpdatedAt
	}
}

// FindSurvey looks up a live record by local id or server id.
func (r *SurveyRepository) FindSurvey(ctx context.Context, id string) (*survey.Survey, error) {
	if id == "" {
		return nil, survey.ErrEmptyID
	}

	var row surveyRow
	err := sqlx.GetContext(ctx, r.s.db, &row, `
		SELECT `+surveyColumns+` FROM surveys
		WHERE (local_id = ? OR survey_id = ? OR client_survey_id = ?) AND deleted = 0
		ORDER BY local_id = ? DESC
		LIMIT 1`, id, id, id, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, survey.ErrNotFound
		}
		r.log.Error("failed to find survey", "id", id, "error", err)
		return nil, fmt.Errorf("find survey: %w", err)
	}
	return row.toSurvey()
}

// FindSurveyByLocalID includes tombstones.
func (r *SurveyRepository) FindSurveyByLocalID(ctx context.Context, localID string) (*survey.Survey, error) {
	var row surveyRow
	err := sqlx.GetContext(ctx, r.s.db, &row,
		`SELECT `+surveyColumns+` FROM surveys WHERE local_id = ?`, localID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, survey.ErrNotFound
		}
		return nil, fmt.Errorf("find survey by local id: %w", err)
	}
	return row.toSurvey()
}

// HasTombstone reports whether id names a deleted record still waiting for its delete to sync.
func (r *SurveyRepository) HasTombstone(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, survey.ErrEmptyID
	}

	var n int
	err := sqlx.GetContext(ctx, r.s.db, &n, `
		SELECT COUNT(*) FROM surveys
		WHERE (local_id = ? OR survey_id = ? OR client_survey_id = ?) AND deleted = 1`, id, id, id)
	if err != nil {
		return false, fmt.Errorf("find tombstone: %w", err)
	}
	return n > 0, nil
}

func (r *SurveyRepository) ListSurveys(ctx context.Context, f survey.Filter) ([]survey.Survey, error) {
	var conds []string
	var args []any

	if !f.IncludeDeleted {
		conds = append(conds, "deleted = 0")
	}

	if f.PanchayatID != "" {
		conds = append(conds, "panchayat_id = ?")
		args = append(args, f.PanchayatID)
	}
	if f.ServerID != "" {
		conds = append(conds, "survey_id = ?")
		args = append(args, f.ServerID)
	}
	if f.Synced != nil {
		conds = append(conds, "synced = ?")
		args = append(args, *f.Synced)
	}

	query := `SELECT ` + surveyColumns + ` FROM surveys`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY updated_at DESC, id DESC`

	var rows []surveyRow
	if err := sqlx.SelectContext(ctx, r.s.db, &rows, query, args...); err != nil {
		r.log.Error("failed to list surveys", "error", err)
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return toSurveys(rows)
}

// OrphanedUnsynced returns unsynced, non-draft surveys that have no pending
// operation left to carry their changes.
func (r *SurveyRepository) OrphanedUnsynced(ctx context.Context) ([]survey.Survey, error) {
	var rows []surveyRow
	err := sqlx.SelectContext(ctx, r.s.db, &rows, `
		SELECT `+surveyColumns+` FROM surveys s
		WHERE s.synced = 0 AND s.is_draft = 0
		  AND NOT EXISTS (
			SELECT 1 FROM pending_sync p WHERE p.local_id = s.local_id AND p.synced = 0
		  )
		ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("list orphaned surveys: %w", err)
	}
	return toSurveys(rows)
}

// CompleteOperation marks op as done and reconciles the survey it belongs to.
//
// A non-empty serverID is bound to the survey unless another row already holds
// it, and is copied onto the remaining pending operations of the same record. A
// completed delete purges the tombstone. Otherwise the survey becomes synced
// once nothing of it is left in the queue.
func (r *SurveyRepository) CompleteOperation(ctx context.Context, op outbox.Operation, serverID string, response []byte) error {
	now := r.s.now().UTC()

	return r.s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE pending_sync SET synced = 1, synced_at = ?, server_response = ?
			WHERE id = ? AND synced = 0`,
			now, nullBytes(response), op.ID)
		if err != nil {
			return fmt.Errorf("complete operation %d: %w", op.ID, err)
		}
		if err := expectRows(res, outbox.ErrAlreadyCompleted); err != nil {
			return err
		}

		if serverID != "" {
			if _, err := tx.ExecContext(ctx, `
				UPDATE surveys SET survey_id = ?
				WHERE local_id = ? AND (survey_id IS NULL OR survey_id <> ?)
				  AND NOT EXISTS (SELECT 1 FROM surveys WHERE survey_id = ? AND local_id <> ?)`,
				serverID, op.LocalID, serverID, serverID, op.LocalID); err != nil {
				return fmt.Errorf("bind server id: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE pending_sync SET server_id = ?
				WHERE local_id = ? AND synced = 0`,
				serverID, op.LocalID); err != nil {
				return fmt.Errorf("propagate server id: %w", err)
			}
		}

		if op.Action == outbox.ActionDelete {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM surveys WHERE local_id = ? AND deleted = 1`, op.LocalID); err != nil {
				return fmt.Errorf("purge tombstone: %w", err)
			}
			return nil
		}

		var remaining int
		if err := sqlx.GetContext(ctx, tx, &remaining,
			`SELECT COUNT(*) FROM pending_sync WHERE local_id = ? AND synced = 0`, op.LocalID); err != nil {
			return fmt.Errorf("count remaining operations: %w", err)
		}
		if remaining > 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE surveys SET synced = 1, synced_at = ?, sync_status = ?
			WHERE local_id = ? AND deleted = 0 AND is_draft = 0`,
			now, survey.StatusSynced, op.LocalID); err != nil {
			return fmt.Errorf("mark survey synced: %w", err)
		}
		return nil
	})
}

func expectRows(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullBytes(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: len(b) > 0}
}
