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

	"sampark/internal/domain/draft"
	"sampark/internal/domain/survey"
	"sampark/internal/infrastructure/storage"
)

type DraftRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewDraftRepository(s *Storage, log *slog.Logger) *DraftRepository {
	return &DraftRepository{
		s:   s,
		log: log.With("component", "draft_repository"),
	}
}

type draftRow struct {
	SurveyID             string        `db:"survey_id"`
	VillageName          string        `db:"village_name"`
	CompletionPercentage sql.NullInt64 `db:"completion_percentage"`
	Modules              string        `db:"modules"`
	LastAutoSave         time.Time     `db:"last_auto_save"`
}

func (r *DraftRepository) UpsertDraft(ctx context.Context, d *draft.Draft) error {
	if d.SurveyID == "" {
		return draft.ErrEmptySurveyID
	}

	modules, err := encodeModules(d.Modules)
	if err != nil {
		return err
	}

	row := draftRow{
		SurveyID:     d.SurveyID,
		VillageName:  d.VillageName,
		Modules:      modules,
		LastAutoSave: d.LastAutoSave.UTC(),
	}
	if d.CompletionPercentage != nil {
		row.CompletionPercentage = sql.NullInt64{Int64: int64(*d.CompletionPercentage), Valid: true}
	}

	_, err = r.s.db.NamedExecContext(ctx, `
		INSERT INTO drafts (survey_id, village_name, completion_percentage, modules, last_auto_save)
		VALUES (:survey_id, :village_name, :completion_percentage, :modules, :last_auto_save)
		ON CONFLICT(survey_id) DO UPDATE SET
			village_name = excluded.village_name,
			completion_percentage = excluded.completion_percentage,
			modules = excluded.modules,
			last_auto_save = excluded.last_auto_save`, row)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

func (r *DraftRepository) GetDraft(ctx context.Context, surveyID string) (*draft.Draft, error) {
	var row draftRow
	err := sqlx.GetContext(ctx, r.s.db, &row, `
		SELECT survey_id, village_name, completion_percentage, modules, last_auto_save
		FROM drafts WHERE survey_id = ?`, surveyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, draft.ErrNotFound
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	d := &draft.Draft{
		SurveyID:     row.SurveyID,
		VillageName:  row.VillageName,
		LastAutoSave: row.LastAutoSave.UTC(),
	}
	if row.CompletionPercentage.Valid {
		pct := int(row.CompletionPercentage.Int64)
		d.CompletionPercentage = &pct
	}

	var modules survey.Modules
	if err := json.Unmarshal([]byte(row.Modules), &modules); err != nil {
		return nil, fmt.Errorf("%w: draft %s: %v", storage.ErrSerialization, surveyID, err)
	}
	d.Modules = modules
	return d, nil
}

// DeleteDraft is idempotent.
func (r *DraftRepository) DeleteDraft(ctx context.Context, surveyID string) error {
	if _, err := r.s.db.ExecContext(ctx, `DELETE FROM drafts WHERE survey_id = ?`, surveyID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
