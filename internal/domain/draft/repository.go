package draft

import (
	"context"

	"sampark/internal/domain/survey"
)

type Repository interface {
	UpsertDraft(ctx context.Context, d *Draft) error
	// GetDraft returns ErrNotFound when nothing is saved for the survey.
	GetDraft(ctx context.Context, surveyID string) (*Draft, error)
	DeleteDraft(ctx context.Context, surveyID string) error
}

// Updater applies the finalized draft as a normal survey edit.
type Updater interface {
	Update(ctx context.Context, id string, in survey.Input) (*survey.Survey, error)
}
