package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"sampark/internal/domain/survey"
)

type Servicer interface {
	SaveDraft(ctx context.Context, surveyID string, p Payload) (*Draft, error)
	AutoSave(ctx context.Context, surveyID string, p Payload)
	LoadDraft(ctx context.Context, surveyID string) (*Draft, error)
	MarkAsFinal(ctx context.Context, surveyID string) (*Draft, error)
	Finalize(ctx context.Context, surveyID string) (*survey.Survey, error)
}

// Service keeps drafts out of the sync path: nothing here writes to the outbox.
type Service struct {
	repo    Repository
	updater Updater
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, updater Updater, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		updater: updater,
		log:     log.With("component", "draft"),
		now:     time.Now,
	}
}

func (s *Service) SaveDraft(ctx context.Context, surveyID string, p Payload) (*Draft, error) {
	if surveyID == "" {
		return nil, ErrEmptySurveyID
	}

	d := &Draft{
		SurveyID:             surveyID,
		VillageName:          p.VillageName,
		CompletionPercentage: p.CompletionPercentage,
		Modules:              p.Modules,
		LastAutoSave:         s.now().UTC(),
	}

	if err := s.repo.UpsertDraft(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft %s: %w", surveyID, err)
	}
	return d, nil
}

// AutoSave is SaveDraft for timer-driven saves: failures are logged only,
// the last explicit save stays the durability guarantee.
func (s *Service) AutoSave(ctx context.Context, surveyID string, p Payload) {
	if _, err := s.SaveDraft(ctx, surveyID, p); err != nil {
		s.log.Warn("autosave failed", "survey_id", surveyID, "error", err)
	}
}

// LoadDraft returns nil without error when no draft exists.
func (s *Service) LoadDraft(ctx context.Context, surveyID string) (*Draft, error) {
	if surveyID == "" {
		return nil, ErrEmptySurveyID
	}

	d, err := s.repo.GetDraft(ctx, surveyID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", surveyID, err)
	}
	return d, nil
}

// MarkAsFinal removes the draft and hands it back; the caller turns it into a record update.
func (s *Service) MarkAsFinal(ctx context.Context, surveyID string) (*Draft, error) {
	d, err := s.LoadDraft(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}

	if err := s.repo.DeleteDraft(ctx, surveyID); err != nil {
		return nil, fmt.Errorf("delete draft %s: %w", surveyID, err)
	}
	return d, nil
}

// Finalize applies the draft as a regular survey update, which enqueues it for sync.
func (s *Service) Finalize(ctx context.Context, surveyID string) (*survey.Survey, error) {
	d, err := s.LoadDraft(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}

	sv, err := s.updater.Update(ctx, surveyID, d.Input())
	if err != nil {
		return nil, fmt.Errorf("finalize draft %s: %w", surveyID, err)
	}

	if _, err := s.MarkAsFinal(ctx, surveyID); err != nil {
		return nil, err
	}

	s.log.Info("draft finalized", "survey_id", surveyID, "local_id", sv.LocalID)
	return sv, nil
}
