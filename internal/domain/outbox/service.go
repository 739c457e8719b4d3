package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Servicer is the operation queue used by the sync engine.
type Servicer interface {
	Enqueue(ctx context.Context, action Action, payload json.RawMessage, localID, serverID string) (*Operation, error)
	ListPending(ctx context.Context) ([]Operation, error)
	MarkCompleted(ctx context.Context, id int64, response []byte) error
	RecordFailure(ctx context.Context, id int64, cause error) error
	Cleanup(ctx context.Context, maxAge time.Duration) (int64, error)
	Clear(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "outbox"),
		now:  time.Now,
	}
}

func (s *Service) Enqueue(ctx context.Context, action Action, payload json.RawMessage, localID, serverID string) (*Operation, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if localID == "" {
		return nil, ErrMissingLocalID
	}
	if action == ActionDelete {
		payload = nil
	}

	op := &Operation{
		Action:     action,
		Payload:    payload,
		LocalID:    localID,
		ServerID:   serverID,
		EnqueuedAt: s.now().UTC(),
	}

	id, err := s.repo.Insert(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s for %s: %w", action, localID, err)
	}
	op.ID = id

	s.log.Debug("operation enqueued", "id", id, "action", action, "local_id", localID)
	return op, nil
}

func (s *Service) ListPending(ctx context.Context) ([]Operation, error) {
	ops, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending operations: %w", err)
	}
	return ops, nil
}

func (s *Service) MarkCompleted(ctx context.Context, id int64, response []byte) error {
	op, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if op.Synced {
		return ErrAlreadyCompleted
	}

	if err := s.repo.MarkCompleted(ctx, id, response, s.now().UTC()); err != nil {
		return fmt.Errorf("mark operation %d completed: %w", id, err)
	}
	return nil
}

// RecordFailure increments the attempt counter and keeps the operation pending.
func (s *Service) RecordFailure(ctx context.Context, id int64, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}

	if err := s.repo.RecordFailure(ctx, id, msg); err != nil {
		return fmt.Errorf("record failure for operation %d: %w", id, err)
	}

	s.log.Debug("operation failed", "id", id, "error", msg)
	return nil
}

// Cleanup deletes completed operations whose syncedAt is older than maxAge.
func (s *Service) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	before := s.now().UTC().Add(-maxAge)

	n, err := s.repo.DeleteCompletedBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("cleanup completed operations: %w", err)
	}
	if n > 0 {
		s.log.Debug("completed operations purged", "count", n)
	}
	return n, nil
}

// Clear drops every pending operation. Completed ones are left to Cleanup.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeletePending(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear sync queue: %w", err)
	}
	s.log.Info("sync queue cleared", "count", n)
	return n, nil
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}
