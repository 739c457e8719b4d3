package survey

import (
	"context"

	"sampark/internal/domain/outbox"
)

// Repository is the local durable store as seen by the survey service.
type Repository interface {
	// ApplyLocalMutation writes the record and appends its outbox operation atomically.
	ApplyLocalMutation(ctx context.Context, action outbox.Action, s *Survey) (*outbox.Operation, error)
	// ApplyRemoteSnapshot stores a server copy as synced and never enqueues.
	ApplyRemoteSnapshot(ctx context.Context, s *Survey) error
	// FindSurvey looks a live record up by local id or server id.
	FindSurvey(ctx context.Context, id string) (*Survey, error)
	// HasTombstone reports whether id names a locally deleted record whose delete is still queued.
	HasTombstone(ctx context.Context, id string) (bool, error)
	ListSurveys(ctx context.Context, f Filter) ([]Survey, error)
}

// Remote is the read side of the survey API.
type Remote interface {
	ListSurveys(ctx context.Context, panchayatID string) ([]Survey, error)
	GetSurvey(ctx context.Context, id string) (*Survey, error)
}

type Connectivity interface {
	IsOnline() bool
}
