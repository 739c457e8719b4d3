package outbox

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, op *Operation) (int64, error)
	Get(ctx context.Context, id int64) (*Operation, error)
	// ListPending returns operations with synced=false ordered by enqueue time, then id.
	ListPending(ctx context.Context) ([]Operation, error)
	MarkCompleted(ctx context.Context, id int64, response []byte, at time.Time) error
	RecordFailure(ctx context.Context, id int64, message string) error
	DeleteCompletedBefore(ctx context.Context, before time.Time) (int64, error)
	DeletePending(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int, error)
}
