package outbox

import "errors"

var (
	ErrInvalidAction    = errors.New("invalid outbox action")
	ErrNotFound         = errors.New("outbox operation not found")
	ErrAlreadyCompleted = errors.New("outbox operation already completed")
	ErrMissingLocalID   = errors.New("outbox operation requires a local id")
)
