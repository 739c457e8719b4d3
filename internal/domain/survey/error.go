package survey

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("survey not found")
	ErrInvalidSurvey     = errors.New("invalid survey")
	ErrInvalidCompletion = fmt.Errorf("%w: completion percentage must be within 0..100", ErrInvalidSurvey)
	ErrEmptyID           = errors.New("survey id is required")
	// ErrUnsyncedLocal is returned when a remote snapshot would overwrite unsynced local edits.
	ErrUnsyncedLocal    = errors.New("local record has unsynced changes")
	ErrPermissionDenied = errors.New("You do not have permission to delete this survey")
	ErrUnauthenticated  = errors.New("You must be logged in to delete surveys")
)
