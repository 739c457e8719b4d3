// Package apierror maps domain errors onto huma status errors.
package apierror

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"sampark/internal/domain/draft"
	"sampark/internal/domain/outbox"
	"sampark/internal/domain/survey"
	"sampark/internal/domain/sync"
	"sampark/internal/infrastructure/storage"
)

func From(err error) error {
	if err == nil {
		return nil
	}

	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, survey.ErrNotFound),
		errors.Is(err, draft.ErrNotFound),
		errors.Is(err, outbox.ErrNotFound),
		errors.Is(err, sync.ErrSchemaNotFound),
		errors.Is(err, storage.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, survey.ErrInvalidSurvey),
		errors.Is(err, survey.ErrEmptyID),
		errors.Is(err, draft.ErrEmptySurveyID),
		errors.Is(err, storage.ErrSerialization):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, survey.ErrUnsyncedLocal):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, survey.ErrUnauthenticated):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, survey.ErrPermissionDenied):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, sync.ErrOffline),
		errors.Is(err, sync.ErrNetworkOffline),
		errors.Is(err, sync.ErrServerUnreachable):
		return huma.Error503ServiceUnavailable(err.Error())
	}
	return huma.Error500InternalServerError("internal error", err)
}
