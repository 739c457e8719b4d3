package survey

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "surveys-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys",
		Summary:     "List surveys",
		Description: "Local records merged with the server listing when the server is reachable.",
		Tags:        []string{"surveys"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "surveys-find",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys/{id}",
		Summary:     "Get survey",
		Tags:        []string{"surveys"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "surveys-create",
		Method:        http.MethodPost,
		Path:          "/api/v1/surveys",
		Summary:       "Create survey",
		Description:   "Stores the survey locally and queues it for upload.",
		Tags:          []string{"surveys"},
		DefaultStatus: http.StatusCreated,
		Security:      h.security,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "surveys-update",
		Method:      http.MethodPut,
		Path:        "/api/v1/surveys/{id}",
		Summary:     "Update survey",
		Tags:        []string{"surveys"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "surveys-delete",
		Method:      http.MethodDelete,
		Path:        "/api/v1/surveys/{id}",
		Summary:     "Delete survey",
		Description: "Hides the survey locally; the server copy is removed on the next sync.",
		Tags:        []string{"surveys"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}
