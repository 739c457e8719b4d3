package draft

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/surveys/{id}/draft",
		Summary:     "Load autosaved draft",
		Tags:        []string{"drafts"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) saveOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-save",
		Method:      http.MethodPut,
		Path:        "/api/v1/surveys/{id}/draft",
		Summary:     "Autosave draft",
		Description: "Drafts stay on the device and are never uploaded.",
		Tags:        []string{"drafts"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) finalizeOp() huma.Operation {
	return huma.Operation{
		OperationID: "drafts-finalize",
		Method:      http.MethodPost,
		Path:        "/api/v1/surveys/{id}/draft/finalize",
		Summary:     "Finalize draft",
		Description: "Applies the draft to the survey and queues the change for upload.",
		Tags:        []string{"drafts"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}
