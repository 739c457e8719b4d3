package schema

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "schemas-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/schemas",
		Summary:     "Cached form schemas",
		Tags:        []string{"schemas"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "schemas-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/schemas/{name}",
		Summary:     "Cached form schema by name",
		Tags:        []string{"schemas"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}
