package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) syncNowOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-now",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/now",
		Summary:     "Upload pending operations",
		Description: "Runs a sync cycle now, also while background sync waits for new credentials.",
		Tags:        []string{"sync"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) fullSyncOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-full",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/full",
		Summary:     "Pull, refresh schemas and upload",
		Tags:        []string{"sync"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) batchOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-batch",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/batch",
		Summary:     "Send surveys in one request",
		Description: "Does not touch the operation queue.",
		Tags:        []string{"sync"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) statusOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/status",
		Summary:     "Sync status",
		Tags:        []string{"sync"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) logsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-logs",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/logs",
		Summary:     "Recent sync log entries",
		Tags:        []string{"sync"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) clearQueueOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-clear-queue",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sync/queue",
		Summary:     "Drop pending operations",
		Description: "Removes every queued operation. Records still unsynced stay on the device " +
			"and the next sync cycle re-enqueues each of them once from its current state.",
		Tags:        []string{"sync"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}

func (h *Handler) eventsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-events",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/events",
		Summary:     "Stream of sync status events",
		Tags:        []string{"sync"},
		Security:    h.security,
		Middlewares: h.middleware,
	}
}
