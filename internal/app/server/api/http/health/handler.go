package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"sampark/internal/domain/sync"
)

type Checker interface {
	Check(ctx context.Context) sync.Reachability
}

type SyncState interface {
	IsSyncing() bool
}

type Handler struct {
	checker    Checker
	state      SyncState
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(checker Checker, state SyncState, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		checker:    checker,
		state:      state,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	return &Output{
		Body: Response{
			Status:       "OK",
			Connectivity: string(h.checker.Check(ctx)),
			Syncing:      h.state.IsSyncing(),
		},
	}, nil
}
