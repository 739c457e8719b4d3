package schema

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"sampark/internal/app/server/api/http/apierror"
	"sampark/internal/domain/sync"
)

// Reader serves form schemas from the local cache only, so forms open offline.
type Reader interface {
	Get(ctx context.Context, name string) (*sync.SchemaBlob, error)
	List(ctx context.Context) ([]sync.SchemaBlob, error)
}

type Handler struct {
	cache      Reader
	log        *slog.Logger
	middleware huma.Middlewares
	security   []map[string][]string
}

func NewHandler(cache Reader, log *slog.Logger, mws huma.Middlewares, security []map[string][]string) *Handler {
	return &Handler{
		cache:      cache,
		log:        log,
		middleware: mws,
		security:   security,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.getOp(), h.get)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	blobs, err := h.cache.List(ctx)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &listOutput{Body: listResponse{Schemas: blobs}}, nil
}

func (h *Handler) get(ctx context.Context, input *getInput) (*getOutput, error) {
	blob, err := h.cache.Get(ctx, input.Name)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &getOutput{Body: *blob}, nil
}
