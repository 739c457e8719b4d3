package draft

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"sampark/internal/app/server/api/http/apierror"
	"sampark/internal/domain/draft"
)

type Handler struct {
	service    draft.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
	security   []map[string][]string
}

func NewHandler(service draft.Servicer, log *slog.Logger, mws huma.Middlewares, security []map[string][]string) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
		security:   security,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.saveOp(), h.save)
	huma.Register(api, h.finalizeOp(), h.finalize)
}

func (h *Handler) get(ctx context.Context, input *getInput) (*draftOutput, error) {
	d, err := h.service.LoadDraft(ctx, input.ID)
	if err != nil {
		return nil, apierror.From(err)
	}
	if d == nil {
		return nil, huma.Error404NotFound(draft.ErrNotFound.Error())
	}
	return &draftOutput{Body: *d}, nil
}

func (h *Handler) save(ctx context.Context, input *saveInput) (*draftOutput, error) {
	d, err := h.service.SaveDraft(ctx, input.ID, input.Body)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &draftOutput{Body: *d}, nil
}

func (h *Handler) finalize(ctx context.Context, input *finalizeInput) (*finalizeOutput, error) {
	sv, err := h.service.Finalize(ctx, input.ID)
	if err != nil {
		return nil, apierror.From(err)
	}
	h.log.Info("draft finalized", "survey_id", input.ID)
	return &finalizeOutput{Body: finalizeResponse{Status: "Ok", Survey: sv}}, nil
}
