package survey

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"sampark/internal/app/server/api/http/apierror"
	"sampark/internal/domain/survey"
)

type Handler struct {
	service    survey.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
	security   []map[string][]string
}

func NewHandler(service survey.Servicer, log *slog.Logger, mws huma.Middlewares, security []map[string][]string) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
		security:   security,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	f := survey.Filter{PanchayatID: input.PanchayatID}
	if input.Synced != "" {
		synced := input.Synced == "true"
		f.Synced = &synced
	}

	surveys, err := h.service.List(ctx, f)
	if err != nil {
		return nil, apierror.From(err)
	}

	return &listOutput{
		Body: listResponse{Surveys: surveys, Count: len(surveys)},
	}, nil
}

func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	sv, err := h.service.Get(ctx, input.ID)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &findOutput{Body: *sv}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*output, error) {
	sv, err := h.service.Create(ctx, input.Body)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &output{Body: response{Status: "Ok", Survey: sv}}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*output, error) {
	sv, err := h.service.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &output{Body: response{Status: "Ok", Survey: sv}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*deleteOutput, error) {
	if err := h.service.Delete(ctx, input.ID); err != nil {
		return nil, apierror.From(err)
	}
	return &deleteOutput{
		Body: deleteResponse{Status: "Ok", Message: "Survey deleted"},
	}, nil
}
