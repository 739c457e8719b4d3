package sync

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"golang.org/x/exp/slog"

	"sampark/internal/app/server/api/http/apierror"
	"sampark/internal/domain/survey"
	"sampark/internal/domain/sync"
)

// eventBuffer is how many events a slow SSE client may lag behind before events are dropped.
const eventBuffer = 16

type Syncer interface {
	SyncNow(ctx context.Context) (*sync.Result, error)
	FullSync(ctx context.Context) (*sync.FullSyncResult, error)
	BatchSync(ctx context.Context, surveys []survey.Survey) (*sync.BatchResponse, error)
	GetSyncStatus(ctx context.Context) (*sync.StatusReport, error)
	GetSyncLogs(ctx context.Context, limit int) ([]sync.LogEntry, error)
	ClearSyncQueue(ctx context.Context) (int64, error)
	Subscribe(fn func(sync.Event)) func()
}

type Handler struct {
	service    Syncer
	surveys    survey.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
	security   []map[string][]string
}

func NewHandler(service Syncer, surveys survey.Servicer, log *slog.Logger, mws huma.Middlewares, security []map[string][]string) *Handler {
	return &Handler{
		service:    service,
		surveys:    surveys,
		log:        log.With("component", "sync_api"),
		middleware: mws,
		security:   security,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.syncNowOp(), h.syncNow)
	huma.Register(api, h.fullSyncOp(), h.fullSync)
	huma.Register(api, h.batchOp(), h.batch)
	huma.Register(api, h.statusOp(), h.status)
	huma.Register(api, h.logsOp(), h.logs)
	huma.Register(api, h.clearQueueOp(), h.clearQueue)

	sse.Register(api, h.eventsOp(), map[string]any{
		"status": sync.Event{},
	}, h.events)
}

func (h *Handler) syncNow(ctx context.Context, _ *struct{}) (*resultOutput, error) {
	res, err := h.service.SyncNow(ctx)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &resultOutput{Body: *res}, nil
}

func (h *Handler) fullSync(ctx context.Context, _ *struct{}) (*fullOutput, error) {
	res, err := h.service.FullSync(ctx)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &fullOutput{Body: *res}, nil
}

func (h *Handler) batch(ctx context.Context, input *batchInput) (*batchOutput, error) {
	surveys, err := h.collect(ctx, input.Body.IDs)
	if err != nil {
		return nil, apierror.From(err)
	}

	resp, err := h.service.BatchSync(ctx, surveys)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &batchOutput{Body: *resp}, nil
}

func (h *Handler) collect(ctx context.Context, ids []string) ([]survey.Survey, error) {
	if len(ids) == 0 {
		unsynced := false
		merged, err := h.surveys.List(ctx, survey.Filter{Synced: &unsynced})
		if err != nil {
			return nil, err
		}
		out := make([]survey.Survey, 0, len(merged))
		for _, m := range merged {
			out = append(out, m.Survey)
		}
		return out, nil
	}

	out := make([]survey.Survey, 0, len(ids))
	for _, id := range ids {
		m, err := h.surveys.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("survey %s: %w", id, err)
		}
		out = append(out, m.Survey)
	}
	return out, nil
}

func (h *Handler) status(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	report, err := h.service.GetSyncStatus(ctx)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &statusOutput{Body: *report}, nil
}

func (h *Handler) logs(ctx context.Context, input *logsInput) (*logsOutput, error) {
	entries, err := h.service.GetSyncLogs(ctx, input.Limit)
	if err != nil {
		return nil, apierror.From(err)
	}
	return &logsOutput{Body: logsResponse{Logs: entries}}, nil
}

func (h *Handler) clearQueue(ctx context.Context, _ *struct{}) (*clearOutput, error) {
	n, err := h.service.ClearSyncQueue(ctx)
	if err != nil {
		return nil, apierror.From(err)
	}
	h.log.Warn("pending operations dropped by request", "count", n)
	return &clearOutput{Body: clearResponse{Status: "Ok", Removed: n}}, nil
}

func (h *Handler) events(ctx context.Context, _ *eventsInput, send sse.Sender) {
	ch := make(chan sync.Event, eventBuffer)
	unsubscribe := h.service.Subscribe(func(e sync.Event) {
		select {
		case ch <- e:
		default:
			h.log.Debug("slow event reader, event dropped", "status", e.Status)
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-ch:
			if err := send.Data(e); err != nil {
				h.log.Debug("event stream closed", "error", err)
				return
			}
		}
	}
}
