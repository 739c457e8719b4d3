package sync

import (
	"context"
	"net/http"
	gosync "sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"sampark/internal/domain/survey"
	"sampark/internal/domain/sync"
)

type MockSyncer struct {
	mock.Mock

	mu  gosync.Mutex
	sub func(sync.Event)
}

func (m *MockSyncer) SyncNow(ctx context.Context) (*sync.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Result), args.Error(1)
}

func (m *MockSyncer) FullSync(ctx context.Context) (*sync.FullSyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.FullSyncResult), args.Error(1)
}

func (m *MockSyncer) BatchSync(ctx context.Context, surveys []survey.Survey) (*sync.BatchResponse, error) {
	args := m.Called(ctx, surveys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.BatchResponse), args.Error(1)
}

func (m *MockSyncer) GetSyncStatus(ctx context.Context) (*sync.StatusReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.StatusReport), args.Error(1)
}

func (m *MockSyncer) GetSyncLogs(ctx context.Context, limit int) ([]sync.LogEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]sync.LogEntry), args.Error(1)
}

func (m *MockSyncer) ClearSyncQueue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Subscribe keeps a single subscriber so tests can push events.
func (m *MockSyncer) Subscribe(fn func(sync.Event)) func() {
	m.mu.Lock()
	m.sub = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.sub = nil
		m.mu.Unlock()
	}
}

func (m *MockSyncer) emit(e sync.Event) bool {
	m.mu.Lock()
	fn := m.sub
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(e)
	return true
}

type MockSurveys struct {
	mock.Mock
}

func (m *MockSurveys) Create(ctx context.Context, in survey.Input) (*survey.Survey, error) {
	panic("not used")
}

func (m *MockSurveys) Update(ctx context.Context, id string, in survey.Input) (*survey.Survey, error) {
	panic("not used")
}

func (m *MockSurveys) Delete(ctx context.Context, id string) error {
	panic("not used")
}

func (m *MockSurveys) List(ctx context.Context, f survey.Filter) ([]survey.Merged, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]survey.Merged), args.Error(1)
}

func (m *MockSurveys) Get(ctx context.Context, id string) (*survey.Merged, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*survey.Merged), args.Error(1)
}

func newHandler(svc *MockSyncer, surveys *MockSurveys) *Handler {
	return NewHandler(svc, surveys, slog.Default(), huma.Middlewares{}, nil)
}

func TestHandler_syncNow(t *testing.T) {
	svc := new(MockSyncer)
	svc.On("SyncNow", mock.Anything).Return(&sync.Result{Status: sync.OutcomeOffline, Message: "Device is offline"}, nil)

	out, err := newHandler(svc, nil).syncNow(context.Background(), &struct{}{})

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeOffline, out.Body.Status)
}

func TestHandler_batch(t *testing.T) {
	ctx := context.Background()

	t.Run("unsynced by default", func(t *testing.T) {
		svc := new(MockSyncer)
		surveys := new(MockSurveys)
		unsynced := false
		surveys.On("List", mock.Anything, survey.Filter{Synced: &unsynced}).Return([]survey.Merged{
			{Survey: survey.Survey{LocalID: "local_1"}},
			{Survey: survey.Survey{LocalID: "local_2"}},
		}, nil)
		svc.On("BatchSync", mock.Anything, mock.MatchedBy(func(s []survey.Survey) bool {
			return len(s) == 2
		})).Return(&sync.BatchResponse{Status: "success", SyncedCount: 2}, nil)

		out, err := newHandler(svc, surveys).batch(ctx, &batchInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, out.Body.SyncedCount)
	})

	t.Run("offline", func(t *testing.T) {
		svc := new(MockSyncer)
		surveys := new(MockSurveys)
		surveys.On("Get", mock.Anything, "local_1").Return(&survey.Merged{Survey: survey.Survey{LocalID: "local_1"}}, nil)
		svc.On("BatchSync", mock.Anything, mock.Anything).Return(nil, sync.ErrOffline)

		_, err := newHandler(svc, surveys).batch(ctx, &batchInput{Body: batchRequest{IDs: []string{"local_1"}}})

		var se huma.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusServiceUnavailable, se.GetStatus())
	})

	t.Run("unknown id", func(t *testing.T) {
		surveys := new(MockSurveys)
		surveys.On("Get", mock.Anything, "nope").Return(nil, survey.ErrNotFound)

		_, err := newHandler(new(MockSyncer), surveys).batch(ctx, &batchInput{Body: batchRequest{IDs: []string{"nope"}}})

		var se huma.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.GetStatus())
	})
}

func TestHandler_logsAndQueue(t *testing.T) {
	svc := new(MockSyncer)
	svc.On("GetSyncLogs", mock.Anything, 5).Return([]sync.LogEntry{{ID: 1, Status: sync.LogSuccess}}, nil)
	svc.On("ClearSyncQueue", mock.Anything).Return(int64(3), nil)

	h := newHandler(svc, nil)

	logs, err := h.logs(context.Background(), &logsInput{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, logs.Body.Logs, 1)

	cleared, err := h.clearQueue(context.Background(), &struct{}{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared.Body.Removed)
}

func TestHandler_events(t *testing.T) {
	svc := new(MockSyncer)
	h := newHandler(svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan sse.Message, 1)
	send := sse.Sender(func(m sse.Message) error {
		received <- m
		return nil
	})

	done := make(chan struct{})
	go func() {
		h.events(ctx, &eventsInput{}, send)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return svc.emit(sync.Event{Status: sync.StatusSynced, Message: "Synced 1/1 operations"})
	}, time.Second, 5*time.Millisecond)

	select {
	case m := <-received:
		e, ok := m.Data.(sync.Event)
		require.True(t, ok)
		assert.Equal(t, sync.StatusSynced, e.Status)
	case <-time.After(time.Second):
		t.Fatal("no event sent")
	}

	cancel()
	<-done
	assert.False(t, svc.emit(sync.Event{}), "subscriber must be removed when the stream ends")
}
