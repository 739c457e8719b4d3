package client

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"sampark/internal/domain/outbox"
	"sampark/internal/domain/survey"
	"sampark/internal/domain/sync"
	"sampark/internal/infrastructure/storage/sqlite"
)

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) ListSurveys(ctx context.Context, panchayatID string) ([]survey.Survey, error) {
	args := m.Called(ctx, panchayatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]survey.Survey), args.Error(1)
}

func (m *MockRemote) GetSurvey(ctx context.Context, id string) (*survey.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*survey.Survey), args.Error(1)
}

func (m *MockRemote) CreateSurvey(ctx context.Context, w survey.Wire) (*survey.Wire, []byte, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	body, _ := args.Get(1).([]byte)
	return args.Get(0).(*survey.Wire), body, args.Error(2)
}

func (m *MockRemote) UpdateSurvey(ctx context.Context, id string, w survey.Wire) (*survey.Wire, []byte, error) {
	args := m.Called(ctx, id, w)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	body, _ := args.Get(1).([]byte)
	return args.Get(0).(*survey.Wire), body, args.Error(2)
}

func (m *MockRemote) DeleteSurvey(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRemote) BatchSync(ctx context.Context, req sync.BatchRequest) (*sync.BatchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.BatchResponse), args.Error(1)
}

func (m *MockRemote) SetToken(token string) {
	m.Called(token)
}

type fakeConn struct {
	mu       gosync.Mutex
	online   bool
	probeErr error
	handlers map[int]func(bool)
	next     int
}

func newFakeConn(online bool) *fakeConn {
	return &fakeConn{online: online, handlers: make(map[int]func(bool))}
}

func (c *fakeConn) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *fakeConn) Probe(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probeErr
}

func (c *fakeConn) OnChange(fn func(bool)) func() {
	c.mu.Lock()
	id := c.next
	c.next++
	c.handlers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}
}

func (c *fakeConn) set(online bool) {
	c.mu.Lock()
	c.online = online
	handlers := make([]func(bool), 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()
	for _, h := range handlers {
		h(online)
	}
}

type offline struct{}

func (offline) IsOnline() bool { return false }

type harness struct {
	store   *sqlite.Storage
	repo    *sqlite.SurveyRepository
	outbox  *sqlite.OutboxRepository
	logs    *sqlite.SyncRepository
	surveys *survey.Service
	remote  *MockRemote
	conn    *fakeConn
	sync    *SyncService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.Default()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "sampark.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{
		store:  store,
		repo:   sqlite.NewSurveyRepository(store, log),
		outbox: sqlite.NewOutboxRepository(store, log),
		logs:   sqlite.NewSyncRepository(store, log),
		remote: new(MockRemote),
		conn:   newFakeConn(true),
	}
	h.surveys = survey.NewService(h.repo, nil, offline{}, "P-01", log)
	h.sync = NewSyncService(h.repo, outbox.NewService(h.outbox, log), h.logs, store, h.remote, h.conn, nil,
		SyncOptions{Interval: time.Hour, SettleDelay: 10 * time.Millisecond, PanchayatID: "P-01"}, log)
	return h
}

func (h *harness) create(t *testing.T, village string) *survey.Survey {
	t.Helper()
	sv, err := h.surveys.Create(context.Background(), survey.Input{VillageName: village})
	require.NoError(t, err)
	return sv
}

func (h *harness) pending(t *testing.T) []outbox.Operation {
	t.Helper()
	ops, err := h.outbox.ListPending(context.Background())
	require.NoError(t, err)
	return ops
}

func TestSyncNow_DrainsInOrderAndBindsServerID(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	sv := h.create(t, "Rampur")
	_, err := h.surveys.Update(ctx, sv.LocalID, survey.Input{VillageName: "Rampur Khurd"})
	require.NoError(t, err)

	create := h.remote.On("CreateSurvey", mock.Anything, mock.MatchedBy(func(w survey.Wire) bool {
		return w.SurveyID == sv.ClientSurveyID && w.VillageName == "Rampur"
	})).Return(&survey.Wire{SurveyID: "SRV-1"}, []byte(`{"survey_id":"SRV-1"}`), nil).Once()
	update := h.remote.On("UpdateSurvey", mock.Anything, "SRV-1", mock.MatchedBy(func(w survey.Wire) bool {
		return w.VillageName == "Rampur Khurd" && w.SurveyID == "SRV-1"
	})).Return(&survey.Wire{SurveyID: "SRV-1"}, nil, nil).Once()
	mock.InOrder(create, update)

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	assert.Equal(t, "Synced 2/2 operations", res.Message)
	assert.Equal(t, 2, res.Details.Success)
	h.remote.AssertExpectations(t)

	got, err := h.repo.FindSurvey(ctx, "SRV-1")
	require.NoError(t, err)
	assert.Equal(t, sv.LocalID, got.LocalID, "local id не должен меняться")
	assert.True(t, got.Synced)
	assert.Empty(t, h.pending(t))

	logs, err := h.logs.ListSyncLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, sync.LogSuccess, logs[0].Status)
}

func TestSyncNow_NoPendingOperations(t *testing.T) {
	h := newHarness(t)

	res, err := h.sync.SyncNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	assert.Equal(t, "No pending operations to sync", res.Message)
}

func TestSyncNow_AtMostOneCycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.create(t, "Rampur")

	release := make(chan struct{})
	entered := make(chan struct{})
	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&survey.Wire{SurveyID: "SRV-1"}, nil, nil).Once()

	done := make(chan *sync.Result)
	go func() {
		res, _ := h.sync.SyncNow(ctx)
		done <- res
	}()

	<-entered
	assert.True(t, h.sync.IsSyncing())

	second, err := h.sync.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSkipped, second.Status)

	close(release)
	first := <-done
	assert.Equal(t, sync.OutcomeSuccess, first.Status)
	h.remote.AssertNumberOfCalls(t, "CreateSurvey", 1)
}

func TestSyncNow_Connectivity(t *testing.T) {
	ctx := context.Background()

	t.Run("offline", func(t *testing.T) {
		h := newHarness(t)
		h.create(t, "Rampur")
		h.conn.set(false)

		res, err := h.sync.SyncNow(ctx)

		require.NoError(t, err)
		assert.Equal(t, sync.OutcomeOffline, res.Status)
		assert.Len(t, h.pending(t), 1)
		h.remote.AssertNotCalled(t, "CreateSurvey", mock.Anything, mock.Anything)
	})

	t.Run("server unreachable", func(t *testing.T) {
		h := newHarness(t)
		h.create(t, "Rampur")
		h.conn.probeErr = errors.New("context deadline exceeded")

		res, err := h.sync.SyncNow(ctx)

		require.NoError(t, err)
		assert.Equal(t, sync.OutcomeServerUnreachable, res.Status)
		assert.False(t, h.sync.IsSyncing())
	})
}

func TestSyncNow_CreateConflictIsSuccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sv := h.create(t, "Rampur")

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).Return(nil, nil, &APIError{
		StatusCode: http.StatusConflict,
		Body:       []byte(`{"detail":{"status":"conflict","survey_id":"SRV-7"}}`),
	}).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)

	got, err := h.repo.FindSurveyByLocalID(ctx, sv.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "SRV-7", got.ServerID)
	assert.True(t, got.Synced)
	assert.Empty(t, h.pending(t))
}

func TestSyncNow_UpdateNotFoundRecreates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.repo.ApplyRemoteSnapshot(ctx, &survey.Survey{ServerID: "SRV-OLD", VillageName: "Sonpur"}))
	_, err := h.surveys.Update(ctx, "SRV-OLD", survey.Input{VillageName: "Sonpur Kalan"})
	require.NoError(t, err)

	h.remote.On("UpdateSurvey", mock.Anything, "SRV-OLD", mock.Anything).
		Return(nil, nil, &APIError{StatusCode: http.StatusNotFound}).Once()
	h.remote.On("CreateSurvey", mock.Anything, mock.MatchedBy(func(w survey.Wire) bool {
		return w.VillageName == "Sonpur Kalan"
	})).Return(&survey.Wire{SurveyID: "SRV-NEW"}, nil, nil).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)

	got, err := h.repo.FindSurvey(ctx, "SRV-NEW")
	require.NoError(t, err)
	assert.True(t, got.Synced)
	h.remote.AssertExpectations(t)
}

func TestSyncNow_DeleteOfNeverSyncedRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	sv := h.create(t, "Rampur")
	require.NoError(t, h.surveys.Delete(ctx, sv.LocalID))

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	assert.Equal(t, 2, res.Details.Skipped)
	h.remote.AssertNotCalled(t, "CreateSurvey", mock.Anything, mock.Anything)
	h.remote.AssertNotCalled(t, "DeleteSurvey", mock.Anything, mock.Anything)

	_, err = h.repo.FindSurveyByLocalID(ctx, sv.LocalID)
	assert.ErrorIs(t, err, survey.ErrNotFound, "tombstone должен быть удален")
}

func TestSyncNow_DeleteNotFoundIsSuccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.repo.ApplyRemoteSnapshot(ctx, &survey.Survey{ServerID: "SRV-3"}))
	require.NoError(t, h.surveys.Delete(ctx, "SRV-3"))

	h.remote.On("DeleteSurvey", mock.Anything, "SRV-3").Return(&APIError{StatusCode: http.StatusNotFound}).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	assert.Empty(t, h.pending(t))

	_, err = h.repo.FindSurveyByLocalID(ctx, survey.LocalIDForServer("SRV-3"))
	assert.ErrorIs(t, err, survey.ErrNotFound)
}

func TestSyncNow_DraftIsNeverUploaded(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	isDraft := true
	sv, err := h.surveys.Create(ctx, survey.Input{VillageName: "Rampur", IsDraft: &isDraft})
	require.NoError(t, err)

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Details.Skipped)
	h.remote.AssertNotCalled(t, "CreateSurvey", mock.Anything, mock.Anything)

	got, err := h.repo.FindSurvey(ctx, sv.LocalID)
	require.NoError(t, err)
	assert.False(t, got.Synced)
}

func TestSyncNow_TransportErrorKeepsOperation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sv := h.create(t, "Rampur")

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).
		Return(nil, nil, errors.New("connection refused")).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomePartial, res.Status)
	assert.Equal(t, "Synced 0/1 operations", res.Message)
	require.Len(t, res.Details.Errors, 1)

	ops := h.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, 1, ops[0].Attempts)
	assert.Contains(t, ops[0].LastError, "connection refused")

	got, err := h.repo.FindSurvey(ctx, sv.LocalID)
	require.NoError(t, err)
	assert.Equal(t, survey.StatusFailed, got.SyncStatus)

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).Return(&survey.Wire{SurveyID: "SRV-1"}, nil, nil).Once()

	res, err = h.sync.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	assert.Empty(t, h.pending(t))
}

func TestSyncNow_AuthFailurePausesBackgroundSync(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.create(t, "Rampur")
	h.create(t, "Sonpur")

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).
		Return(nil, nil, &APIError{StatusCode: http.StatusUnauthorized}).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.True(t, res.AuthRequired)
	assert.Equal(t, 1, res.Details.Failed)
	h.remote.AssertNumberOfCalls(t, "CreateSurvey", 1)

	ops := h.pending(t)
	require.Len(t, ops, 2)
	assert.Equal(t, 1, ops[0].Attempts)
	assert.Contains(t, ops[0].LastError, sync.ErrAuthFailed.Error())
	assert.Zero(t, ops[1].Attempts, "после 401 остальные операции не трогаются")

	background, err := h.sync.runCycle(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSkipped, background.Status)

	h.remote.On("SetToken", "fresh").Once()
	h.sync.SetToken("fresh")

	status, err := h.sync.GetSyncStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.AuthPaused)
	h.remote.AssertExpectations(t)
}

func TestSyncNow_RecoversUnqueuedRecords(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sv := h.create(t, "Rampur")

	_, err := h.outbox.DeletePending(ctx)
	require.NoError(t, err)

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).Return(&survey.Wire{SurveyID: "SRV-1"}, nil, nil).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)

	got, err := h.repo.FindSurvey(ctx, sv.LocalID)
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.Equal(t, "SRV-1", got.ServerID)
}

func TestSyncService_Subscribe(t *testing.T) {
	h := newHarness(t)

	var mu gosync.Mutex
	var statuses []sync.Status
	unsubscribe := h.sync.Subscribe(func(e sync.Event) {
		mu.Lock()
		statuses = append(statuses, e.Status)
		mu.Unlock()
	})

	_, err := h.sync.SyncNow(context.Background())
	require.NoError(t, err)

	unsubscribe()
	_, err = h.sync.SyncNow(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []sync.Status{sync.StatusSyncing, sync.StatusSynced}, statuses)
}

func TestSyncService_SyncsAfterReconnect(t *testing.T) {
	h := newHarness(t)
	h.conn.set(false)
	h.create(t, "Rampur")

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).Return(&survey.Wire{SurveyID: "SRV-1"}, nil, nil).Once()

	h.sync.Start(context.Background())
	defer h.sync.Stop()

	h.conn.set(true)

	require.Eventually(t, func() bool {
		n, err := h.outbox.CountPending(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)
	h.remote.AssertExpectations(t)
}

func TestBatchSync(t *testing.T) {
	ctx := context.Background()

	t.Run("offline is rejected", func(t *testing.T) {
		h := newHarness(t)
		h.conn.set(false)

		_, err := h.sync.BatchSync(ctx, []survey.Survey{{LocalID: "local_1"}})

		assert.ErrorIs(t, err, sync.ErrOffline)
		assert.Equal(t, "Cannot batch sync while offline", err.Error())
	})

	t.Run("leaves queue untouched", func(t *testing.T) {
		h := newHarness(t)
		sv := h.create(t, "Rampur")

		h.remote.On("BatchSync", mock.Anything, mock.MatchedBy(func(req sync.BatchRequest) bool {
			return len(req.Surveys) == 1 && req.Surveys[0].VillageName == "Rampur"
		})).Return(&sync.BatchResponse{Status: "success", SyncedCount: 1}, nil).Once()

		resp, err := h.sync.BatchSync(ctx, []survey.Survey{*sv})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.SyncedCount)
		assert.Len(t, h.pending(t), 1)
	})
}

func TestPullFromServer_KeepsUnsyncedLocalEdits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.repo.ApplyRemoteSnapshot(ctx, &survey.Survey{ServerID: "SRV-1", VillageName: "old"}))
	_, err := h.surveys.Update(ctx, "SRV-1", survey.Input{VillageName: "local edit"})
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	h.remote.On("ListSurveys", mock.Anything, "P-01").Return([]survey.Survey{
		{ServerID: "SRV-1", VillageName: "server edit", UpdatedAt: later},
		{ServerID: "SRV-2", VillageName: "new on server", UpdatedAt: later},
	}, nil).Once()

	pulled, err := h.sync.PullFromServer(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, pulled)

	kept, err := h.repo.FindSurvey(ctx, "SRV-1")
	require.NoError(t, err)
	assert.Equal(t, "local edit", kept.VillageName)

	fresh, err := h.repo.FindSurvey(ctx, "SRV-2")
	require.NoError(t, err)
	assert.True(t, fresh.Synced)
}

func TestSyncNow_FailureDefersLaterOpsOfSameRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	sv := h.create(t, "Rampur")
	_, err := h.surveys.Update(ctx, sv.LocalID, survey.Input{VillageName: "Rampur Khurd"})
	require.NoError(t, err)
	other := h.create(t, "Sonpur")

	h.remote.On("CreateSurvey", mock.Anything, mock.MatchedBy(func(w survey.Wire) bool {
		return w.SurveyID == sv.ClientSurveyID
	})).Return(nil, nil, &APIError{StatusCode: http.StatusServiceUnavailable}).Once()
	h.remote.On("CreateSurvey", mock.Anything, mock.MatchedBy(func(w survey.Wire) bool {
		return w.SurveyID == other.ClientSurveyID
	})).Return(&survey.Wire{SurveyID: other.ClientSurveyID}, nil, nil).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomePartial, res.Status)
	assert.Equal(t, "Synced 1/3 operations", res.Message)
	assert.Equal(t, 1, res.Details.Failed)
	assert.Equal(t, 1, res.Details.Deferred)
	h.remote.AssertNotCalled(t, "UpdateSurvey", mock.Anything, mock.Anything, mock.Anything)

	ops := h.pending(t)
	require.Len(t, ops, 2)
	assert.Equal(t, outbox.ActionCreate, ops[0].Action)
	assert.Equal(t, 1, ops[0].Attempts)
	assert.Equal(t, outbox.ActionUpdate, ops[1].Action)
	assert.Zero(t, ops[1].Attempts, "отложенная операция не трогается")

	create := h.remote.On("CreateSurvey", mock.Anything, mock.MatchedBy(func(w survey.Wire) bool {
		return w.SurveyID == sv.ClientSurveyID && w.VillageName == "Rampur"
	})).Return(&survey.Wire{SurveyID: sv.ClientSurveyID}, nil, nil).Once()
	update := h.remote.On("UpdateSurvey", mock.Anything, sv.ClientSurveyID, mock.MatchedBy(func(w survey.Wire) bool {
		return w.VillageName == "Rampur Khurd"
	})).Return(&survey.Wire{SurveyID: sv.ClientSurveyID}, nil, nil).Once()
	mock.InOrder(create, update)

	res, err = h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	assert.Empty(t, h.pending(t))
	h.remote.AssertNumberOfCalls(t, "CreateSurvey", 3)
	h.remote.AssertExpectations(t)

	got, err := h.repo.FindSurvey(ctx, sv.LocalID)
	require.NoError(t, err)
	assert.Equal(t, sv.ClientSurveyID, got.ServerID)
	assert.Equal(t, "Rampur Khurd", got.VillageName)
	assert.True(t, got.Synced)
}

func TestSyncNow_RetriedCreateKeepsSurveyID(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sv := h.create(t, "Rampur")

	var sent []string
	record := func(args mock.Arguments) {
		sent = append(sent, args.Get(1).(survey.Wire).SurveyID)
	}

	// Сервер сохранил запись, но ответ потерялся
	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).Run(record).
		Return(nil, nil, errors.New("read: connection reset by peer")).Once()
	_, err := h.sync.SyncNow(ctx)
	require.NoError(t, err)

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).Run(record).Return(nil, nil, &APIError{
		StatusCode: http.StatusConflict,
		Body:       []byte(`{"detail":{"status":"conflict","message":"Data conflict detected"}}`),
	}).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	assert.Equal(t, []string{sv.ClientSurveyID, sv.ClientSurveyID}, sent)

	got, err := h.repo.FindSurvey(ctx, sv.LocalID)
	require.NoError(t, err)
	assert.Equal(t, sv.ClientSurveyID, got.ServerID, "409 без survey_id привязывает отправленный id")
	assert.True(t, got.Synced)
}

func TestSyncNow_CreateOfAcknowledgedRecordIsSentAsUpdate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sv := h.create(t, "Rampur")

	_, err := h.store.DB().ExecContext(ctx, `UPDATE surveys SET survey_id = 'SRV-5' WHERE local_id = ?`, sv.LocalID)
	require.NoError(t, err)

	h.remote.On("UpdateSurvey", mock.Anything, "SRV-5", mock.MatchedBy(func(w survey.Wire) bool {
		return w.SurveyID == "SRV-5" && w.VillageName == "Rampur"
	})).Return(&survey.Wire{SurveyID: "SRV-5"}, nil, nil).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	h.remote.AssertNotCalled(t, "CreateSurvey", mock.Anything, mock.Anything)
	h.remote.AssertExpectations(t)
}

func TestSyncNow_DeleteAfterUnconfirmedCreate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sv := h.create(t, "Rampur")

	h.remote.On("CreateSurvey", mock.Anything, mock.Anything).
		Return(nil, nil, errors.New("i/o timeout")).Once()
	_, err := h.sync.SyncNow(ctx)
	require.NoError(t, err)

	require.NoError(t, h.surveys.Delete(ctx, sv.LocalID))

	h.remote.On("DeleteSurvey", mock.Anything, sv.ClientSurveyID).
		Return(&APIError{StatusCode: http.StatusNotFound}).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, sync.OutcomeSuccess, res.Status)
	h.remote.AssertNumberOfCalls(t, "CreateSurvey", 1)
	h.remote.AssertExpectations(t)
	assert.Empty(t, h.pending(t))

	_, err = h.repo.FindSurveyByLocalID(ctx, sv.LocalID)
	assert.ErrorIs(t, err, survey.ErrNotFound)
}

func TestPullFromServer_DoesNotRestorePendingDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.repo.ApplyRemoteSnapshot(ctx, &survey.Survey{ServerID: "SRV42", VillageName: "Sonpur"}))
	require.NoError(t, h.surveys.Delete(ctx, "SRV42"))

	h.remote.On("ListSurveys", mock.Anything, "P-01").Return([]survey.Survey{
		{ServerID: "SRV42", VillageName: "Sonpur", UpdatedAt: time.Now().Add(time.Hour)},
	}, nil).Once()

	pulled, err := h.sync.PullFromServer(ctx)

	require.NoError(t, err)
	assert.Zero(t, pulled)

	_, err = h.repo.FindSurvey(ctx, "SRV42")
	assert.ErrorIs(t, err, survey.ErrNotFound)

	online := survey.NewService(h.repo, h.remote, h.conn, "P-01", slog.Default())
	h.remote.On("ListSurveys", mock.Anything, "P-01").Return([]survey.Survey{
		{ServerID: "SRV42", VillageName: "Sonpur", UpdatedAt: time.Now().Add(time.Hour)},
	}, nil).Once()

	listed, err := online.List(ctx, survey.Filter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	ops := h.pending(t)
	require.Len(t, ops, 1)
	assert.Equal(t, outbox.ActionDelete, ops[0].Action)
}

func TestSyncNow_ClearedQueueIsRebuiltOncePerRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	sv := h.create(t, "Rampur")
	_, err := h.surveys.Update(ctx, sv.LocalID, survey.Input{VillageName: "Rampur Khurd"})
	require.NoError(t, err)
	require.Len(t, h.pending(t), 2)

	removed, err := h.sync.ClearSyncQueue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)
	assert.Empty(t, h.pending(t))

	h.remote.On("CreateSurvey", mock.Anything, mock.MatchedBy(func(w survey.Wire) bool {
		return w.SurveyID == sv.ClientSurveyID && w.VillageName == "Rampur Khurd"
	})).Return(&survey.Wire{SurveyID: "SRV-7"}, nil, nil).Once()

	res, err := h.sync.SyncNow(ctx)

	require.NoError(t, err)
	assert.Equal(t, "Synced 1/1 operations", res.Message)
	h.remote.AssertExpectations(t)
	h.remote.AssertNotCalled(t, "UpdateSurvey", mock.Anything, mock.Anything, mock.Anything)

	got, err := h.repo.FindSurvey(ctx, sv.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "SRV-7", got.ServerID)
	assert.True(t, got.Synced)
}
