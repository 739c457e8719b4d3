package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"sampark/internal/domain/outbox"
	"sampark/internal/domain/survey"
	"sampark/internal/domain/sync"
)

const recentLogsInStatus = 10

// SurveyStore часть локального хранилища, нужная движку синхронизации.
type SurveyStore interface {
	FindSurveyByLocalID(ctx context.Context, localID string) (*survey.Survey, error)
	ListSurveys(ctx context.Context, f survey.Filter) ([]survey.Survey, error)
	CompleteOperation(ctx context.Context, op outbox.Operation, serverID string, response []byte) error
	OrphanedUnsynced(ctx context.Context) ([]survey.Survey, error)
	ApplyRemoteSnapshot(ctx context.Context, s *survey.Survey) error
}

type StatsProvider interface {
	Stats(ctx context.Context) (*sync.StorageStats, error)
}

// RemoteAPI операции удаленного API, которые воспроизводит движок.
type RemoteAPI interface {
	ListSurveys(ctx context.Context, panchayatID string) ([]survey.Survey, error)
	CreateSurvey(ctx context.Context, w survey.Wire) (*survey.Wire, []byte, error)
	UpdateSurvey(ctx context.Context, id string, w survey.Wire) (*survey.Wire, []byte, error)
	DeleteSurvey(ctx context.Context, id string) error
	BatchSync(ctx context.Context, req sync.BatchRequest) (*sync.BatchResponse, error)
	SetToken(token string)
}

type Connectivity interface {
	IsOnline() bool
	Probe(ctx context.Context) error
	OnChange(fn func(online bool)) func()
}

type SchemaRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

type SyncOptions struct {
	Interval    time.Duration
	SettleDelay time.Duration
	Retention   time.Duration
	PanchayatID string
}

// SyncService выгружает очередь операций на сервер.
// Одновременно выполняется не больше одного цикла.
type SyncService struct {
	surveys SurveyStore
	queue   outbox.Servicer
	logs    sync.LogRepository
	stats   StatsProvider
	remote  RemoteAPI
	conn    Connectivity
	schemas SchemaRefresher
	opts    SyncOptions
	log     *slog.Logger
	now     func() time.Time

	mu         gosync.RWMutex
	isSyncing  bool
	authPaused bool
	lastSync   *time.Time
	interval   time.Duration

	subMu       gosync.RWMutex
	subscribers map[int]func(sync.Event)
	nextSubID   int

	intervalCh chan time.Duration
	cancel     context.CancelFunc
	unsubConn  func()
	wg         gosync.WaitGroup
}

func NewSyncService(
	surveys SurveyStore,
	queue outbox.Servicer,
	logs sync.LogRepository,
	stats StatsProvider,
	remote RemoteAPI,
	conn Connectivity,
	schemas SchemaRefresher,
	opts SyncOptions,
	log *slog.Logger,
) *SyncService {
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = time.Second
	}
	if opts.Retention <= 0 {
		opts.Retention = time.Hour
	}

	return &SyncService{
		surveys:     surveys,
		queue:       queue,
		logs:        logs,
		stats:       stats,
		remote:      remote,
		conn:        conn,
		schemas:     schemas,
		opts:        opts,
		log:         log.With("component", "sync"),
		now:         time.Now,
		interval:    opts.Interval,
		subscribers: make(map[int]func(sync.Event)),
		intervalCh:  make(chan time.Duration, 1),
	}
}

// Start запускает фоновые циклы: по таймеру и после появления сети.
func (s *SyncService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	interval := s.interval
	s.mu.Unlock()

	onlineCh := make(chan bool, 1)
	s.unsubConn = s.conn.OnChange(func(online bool) {
		// Важно только последнее состояние
		select {
		case <-onlineCh:
		default:
		}
		select {
		case onlineCh <- online:
		default:
		}
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx, interval, onlineCh)
	}()

	s.log.Info("Синхронизация запущена", "interval", interval)
}

func (s *SyncService) loop(ctx context.Context, interval time.Duration, onlineCh <-chan bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var settle *time.Timer
	var settleC <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	if s.conn.IsOnline() {
		s.backgroundCycle(ctx, "start")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.intervalCh:
			ticker.Reset(d)
			s.log.Info("Интервал синхронизации изменен", "interval", d)
		case <-ticker.C:
			if s.conn.IsOnline() {
				s.backgroundCycle(ctx, "timer")
			}
		case online := <-onlineCh:
			if online {
				s.broadcast(sync.Event{Status: sync.StatusOnline, Message: "Back online"})
				if settle == nil {
					settle = time.NewTimer(s.opts.SettleDelay)
				} else {
					settle.Reset(s.opts.SettleDelay)
				}
				settleC = settle.C
			} else {
				s.broadcast(sync.Event{Status: sync.StatusOffline, Message: "Working offline"})
				if settle != nil {
					settle.Stop()
				}
				settleC = nil
			}
		case <-settleC:
			settleC = nil
			s.backgroundCycle(ctx, "online")
		}
	}
}

func (s *SyncService) backgroundCycle(ctx context.Context, trigger string) {
	res, err := s.runCycle(ctx, false)
	if err != nil {
		s.log.Error("Ошибка цикла синхронизации", "trigger", trigger, "error", err)
		return
	}
	s.log.Debug("Цикл синхронизации завершен", "trigger", trigger, "status", res.Status, "message", res.Message)
}

// Stop останавливает фоновые циклы и ждет завершения текущего
func (s *SyncService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	unsub := s.unsubConn
	s.unsubConn = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// SetInterval меняет период фоновой синхронизации без перезапуска.
func (s *SyncService) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()

	select {
	case <-s.intervalCh:
	default:
	}
	select {
	case s.intervalCh <- d:
	default:
	}
}

// SetToken меняет токен и снимает паузу после ошибки авторизации.
func (s *SyncService) SetToken(token string) {
	s.remote.SetToken(token)
	s.ResumeAfterAuth()
}

func (s *SyncService) ResumeAfterAuth() {
	s.mu.Lock()
	s.authPaused = false
	s.mu.Unlock()
}

func (s *SyncService) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// Subscribe регистрирует наблюдателя событий и возвращает функцию отписки.
func (s *SyncService) Subscribe(fn func(sync.Event)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *SyncService) broadcast(e sync.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}

	s.subMu.RLock()
	subs := make([]func(sync.Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// SyncNow выполняет цикл синхронизации вручную, в том числе во время паузы авторизации.
func (s *SyncService) SyncNow(ctx context.Context) (*sync.Result, error) {
	return s.runCycle(ctx, true)
}

func (s *SyncService) runCycle(ctx context.Context, manual bool) (*sync.Result, error) {
	res := &sync.Result{StartedAt: s.now().UTC()}
	finish := func(status sync.Outcome, msg string) *sync.Result {
		res.Status = status
		res.Message = msg
		res.FinishedAt = s.now().UTC()
		return res
	}

	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return finish(sync.OutcomeSkipped, sync.ErrAlreadySyncing.Error()), nil
	}
	if !manual && s.authPaused {
		s.mu.Unlock()
		return finish(sync.OutcomeSkipped, "Sync paused until credentials are updated"), nil
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	if !s.conn.IsOnline() {
		return finish(sync.OutcomeOffline, "Device is offline"), nil
	}
	if err := s.conn.Probe(ctx); err != nil {
		s.log.Warn("Проверка сервера не прошла", "error", fmt.Errorf("%w: %w", sync.ErrServerUnreachable, err))
		return finish(sync.OutcomeServerUnreachable, sync.ErrServerUnreachable.Error()), nil
	}

	s.broadcast(sync.Event{Status: sync.StatusSyncing, Message: "Syncing..."})
	s.log.Info("Начало синхронизации", "manual", manual)

	if err := s.recoverOrphans(ctx); err != nil {
		return s.abort(ctx, res, finish, err)
	}

	ops, err := s.queue.ListPending(ctx)
	if err != nil {
		return s.abort(ctx, res, finish, err)
	}

	if len(ops) == 0 {
		s.writeLog(ctx, sync.LogSuccess, "No pending operations to sync", res.Details)
		s.markSynced()
		s.broadcast(sync.Event{Status: sync.StatusSynced, Message: "No pending operations to sync", Details: &res.Details})
		return finish(sync.OutcomeSuccess, "No pending operations to sync"), nil
	}

	authFailed := s.drain(ctx, ops, &res.Details)

	d := res.Details
	msg := fmt.Sprintf("Synced %d/%d operations", d.Success, d.Total)
	logStatus, outcome := sync.LogSuccess, sync.OutcomeSuccess
	if d.Failed > 0 {
		logStatus, outcome = sync.LogPartial, sync.OutcomePartial
	}
	s.writeLog(ctx, logStatus, msg, d)

	if _, err := s.queue.Cleanup(ctx, s.opts.Retention); err != nil {
		s.log.Warn("Не удалось очистить завершенные операции", "error", err)
	}

	s.markSynced()

	if authFailed {
		s.mu.Lock()
		s.authPaused = true
		s.mu.Unlock()
		res.AuthRequired = true
		s.log.Warn("Синхронизация приостановлена: требуется авторизация")
	}

	event := sync.Event{Status: sync.StatusSynced, Message: msg, Details: &d}
	if d.Failed > 0 || authFailed {
		event.Status = sync.StatusError
	}
	s.broadcast(event)

	s.log.Info("Синхронизация завершена", "total", d.Total, "success", d.Success, "failed", d.Failed, "skipped", d.Skipped, "deferred", d.Deferred)
	return finish(outcome, msg), nil
}

func (s *SyncService) abort(ctx context.Context, res *sync.Result, finish func(sync.Outcome, string) *sync.Result, err error) (*sync.Result, error) {
	msg := "Sync failed: " + err.Error()
	s.writeLog(ctx, sync.LogError, msg, res.Details)
	s.broadcast(sync.Event{Status: sync.StatusError, Message: msg})
	return finish(sync.OutcomeError, msg), fmt.Errorf("sync cycle: %w", err)
}

func (s *SyncService) markSynced() {
	now := s.now().UTC()
	s.mu.Lock()
	s.lastSync = &now
	s.mu.Unlock()
}

func (s *SyncService) writeLog(ctx context.Context, status sync.LogStatus, msg string, d sync.Details) {
	entry := &sync.LogEntry{Status: status, Message: msg, Details: d, Timestamp: s.now().UTC()}
	if err := s.logs.AddSyncLog(ctx, entry); err != nil {
		s.log.Error("Не удалось записать журнал синхронизации", "error", err)
	}
}

// recoverOrphans ставит в очередь несинхронизированные записи без операций.
func (s *SyncService) recoverOrphans(ctx context.Context) error {
	orphans, err := s.surveys.OrphanedUnsynced(ctx)
	if err != nil {
		return fmt.Errorf("find orphaned surveys: %w", err)
	}

	for i := range orphans {
		sv := &orphans[i]

		action := outbox.ActionCreate
		switch {
		case sv.Deleted:
			action = outbox.ActionDelete
		case sv.Acknowledged() && !survey.IsPlaceholder(sv.ServerID):
			action = outbox.ActionUpdate
		}

		var payload json.RawMessage
		if action != outbox.ActionDelete {
			if payload, err = json.Marshal(sv); err != nil {
				return fmt.Errorf("snapshot %s: %w", sv.LocalID, err)
			}
		}

		if _, err := s.queue.Enqueue(ctx, action, payload, sv.LocalID, sv.ServerID); err != nil {
			return err
		}
		s.log.Info("Восстановлена операция для записи без очереди", "local_id", sv.LocalID, "action", action)
	}
	return nil
}

type opOutcome int

const (
	opDone opOutcome = iota
	opSkipped
	opFailed
)

// drain воспроизводит операции по порядку. После ошибки операции остальные
// операции той же записи ждут следующего цикла. Возвращает true, если сервер
// отклонил авторизацию.
func (s *SyncService) drain(ctx context.Context, ops []outbox.Operation, d *sync.Details) bool {
	d.Total = len(ops)
	blocked := make(map[string]struct{})

	for _, op := range ops {
		if ctx.Err() != nil {
			return false
		}

		if _, ok := blocked[op.LocalID]; ok {
			d.Deferred++
			s.log.Debug("Операция отложена до следующего цикла", "operation_id", op.ID, "local_id", op.LocalID)
			continue
		}

		outcome, err := s.dispatch(ctx, op)
		switch outcome {
		case opDone:
			d.Success++
			continue
		case opSkipped:
			d.Success++
			d.Skipped++
			continue
		}

		code := StatusCode(err)
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			err = fmt.Errorf("%w: %w", sync.ErrAuthFailed, err)
		}
		d.Failed++
		d.Errors = append(d.Errors, sync.OperationError{
			OperationID: op.ID,
			LocalID:     op.LocalID,
			Action:      string(op.Action),
			Error:       err.Error(),
			StatusCode:  code,
		})

		blocked[op.LocalID] = struct{}{}

		if rfErr := s.queue.RecordFailure(ctx, op.ID, err); rfErr != nil {
			s.log.Error("Не удалось сохранить ошибку операции", "operation_id", op.ID, "error", rfErr)
		}

		switch {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			s.log.Warn("Сервер отклонил авторизацию, выгрузка остановлена", "operation_id", op.ID, "status", code)
			return true
		case code >= http.StatusBadRequest && code < http.StatusInternalServerError:
			s.log.Error("Операция отклонена сервером", "operation_id", op.ID, "action", op.Action, "status", code, "error", err)
		default:
			s.log.Warn("Операция будет повторена", "operation_id", op.ID, "action", op.Action, "error", err)
		}
	}
	return false
}

func (s *SyncService) dispatch(ctx context.Context, op outbox.Operation) (opOutcome, error) {
	switch op.Action {
	case outbox.ActionCreate:
		return s.syncCreate(ctx, op)
	case outbox.ActionUpdate:
		return s.syncUpdate(ctx, op)
	case outbox.ActionDelete:
		return s.syncDelete(ctx, op)
	}
	return opFailed, fmt.Errorf("%w: %q", outbox.ErrInvalidAction, op.Action)
}

func (s *SyncService) syncCreate(ctx context.Context, op outbox.Operation) (opOutcome, error) {
	snap, err := decodeSnapshot(op)
	if err != nil {
		return opFailed, err
	}
	if snap.IsDraft {
		return s.complete(ctx, op, "", nil, opSkipped)
	}

	live, err := s.findLive(ctx, op.LocalID)
	if err != nil {
		return opFailed, err
	}
	if live == nil {
		return s.complete(ctx, op, "", nil, opSkipped)
	}
	if live.Deleted {
		// После неудачной попытки запись могла остаться на сервере: delete пойдет по client id
		var maybeRemote string
		if !live.Acknowledged() && op.Attempts > 0 && !survey.IsPlaceholder(live.ClientSurveyID) {
			maybeRemote = live.ClientSurveyID
		}
		return s.complete(ctx, op, maybeRemote, nil, opSkipped)
	}

	// Сервер уже подтвердил запись: снимок уходит как update, второй POST создал бы дубликат
	if live.Acknowledged() {
		return s.pushUpdate(ctx, op, live, snap)
	}

	return s.pushCreate(ctx, op, live, snap)
}

// pushCreate отправляет снимок с постоянным survey_id записи, чтобы повтор после
// потерянного ответа сервер распознал как 409.
func (s *SyncService) pushCreate(ctx context.Context, op outbox.Operation, live, snap *survey.Survey) (opOutcome, error) {
	w := snap.ToWire()
	w.SurveyID = live.RemoteID()
	if survey.IsPlaceholder(w.SurveyID) {
		w.SurveyID = ""
	}

	created, body, err := s.remote.CreateSurvey(ctx, w)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			bound := apiErr.ConflictSurveyID()
			if bound == "" {
				bound = w.SurveyID
			}
			s.log.Info("Запись уже существует на сервере", "local_id", op.LocalID, "survey_id", bound)
			return s.complete(ctx, op, bound, apiErr.Body, opDone)
		}
		return opFailed, err
	}

	serverID := w.SurveyID
	if created != nil && created.SurveyID != "" {
		serverID = created.SurveyID
	}
	return s.complete(ctx, op, serverID, body, opDone)
}

func (s *SyncService) syncUpdate(ctx context.Context, op outbox.Operation) (opOutcome, error) {
	snap, err := decodeSnapshot(op)
	if err != nil {
		return opFailed, err
	}
	if snap.IsDraft {
		return s.complete(ctx, op, "", nil, opSkipped)
	}

	live, err := s.findLive(ctx, op.LocalID)
	if err != nil {
		return opFailed, err
	}
	if live == nil || live.Deleted {
		return s.complete(ctx, op, "", nil, opSkipped)
	}

	// Пока сервер не подтвердил create, обновление идет тем же путем
	if !live.Acknowledged() || survey.IsPlaceholder(live.ServerID) {
		return s.pushCreate(ctx, op, live, snap)
	}
	return s.pushUpdate(ctx, op, live, snap)
}

func (s *SyncService) pushUpdate(ctx context.Context, op outbox.Operation, live, snap *survey.Survey) (opOutcome, error) {
	serverID := live.ServerID
	w := snap.ToWire()
	w.SurveyID = serverID

	_, body, err := s.remote.UpdateSurvey(ctx, serverID, w)
	if err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return s.pushCreate(ctx, op, live, snap)
		}
		return opFailed, err
	}

	return s.complete(ctx, op, serverID, body, opDone)
}

func (s *SyncService) syncDelete(ctx context.Context, op outbox.Operation) (opOutcome, error) {
	serverID := op.ServerID
	if serverID == "" {
		live, err := s.findLive(ctx, op.LocalID)
		if err != nil {
			return opFailed, err
		}
		if live != nil {
			serverID = live.ServerID
		}
	}
	if survey.IsPlaceholder(serverID) {
		return s.complete(ctx, op, "", nil, opSkipped)
	}

	if err := s.remote.DeleteSurvey(ctx, serverID); err != nil && StatusCode(err) != http.StatusNotFound {
		return opFailed, err
	}

	return s.complete(ctx, op, "", nil, opDone)
}

func (s *SyncService) complete(ctx context.Context, op outbox.Operation, serverID string, response []byte, outcome opOutcome) (opOutcome, error) {
	if err := s.surveys.CompleteOperation(ctx, op, serverID, response); err != nil {
		return opFailed, fmt.Errorf("complete operation %d: %w", op.ID, err)
	}
	return outcome, nil
}

func (s *SyncService) findLive(ctx context.Context, localID string) (*survey.Survey, error) {
	sv, err := s.surveys.FindSurveyByLocalID(ctx, localID)
	if errors.Is(err, survey.ErrNotFound) {
		return nil, nil
	}
	return sv, err
}

func decodeSnapshot(op outbox.Operation) (*survey.Survey, error) {
	var sv survey.Survey
	if len(op.Payload) == 0 {
		return nil, fmt.Errorf("operation %d has no payload", op.ID)
	}
	if err := json.Unmarshal(op.Payload, &sv); err != nil {
		return nil, fmt.Errorf("decode operation %d payload: %w", op.ID, err)
	}
	return &sv, nil
}

// PullFromServer загружает записи панчаята и сохраняет те, что выигрывают слияние.
func (s *SyncService) PullFromServer(ctx context.Context) (int, error) {
	if !s.conn.IsOnline() {
		return 0, sync.ErrNetworkOffline
	}

	remote, err := s.remote.ListSurveys(ctx, s.opts.PanchayatID)
	if err != nil {
		return 0, fmt.Errorf("pull surveys: %w", err)
	}

	// Надгробия участвуют в слиянии, иначе ожидающее удаление вернуло бы запись
	local, err := s.surveys.ListSurveys(ctx, survey.Filter{IncludeDeleted: true})
	if err != nil {
		return 0, fmt.Errorf("list local surveys: %w", err)
	}

	pulled := 0
	for _, m := range survey.MergeList(remote, local) {
		if m.Source != survey.SourceServer || m.Deleted {
			continue
		}
		sv := m.Survey
		if err := s.surveys.ApplyRemoteSnapshot(ctx, &sv); err != nil {
			if errors.Is(err, survey.ErrUnsyncedLocal) {
				continue
			}
			return pulled, fmt.Errorf("store remote survey %s: %w", sv.ServerID, err)
		}
		pulled++
	}

	s.log.Info("Загружены записи с сервера", "received", len(remote), "stored", pulled)
	return pulled, nil
}

// FullSync загружает изменения с сервера, обновляет схемы и выгружает очередь.
func (s *SyncService) FullSync(ctx context.Context) (*sync.FullSyncResult, error) {
	out := &sync.FullSyncResult{}

	pulled, err := s.PullFromServer(ctx)
	if err != nil {
		s.log.Warn("Не удалось загрузить данные с сервера", "error", err)
	}
	out.Pulled = pulled

	if s.schemas != nil && s.conn.IsOnline() {
		if _, err := s.schemas.Refresh(ctx); err != nil {
			s.log.Warn("Не удалось обновить схемы", "error", err)
		}
	}

	push, err := s.SyncNow(ctx)
	out.Push = push
	return out, err
}

// BatchSync отправляет записи одним запросом. Очередь и локальные записи не меняются.
func (s *SyncService) BatchSync(ctx context.Context, surveys []survey.Survey) (*sync.BatchResponse, error) {
	if !s.conn.IsOnline() {
		return nil, sync.ErrOffline
	}

	req := sync.BatchRequest{Surveys: make([]survey.Wire, 0, len(surveys))}
	for i := range surveys {
		w := surveys[i].ToWire()
		if survey.IsPlaceholder(w.SurveyID) {
			w.SurveyID = ""
		}
		req.Surveys = append(req.Surveys, w)
	}

	resp, err := s.remote.BatchSync(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("batch sync: %w", err)
	}
	return resp, nil
}

func (s *SyncService) GetSyncStatus(ctx context.Context) (*sync.StatusReport, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ListSyncLogs(ctx, recentLogsInStatus)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	report := &sync.StatusReport{
		Online:            s.conn.IsOnline(),
		Syncing:           s.isSyncing,
		AuthPaused:        s.authPaused,
		PendingOperations: stats.PendingOperations,
		LastSync:          s.lastSync,
		Stats:             *stats,
		RecentLogs:        logs,
	}
	s.mu.RUnlock()

	if report.LastSync == nil && len(logs) > 0 {
		t := logs[0].Timestamp
		report.LastSync = &t
	}
	return report, nil
}

func (s *SyncService) GetSyncLogs(ctx context.Context, limit int) ([]sync.LogEntry, error) {
	return s.logs.ListSyncLogs(ctx, limit)
}

func (s *SyncService) ClearSyncQueue(ctx context.Context) (int64, error) {
	return s.queue.Clear(ctx)
}

func (s *SyncService) ClearSyncLogs(ctx context.Context) error {
	return s.logs.ClearSyncLogs(ctx)
}
