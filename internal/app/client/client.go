package client

import (
	"context"
	"fmt"
	gosync "sync"

	"golang.org/x/exp/slog"

	"sampark/internal/app/client/config"
	"sampark/internal/domain/draft"
	"sampark/internal/domain/outbox"
	"sampark/internal/domain/survey"
	domainsync "sampark/internal/domain/sync"
	"sampark/internal/infrastructure/storage/sqlite"
)

// App связывает локальное хранилище, удаленный API и движок синхронизации.
type App struct {
	config  *config.Config
	log     *slog.Logger
	storage *sqlite.Storage

	httpClient *httpClient
	monitor    *ConnectivityMonitor
	surveys    *survey.Service
	drafts     *draft.Service
	schemas    *SchemaCache
	sync       *SyncService

	mu      gosync.Mutex
	started bool
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	store, err := sqlite.New(cfg.DataPath, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	httpCl := NewHTTPClient(cfg, log)
	monitor := NewConnectivityMonitor(httpCl, cfg.NetworkPollInterval, cfg.PingTimeout, log)

	surveyRepo := sqlite.NewSurveyRepository(store, log)
	syncRepo := sqlite.NewSyncRepository(store, log)

	queue := outbox.NewService(sqlite.NewOutboxRepository(store, log), log)
	surveys := survey.NewService(surveyRepo, httpCl, monitor, cfg.PanchayatID, log)
	drafts := draft.NewService(sqlite.NewDraftRepository(store, log), surveys, log)
	schemas := NewSchemaCache(syncRepo, httpCl, log)

	syncSvc := NewSyncService(surveyRepo, queue, syncRepo, store, httpCl, monitor, schemas, SyncOptions{
		Interval:    cfg.SyncInterval,
		SettleDelay: cfg.SettleDelay,
		Retention:   cfg.CompletedRetention,
		PanchayatID: cfg.PanchayatID,
	}, log)

	return &App{
		config:     cfg,
		log:        log,
		storage:    store,
		httpClient: httpCl,
		monitor:    monitor,
		surveys:    surveys,
		drafts:     drafts,
		schemas:    schemas,
		sync:       syncSvc,
	}, nil
}

// Start запускает мониторинг сети и фоновую синхронизацию
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return
	}
	a.started = true

	a.monitor.Start(ctx)
	a.sync.Start(ctx)

	a.log.Info("Клиент запущен",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"online", a.monitor.IsOnline(),
	)
}

// Shutdown останавливает фоновые задачи и закрывает хранилище
func (a *App) Shutdown() {
	a.mu.Lock()
	started := a.started
	a.started = false
	a.mu.Unlock()

	if started {
		a.sync.Stop()
		a.monitor.Stop()
	}

	if err := a.storage.Close(); err != nil {
		a.log.Error("Ошибка закрытия хранилища", "error", err)
	}
	a.log.Info("Клиент остановлен")
}

func (a *App) Config() *config.Config { return a.config }

func (a *App) Surveys() survey.Servicer { return a.surveys }

func (a *App) Drafts() draft.Servicer { return a.drafts }

func (a *App) Sync() *SyncService { return a.sync }

func (a *App) Schemas() *SchemaCache { return a.schemas }

func (a *App) Monitor() *ConnectivityMonitor { return a.monitor }

// IsAuthenticated проверяет наличие токена
func (a *App) IsAuthenticated() bool {
	return a.httpClient.bearer() != ""
}

// SaveToken сохраняет токен и снимает паузу синхронизации
func (a *App) SaveToken(token string) error {
	if err := a.config.SaveToken(token); err != nil {
		return err
	}
	a.sync.SetToken(token)
	return nil
}

// ClearLocalData удаляет все локальные данные (выход или сброс устройства)
func (a *App) ClearLocalData(ctx context.Context) error {
	if a.sync.IsSyncing() {
		return domainsync.ErrAlreadySyncing
	}
	return a.storage.ClearAll(ctx)
}
