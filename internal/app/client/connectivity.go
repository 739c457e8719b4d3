package client

import (
	"context"
	"net"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"sampark/internal/domain/sync"
)

// Pinger легкий запрос к серверу для проверки доступности.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityMonitor объединяет сетевой сигнал устройства и проверку сервера.
//
// Сетевой сигнал опрашивается через detect. SetNetworkOnline позволяет
// платформе выставить его вручную; ручное значение держится, пока опрос не
// увидит изменение.
type ConnectivityMonitor struct {
	pinger       Pinger
	detect       func() bool
	pollInterval time.Duration
	pingTimeout  time.Duration
	log          *slog.Logger

	mu       gosync.RWMutex
	online   bool
	detected bool
	handlers map[int]func(online bool)
	nextID   int

	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

func NewConnectivityMonitor(pinger Pinger, pollInterval, pingTimeout time.Duration, log *slog.Logger) *ConnectivityMonitor {
	return newConnectivityMonitor(pinger, HasActiveInterface, pollInterval, pingTimeout, log)
}

func newConnectivityMonitor(pinger Pinger, detect func() bool, pollInterval, pingTimeout time.Duration, log *slog.Logger) *ConnectivityMonitor {
	initial := detect()
	return &ConnectivityMonitor{
		pinger:       pinger,
		detect:       detect,
		pollInterval: pollInterval,
		pingTimeout:  pingTimeout,
		log:          log.With("component", "connectivity"),
		online:       initial,
		detected:     initial,
		handlers:     make(map[int]func(bool)),
	}
}

// HasActiveInterface сообщает, есть ли поднятый не-loopback интерфейс с адресом.
func HasActiveInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}

// Start запускает опрос сетевого сигнала
func (m *ConnectivityMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.poll()
			}
		}
	}()
}

func (m *ConnectivityMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *ConnectivityMonitor) poll() {
	detected := m.detect()

	m.mu.Lock()
	changed := detected != m.detected
	m.detected = detected
	m.mu.Unlock()

	if changed {
		m.SetNetworkOnline(detected)
	}
}

func (m *ConnectivityMonitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetNetworkOnline выставляет сетевой сигнал и уведомляет подписчиков при смене состояния.
func (m *ConnectivityMonitor) SetNetworkOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	handlers := make([]func(bool), 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	if online {
		m.log.Info("Сеть доступна")
	} else {
		m.log.Warn("Сеть недоступна")
	}

	for _, h := range handlers {
		h(online)
	}
}

// OnChange регистрирует обработчик смены сетевого сигнала и возвращает функцию отписки.
func (m *ConnectivityMonitor) OnChange(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}
}

// Probe пингует сервер с жестким таймаутом
func (m *ConnectivityMonitor) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	defer cancel()

	if err := m.pinger.Ping(ctx); err != nil {
		m.log.Debug("Сервер не отвечает", "error", err)
		return err
	}
	return nil
}

func (m *ConnectivityMonitor) Check(ctx context.Context) sync.Reachability {
	if !m.IsOnline() {
		return sync.ReachOffline
	}
	if err := m.Probe(ctx); err != nil {
		return sync.ReachServerUnreachable
	}
	return sync.ReachOnline
}
