package client

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"sampark/internal/domain/sync"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type switchable struct {
	mu gosync.Mutex
	on bool
}

func (s *switchable) detect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

func (s *switchable) set(on bool) {
	s.mu.Lock()
	s.on = on
	s.mu.Unlock()
}

func TestConnectivityMonitor_Check(t *testing.T) {
	ctx := context.Background()
	pinger := new(MockPinger)
	net := &switchable{on: true}
	m := newConnectivityMonitor(pinger, net.detect, time.Hour, 50*time.Millisecond, slog.Default())

	pinger.On("Ping", mock.Anything).Return(nil).Once()
	assert.Equal(t, sync.ReachOnline, m.Check(ctx))

	pinger.On("Ping", mock.Anything).Return(errors.New("timeout")).Once()
	assert.Equal(t, sync.ReachServerUnreachable, m.Check(ctx))

	m.SetNetworkOnline(false)
	assert.Equal(t, sync.ReachOffline, m.Check(ctx))
	pinger.AssertNumberOfCalls(t, "Ping", 2)
}

func TestConnectivityMonitor_ProbeHasDeadline(t *testing.T) {
	pinger := new(MockPinger)
	m := newConnectivityMonitor(pinger, func() bool { return true }, time.Hour, 20*time.Millisecond, slog.Default())

	pinger.On("Ping", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(nil).Once()

	require.NoError(t, m.Probe(context.Background()))
	pinger.AssertExpectations(t)
}

func TestConnectivityMonitor_NotifiesOnChangeOnly(t *testing.T) {
	m := newConnectivityMonitor(new(MockPinger), func() bool { return false }, time.Hour, time.Second, slog.Default())

	var got []bool
	unsubscribe := m.OnChange(func(online bool) { got = append(got, online) })

	m.SetNetworkOnline(true)
	m.SetNetworkOnline(true)
	m.SetNetworkOnline(false)
	unsubscribe()
	m.SetNetworkOnline(true)

	assert.Equal(t, []bool{true, false}, got)
	assert.True(t, m.IsOnline())
}

func TestConnectivityMonitor_PollsNetworkSignal(t *testing.T) {
	net := &switchable{}
	m := newConnectivityMonitor(new(MockPinger), net.detect, 5*time.Millisecond, time.Second, slog.Default())

	changes := make(chan bool, 4)
	m.OnChange(func(online bool) { changes <- online })

	m.Start(context.Background())
	defer m.Stop()

	net.set(true)

	select {
	case online := <-changes:
		assert.True(t, online)
	case <-time.After(time.Second):
		t.Fatal("не дождались смены состояния сети")
	}
	assert.True(t, m.IsOnline())
}
