package app

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/realtime"
)

type fakeFollowChannel struct {
	mu           sync.Mutex
	handlers     map[realtime.Event][]realtime.Handler
	connectCalls int
	disconnected bool
}

func newFakeFollowChannel() *fakeFollowChannel {
	return &fakeFollowChannel{handlers: make(map[realtime.Event][]realtime.Handler)}
}

func (f *fakeFollowChannel) On(event realtime.Event, handler realtime.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = append(f.handlers[event], handler)
}

func (f *fakeFollowChannel) Connect(ctx context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
}

func (f *fakeFollowChannel) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = true
}

func (f *fakeFollowChannel) fire(event realtime.Event, data []byte) {
	f.mu.Lock()
	handlers := append([]realtime.Handler(nil), f.handlers[event]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(data)
	}
}

func (f *fakeFollowChannel) connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func pushPayload(t *testing.T, n domain.Notification) []byte {
	t.Helper()
	data, err := json.Marshal(n)
	require.NoError(t, err)
	return data
}

func waitForOutput(t *testing.T, buf *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if bytes.Contains([]byte(buf.String()), []byte(want)) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("output never contained %q, got: %q", want, buf.String())
}

func TestFollowUseCase_StreamsPushedNotifications(t *testing.T) {
	channel := newFakeFollowChannel()
	buf := &syncBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- NewFollowUseCase().Execute(ctx, FollowOptions{
			Channel: channel,
			Token:   "tok",
			Output:  buf,
		})
	}()

	// wait until the use-case has connected and registered handlers
	waitUntil(t, func() bool { return channel.connects() == 1 })

	channel.fire(realtime.EventConnectionEstablished, nil)
	waitForOutput(t, buf, "connected")

	channel.fire(realtime.EventNewNotification, pushPayload(t, domain.Notification{
		ID:        "n-7",
		Category:  domain.CategoryStockAlert,
		Title:     "Low stock: bolts",
		Message:   "Reorder point reached",
		Priority:  domain.PriorityHigh,
		CreatedAt: time.Now(),
	}))
	waitForOutput(t, buf, "Low stock: bolts")

	cancel()
	require.NoError(t, <-done)
	assert.True(t, channel.disconnected)
}

func TestFollowUseCase_FilterDropsNonMatching(t *testing.T) {
	channel := newFakeFollowChannel()
	buf := &syncBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- NewFollowUseCase().Execute(ctx, FollowOptions{
			Channel: channel,
			Token:   "tok",
			Filter:  domain.FilterStock,
			Output:  buf,
		})
	}()

	waitUntil(t, func() bool { return channel.connects() == 1 })

	channel.fire(realtime.EventNewNotification, pushPayload(t, domain.Notification{
		ID:        "sys-1",
		Category:  domain.CategorySystem,
		Title:     "Maintenance window",
		Message:   "m",
		Priority:  domain.PriorityLow,
		CreatedAt: time.Now(),
	}))
	channel.fire(realtime.EventNewNotification, pushPayload(t, domain.Notification{
		ID:        "stk-1",
		Category:  domain.CategoryStockAlert,
		Title:     "Low stock: nuts",
		Message:   "m",
		Priority:  domain.PriorityHigh,
		CreatedAt: time.Now(),
	}))

	waitForOutput(t, buf, "Low stock: nuts")
	assert.NotContains(t, buf.String(), "Maintenance window")

	cancel()
	require.NoError(t, <-done)
}

func TestFollowUseCase_ReconnectsAfterDrop(t *testing.T) {
	channel := newFakeFollowChannel()
	buf := &syncBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- NewFollowUseCase().Execute(ctx, FollowOptions{
			Channel:       channel,
			Token:         "tok",
			Output:        buf,
			ReconnectBase: time.Millisecond,
			ReconnectMax:  4 * time.Millisecond,
		})
	}()

	waitUntil(t, func() bool { return channel.connects() == 1 })

	channel.fire(realtime.EventConnectionClosed, nil)
	waitUntil(t, func() bool { return channel.connects() == 2 })
	waitForOutput(t, buf, "connection lost")

	cancel()
	require.NoError(t, <-done)
}

func TestFollowUseCase_NilChannel(t *testing.T) {
	err := NewFollowUseCase().Execute(context.Background(), FollowOptions{})
	require.Error(t, err)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}
