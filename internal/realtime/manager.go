// Package realtime manages the long-lived event channel to the server.
//
// The Manager owns at most one authenticated websocket connection per
// session. Transport failures are reported through events, never as
// errors to the caller: the surrounding UI stays responsive and shows a
// non-fatal disconnected indicator instead.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/stocktray/stocktray/internal/logging"
)

// eventPing is the outbound heartbeat frame.
const eventPing Event = "ping"

// Connection lifecycle states.
const (
	stateIdle = iota
	stateConnecting
	stateConnected
)

// Options configure a Manager.
type Options struct {
	// URL is the websocket endpoint of the realtime channel.
	URL string
	// HandshakeTimeout bounds the wait for the server's
	// connection_established acknowledgement.
	HandshakeTimeout time.Duration
	// Heartbeat is the interval between outbound pings. Zero disables
	// the heartbeat.
	Heartbeat time.Duration
	// Logger receives channel lifecycle logs. Defaults to a no-op.
	Logger logging.Logger
	// Dialer overrides the websocket dialer. Used by tests.
	Dialer *websocket.Dialer
}

// Manager owns the realtime channel for one session.
type Manager struct {
	opts     Options
	clientID string

	mu      sync.Mutex
	conn    *websocket.Conn
	state   int
	closing bool
	lastErr string
	done    chan struct{}

	handlersMu sync.RWMutex
	handlers   map[Event][]Handler

	// dispatchMu serializes event delivery: handlers for consecutive
	// events never run concurrently.
	dispatchMu sync.Mutex
}

// New creates a disconnected Manager.
func New(opts Options) *Manager {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	return &Manager{
		opts:     opts,
		clientID: uuid.NewString(),
		handlers: make(map[Event][]Handler),
	}
}

// On registers a handler for a named inbound event. Handlers run in
// registration order; a panicking handler does not prevent delivery to
// the handlers after it.
func (m *Manager) On(event Event, handler Handler) {
	if handler == nil {
		return
	}
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[event] = append(m.handlers[event], handler)
}

// Connect establishes the channel using the given session token.
//
// An empty token means "not logged in": no connection attempt is made
// and the manager stays disconnected. Calling Connect while a
// connection is pending or established is a no-op, so duplicate live
// connections (and duplicate event delivery) cannot occur. All failures
// are delivered as connection_failed events.
func (m *Manager) Connect(ctx context.Context, token string) {
	if token == "" {
		m.opts.Logger.Debug("no session token, skipping channel connect")
		return
	}

	m.mu.Lock()
	if m.state != stateIdle {
		m.mu.Unlock()
		m.opts.Logger.Debug("channel connect ignored: already connecting or connected")
		return
	}
	m.state = stateConnecting
	m.closing = false
	m.mu.Unlock()

	dialer := m.opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: m.opts.HandshakeTimeout}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("X-Client-ID", m.clientID)

	conn, resp, err := dialer.DialContext(ctx, m.opts.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		m.connectFailed(fmt.Sprintf("channel dial failed: %v", err))
		return
	}

	// Handshake: the first frame must be the server's acknowledgement,
	// within the handshake bound.
	frame, err := readHandshake(conn, m.opts.HandshakeTimeout)
	if err != nil {
		conn.Close()
		m.connectFailed(err.Error())
		return
	}

	done := make(chan struct{})
	m.mu.Lock()
	m.conn = conn
	m.state = stateConnected
	m.lastErr = ""
	m.done = done
	m.mu.Unlock()

	m.opts.Logger.Info("channel connected", "url", m.opts.URL)
	m.emit(EventConnectionEstablished, frame.Data)

	go m.readLoop(conn)
	if m.opts.Heartbeat > 0 {
		go m.heartbeat(conn, done)
	}
}

// readHandshake waits for the connection_established frame.
func readHandshake(conn *websocket.Conn, timeout time.Duration) (Frame, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return Frame{}, fmt.Errorf("channel handshake: %v", err)
	}
	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Frame{}, fmt.Errorf("channel handshake timed out after %s", timeout)
		}
		return Frame{}, fmt.Errorf("channel handshake failed: %v", err)
	}
	if frame.Event != EventConnectionEstablished {
		return Frame{}, fmt.Errorf("channel handshake failed: unexpected first event %q", frame.Event)
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return Frame{}, fmt.Errorf("channel handshake: %v", err)
	}
	return frame, nil
}

// connectFailed records the error and reports it as an event.
func (m *Manager) connectFailed(message string) {
	m.mu.Lock()
	m.state = stateIdle
	m.conn = nil
	m.lastErr = message
	m.mu.Unlock()

	m.opts.Logger.Warn("channel connect failed", "error", message)
	m.emit(EventConnectionFailed, encodeFailReason(message))
}

// readLoop delivers inbound frames until the connection dies.
func (m *Manager) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			m.connLost(conn, err)
			return
		}
		m.emit(frame.Event, frame.Data)
	}
}

// connLost transitions to disconnected and reports the cause. Deliberate
// Disconnect calls surface as connection_closed, transport errors as
// connection_failed, and server-side closes as connection_closed with
// the close reason.
func (m *Manager) connLost(conn *websocket.Conn, err error) {
	m.mu.Lock()
	if m.conn != conn {
		// A newer connection has already replaced this one.
		m.mu.Unlock()
		return
	}
	deliberate := m.closing
	m.conn = nil
	m.state = stateIdle
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	if !deliberate {
		m.lastErr = err.Error()
	}
	m.mu.Unlock()

	switch {
	case deliberate:
		m.opts.Logger.Info("channel disconnected")
		m.emit(EventConnectionClosed, encodeCloseReason("disconnect requested"))
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		m.opts.Logger.Info("channel closed by server", "reason", err.Error())
		m.emit(EventConnectionClosed, encodeCloseReason(err.Error()))
	default:
		m.opts.Logger.Warn("channel read failed", "error", err.Error())
		m.emit(EventConnectionFailed, encodeFailReason(err.Error()))
	}
}

// heartbeat sends periodic pings until the connection is torn down.
func (m *Manager) heartbeat(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(m.opts.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(Frame{Event: eventPing}); err != nil {
				m.opts.Logger.Debug("heartbeat write failed", "error", err.Error())
				return
			}
		}
	}
}

// emit invokes the registered handlers for an event in registration
// order. Delivery is serialized: no two events run their handlers
// concurrently. A panicking handler is recovered and logged.
func (m *Manager) emit(event Event, data []byte) {
	m.handlersMu.RLock()
	handlers := make([]Handler, len(m.handlers[event]))
	copy(handlers, m.handlers[event])
	m.handlersMu.RUnlock()

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()
	for _, handler := range handlers {
		m.invoke(event, handler, data)
	}
}

func (m *Manager) invoke(event Event, handler Handler, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			m.opts.Logger.Error("event handler panicked", "event", string(event), "panic", fmt.Sprint(r))
		}
	}()
	handler(data)
}

// Disconnect closes the channel if open. It is idempotent and safe to
// call from any teardown path.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	if conn == nil {
		m.state = stateIdle
		m.mu.Unlock()
		return
	}
	m.closing = true
	m.mu.Unlock()

	// The read loop observes the close, finishes teardown and emits
	// connection_closed.
	conn.Close()
}

// Connected reports current channel health. Never blocks on I/O.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == stateConnected
}

// LastError returns the most recent transport error message, or "".
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
