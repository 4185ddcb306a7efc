// Package alert emits desktop alerts for newly pushed notifications.
package alert

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/stocktray/stocktray/internal/logging"
)

// Notifier delivers one OS-level alert per notification identifier.
type Notifier interface {
	// Notify emits an alert tagged by the notification ID. Repeated
	// calls for the same ID are suppressed.
	Notify(id, title, message string)
}

// Desktop is the beeep-backed Notifier.
//
// Permission is probed lazily on the first alert: if the platform
// backend refuses delivery, alerts are suppressed for the remainder of
// the session rather than surfaced as errors.
type Desktop struct {
	logger logging.Logger

	mu      sync.Mutex
	enabled bool
	denied  bool
	seen    map[string]bool
	send    func(title, message, appIcon string) error
}

// NewDesktop creates a desktop Notifier. When enabled is false every
// alert is a silent no-op.
func NewDesktop(enabled bool, logger logging.Logger) *Desktop {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Desktop{
		logger:  logger,
		enabled: enabled,
		seen:    make(map[string]bool),
		send:    beeep.Notify,
	}
}

// Notify implements Notifier.
func (d *Desktop) Notify(id, title, message string) {
	if id == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled || d.denied {
		return
	}
	if d.seen[id] {
		// Already alerted for this identifier this session.
		return
	}
	d.seen[id] = true

	if err := d.send(title, message, ""); err != nil {
		// Treat a refusing backend as permission denied: suppress for
		// the rest of the session, never re-prompt.
		d.denied = true
		d.logger.Warn("desktop alerts unavailable, suppressing for this session", "error", err.Error())
	}
}

// Noop returns a Notifier that does nothing. Used when the host
// environment has no alert surface.
func Noop() Notifier { return noopNotifier{} }

type noopNotifier struct{}

func (noopNotifier) Notify(id, title, message string) {}
