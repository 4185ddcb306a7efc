package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stocktray/stocktray/internal/colors"
	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/format"
	"github.com/stocktray/stocktray/internal/realtime"
)

// FollowChannel defines dependencies for streaming pushed notifications.
type FollowChannel interface {
	On(event realtime.Event, handler realtime.Handler)
	Connect(ctx context.Context, token string)
	Disconnect()
}

// FollowOptions holds all parameters for follow behavior.
type FollowOptions struct {
	Channel       FollowChannel
	Token         string
	Filter        domain.Filter
	Output        io.Writer
	ReconnectBase time.Duration
	ReconnectMax  time.Duration
}

// followEvent is one item streamed from the channel handlers to the
// printing loop.
type followEvent struct {
	kind         realtime.Event
	notification domain.Notification
	detail       string
}

// FollowUseCase coordinates follow behavior.
type FollowUseCase struct{}

// NewFollowUseCase creates a follow use-case.
func NewFollowUseCase() *FollowUseCase {
	return &FollowUseCase{}
}

// Execute streams pushed notifications to the output until
// interruption or cancellation. Connection drops trigger reconnect
// attempts with exponential backoff capped at ReconnectMax.
func (u *FollowUseCase) Execute(ctx context.Context, opts FollowOptions) error {
	if opts.Channel == nil {
		return fmt.Errorf("follow: channel dependency cannot be nil")
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ReconnectBase <= 0 {
		opts.ReconnectBase = time.Second
	}
	if opts.ReconnectMax <= 0 {
		opts.ReconnectMax = 30 * time.Second
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	events := make(chan followEvent, 16)
	u.bind(opts.Channel, opts.Filter, events)

	colors.Info("Following notifications (Ctrl+C to stop)...")

	opts.Channel.Connect(ctx, opts.Token)
	defer opts.Channel.Disconnect()

	backoff := opts.ReconnectBase
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigChan:
			_, _ = fmt.Fprintf(opts.Output, "\nReceived signal %v, stopping...\n", sig)
			return nil
		case ev := <-events:
			switch ev.kind {
			case realtime.EventConnectionEstablished:
				backoff = opts.ReconnectBase
				_, _ = fmt.Fprintln(opts.Output, "connected")
			case realtime.EventNewNotification:
				printFollowNotification(opts.Output, ev.notification)
			case realtime.EventConnectionClosed, realtime.EventConnectionFailed:
				_, _ = fmt.Fprintf(opts.Output, "connection lost, retrying in %s\n", backoff)
				if !sleepCtx(ctx, backoff) {
					return nil
				}
				backoff = min(backoff*2, opts.ReconnectMax)
				opts.Channel.Connect(ctx, opts.Token)
			}
		}
	}
}

// bind routes channel events into the printing loop. Handlers never
// block: a full buffer drops the event rather than stalling the
// channel's dispatch.
func (u *FollowUseCase) bind(channel FollowChannel, filter domain.Filter, events chan<- followEvent) {
	forward := func(ev followEvent) {
		select {
		case events <- ev:
		default:
		}
	}

	channel.On(realtime.EventConnectionEstablished, func(data json.RawMessage) {
		forward(followEvent{kind: realtime.EventConnectionEstablished})
	})
	channel.On(realtime.EventConnectionClosed, func(data json.RawMessage) {
		forward(followEvent{kind: realtime.EventConnectionClosed})
	})
	channel.On(realtime.EventConnectionFailed, func(data json.RawMessage) {
		forward(followEvent{kind: realtime.EventConnectionFailed, detail: string(data)})
	})
	channel.On(realtime.EventNewNotification, func(data json.RawMessage) {
		n, err := realtime.DecodeNotification(data)
		if err != nil {
			return
		}
		if !filter.Matches(n) {
			return
		}
		forward(followEvent{kind: realtime.EventNewNotification, notification: n})
	})
}

func printFollowNotification(w io.Writer, n domain.Notification) {
	_, _ = fmt.Fprintf(w, "%s  [%s] %s%s%s: %s\n",
		n.CreatedAt.Local().Format(time.TimeOnly),
		n.Category.String(),
		format.PriorityColor(n.Priority),
		n.Title,
		colors.Reset,
		n.Message,
	)
}

// sleepCtx waits for the duration, returning false if the context is
// cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
