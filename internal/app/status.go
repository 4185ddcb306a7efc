package app

import (
	"io"

	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/format"
	"github.com/stocktray/stocktray/internal/store"
)

// StatusClient defines dependencies required to report status.
type StatusClient interface {
	Notifications() []domain.Notification
	UnreadCount() int
	Phase() store.Phase
}

// StatusOptions holds parameters for the status report.
type StatusOptions struct {
	JSON bool
}

// StatusUseCase coordinates the status report.
type StatusUseCase struct {
	client StatusClient
}

// NewStatusUseCase creates a new status use-case.
func NewStatusUseCase(client StatusClient) *StatusUseCase {
	if client == nil {
		panic("NewStatusUseCase: client dependency cannot be nil")
	}
	return &StatusUseCase{client: client}
}

// Execute prints the unread summary and per-category counts.
func (u *StatusUseCase) Execute(opts StatusOptions, w io.Writer) error {
	notifications := u.client.Notifications()
	unread := u.client.UnreadCount()
	connected := u.client.Phase() == store.PhaseLive

	if opts.JSON {
		return format.FormatStatusJSON(w, notifications, unread, connected)
	}

	if err := format.FormatSummary(w, len(notifications), unread, connected); err != nil {
		return err
	}
	return format.FormatCategories(w, notifications)
}
