package app

import (
	"context"
	"fmt"
	"io"

	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/format"
)

// ListClient defines dependencies required to list notifications.
type ListClient interface {
	LoadSnapshot(ctx context.Context, page int, filter domain.Filter) (bool, error)
	Notifications() []domain.Notification
}

// ListOptions holds all parameters for listing notifications.
type ListOptions struct {
	Filter domain.Filter
	All    bool
	JSON   bool
}

// ListUseCase coordinates list notifications behavior.
type ListUseCase struct {
	client ListClient
}

// NewListUseCase creates a new list use-case.
func NewListUseCase(client ListClient) *ListUseCase {
	if client == nil {
		panic("NewListUseCase: client dependency cannot be nil")
	}
	return &ListUseCase{client: client}
}

// Execute fetches the snapshot and prints notifications. With All set,
// pages are fetched until the server reports no more.
func (u *ListUseCase) Execute(ctx context.Context, opts ListOptions, w io.Writer) error {
	if !opts.Filter.IsValid() {
		return fmt.Errorf("list: invalid filter %q", string(opts.Filter))
	}

	page := 1
	for {
		more, err := u.client.LoadSnapshot(ctx, page, opts.Filter)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		if !opts.All || !more {
			break
		}
		page++
	}

	notifications := u.client.Notifications()
	if !opts.All {
		notifications = opts.Filter.Apply(notifications)
	}

	if opts.JSON {
		return format.NewJSONFormatter().FormatNotifications(notifications, w)
	}
	return format.NewSimpleFormatter().FormatNotifications(notifications, w)
}
