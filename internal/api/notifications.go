package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stocktray/stocktray/internal/domain"
)

// listResponse is the envelope returned by GET /notifications.
type listResponse struct {
	Success     bool                  `json:"success"`
	Data        []domain.Notification `json:"data"`
	UnreadCount int                   `json:"unreadCount"`
}

// ackResponse is the envelope returned by the mutation endpoints.
type ackResponse struct {
	Success bool `json:"success"`
}

// Snapshot is one page of notifications with the server's unread count.
type Snapshot struct {
	Notifications []domain.Notification
	UnreadCount   int
}

// ListNotifications fetches one page of notifications from the store.
func (c *Client) ListNotifications(ctx context.Context, page, limit int, filter domain.Filter) (Snapshot, error) {
	if page < 1 {
		return Snapshot{}, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if limit < 1 {
		return Snapshot{}, fmt.Errorf("limit must be >= 1, got %d", limit)
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("filter", filter.String())

	var resp listResponse
	if err := c.Get(ctx, "/notifications?"+q.Encode(), &resp); err != nil {
		return Snapshot{}, err
	}
	if !resp.Success {
		return Snapshot{}, fmt.Errorf("notification store reported failure for page %d", page)
	}
	return Snapshot{Notifications: resp.Data, UnreadCount: resp.UnreadCount}, nil
}

// MarkRead asks the server to flip a single notification to read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("notification ID cannot be empty")
	}
	var resp ackResponse
	if err := c.Post(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("server rejected mark-read for notification %s", id)
	}
	return nil
}

// Verify checks that the client's token is accepted by the server.
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.ListNotifications(ctx, 1, 1, "")
	return err
}

// MarkAllRead asks the server to flip every notification to read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	var resp ackResponse
	if err := c.Post(ctx, "/notifications/read-all", nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("server rejected mark-all-read")
	}
	return nil
}
