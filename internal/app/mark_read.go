package app

import (
	"context"
	"fmt"

	"github.com/stocktray/stocktray/internal/colors"
)

// MarkReadClient defines dependencies required to mark notifications read.
type MarkReadClient interface {
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

// MarkReadUseCase coordinates mark-read behavior.
type MarkReadUseCase struct {
	client MarkReadClient
}

// NewMarkReadUseCase creates a new mark-read use-case.
func NewMarkReadUseCase(client MarkReadClient) *MarkReadUseCase {
	if client == nil {
		panic("NewMarkReadUseCase: client dependency cannot be nil")
	}
	return &MarkReadUseCase{client: client}
}

// Execute marks one notification as read.
func (u *MarkReadUseCase) Execute(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("mark-read: notification id is required")
	}
	if err := u.client.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark-read: %w", err)
	}

	colors.Success(fmt.Sprintf("Notification %s marked as read", id))
	return nil
}

// ExecuteAll marks every notification as read.
func (u *MarkReadUseCase) ExecuteAll(ctx context.Context) error {
	if err := u.client.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark-read: %w", err)
	}

	colors.Success("All notifications marked as read")
	return nil
}
