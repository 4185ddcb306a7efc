// Package domain provides the domain layer for notifications.
// It contains the notification entity, value objects, and filter logic.
package domain

import (
	"fmt"
	"time"
)

// Notification represents a single platform notification.
//
// The ID is assigned server-side and is stable across both delivery
// paths (push channel and paginated fetch). Data is an open-ended
// payload whose shape depends on Category; known keys include
// productName, quantity, approvalLevel, actionUrl, reason and the
// organization names involved in a transfer.
type Notification struct {
	ID        string         `json:"id"`
	Category  Category       `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Priority  Priority       `json:"priority"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
	Data      map[string]any `json:"data,omitempty"`
}

// Category represents the enumerated kind of a notification.
type Category string

const (
	CategoryApprovalRequest      Category = "approval_request"
	CategoryApprovalResponse     Category = "approval_response"
	CategoryTransactionCompleted Category = "transaction_completed"
	CategoryStockAlert           Category = "stock_alert"
	CategorySystem               Category = "system"
)

// IsValid checks if the notification category is valid.
func (c Category) IsValid() bool {
	switch c {
	case CategoryApprovalRequest, CategoryApprovalResponse,
		CategoryTransactionCompleted, CategoryStockAlert, CategorySystem:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Priority represents the ordered severity of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is valid.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	return string(p)
}

// Rank returns the ordering weight of the priority; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// MarkRead flips the read flag on. Returns true when the flag changed.
func (n *Notification) MarkRead() bool {
	if n.Read {
		return false
	}
	n.Read = true
	return true
}

// Validate validates the notification and returns an error if invalid.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification ID cannot be empty")
	}
	if !n.Category.IsValid() {
		return fmt.Errorf("invalid notification category: %s", n.Category)
	}
	if !n.Priority.IsValid() {
		return fmt.Errorf("invalid notification priority: %s", n.Priority)
	}
	if n.Title == "" {
		return fmt.Errorf("notification title cannot be empty")
	}
	if n.CreatedAt.IsZero() {
		return fmt.Errorf("notification timestamp cannot be zero")
	}
	return nil
}

// DataString returns the string payload value for key, or "" when absent.
func (n *Notification) DataString(key string) string {
	if n.Data == nil {
		return ""
	}
	if v, ok := n.Data[key].(string); ok {
		return v
	}
	return ""
}

// ParseCategory parses a string into a Category.
func ParseCategory(category string) (Category, error) {
	c := Category(category)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid notification category: %s", category)
	}
	return c, nil
}

// ParsePriority parses a string into a Priority.
func ParsePriority(priority string) (Priority, error) {
	p := Priority(priority)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid notification priority: %s", priority)
	}
	return p, nil
}
