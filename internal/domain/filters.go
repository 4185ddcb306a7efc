package domain

import "fmt"

// Filter selects a subset of notifications when listing or fetching.
// The zero value matches everything.
type Filter string

const (
	// FilterAll matches every notification.
	FilterAll Filter = "all"
	// FilterUnread matches notifications with read=false.
	FilterUnread Filter = "unread"
	// FilterStock matches stock-related categories.
	FilterStock Filter = "stock"
	// FilterApprovals matches approval request/response categories.
	FilterApprovals Filter = "approvals"
)

// IsValid checks if the filter is a recognized value.
func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterUnread, FilterStock, FilterApprovals, "":
		return true
	default:
		return false
	}
}

// String returns the wire value of the filter, defaulting to "all".
func (f Filter) String() string {
	if f == "" {
		return string(FilterAll)
	}
	return string(f)
}

// Matches reports whether the notification satisfies the filter.
func (f Filter) Matches(n Notification) bool {
	switch f {
	case FilterUnread:
		return !n.Read
	case FilterStock:
		return n.Category == CategoryStockAlert || n.Category == CategoryTransactionCompleted
	case FilterApprovals:
		return n.Category == CategoryApprovalRequest || n.Category == CategoryApprovalResponse
	default:
		return true
	}
}

// Apply returns the notifications matching the filter, preserving order.
func (f Filter) Apply(notifications []Notification) []Notification {
	if f == "" || f == FilterAll {
		return notifications
	}
	filtered := make([]Notification, 0, len(notifications))
	for _, n := range notifications {
		if f.Matches(n) {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

// ParseFilter converts a user-provided string into a Filter.
func ParseFilter(value string) (Filter, error) {
	f := Filter(value)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid filter: %s (must be one of: all, unread, stock, approvals)", value)
	}
	if f == "" {
		return FilterAll, nil
	}
	return f, nil
}

// CountUnread returns the number of notifications with read=false.
func CountUnread(notifications []Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count
}
