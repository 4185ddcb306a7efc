package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/stocktray/stocktray/internal/domain"
)

// CountsByCategory returns notification counts per category.
func CountsByCategory(notifications []domain.Notification) map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, n := range notifications {
		counts[n.Category]++
	}
	return counts
}

// FormatSummary writes the unread/total summary.
// If total is 0, writes "No notifications\n".
func FormatSummary(w io.Writer, total, unread int, connected bool) error {
	if total == 0 {
		_, err := fmt.Fprintf(w, "No notifications\n")
		return err
	}
	indicator := "connected"
	if !connected {
		indicator = "disconnected"
	}
	_, err := fmt.Fprintf(w, "Notifications: %d (%d unread) [%s]\n", total, unread, indicator)
	return err
}

// FormatCategories writes per-category counts in a stable order.
func FormatCategories(w io.Writer, notifications []domain.Notification) error {
	counts := CountsByCategory(notifications)
	order := []domain.Category{
		domain.CategoryApprovalRequest,
		domain.CategoryApprovalResponse,
		domain.CategoryTransactionCompleted,
		domain.CategoryStockAlert,
		domain.CategorySystem,
	}
	for _, category := range order {
		if counts[category] == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s: %d\n", category.String(), counts[category]); err != nil {
			return err
		}
	}
	return nil
}

// statusJSON is the machine-readable status shape.
type statusJSON struct {
	Total     int            `json:"total"`
	Unread    int            `json:"unread"`
	Connected bool           `json:"connected"`
	ByType    map[string]int `json:"byType"`
}

// FormatStatusJSON writes the status as JSON.
func FormatStatusJSON(w io.Writer, notifications []domain.Notification, unread int, connected bool) error {
	byType := make(map[string]int)
	for category, count := range CountsByCategory(notifications) {
		byType[category.String()] = count
	}
	return json.NewEncoder(w).Encode(statusJSON{
		Total:     len(notifications),
		Unread:    unread,
		Connected: connected,
		ByType:    byType,
	})
}
