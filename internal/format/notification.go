// Package format provides output formatting for CLI commands.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/stocktray/stocktray/internal/colors"
	"github.com/stocktray/stocktray/internal/domain"
)

// maxMessageWidth bounds the message column in simple output.
const maxMessageWidth = 60

// SimpleFormatter formats notifications one per line.
type SimpleFormatter struct{}

// NewSimpleFormatter creates a new SimpleFormatter.
func NewSimpleFormatter() *SimpleFormatter {
	return &SimpleFormatter{}
}

// FormatNotifications writes notifications in simple format.
func (f *SimpleFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if len(notifications) == 0 {
		_, err := fmt.Fprintf(writer, "No notifications\n")
		return err
	}
	for _, n := range notifications {
		display := n.Message
		if len(display) > maxMessageWidth {
			display = display[:maxMessageWidth-3] + "..."
		}
		marker := " "
		if !n.Read {
			marker = "*"
		}
		_, err := fmt.Fprintf(writer, "%s %-22s  %-21s  [%-6s]  %s: %s\n",
			marker,
			n.ID,
			n.CreatedAt.Local().Format(time.DateTime),
			n.Priority.String(),
			n.Title,
			display,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats notifications as a JSON array.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatNotifications writes notifications as indented JSON.
func (f *JSONFormatter) FormatNotifications(notifications []domain.Notification, writer io.Writer) error {
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(notifications)
}

// PriorityColor returns the ANSI color for a priority.
func PriorityColor(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return colors.Red
	case domain.PriorityMedium:
		return colors.Yellow
	default:
		return ""
	}
}
