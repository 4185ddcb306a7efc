package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/stocktray/stocktray/internal/domain"
)

// Event names the kinds of inbound events the channel delivers.
type Event string

const (
	// EventConnectionEstablished fires once the server acknowledges the
	// authentication handshake.
	EventConnectionEstablished Event = "connection_established"
	// EventConnectionClosed fires when the server or transport closes
	// the channel. Data carries {"reason": string}.
	EventConnectionClosed Event = "connection_closed"
	// EventConnectionFailed fires when a connect attempt or the read
	// loop fails. Data carries {"error": string}.
	EventConnectionFailed Event = "connection_failed"
	// EventNewNotification fires for every push-delivered notification.
	// Data carries the full notification payload.
	EventNewNotification Event = "new_notification"
	// EventPong is the heartbeat reply. Informational only.
	EventPong Event = "pong"
)

// Frame is the JSON wire format of channel messages in both directions.
type Frame struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handler receives the data payload of a single inbound event.
type Handler func(data json.RawMessage)

// DecodeNotification parses a new_notification payload.
func DecodeNotification(data json.RawMessage) (domain.Notification, error) {
	var n domain.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return domain.Notification{}, fmt.Errorf("decoding pushed notification: %w", err)
	}
	if err := n.Validate(); err != nil {
		return domain.Notification{}, fmt.Errorf("invalid pushed notification: %w", err)
	}
	return n, nil
}

// closeReason is the payload of connection_closed events.
type closeReason struct {
	Reason string `json:"reason"`
}

// failReason is the payload of connection_failed events.
type failReason struct {
	Error string `json:"error"`
}

func encodeCloseReason(reason string) json.RawMessage {
	data, _ := json.Marshal(closeReason{Reason: reason})
	return data
}

func encodeFailReason(message string) json.RawMessage {
	data, _ := json.Marshal(failReason{Error: message})
	return data
}
