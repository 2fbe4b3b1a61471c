package amqp

import (
	"encoding/json"
	"time"

	"spendy/internal/alert"
)

// AlertNotificationMessage carries one generated alert to the notification
// relay. It is self-contained so the relay never needs database access.
type AlertNotificationMessage struct {
	AlertID   string    `json:"alertId"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlertNotificationMessage builds a notification message from an alert.
func NewAlertNotificationMessage(a alert.Alert) *AlertNotificationMessage {
	return &AlertNotificationMessage{
		AlertID:   a.ID,
		Type:      a.Type,
		Severity:  string(a.Severity),
		Title:     a.Title,
		Message:   a.Message,
		Category:  a.Category,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AlertNotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertNotificationMessageFromJSON parses a message from JSON bytes.
func AlertNotificationMessageFromJSON(data []byte) (*AlertNotificationMessage, error) {
	var msg AlertNotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
