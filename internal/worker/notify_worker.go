// Package worker relays queued alert notifications to WhatsApp.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendy/internal/alert"
	"spendy/internal/amqp"
	"spendy/internal/notify"
)

// Sender is the delivery surface the worker needs. *notify.WhatsAppClient
// satisfies it.
type Sender interface {
	Send(ctx context.Context, message, msgType string) (*notify.Response, error)
}

// NotifyWorker consumes alert notification messages and forwards those at or
// above the configured severity to the WhatsApp gateway.
type NotifyWorker struct {
	sender      Sender
	minSeverity alert.Severity
}

func NewNotifyWorker(sender Sender, minSeverity alert.Severity) *NotifyWorker {
	if minSeverity == "" {
		minSeverity = alert.SeverityHigh
	}
	return &NotifyWorker{
		sender:      sender,
		minSeverity: minSeverity,
	}
}

// HandleNotification processes one queued alert notification.
func (w *NotifyWorker) HandleNotification(ctx context.Context, msg *amqp.AlertNotificationMessage) error {
	severity := alert.Severity(msg.Severity)
	if severity.Weight() < w.minSeverity.Weight() {
		slog.DebugContext(ctx, "Skipping notification below severity floor",
			"alert_id", msg.AlertID,
			"severity", msg.Severity,
			"floor", w.minSeverity)
		return nil
	}

	text := formatNotification(msg)
	resp, err := w.sender.Send(ctx, text, notificationType(msg.Type))
	if err != nil {
		return fmt.Errorf("send notification for alert %s: %w", msg.AlertID, err)
	}

	slog.InfoContext(ctx, "Alert notification delivered",
		"alert_id", msg.AlertID,
		"message_sid", resp.MessageSID,
		"severity", msg.Severity)
	return nil
}

// formatNotification renders the WhatsApp message body.
func formatNotification(msg *amqp.AlertNotificationMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Alert: %s\n\n", strings.ToUpper(msg.Severity), msg.Title)
	b.WriteString(msg.Message)
	if msg.Category != "" {
		fmt.Fprintf(&b, "\n\nCategory: %s", msg.Category)
	}
	return b.String()
}

// notificationType maps alert types onto the gateway's template identifiers.
func notificationType(alertType string) string {
	switch alertType {
	case alert.TypeBudgetWarning, alert.TypeBudgetExceeded:
		return "budget-alert"
	case alert.TypeUnusualSpending, alert.TypeCategorySpike:
		return "unusual-spending"
	case alert.TypeSavingsOpportunity:
		return "savings-goal"
	default:
		return "general"
	}
}
