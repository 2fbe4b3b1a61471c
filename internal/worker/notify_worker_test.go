package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spendy/internal/alert"
	"spendy/internal/amqp"
	"spendy/internal/notify"
)

type fakeSender struct {
	messages []string
	types    []string
	err      error
}

func (f *fakeSender) Send(ctx context.Context, message, msgType string) (*notify.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.messages = append(f.messages, message)
	f.types = append(f.types, msgType)
	return &notify.Response{Success: true, MessageSID: "SM1", Type: msgType}, nil
}

func TestHandleNotificationDelivers(t *testing.T) {
	sender := &fakeSender{}
	w := NewNotifyWorker(sender, alert.SeverityHigh)

	err := w.HandleNotification(context.Background(), &amqp.AlertNotificationMessage{
		AlertID:  "budget_exceeded:Shopping:May 2025",
		Type:     alert.TypeBudgetExceeded,
		Severity: string(alert.SeverityCritical),
		Title:    "Budget Exceeded",
		Message:  "You've spent €250.00 in Shopping, exceeding your €200.00 budget",
		Category: "Shopping",
	})
	if err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	if len(sender.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.messages))
	}
	msg := sender.messages[0]
	for _, want := range []string{"CRITICAL Alert: Budget Exceeded", "€250.00", "Category: Shopping"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if sender.types[0] != "budget-alert" {
		t.Errorf("type = %q, want budget-alert", sender.types[0])
	}
}

func TestHandleNotificationSeverityFloor(t *testing.T) {
	sender := &fakeSender{}
	w := NewNotifyWorker(sender, alert.SeverityHigh)

	err := w.HandleNotification(context.Background(), &amqp.AlertNotificationMessage{
		AlertID:  "savings_opportunity:May 2025",
		Type:     alert.TypeSavingsOpportunity,
		Severity: string(alert.SeverityLow),
		Title:    "Low Savings Rate",
	})
	if err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Errorf("low severity alert should be skipped, sent %v", sender.messages)
	}
}

func TestHandleNotificationSenderError(t *testing.T) {
	sendErr := errors.New("gateway down")
	w := NewNotifyWorker(&fakeSender{err: sendErr}, alert.SeverityHigh)

	err := w.HandleNotification(context.Background(), &amqp.AlertNotificationMessage{
		AlertID:  "income_drop:May 2025",
		Type:     alert.TypeIncomeDrop,
		Severity: string(alert.SeverityHigh),
		Title:    "Income Decrease Detected",
	})
	if !errors.Is(err, sendErr) {
		t.Errorf("HandleNotification = %v, want wrapped sender error", err)
	}
}

func TestNotificationTypeMapping(t *testing.T) {
	cases := []struct {
		alertType string
		want      string
	}{
		{alert.TypeBudgetWarning, "budget-alert"},
		{alert.TypeBudgetExceeded, "budget-alert"},
		{alert.TypeUnusualSpending, "unusual-spending"},
		{alert.TypeCategorySpike, "unusual-spending"},
		{alert.TypeSavingsOpportunity, "savings-goal"},
		{alert.TypeIncomeDrop, "general"},
	}
	for _, tc := range cases {
		if got := notificationType(tc.alertType); got != tc.want {
			t.Errorf("notificationType(%s) = %s, want %s", tc.alertType, got, tc.want)
		}
	}
}

func TestDefaultSeverityFloor(t *testing.T) {
	w := NewNotifyWorker(&fakeSender{}, "")
	if w.minSeverity != alert.SeverityHigh {
		t.Errorf("minSeverity = %v, want high", w.minSeverity)
	}
}
