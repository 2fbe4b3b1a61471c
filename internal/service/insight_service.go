// Package service orchestrates the insight engines over a transaction source,
// the preferences store, and the notification queue.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendy/internal/aggregate"
	"spendy/internal/alert"
	"spendy/internal/amqp"
	"spendy/internal/chat"
	"spendy/internal/core"
	"spendy/internal/goals"
	"spendy/internal/prefs"
	"spendy/internal/savings"
)

// TransactionSource loads the transaction history.
type TransactionSource interface {
	Load(ctx context.Context) ([]core.Transaction, error)
}

// sourceTTL bounds how long a loaded transaction snapshot is reused before
// the source is read again.
const sourceTTL = 5 * time.Minute

// InsightService computes alerts, savings insights, and chat answers from a
// transaction source. Generated alerts at publishable severity go to the
// notification queue; queue failures never fail the request.
type InsightService struct {
	source      TransactionSource
	prefsStore  prefs.Store
	goalService *goals.Service
	amqpClient  *amqp.Client
	alertEngine *alert.Engine
	chatEngine  *chat.Engine

	mu        sync.Mutex
	cached    []core.Transaction
	cachedAgg aggregate.MonthlyData
	loadedAt  time.Time
}

func NewInsightService(
	source TransactionSource,
	prefsStore prefs.Store,
	goalService *goals.Service,
	amqpClient *amqp.Client,
) *InsightService {
	return &InsightService{
		source:      source,
		prefsStore:  prefsStore,
		goalService: goalService,
		amqpClient:  amqpClient,
		alertEngine: alert.NewEngine(),
		chatEngine:  chat.NewEngine(),
	}
}

// snapshot returns the transaction history and its monthly aggregation,
// reloading from the source when the cached copy is stale.
func (s *InsightService) snapshot(ctx context.Context) ([]core.Transaction, aggregate.MonthlyData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.loadedAt) < sourceTTL {
		return s.cached, s.cachedAgg, nil
	}

	transactions, err := s.source.Load(ctx)
	if err != nil {
		if s.cached != nil {
			slog.WarnContext(ctx, "Source reload failed, serving stale snapshot", "error", err)
			return s.cached, s.cachedAgg, nil
		}
		return nil, nil, fmt.Errorf("load transactions: %w", err)
	}

	s.cached = transactions
	s.cachedAgg = aggregate.Aggregate(transactions)
	s.loadedAt = time.Now()

	slog.InfoContext(ctx, "Transaction snapshot loaded",
		"transactions", len(transactions),
		"months", len(s.cachedAgg))
	return s.cached, s.cachedAgg, nil
}

// Refresh discards the cached snapshot so the next call reloads the source.
func (s *InsightService) Refresh() {
	s.mu.Lock()
	s.cached = nil
	s.cachedAgg = nil
	s.mu.Unlock()
}

// Alerts generates current alerts, drops dismissed ones, and queues
// notifications for the rest.
func (s *InsightService) Alerts(ctx context.Context) ([]alert.Alert, error) {
	transactions, monthly, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.prefsStore.LoadPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	generated := s.alertEngine.Generate(monthly, transactions, p)
	active := make([]alert.Alert, 0, len(generated))
	for _, a := range generated {
		if p.IsAlertDismissed(a.ID) {
			continue
		}
		active = append(active, a)
	}

	s.publishNotifications(ctx, active)
	return active, nil
}

func (s *InsightService) publishNotifications(ctx context.Context, alerts []alert.Alert) {
	if s.amqpClient == nil {
		return
	}
	for _, a := range alerts {
		if err := s.amqpClient.PublishAlertNotification(ctx, amqp.NewAlertNotificationMessage(a)); err != nil {
			slog.ErrorContext(ctx, "Failed to queue alert notification",
				"alert_id", a.ID, "error", err)
			// Alerts are still served even when the queue is down.
			return
		}
	}
}

// DismissAlert records an alert dismissal and persists it.
func (s *InsightService) DismissAlert(ctx context.Context, alertID string) error {
	p, err := s.prefsStore.LoadPreferences(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	p.DismissAlert(alertID)
	if err := s.prefsStore.SavePreferences(ctx, p); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// ClearDismissedAlerts forgets all dismissals.
func (s *InsightService) ClearDismissedAlerts(ctx context.Context) error {
	p, err := s.prefsStore.LoadPreferences(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	p.ClearDismissedAlerts()
	if err := s.prefsStore.SavePreferences(ctx, p); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Preferences returns the stored preferences.
func (s *InsightService) Preferences(ctx context.Context) (*prefs.Preferences, error) {
	return s.prefsStore.LoadPreferences(ctx)
}

// SavePreferences persists a full preferences snapshot.
func (s *InsightService) SavePreferences(ctx context.Context, p *prefs.Preferences) error {
	p.Normalize()
	return s.prefsStore.SavePreferences(ctx, p)
}

// Capacity computes savings capacity from the monthly history.
func (s *InsightService) Capacity(ctx context.Context) (savings.Capacity, error) {
	_, monthly, err := s.snapshot(ctx)
	if err != nil {
		return savings.Capacity{}, err
	}
	return savings.CalculateCapacity(monthly), nil
}

// SuggestedAmounts computes conservative and aggressive monthly savings
// suggestions net of current goal commitments.
func (s *InsightService) SuggestedAmounts(ctx context.Context) (savings.Amounts, error) {
	capacity, err := s.Capacity(ctx)
	if err != nil {
		return savings.Amounts{}, err
	}
	currentGoals, err := s.goalService.List(ctx)
	if err != nil {
		return savings.Amounts{}, fmt.Errorf("list goals: %w", err)
	}
	return savings.SuggestAmount(capacity, currentGoals, savings.DefaultPolicy()), nil
}

// CutbackSuggestions lists reduction scenarios for flexible categories.
func (s *InsightService) CutbackSuggestions(ctx context.Context) ([]savings.CutbackSuggestion, error) {
	capacity, err := s.Capacity(ctx)
	if err != nil {
		return nil, err
	}
	return savings.GenerateCutbackSuggestions(capacity.CategoryAverages), nil
}

// SmartSuggestions surfaces behavioral spending patterns.
func (s *InsightService) SmartSuggestions(ctx context.Context) ([]savings.SmartSuggestion, error) {
	transactions, monthly, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	capacity := savings.CalculateCapacity(monthly)
	return savings.GenerateSmartSuggestions(capacity.CategoryAverages, transactions), nil
}

// GoalProgress reports progress for every stored goal.
func (s *InsightService) GoalProgress(ctx context.Context) ([]goals.ProgressReport, error) {
	_, monthly, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.goalService.Progress(ctx, monthly)
}

// Chat answers a free-text question about the spending data.
func (s *InsightService) Chat(ctx context.Context, input string) (string, error) {
	transactions, monthly, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	return s.chatEngine.Reply(input, chat.Data{
		Transactions: transactions,
		Monthly:      monthly,
	}), nil
}

// Close releases the queue connection. The storage connection is owned by
// the caller that opened it.
func (s *InsightService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
