// Package goals manages savings goals: creation, funding updates, and
// progress reporting over the stored transaction history.
package goals

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spendy/internal/aggregate"
	"spendy/internal/core"
	"spendy/internal/savings"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateGoal(ctx context.Context, g core.SavingsGoal) error
	GetGoal(ctx context.Context, id string) (*core.SavingsGoal, error)
	ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
	UpdateGoal(ctx context.Context, g core.SavingsGoal) error
	DeleteGoal(ctx context.Context, id string) error
}

// Service applies validation and funding rules on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator injects the goal ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new goal, assigning its ID and creation
// time. Negative starting amounts are rejected.
func (s *Service) Create(ctx context.Context, g core.SavingsGoal) (*core.SavingsGoal, error) {
	if g.CurrentAmount < 0 {
		return nil, core.ErrNegativeAmount
	}
	g.ID = s.newID()
	g.CreatedAt = s.now().UTC()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &g, nil
}

// Get returns one goal by ID.
func (s *Service) Get(ctx context.Context, id string) (*core.SavingsGoal, error) {
	return s.store.GetGoal(ctx, id)
}

// List returns all goals in creation order.
func (s *Service) List(ctx context.Context) ([]core.SavingsGoal, error) {
	return s.store.ListGoals(ctx)
}

// Update replaces a goal's editable fields. The ID, creation time, and
// current amount are kept from the stored goal.
func (s *Service) Update(ctx context.Context, id string, g core.SavingsGoal) (*core.SavingsGoal, error) {
	existing, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	g.ID = existing.ID
	g.CreatedAt = existing.CreatedAt
	g.CurrentAmount = existing.CurrentAmount
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return &g, nil
}

// Delete removes a goal.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteGoal(ctx, id)
}

// AddAmount records a deposit toward a goal.
func (s *Service) AddAmount(ctx context.Context, id string, amount float64) (*core.SavingsGoal, error) {
	return s.adjustAmount(ctx, id, amount)
}

// RemoveAmount records a withdrawal from a goal. The balance never goes
// below zero.
func (s *Service) RemoveAmount(ctx context.Context, id string, amount float64) (*core.SavingsGoal, error) {
	return s.adjustAmount(ctx, id, -amount)
}

func (s *Service) adjustAmount(ctx context.Context, id string, delta float64) (*core.SavingsGoal, error) {
	goal, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount += delta
	if goal.CurrentAmount < 0 {
		goal.CurrentAmount = 0
	}
	if err := s.store.UpdateGoal(ctx, *goal); err != nil {
		return nil, fmt.Errorf("update goal amount: %w", err)
	}

	slog.InfoContext(ctx, "Goal balance updated",
		"id", goal.ID,
		"delta", delta,
		"current_amount", goal.CurrentAmount)
	return goal, nil
}

// ProgressReport pairs a goal with its computed progress.
type ProgressReport struct {
	Goal     core.SavingsGoal     `json:"goal"`
	Progress savings.GoalProgress `json:"progress"`
}

// Progress computes progress for every goal against the monthly history.
func (s *Service) Progress(ctx context.Context, monthly aggregate.MonthlyData) ([]ProgressReport, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	reports := make([]ProgressReport, len(goals))
	for i, goal := range goals {
		reports[i] = ProgressReport{
			Goal:     goal,
			Progress: savings.CalculateGoalProgress(goal, monthly),
		}
	}
	return reports, nil
}
