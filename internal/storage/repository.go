// Package storage persists preferences and savings goals in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendy/internal/core"
	"spendy/internal/prefs"

	_ "modernc.org/sqlite"
)

// ErrGoalNotFound is returned when a goal ID has no matching row.
var ErrGoalNotFound = errors.New("savings goal not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadPreferences implements prefs.Store. A fresh database yields the
// documented defaults rather than empty preferences.
func (r *SQLiteRepository) LoadPreferences(ctx context.Context) (*prefs.Preferences, error) {
	p := &prefs.Preferences{
		BudgetThresholds: make(map[string]float64),
		DismissedAlerts:  []string{},
	}

	rows, err := r.db.QueryContext(ctx, `SELECT category, amount FROM budget_thresholds`)
	if err != nil {
		return nil, fmt.Errorf("query budget thresholds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan budget threshold: %w", err)
		}
		p.BudgetThresholds[category] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget thresholds: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT budget_warning_threshold, budget_exceeded_enabled,
		       category_spikes_enabled, unusual_spending_enabled,
		       savings_opportunities_enabled, income_changes_enabled,
		       minimum_spending_for_alerts
		FROM alert_settings WHERE id = 1`).Scan(
		&p.AlertSettings.BudgetWarningThreshold,
		&p.AlertSettings.BudgetExceededEnabled,
		&p.AlertSettings.CategorySpikesEnabled,
		&p.AlertSettings.UnusualSpendingEnabled,
		&p.AlertSettings.SavingsOpportunitiesEnabled,
		&p.AlertSettings.IncomeChangesEnabled,
		&p.AlertSettings.MinimumSpendingForAlerts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		if len(p.BudgetThresholds) == 0 {
			return prefs.Defaults(), nil
		}
		p.AlertSettings = prefs.Defaults().AlertSettings
	} else if err != nil {
		return nil, fmt.Errorf("query alert settings: %w", err)
	}

	ids, err := r.db.QueryContext(ctx, `SELECT alert_id FROM dismissed_alerts ORDER BY dismissed_at`)
	if err != nil {
		return nil, fmt.Errorf("query dismissed alerts: %w", err)
	}
	defer ids.Close()
	for ids.Next() {
		var id string
		if err := ids.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dismissed alert: %w", err)
		}
		p.DismissedAlerts = append(p.DismissedAlerts, id)
	}
	if err := ids.Err(); err != nil {
		return nil, fmt.Errorf("iterate dismissed alerts: %w", err)
	}

	p.Normalize()
	return p, nil
}

// SavePreferences implements prefs.Store. The snapshot replaces the stored
// state wholesale inside one transaction.
func (r *SQLiteRepository) SavePreferences(ctx context.Context, p *prefs.Preferences) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_thresholds`); err != nil {
		return fmt.Errorf("clear budget thresholds: %w", err)
	}
	for category, amount := range p.BudgetThresholds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budget_thresholds (category, amount) VALUES (?, ?)`,
			category, amount); err != nil {
			return fmt.Errorf("insert budget threshold %s: %w", category, err)
		}
	}

	s := p.AlertSettings
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO alert_settings (
			id, budget_warning_threshold, budget_exceeded_enabled,
			category_spikes_enabled, unusual_spending_enabled,
			savings_opportunities_enabled, income_changes_enabled,
			minimum_spending_for_alerts
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			budget_warning_threshold = excluded.budget_warning_threshold,
			budget_exceeded_enabled = excluded.budget_exceeded_enabled,
			category_spikes_enabled = excluded.category_spikes_enabled,
			unusual_spending_enabled = excluded.unusual_spending_enabled,
			savings_opportunities_enabled = excluded.savings_opportunities_enabled,
			income_changes_enabled = excluded.income_changes_enabled,
			minimum_spending_for_alerts = excluded.minimum_spending_for_alerts`,
		s.BudgetWarningThreshold, s.BudgetExceededEnabled,
		s.CategorySpikesEnabled, s.UnusualSpendingEnabled,
		s.SavingsOpportunitiesEnabled, s.IncomeChangesEnabled,
		s.MinimumSpendingForAlerts); err != nil {
		return fmt.Errorf("upsert alert settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dismissed_alerts`); err != nil {
		return fmt.Errorf("clear dismissed alerts: %w", err)
	}
	for _, id := range p.DismissedAlerts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO dismissed_alerts (alert_id) VALUES (?)`,
			id); err != nil {
			return fmt.Errorf("insert dismissed alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preferences: %w", err)
	}

	slog.InfoContext(ctx, "Preferences saved",
		"thresholds", len(p.BudgetThresholds),
		"dismissed", len(p.DismissedAlerts))
	return nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (
			id, name, target_amount, monthly_amount, current_amount,
			category, target_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetAmount, g.MonthlyAmount, g.CurrentAmount,
		g.Category, nullableTime(g.TargetDate), g.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert savings goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"id", g.ID,
		"name", g.Name,
		"target_amount", g.TargetAmount)
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (*core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, target_amount, monthly_amount, current_amount,
		       category, target_date, created_at
		FROM savings_goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get savings goal %s: %w", id, err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_amount, monthly_amount, current_amount,
		       category, target_date, created_at
		FROM savings_goals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query savings goals: %w", err)
	}
	defer rows.Close()

	goals := []core.SavingsGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE savings_goals SET
			name = ?, target_amount = ?, monthly_amount = ?,
			current_amount = ?, category = ?, target_date = ?
		WHERE id = ?`,
		g.Name, g.TargetAmount, g.MonthlyAmount,
		g.CurrentAmount, g.Category, nullableTime(g.TargetDate), g.ID)
	if err != nil {
		return fmt.Errorf("update savings goal %s: %w", g.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete savings goal %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrGoalNotFound
	}

	slog.InfoContext(ctx, "Savings goal deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*core.SavingsGoal, error) {
	var g core.SavingsGoal
	var targetDate sql.NullString
	var createdAt string
	if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.MonthlyAmount,
		&g.CurrentAmount, &g.Category, &targetDate, &createdAt); err != nil {
		return nil, err
	}
	if targetDate.Valid {
		t, err := time.Parse(time.RFC3339, targetDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse target date: %w", err)
		}
		g.TargetDate = t
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	g.CreatedAt = t
	return &g, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
