package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

type (
	TransactionType string

	// Transaction is a single parsed bank row. Amount is signed euros:
	// some producers encode debits as negative amounts, others rely on
	// the Type discriminant, so consumers must take the absolute value
	// when accumulating expenses.
	Transaction struct {
		Date        time.Time       `json:"date"`
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		Type        TransactionType `json:"type"`
	}

	// SavingsGoal is a user-defined savings target with a monthly funding plan.
	SavingsGoal struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		TargetAmount  float64   `json:"targetAmount"`
		MonthlyAmount float64   `json:"monthlyAmount"`
		CurrentAmount float64   `json:"currentAmount"`
		Category      string    `json:"category,omitempty"`
		TargetDate    time.Time `json:"targetDate,omitempty"` // optional, zero when unset
		CreatedAt     time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrEmptyDescription     = errors.New("empty description")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrEmptyName            = errors.New("empty goal name")
	ErrInvalidTargetAmount  = errors.New("target amount must be positive")
	ErrInvalidMonthlyAmount = errors.New("monthly amount must be positive")
	ErrNegativeAmount       = errors.New("amount cannot be negative")
)

func (tt TransactionType) IsValid() bool {
	switch tt {
	case Debit, Credit:
		return true
	default:
		return false
	}
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

// IsDebit reports whether the transaction is an expense. Producers that
// encode debits as negative amounts may omit the Type field.
func (t Transaction) IsDebit() bool {
	if t.Type != "" {
		return t.Type == Debit
	}
	return t.Amount < 0
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if len(g.Name) > 200 {
		return errors.New("goal name too long (max 200 characters)")
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidTargetAmount
	}
	if g.MonthlyAmount <= 0 {
		return ErrInvalidMonthlyAmount
	}
	if g.CurrentAmount < 0 {
		return ErrNegativeAmount
	}
	return nil
}
