package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single recorded expense.
type Expense struct {
	ID        uuid.UUID
	Title     string
	Amount    decimal.Decimal
	Category  string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpenseFields are the user-supplied fields of a new expense, already validated.
type ExpenseFields struct {
	Title    string
	Amount   decimal.Decimal
	Category string
	Date     time.Time
}

// ExpensePatch lists the fields an update may change. A nil field is left untouched.
// The identifier and the store-maintained timestamps are deliberately absent.
type ExpensePatch struct {
	Title    *string
	Amount   *decimal.Decimal
	Category *string
	Date     *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Title == nil && p.Amount == nil && p.Category == nil && p.Date == nil
}

// Apply returns a copy of e with the patch applied.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

// NewExpense builds an Expense from validated fields. Stores that assign
// identifiers in application code (SQLite, memory) use this on insert.
func NewExpense(id uuid.UUID, f ExpenseFields, now time.Time) Expense {
	now = now.UTC()
	return Expense{
		ID:        id,
		Title:     f.Title,
		Amount:    f.Amount,
		Category:  f.Category,
		Date:      f.Date.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
