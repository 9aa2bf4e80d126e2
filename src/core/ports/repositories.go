// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/query"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// ExpenseRepository is the record store contract for the expense collection.
//
// Implementations report a missing record with a domain not-found error and
// a store-side validator rejection with a domain validation error. Any other
// error is treated as a store failure.
type ExpenseRepository interface {
	Repository

	// Create inserts a new expense and returns it with its assigned identifier.
	Create(ctx context.Context, fields domain.ExpenseFields) (*domain.Expense, error)

	// FindByID returns the expense with the given identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error)

	// Find returns every expense matching the filter, newest first.
	Find(ctx context.Context, filter query.Filter) ([]domain.Expense, error)

	// Update applies the patch and returns the updated expense.
	Update(ctx context.Context, id uuid.UUID, patch domain.ExpensePatch) (*domain.Expense, error)

	// Delete permanently removes the expense.
	Delete(ctx context.Context, id uuid.UUID) error

	// SumAmount totals the amount of every expense; an empty store totals zero.
	SumAmount(ctx context.Context) (decimal.Decimal, error)
}
