package repo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/ports"
	"expensetracker/src/core/query"
)

var _ ports.ExpenseRepository = (*MemoryRepository)(nil)

// MemoryRepository keeps expenses in a map. It is used for tests and for
// running the service without a database.
type MemoryRepository struct {
	mu       sync.RWMutex
	expenses map[uuid.UUID]domain.Expense
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		expenses: make(map[uuid.UUID]domain.Expense),
		now:      time.Now,
	}
}

func (r *MemoryRepository) Health(context.Context) error { return nil }

func (r *MemoryRepository) Create(_ context.Context, f domain.ExpenseFields) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := domain.NewExpense(uuid.New(), f, r.now())
	r.expenses[e.ID] = e
	return &e, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.expenses[id]
	if !ok {
		return nil, domain.NewNotFoundError("expense")
	}
	return &e, nil
}

func (r *MemoryRepository) Find(_ context.Context, filter query.Filter) ([]domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, query.NewestFirst)
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, patch domain.ExpensePatch) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.expenses[id]
	if !ok {
		return nil, domain.NewNotFoundError("expense")
	}
	e = patch.Apply(e)
	e.UpdatedAt = r.now().UTC()
	r.expenses[id] = e
	return &e, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.expenses[id]; !ok {
		return domain.NewNotFoundError("expense")
	}
	delete(r.expenses, id)
	return nil
}

func (r *MemoryRepository) SumAmount(context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, e := range r.expenses {
		total = total.Add(e.Amount)
	}
	return total, nil
}
