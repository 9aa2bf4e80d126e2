package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/ports"
	"expensetracker/src/core/query"
	"expensetracker/src/infra/logger"
)

// ExpenseService implements the expense operations on top of a record store.
// Every method validates its input before the store is called.
type ExpenseService struct {
	repo ports.ExpenseRepository
	log  *slog.Logger
}

func NewExpenseService(repo ports.ExpenseRepository, log *slog.Logger) *ExpenseService {
	return &ExpenseService{repo: repo, log: log}
}

// Create validates the input and stores a new expense.
func (s *ExpenseService) Create(ctx context.Context, in domain.RawExpense) (*domain.Expense, error) {
	fields, err := in.Fields()
	if err != nil {
		return nil, err
	}
	e, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, s.classify("create expense", err)
	}
	logger.Debug(s.log, "expense created", "id", e.ID, "category", e.Category)
	return e, nil
}

// List returns every expense, newest first.
func (s *ExpenseService) List(ctx context.Context) ([]domain.Expense, error) {
	return s.find(ctx, "list expenses", query.All())
}

// Get returns a single expense. A malformed id is rejected before lookup.
func (s *ExpenseService) Get(ctx context.Context, rawID string) (*domain.Expense, error) {
	id, err := domain.ParseExpenseID(rawID)
	if err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.classify("get expense", err)
	}
	return e, nil
}

// Total sums the amount of all expenses. An empty store totals zero.
func (s *ExpenseService) Total(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.repo.SumAmount(ctx)
	if err != nil {
		return decimal.Zero, s.classify("total expenses", err)
	}
	return total, nil
}

// ByCategory returns expenses in exactly the given category, newest first.
func (s *ExpenseService) ByCategory(ctx context.Context, category string) ([]domain.Expense, error) {
	filter, err := query.ByCategory(category)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, "filter expenses by category", filter)
}

// ByDateRange returns expenses dated from start through end inclusive, newest first.
// An empty result is not an error.
func (s *ExpenseService) ByDateRange(ctx context.Context, start, end string) ([]domain.Expense, error) {
	filter, err := query.ByDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, "filter expenses by date range", filter)
}

// Update applies the supplied fields to an existing expense.
func (s *ExpenseService) Update(ctx context.Context, rawID string, in domain.RawExpense) (*domain.Expense, error) {
	id, err := domain.ParseExpenseID(rawID)
	if err != nil {
		return nil, err
	}
	patch, err := in.Patch()
	if err != nil {
		return nil, err
	}
	e, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.classify("update expense", err)
	}
	logger.Debug(s.log, "expense updated", "id", e.ID)
	return e, nil
}

// Delete permanently removes an expense and returns its identifier.
func (s *ExpenseService) Delete(ctx context.Context, rawID string) (uuid.UUID, error) {
	id, err := domain.ParseExpenseID(rawID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return uuid.Nil, s.classify("delete expense", err)
	}
	logger.Debug(s.log, "expense deleted", "id", id)
	return id, nil
}

func (s *ExpenseService) find(ctx context.Context, op string, filter query.Filter) ([]domain.Expense, error) {
	items, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, s.classify(op, err)
	}
	if items == nil {
		items = []domain.Expense{}
	}
	return items, nil
}

// classify passes domain errors through and turns anything else into a store failure.
func (s *ExpenseService) classify(op string, err error) error {
	if domain.IsClassified(err) {
		return err
	}
	logger.Error(s.log, "store operation failed", "op", op, "error", err)
	return domain.NewStoreError(op, err)
}
