package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/query"
	"expensetracker/src/infra/logger"
)

// MockExpenseRepository is a mock implementation of ExpenseRepository for testing
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockExpenseRepository) Create(ctx context.Context, f domain.ExpenseFields) (*domain.Expense, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Find(ctx context.Context, filter query.Filter) ([]domain.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Update(ctx context.Context, id uuid.UUID, p domain.ExpensePatch) (*domain.Expense, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockExpenseRepository) SumAmount(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func newService() (*ExpenseService, *MockExpenseRepository) {
	repo := new(MockExpenseRepository)
	return NewExpenseService(repo, logger.Discard()), repo
}

func TestCreate_StoresValidatedFields(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()

	stored := &domain.Expense{ID: uuid.New(), Title: "Coffee", Amount: decimal.RequireFromString("3.5"), Category: "Food"}
	repo.On("Create", ctx, mock.MatchedBy(func(f domain.ExpenseFields) bool {
		return f.Title == "Coffee" &&
			f.Amount.Equal(decimal.RequireFromString("3.5")) &&
			f.Category == "Food" &&
			f.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	})).Return(stored, nil)

	got, err := service.Create(ctx, domain.RawExpense{
		Title:    ptr("Coffee"),
		Amount:   ptr("3.5"),
		Category: ptr("Food"),
		Date:     ptr("2024-01-15"),
	})

	require.NoError(t, err)
	assert.Equal(t, stored, got)
	repo.AssertExpectations(t)
}

func TestCreate_InvalidInputNeverReachesStore(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()

	_, err := service.Create(ctx, domain.RawExpense{Title: ptr("Coffee")})
	assert.True(t, domain.IsValidationError(err))

	_, err = service.Create(ctx, domain.RawExpense{
		Title: ptr("Coffee"), Amount: ptr("-1"), Category: ptr("Food"), Date: ptr("2024-01-15"),
	})
	assert.True(t, domain.IsValidationError(err))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMalformedIDNeverReachesStore(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()

	for _, raw := range []string{"", "abc", "507f1f77bcf86cd799439011"} {
		_, err := service.Get(ctx, raw)
		assert.True(t, domain.IsValidationError(err), raw)

		_, err = service.Update(ctx, raw, domain.RawExpense{Title: ptr("x")})
		assert.True(t, domain.IsValidationError(err), raw)

		_, err = service.Delete(ctx, raw)
		assert.True(t, domain.IsValidationError(err), raw)
	}

	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGet_NotFoundPassesThrough(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()
	id := uuid.New()

	repo.On("FindByID", ctx, id).Return(nil, domain.NewNotFoundError("expense"))

	_, err := service.Get(ctx, id.String())
	assert.True(t, domain.IsNotFound(err))
	assert.False(t, domain.IsStoreError(err))
}

func TestStoreFailureIsClassified(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()
	boom := errors.New("connection refused")

	repo.On("Find", ctx, query.All()).Return(nil, boom)
	repo.On("SumAmount", ctx).Return(decimal.Zero, boom)

	_, err := service.List(ctx)
	assert.True(t, domain.IsStoreError(err))
	assert.ErrorIs(t, err, boom)

	_, err = service.Total(ctx)
	assert.True(t, domain.IsStoreError(err))
}

func TestList_EmptyIsNotNil(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()

	repo.On("Find", ctx, query.All()).Return(nil, nil)

	got, err := service.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestByCategory_BlankRejected(t *testing.T) {
	service, repo := newService()

	_, err := service.ByCategory(context.Background(), "  ")
	assert.True(t, domain.IsValidationError(err))
	repo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestByDateRange_PassesInclusiveBounds(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()

	repo.On("Find", ctx, mock.MatchedBy(func(f query.Filter) bool {
		return f.Category == nil &&
			f.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			f.Before.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	})).Return([]domain.Expense{}, nil)

	got, err := service.ByDateRange(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = service.ByDateRange(ctx, "2024-01-01", "")
	assert.True(t, domain.IsValidationError(err))
	repo.AssertNumberOfCalls(t, "Find", 1)
}

func TestUpdate_ValidatesSuppliedFieldsOnly(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()
	id := uuid.New()

	repo.On("Update", ctx, id, mock.MatchedBy(func(p domain.ExpensePatch) bool {
		return p.Title == nil && p.Category == nil && p.Date == nil &&
			p.Amount != nil && p.Amount.Equal(decimal.NewFromInt(4))
	})).Return(&domain.Expense{ID: id, Amount: decimal.NewFromInt(4)}, nil)

	got, err := service.Update(ctx, id.String(), domain.RawExpense{Amount: ptr("4")})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = service.Update(ctx, id.String(), domain.RawExpense{Amount: ptr("0")})
	assert.True(t, domain.IsValidationError(err))

	_, err = service.Update(ctx, id.String(), domain.RawExpense{})
	assert.True(t, domain.IsValidationError(err))

	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestDelete_ReturnsID(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()
	id := uuid.New()

	repo.On("Delete", ctx, id).Return(nil).Once()
	repo.On("Delete", ctx, id).Return(domain.NewNotFoundError("expense"))

	got, err := service.Delete(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = service.Delete(ctx, id.String())
	assert.True(t, domain.IsNotFound(err))
}

func TestTotal(t *testing.T) {
	ctx := context.Background()
	service, repo := newService()

	repo.On("SumAmount", ctx).Return(decimal.RequireFromString("60"), nil)

	total, err := service.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, "60", total.String())
}
