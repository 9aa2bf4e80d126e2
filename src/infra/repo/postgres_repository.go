package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/ports"
	"expensetracker/src/core/query"
	"expensetracker/src/infra/db"
)

var _ ports.ExpenseRepository = (*PostgresRepository)(nil)

// PostgreSQL error codes translated into validation failures.
const (
	pgCheckViolation        = "23514"
	pgNotNullViolation      = "23502"
	pgNumericOutOfRange     = "22003"
	pgInvalidTextRepresent  = "22P02"
	pgDatetimeFieldOverflow = "22008"
)

// PostgresRepository implements ExpenseRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool: pg.Pool,
		log:  log,
	}
}

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// storeValidationError converts constraint and data errors raised by the
// database into a validation error carrying the database's own message.
func storeValidationError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgCheckViolation, pgNotNullViolation, pgNumericOutOfRange, pgInvalidTextRepresent, pgDatetimeFieldOverflow:
		return domain.NewValidationError(fieldForConstraint(pgErr.ConstraintName, pgErr.ColumnName), pgErr.Message)
	}
	return nil
}

func fieldForConstraint(constraint, column string) string {
	switch constraint {
	case "expenses_title_not_blank":
		return "title"
	case "expenses_amount_positive":
		return "amount"
	case "expenses_category_not_blank":
		return "category"
	}
	return column
}

func (r *PostgresRepository) Create(ctx context.Context, f domain.ExpenseFields) (*domain.Expense, error) {
	q := `
		INSERT INTO expenses (title, amount, category, date)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postgresDialect.columns
	row := r.pool.QueryRow(ctx, q, f.Title, f.Amount.String(), f.Category, f.Date.UTC())
	e, err := scanExpense(row)
	if err != nil {
		if vErr := storeValidationError(err); vErr != nil {
			return nil, vErr
		}
		r.log.Error("failed to insert expense", "error", err)
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	q, args := postgresDialect.selectByID(id.String())
	e, err := scanExpense(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("expense")
		}
		r.log.Error("failed to get expense", "error", err)
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Find(ctx context.Context, filter query.Filter) ([]domain.Expense, error) {
	q, args := postgresDialect.selectExpenses(filter)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.log.Error("failed to query expenses", "error", err)
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			r.log.Error("failed to scan expense", "error", err)
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("failed to iterate expenses", "error", err)
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ExpensePatch) (*domain.Expense, error) {
	q, args := postgresDialect.updateExpense(id.String(), patch, time.Now())
	e, err := scanExpense(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("expense")
		}
		if vErr := storeValidationError(err); vErr != nil {
			return nil, vErr
		}
		r.log.Error("failed to update expense", "error", err)
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM expenses WHERE id = $1`
	res, err := r.pool.Exec(ctx, q, id.String())
	if err != nil {
		r.log.Error("failed to delete expense", "error", err)
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFoundError("expense")
	}
	return nil
}

func (r *PostgresRepository) SumAmount(ctx context.Context) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(amount), 0)::text FROM expenses`
	var total string
	if err := r.pool.QueryRow(ctx, q).Scan(&total); err != nil {
		r.log.Error("failed to sum expenses", "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	sum, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse total %q: %w", total, err)
	}
	return sum, nil
}

// scanExpense reads one row projected with postgresDialect.columns.
func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		e          domain.Expense
		id, amount string
	)
	if err := row.Scan(&id, &e.Title, &amount, &e.Category, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return finishExpense(&e, id, amount)
}

// finishExpense parses the text-encoded identifier and amount and normalises times to UTC.
func finishExpense(e *domain.Expense, id, amount string) (*domain.Expense, error) {
	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid stored id %q: %w", id, err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}
