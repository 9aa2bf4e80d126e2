package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/ports"
	"expensetracker/src/core/query"
	"expensetracker/src/infra/db"
)

var _ ports.ExpenseRepository = (*SQLiteRepository)(nil)

// SQLiteRepository implements ExpenseRepository on a local SQLite file.
// Identifiers and timestamps are assigned here rather than by the database.
type SQLiteRepository struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

func NewSQLiteRepository(s *db.SQLite, log *slog.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: s.DB, log: log, now: time.Now}
}

func (r *SQLiteRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// sqliteValidationError maps CHECK and NOT NULL failures to validation errors.
func sqliteValidationError(err error) error {
	var sErr *sqlite.Error
	if !errors.As(err, &sErr) {
		return nil
	}
	msg := sErr.Error()
	switch code := sErr.Code(); {
	case code == sqlite3.SQLITE_CONSTRAINT_CHECK, code == sqlite3.SQLITE_CONSTRAINT_NOTNULL:
	case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "CHECK constraint failed"):
	default:
		return nil
	}

	field := ""
	for _, f := range []string{"title", "amount", "category", "date"} {
		if strings.Contains(msg, f) {
			field = f
			break
		}
	}
	return domain.NewValidationError(field, msg)
}

func (r *SQLiteRepository) Create(ctx context.Context, f domain.ExpenseFields) (*domain.Expense, error) {
	e := domain.NewExpense(uuid.New(), f, r.now())

	const q = `
		INSERT INTO expenses (id, title, amount, category, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID.String(), e.Title, e.Amount.String(), e.Category,
		formatSQLiteTime(e.Date), formatSQLiteTime(e.CreatedAt), formatSQLiteTime(e.UpdatedAt),
	)
	if err != nil {
		if vErr := sqliteValidationError(err); vErr != nil {
			return nil, vErr
		}
		r.log.Error("failed to insert expense", "error", err)
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}
	return &e, nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	q, args := sqliteDialect.selectByID(id.String())
	e, err := scanSQLiteExpense(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("expense")
		}
		r.log.Error("failed to get expense", "error", err)
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Find(ctx context.Context, filter query.Filter) ([]domain.Expense, error) {
	q, args := sqliteDialect.selectExpenses(filter)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.log.Error("failed to query expenses", "error", err)
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		e, err := scanSQLiteExpense(rows)
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

func (r *SQLiteRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ExpensePatch) (*domain.Expense, error) {
	q, args := sqliteDialect.updateExpense(id.String(), patch, r.now())
	e, err := scanSQLiteExpense(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("expense")
		}
		if vErr := sqliteValidationError(err); vErr != nil {
			return nil, vErr
		}
		r.log.Error("failed to update expense", "error", err)
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id.String())
	if err != nil {
		r.log.Error("failed to delete expense", "error", err)
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		r.log.Error("failed to read affected rows", "error", err)
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("expense")
	}
	return nil
}

// SumAmount adds the stored amounts with decimal arithmetic. SQLite's own
// SUM would go through floating point.
func (r *SQLiteRepository) SumAmount(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT amount FROM expenses`)
	if err != nil {
		r.log.Error("failed to sum expenses", "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			r.log.Error("failed to scan amount", "error", err)
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid stored amount %q: %w", raw, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		r.log.Error("failed to sum expenses", "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteExpense(row rowScanner) (*domain.Expense, error) {
	var (
		e                          domain.Expense
		id, amount                 string
		date, createdAt, updatedAt string
	)
	if err := row.Scan(&id, &e.Title, &amount, &e.Category, &date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.Date, err = parseSQLiteTime(date); err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	if e.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid stored created_at %q: %w", createdAt, err)
	}
	if e.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid stored updated_at %q: %w", updatedAt, err)
	}
	return finishExpense(&e, id, amount)
}
