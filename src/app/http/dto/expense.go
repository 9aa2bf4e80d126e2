package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/src/core/domain"
)

// ExpenseRequest is the body of POST /api/expenses and PUT /api/expenses/:id.
// Create requires every field; update requires at least one.
// Amount is kept as raw JSON so large or long numbers are not rounded through float64.
type ExpenseRequest struct {
	Title    *string         `json:"title"`
	Amount   json.RawMessage `json:"amount"`
	Category *string         `json:"category"`
	Date     *string         `json:"date"`
}

func (r ExpenseRequest) ToRaw() domain.RawExpense {
	return domain.RawExpense{
		Title:    r.Title,
		Amount:   rawAmount(r.Amount),
		Category: r.Category,
		Date:     r.Date,
	}
}

// rawAmount treats a missing or null amount as absent.
func rawAmount(msg json.RawMessage) *string {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil
	}
	s := string(msg)
	return &s
}

// ExpenseResponse is the public representation of an expense.
type ExpenseResponse struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	Date      string      `json:"date"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func ExpenseFromDomain(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID.String(),
		Title:     e.Title,
		Amount:    amountNumber(e.Amount),
		Category:  e.Category,
		Date:      formatDate(e.Date),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ExpensesFromDomain(items []domain.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, len(items))
	for i := range items {
		out[i] = ExpenseFromDomain(&items[i])
	}
	return out
}

// TotalResponse is the body of GET /api/expenses/total.
type TotalResponse struct {
	Total json.Number `json:"total"`
}

func TotalFromDomain(total decimal.Decimal) TotalResponse {
	return TotalResponse{Total: amountNumber(total)}
}

// DeletedResponse identifies a removed expense.
type DeletedResponse struct {
	ID string `json:"id"`
}

// amountNumber renders a decimal as a JSON number without going through float64.
func amountNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// formatDate writes calendar dates as YYYY-MM-DD and anything with a time of day as RFC 3339.
func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(domain.DateLayout)
	}
	return t.Format(time.RFC3339Nano)
}
