package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format accepted and produced by the API.
const DateLayout = time.DateOnly

// idLength is the length of a canonical hyphenated UUID string.
const idLength = 36

// maxAmountExponent bounds the decimal exponent of an amount in either direction.
const maxAmountExponent = 64

// RawExpense carries expense fields exactly as the caller supplied them.
// A nil field was absent from the request. Amount holds the number's literal
// text so no digits are lost before it becomes a decimal.
type RawExpense struct {
	Title    *string
	Amount   *string
	Category *string
	Date     *string
}

// Fields validates a create request: every field is required.
func (r RawExpense) Fields() (ExpenseFields, error) {
	var missing []string
	if r.Title == nil {
		missing = append(missing, "title")
	}
	if r.Amount == nil {
		missing = append(missing, "amount")
	}
	if r.Category == nil {
		missing = append(missing, "category")
	}
	if r.Date == nil {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return ExpenseFields{}, NewValidationError(strings.Join(missing, ","),
			"all fields (title, amount, category, date) are required")
	}

	title, err := ValidateText("title", *r.Title)
	if err != nil {
		return ExpenseFields{}, err
	}
	amount, err := ValidateAmount(*r.Amount)
	if err != nil {
		return ExpenseFields{}, err
	}
	category, err := ValidateText("category", *r.Category)
	if err != nil {
		return ExpenseFields{}, err
	}
	date, err := ParseDate("date", *r.Date)
	if err != nil {
		return ExpenseFields{}, err
	}

	return ExpenseFields{Title: title, Amount: amount, Category: category, Date: date}, nil
}

// Patch validates an update request. Only supplied fields are checked,
// each with the same rule as on create, and at least one must be present.
func (r RawExpense) Patch() (ExpensePatch, error) {
	var p ExpensePatch
	if r.Title != nil {
		title, err := ValidateText("title", *r.Title)
		if err != nil {
			return ExpensePatch{}, err
		}
		p.Title = &title
	}
	if r.Amount != nil {
		amount, err := ValidateAmount(*r.Amount)
		if err != nil {
			return ExpensePatch{}, err
		}
		p.Amount = &amount
	}
	if r.Category != nil {
		category, err := ValidateText("category", *r.Category)
		if err != nil {
			return ExpensePatch{}, err
		}
		p.Category = &category
	}
	if r.Date != nil {
		date, err := ParseDate("date", *r.Date)
		if err != nil {
			return ExpensePatch{}, err
		}
		p.Date = &date
	}
	if p.IsEmpty() {
		return ExpensePatch{}, NewValidationError("", "at least one of title, amount, category or date must be supplied")
	}
	return p, nil
}

// ValidateText rejects blank values. The value is returned unchanged so
// that stored text round-trips exactly.
func ValidateText(field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", NewValidationError(field, field+" must not be empty")
	}
	return value, nil
}

// ValidateAmount parses the literal text of a JSON number into a decimal and
// requires it to be positive. Anything that is not a number is rejected.
func ValidateAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, NewValidationError("amount", "amount must be a number")
	}
	if exp := amount.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return decimal.Decimal{}, NewValidationError("amount", "amount is out of range")
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, NewValidationError("amount", "amount must be a positive number")
	}
	return amount, nil
}

// ParseDate accepts a calendar date (YYYY-MM-DD, read as UTC midnight) or an
// RFC 3339 timestamp. The result is always in UTC.
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, NewValidationError(field, field+" is required (YYYY-MM-DD)")
	}
	if t, err := time.ParseInLocation(DateLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, NewValidationError(field, "invalid date format, use YYYY-MM-DD")
}

// ParseExpenseID checks identifier syntax without touching the store.
func ParseExpenseID(raw string) (uuid.UUID, error) {
	if len(raw) != idLength {
		return uuid.Nil, NewValidationError("id", "invalid expense ID format")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, NewValidationError("id", "invalid expense ID format")
	}
	return id, nil
}
