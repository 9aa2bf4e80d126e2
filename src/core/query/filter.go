// Package query translates request parameters into store-neutral expense predicates.
//
// Stores receive a Filter and must return matches ordered newest first
// (date descending, then creation time descending).
package query

import (
	"strings"
	"time"

	"expensetracker/src/core/domain"
)

// Filter is a conjunction of optional predicates. The zero value matches everything.
type Filter struct {
	// Category is an exact, case-sensitive match.
	Category *string

	// From is an inclusive lower bound on the expense date.
	From *time.Time

	// Before is an exclusive upper bound on the expense date.
	Before *time.Time
}

// All matches every expense.
func All() Filter {
	return Filter{}
}

// ByCategory matches expenses whose category equals category exactly.
func ByCategory(category string) (Filter, error) {
	if strings.TrimSpace(category) == "" {
		return Filter{}, domain.NewValidationError("category", "category must not be empty")
	}
	return Filter{Category: &category}, nil
}

// ByDateRange matches expenses dated on any calendar day from start through end.
//
// The upper bound is the start of the day after end, used exclusively, so a
// record stored at any time of day on end is included.
func ByDateRange(start, end string) (Filter, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return Filter{}, domain.NewValidationError("start,end", "start and end dates are required (YYYY-MM-DD)")
	}
	from, err := domain.ParseDate("start", start)
	if err != nil {
		return Filter{}, err
	}
	to, err := domain.ParseDate("end", end)
	if err != nil {
		return Filter{}, err
	}

	from = startOfDay(from)
	before := startOfDay(to).AddDate(0, 0, 1)
	return Filter{From: &from, Before: &before}, nil
}

// IsEmpty reports whether the filter has no predicates.
func (f Filter) IsEmpty() bool {
	return f.Category == nil && f.From == nil && f.Before == nil
}

// Matches evaluates the filter in memory.
func (f Filter) Matches(e domain.Expense) bool {
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.Before != nil && !e.Date.Before(*f.Before) {
		return false
	}
	return true
}

// NewestFirst orders expenses by date descending, then by creation time
// descending. It is suitable for slices.SortStableFunc.
func NewestFirst(a, b domain.Expense) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
