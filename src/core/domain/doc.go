// Package domain contains the expense entity, its validation rules and
// domain-specific errors.
//
// This package defines:
//   - Expense: the single persisted entity
//   - ExpenseFields / ExpensePatch: validated create and update payloads
//   - RawExpense: caller input before validation
//   - DomainError: validation, not-found and store failures
//
// Rules for this package:
//   - No infrastructure concerns (database, HTTP, etc.)
//   - Validation happens here, before any store round-trip
//   - Identifiers are UUIDs; amounts are decimals
//
// Example:
//
//	fields, err := domain.RawExpense{
//	    Title:    &title,
//	    Amount:   &amount,
//	    Category: &category,
//	    Date:     &date,
//	}.Fields()
//	if err != nil {
//	    return err // *DomainError wrapping ErrInvalidInput
//	}
package domain
