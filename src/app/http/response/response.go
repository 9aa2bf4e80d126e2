// Package response defines consistent HTTP response structures.
// All API responses should use these types for consistency.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expensetracker/src/core/domain"
)

// Success represents a successful response with data. Lists carry a count
// and mutations carry a short message.
type Success struct {
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data"`
}

// Error represents an error response.
type Error struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Field is the field that caused the error (for validation errors)
	Field string `json:"field,omitempty"`

	// RequestID is the request ID for debugging
	RequestID string `json:"request_id,omitempty"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success{Data: data})
}

// OKList sends a 200 response with a list and its length.
func OKList[T any](c *gin.Context, items []T) {
	n := len(items)
	c.JSON(http.StatusOK, Success{Count: &n, Data: items})
}

// OKMessage sends a 200 response for a completed mutation.
func OKMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Success{Message: message, Data: data})
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Success{Message: message, Data: data})
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string, requestID string) {
	c.JSON(http.StatusBadRequest, Error{
		Error: ErrorDetail{
			Code:      "BAD_REQUEST",
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ValidationError sends a 400 response for validation failures.
func ValidationError(c *gin.Context, field, message, requestID string) {
	c.JSON(http.StatusBadRequest, Error{
		Error: ErrorDetail{
			Code:      "VALIDATION_ERROR",
			Message:   message,
			Field:     field,
			RequestID: requestID,
		},
	})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message, requestID string) {
	c.JSON(http.StatusNotFound, Error{
		Error: ErrorDetail{
			Code:      "NOT_FOUND",
			Message:   message,
			RequestID: requestID,
		},
	})
}

// InternalError sends a 500 response. Details never reach the caller.
func InternalError(c *gin.Context, requestID string) {
	c.JSON(http.StatusInternalServerError, Error{
		Error: ErrorDetail{
			Code:      "INTERNAL_ERROR",
			Message:   "An unexpected error occurred",
			RequestID: requestID,
		},
	})
}

// FromDomainError converts a domain error to an appropriate HTTP response.
// Store failures and unclassified errors become a generic 500.
func FromDomainError(c *gin.Context, err error, requestID string) {
	var domainErr *domain.DomainError
	hasDetail := errors.As(err, &domainErr)

	switch {
	case domain.IsNotFound(err):
		msg := "resource not found"
		if hasDetail && domainErr.Message != "" {
			msg = domainErr.Message + " not found"
		}
		NotFound(c, msg, requestID)
	case domain.IsValidationError(err):
		if hasDetail {
			ValidationError(c, domainErr.Field, domainErr.Message, requestID)
		} else {
			BadRequest(c, err.Error(), requestID)
		}
	default:
		InternalError(c, requestID)
	}
}
