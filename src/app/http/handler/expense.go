package handler

import (
	"encoding/json"
	"errors"
	"reflect"

	"github.com/gin-gonic/gin"

	"expensetracker/src/app/http/dto"
	"expensetracker/src/app/http/response"
	"expensetracker/src/app/middleware"
	"expensetracker/src/core/usecase"
)

// ExpenseHandler handles the /api/expenses endpoints.
type ExpenseHandler struct {
	expenseService *usecase.ExpenseService
}

func NewExpenseHandler(expenseService *usecase.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create stores a new expense.
// POST /api/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	req, ok := bindExpense(c)
	if !ok {
		return
	}

	e, err := h.expenseService.Create(c.Request.Context(), req.ToRaw())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, "expense created", dto.ExpenseFromDomain(e))
}

// List returns every expense, newest first.
// GET /api/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	items, err := h.expenseService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OKList(c, dto.ExpensesFromDomain(items))
}

// Get returns one expense.
// GET /api/expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	e, err := h.expenseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, dto.ExpenseFromDomain(e))
}

// Total sums all expense amounts.
// GET /api/expenses/total
func (h *ExpenseHandler) Total(c *gin.Context) {
	total, err := h.expenseService.Total(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, dto.TotalFromDomain(total))
}

// ByCategory lists expenses in one category.
// GET /api/expenses/category/:category
func (h *ExpenseHandler) ByCategory(c *gin.Context) {
	items, err := h.expenseService.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OKList(c, dto.ExpensesFromDomain(items))
}

// ByDateRange lists expenses dated between start and end, both days included.
// GET /api/expenses/date?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *ExpenseHandler) ByDateRange(c *gin.Context) {
	items, err := h.expenseService.ByDateRange(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OKList(c, dto.ExpensesFromDomain(items))
}

// Update changes the supplied fields of an expense.
// PUT /api/expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	req, ok := bindExpense(c)
	if !ok {
		return
	}

	e, err := h.expenseService.Update(c.Request.Context(), c.Param("id"), req.ToRaw())
	if err != nil {
		fail(c, err)
		return
	}
	response.OKMessage(c, "expense updated", dto.ExpenseFromDomain(e))
}

// Delete removes an expense.
// DELETE /api/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := h.expenseService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OKMessage(c, "expense deleted", dto.DeletedResponse{ID: id.String()})
}

// bindExpense decodes the request body. A field of the wrong JSON type is
// reported against that field.
func bindExpense(c *gin.Context) (dto.ExpenseRequest, bool) {
	var req dto.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestID := middleware.GetRequestID(c)
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			response.ValidationError(c, typeErr.Field, typeErr.Field+" must be a "+jsonKind(typeErr.Type), requestID)
		} else {
			response.BadRequest(c, "invalid JSON payload", requestID)
		}
		return req, false
	}
	return req, true
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.String:
		return "string"
	}
	return "valid value"
}

func fail(c *gin.Context, err error) {
	// Attach error for middleware logging
	c.Error(err)
	response.FromDomainError(c, err, middleware.GetRequestID(c))
}
