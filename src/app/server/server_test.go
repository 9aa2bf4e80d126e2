package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/src/core/domain"
	"expensetracker/src/core/ports"
	"expensetracker/src/core/query"
	"expensetracker/src/infra/config"
	"expensetracker/src/infra/logger"
	"expensetracker/src/infra/repo"
)

type envelope struct {
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Field     string `json:"field"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

type expenseJSON struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 4000, CORSOrigin: "*", WebEnabled: true},
		Store:  config.StoreConfig{Driver: config.StoreMemory},
		Log:    config.LogConfig{Level: "error", Format: "json"},
	}
}

func newTestServer(t *testing.T, store ports.ExpenseRepository) http.Handler {
	t.Helper()
	if store == nil {
		store = repo.NewMemoryRepository()
	}
	return New(testConfig(), logger.Discard(), store, nil).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeExpense(t *testing.T, raw json.RawMessage) expenseJSON {
	t.Helper()
	var e expenseJSON
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func decodeExpenses(t *testing.T, raw json.RawMessage) []expenseJSON {
	t.Helper()
	var items []expenseJSON
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

func create(t *testing.T, h http.Handler, title string, amount float64, category, date string) expenseJSON {
	t.Helper()
	body, err := json.Marshal(map[string]any{"title": title, "amount": amount, "category": category, "date": date})
	require.NoError(t, err)
	rec, env := do(t, h, http.MethodPost, "/api/expenses", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeExpense(t, env.Data)
}

func TestCoffeeScenario(t *testing.T) {
	h := newTestServer(t, nil)

	rec, env := do(t, h, http.MethodPost, "/api/expenses",
		`{"title":"Coffee","amount":5,"category":"Food","date":"2024-01-10"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "expense created", env.Message)
	coffee := decodeExpense(t, env.Data)
	_, err := uuid.Parse(coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", coffee.Title)
	assert.Equal(t, "5", coffee.Amount.String())
	assert.Equal(t, "2024-01-10", coffee.Date)

	rec, env = do(t, h, http.MethodGet, "/api/expenses/category/Food", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
	items := decodeExpenses(t, env.Data)
	require.Len(t, items, 1)
	assert.Equal(t, coffee.ID, items[0].ID)

	rec, _ = do(t, h, http.MethodGet, "/api/expenses/total", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"total":5}}`, rec.Body.String())

	rec, env = do(t, h, http.MethodDelete, "/api/expenses/"+coffee.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expense deleted", env.Message)
	assert.JSONEq(t, `{"id":"`+coffee.ID+`"}`, string(env.Data))

	rec, env = do(t, h, http.MethodGet, "/api/expenses/"+coffee.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "expense not found", env.Error.Message)
}

func TestCreate_ValidationFailures(t *testing.T) {
	h := newTestServer(t, nil)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing date", `{"title":"Coffee","amount":5,"category":"Food"}`, "date"},
		{"missing everything", `{}`, "title,amount,category,date"},
		{"zero amount", `{"title":"Coffee","amount":0,"category":"Food","date":"2024-01-10"}`, "amount"},
		{"negative amount", `{"title":"Coffee","amount":-3,"category":"Food","date":"2024-01-10"}`, "amount"},
		{"amount as text", `{"title":"Coffee","amount":"five","category":"Food","date":"2024-01-10"}`, "amount"},
		{"blank title", `{"title":"  ","amount":5,"category":"Food","date":"2024-01-10"}`, "title"},
		{"bad date", `{"title":"Coffee","amount":5,"category":"Food","date":"10/01/2024"}`, "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPost, "/api/expenses", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			assert.Equal(t, tc.field, env.Error.Field)
			assert.NotEmpty(t, env.Error.RequestID)
		})
	}

	rec, env := do(t, h, http.MethodPost, "/api/expenses", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	_, env = do(t, h, http.MethodGet, "/api/expenses", "")
	assert.Equal(t, 0, *env.Count)
}

func TestMalformedIDIs400(t *testing.T) {
	h := newTestServer(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		body := ""
		if method == http.MethodPut {
			body = `{"title":"x"}`
		}
		rec, env := do(t, h, method, "/api/expenses/507f1f77bcf86cd799439011", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		require.NotNil(t, env.Error)
		assert.Equal(t, "id", env.Error.Field)
	}
}

func TestUnknownIDIs404(t *testing.T) {
	h := newTestServer(t, nil)
	id := uuid.NewString()

	rec, _ := do(t, h, http.MethodPut, "/api/expenses/"+id, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/api/expenses/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSortedNewestFirst(t *testing.T) {
	h := newTestServer(t, nil)
	create(t, h, "old", 1, "Food", "2024-01-01")
	create(t, h, "new", 1, "Food", "2024-03-01")
	create(t, h, "mid", 1, "Travel", "2024-02-01")

	rec, env := do(t, h, http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, *env.Count)

	var titles []string
	for _, e := range decodeExpenses(t, env.Data) {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, titles)
}

func TestDateRange(t *testing.T) {
	h := newTestServer(t, nil)
	create(t, h, "first", 1, "Food", "2024-01-01")
	create(t, h, "last-day-evening", 1, "Food", "2024-01-31T21:30:00Z")
	create(t, h, "outside", 1, "Food", "2024-02-01")

	for _, path := range []string{"/api/expenses/date", "/api/expenses/range"} {
		rec, env := do(t, h, http.MethodGet, path+"?start=2024-01-01&end=2024-01-31", "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		items := decodeExpenses(t, env.Data)
		require.Len(t, items, 2, path)
		assert.Equal(t, "last-day-evening", items[0].Title)
		assert.Equal(t, "2024-01-31T21:30:00Z", items[0].Date)
		assert.Equal(t, "first", items[1].Title)
	}

	rec, env := do(t, h, http.MethodGet, "/api/expenses/range?start=2023-01-01&end=2023-12-31", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, *env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, env = do(t, h, http.MethodGet, "/api/expenses/range?start=2024-01-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "start,end", env.Error.Field)

	rec, _ = do(t, h, http.MethodGet, "/api/expenses/range?start=2024-01-01&end=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryIsExactMatch(t *testing.T) {
	h := newTestServer(t, nil)
	create(t, h, "Coffee", 5, "Food", "2024-01-10")

	rec, env := do(t, h, http.MethodGet, "/api/expenses/category/food", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, *env.Count)
}

func TestCategoryWithEncodedSlash(t *testing.T) {
	h := newTestServer(t, nil)
	create(t, h, "Latte", 4, "Food/Drinks", "2024-01-10")
	create(t, h, "Bread", 2, "Food", "2024-01-11")

	rec, env := do(t, h, http.MethodGet, "/api/expenses/category/Food%2FDrinks", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, *env.Count)
	items := decodeExpenses(t, env.Data)
	require.Len(t, items, 1)
	assert.Equal(t, "Latte", items[0].Title)
	assert.Equal(t, "Food/Drinks", items[0].Category)

	rec, env = do(t, h, http.MethodGet, "/api/expenses/category/Food%20Court", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, *env.Count)
}

func TestUpdate(t *testing.T) {
	h := newTestServer(t, nil)
	coffee := create(t, h, "Coffee", 5, "Food", "2024-01-10")

	rec, env := do(t, h, http.MethodPut, "/api/expenses/"+coffee.ID, `{"amount":4.25,"id":"ignored","owner":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expense updated", env.Message)
	updated := decodeExpense(t, env.Data)
	assert.Equal(t, coffee.ID, updated.ID)
	assert.Equal(t, "Coffee", updated.Title)
	assert.Equal(t, "4.25", updated.Amount.String())
	assert.Equal(t, "2024-01-10", updated.Date)

	rec, env = do(t, h, http.MethodPut, "/api/expenses/"+coffee.ID, `{"amount":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount", env.Error.Field)

	rec, _ = do(t, h, http.MethodPut, "/api/expenses/"+coffee.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/expenses/"+coffee.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4.25", decodeExpense(t, env.Data).Amount.String())
}

func TestTotalIsExact(t *testing.T) {
	h := newTestServer(t, nil)

	rec, _ := do(t, h, http.MethodGet, "/api/expenses/total", "")
	assert.JSONEq(t, `{"data":{"total":0}}`, rec.Body.String())

	create(t, h, "a", 0.1, "Food", "2024-01-01")
	create(t, h, "b", 0.2, "Food", "2024-01-02")

	rec, _ = do(t, h, http.MethodGet, "/api/expenses/total", "")
	assert.JSONEq(t, `{"data":{"total":0.3}}`, rec.Body.String())
}

func TestAmountKeepsEveryDigit(t *testing.T) {
	h := newTestServer(t, nil)

	rec, env := do(t, h, http.MethodPost, "/api/expenses",
		`{"title":"Invoice","amount":12345678901234567.89,"category":"Work","date":"2024-01-10"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeExpense(t, env.Data)
	assert.Equal(t, "12345678901234567.89", created.Amount.String())

	rec, env = do(t, h, http.MethodGet, "/api/expenses/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345678901234567.89", decodeExpense(t, env.Data).Amount.String())

	rec, _ = do(t, h, http.MethodGet, "/api/expenses/total", "")
	assert.Contains(t, rec.Body.String(), `"total":12345678901234567.89`)

	rec, env = do(t, h, http.MethodPut, "/api/expenses/"+created.ID, `{"amount":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "amount", env.Error.Field)

	rec, env = do(t, h, http.MethodPut, "/api/expenses/"+created.ID, `{"amount":null,"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "12345678901234567.89", decodeExpense(t, env.Data).Amount.String())
}

// failingStore answers every call with a driver-level failure.
type failingStore struct{ ports.ExpenseRepository }

var errDown = errors.New("dial tcp: connection refused")

func (failingStore) Health(context.Context) error { return errDown }
func (failingStore) Find(context.Context, query.Filter) ([]domain.Expense, error) {
	return nil, errDown
}
func (failingStore) SumAmount(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, errDown
}

func TestStoreFailureIs500WithoutDetail(t *testing.T) {
	h := newTestServer(t, failingStore{})

	for _, path := range []string{"/api/expenses", "/api/expenses/total"} {
		rec, env := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	}

	rec, _ := do(t, h, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndMiddleware(t *testing.T) {
	h := newTestServer(t, nil)

	rec, _ := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec, _ = do(t, h, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","components":{"store":{"status":"healthy"}}}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rec, env := do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestWebPage(t *testing.T) {
	h := newTestServer(t, nil)

	rec, _ := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Expense Tracker</title>")

	rec, _ = do(t, h, http.MethodGet, "/static/script.js", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte(`"/api/expenses"`)))
}
