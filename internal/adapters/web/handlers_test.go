package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-manager/internal/app"
	"inventory-manager/internal/core"
)

const testSecret = "test-secret"

// fakeApp implements the parts of app.ApplicationService the tests touch.
// Calling anything else panics through the nil embedded interface.
type fakeApp struct {
	app.ApplicationService

	healthErr  error
	companies  map[string]int
	lastStatus *core.OrderStatus
	lastLimit  int
	lowStock   bool
	fulfillErr error
	fulfilled  [3]int
	contactErr error
	lastKind   app.ContactKind
}

func newFakeApp() *fakeApp {
	return &fakeApp{companies: map[string]int{"user-1": 7}}
}

func (f *fakeApp) Health(context.Context) error { return f.healthErr }

func (f *fakeApp) ResolveCompany(_ context.Context, userID string) (int, error) {
	if id, ok := f.companies[userID]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("user %s has no company: %w", userID, core.ErrNotFound)
}

func (f *fakeApp) CreateCompany(_ context.Context, userID string, in core.CompanyInput) (*core.Company, error) {
	if _, ok := f.companies[userID]; ok {
		return nil, fmt.Errorf("user %s already has a company: %w", userID, core.ErrAlreadyExists)
	}
	f.companies[userID] = 8
	return &core.Company{ID: 8, Name: in.Name, Email: in.Email}, nil
}

func (f *fakeApp) ListProducts(_ context.Context, companyID int, lowStockOnly bool) (*app.ProductListResult, error) {
	f.lowStock = lowStockOnly
	return &app.ProductListResult{Products: []core.ProductWithStock{
		{Product: core.Product{ID: 1, CompanyID: companyID, SKU: "SKU-1", Name: "Widget"}, TotalStock: 3, LowStock: true},
	}}, nil
}

func (f *fakeApp) ListMovements(_ context.Context, _, limit int) (*app.MovementListResult, error) {
	f.lastLimit = limit
	return &app.MovementListResult{Movements: []core.StockMovementView{}, Limit: limit}, nil
}

func (f *fakeApp) ListSalesOrders(_ context.Context, _ int, status *core.OrderStatus) (*app.OrderListResult, error) {
	f.lastStatus = status
	return &app.OrderListResult{Orders: []core.SalesOrder{}}, nil
}

func (f *fakeApp) FulfillSalesOrder(_ context.Context, companyID, id, warehouseID int) (*core.Fulfillment, error) {
	if f.fulfillErr != nil {
		return nil, f.fulfillErr
	}
	f.fulfilled = [3]int{companyID, id, warehouseID}
	return &core.Fulfillment{Order: &core.SalesOrder{ID: id, Status: core.OrderShipped}, WarehouseID: warehouseID}, nil
}

func (f *fakeApp) ListWarehouses(_ context.Context, companyID int) (*app.WarehouseListResult, error) {
	return &app.WarehouseListResult{Warehouses: []core.Warehouse{{ID: 1, CompanyID: companyID, Name: "Main"}}}, nil
}

func (f *fakeApp) ListContacts(_ context.Context, kind app.ContactKind, companyID int) (*app.ContactListResult, error) {
	f.lastKind = kind
	return &app.ContactListResult{Kind: kind, Contacts: []core.Contact{{ID: 2, CompanyID: companyID, Name: "Acme"}}}, nil
}

func (f *fakeApp) DeleteContact(_ context.Context, kind app.ContactKind, _, _ int) error {
	f.lastKind = kind
	return f.contactErr
}

func (f *fakeApp) GetStockLevel(_ context.Context, _, productID, warehouseID int) (*core.StockLevel, error) {
	return &core.StockLevel{ProductID: productID, WarehouseID: warehouseID, Quantity: 42}, nil
}

func (f *fakeApp) AdjustStock(context.Context, int, core.AdjustmentInput) (*core.StockLevel, error) {
	panic("boom")
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func newTestHandler(t *testing.T, svc *fakeApp, cfg Config) http.Handler {
	t.Helper()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	return NewHandler(svc, cfg)
}

func authedRequest(t *testing.T, method, target, body, userID string) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	token, err := IssueToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	svc := newFakeApp()
	h := newTestHandler(t, svc, Config{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	svc.healthErr = errors.New("db down")
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{})

	t.Run("missing token", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/products", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueToken("other-secret", "user-1", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := IssueToken(testSecret, "user-1", -time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
	})

	t.Run("cookie", func(t *testing.T) {
		token, err := IssueToken(testSecret, "user-1", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: token})
		assert.Equal(t, http.StatusOK, serve(h, req).Code)
	})
}

func TestIssueToken_RejectsEmptyInputs(t *testing.T) {
	_, err := IssueToken("", "user-1", time.Hour)
	assert.Error(t, err)
	_, err = IssueToken(testSecret, "", time.Hour)
	assert.Error(t, err)

	token, err := IssueToken(testSecret, "user-1", time.Hour)
	require.NoError(t, err)
	sub, err := parseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestRequireCompany_UnlinkedUserGetsNotFound(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{})

	req := authedRequest(t, http.MethodGet, "/products", "", "stranger")
	req.Header.Set("X-Request-ID", "req-123")
	rec := serve(h, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	body := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, "req-123", body.RequestID)
}

func TestCreateCompany(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{})

	rec := serve(h, authedRequest(t, http.MethodPost, "/companies", `{"name":"Acme","email":"ops@acme.test"}`, "stranger"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	var c core.Company
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Equal(t, "Acme", c.Name)

	rec = serve(h, authedRequest(t, http.MethodPost, "/companies", `{"name":"Again","email":"x@y.test"}`, "stranger"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeError(t, rec).Code)

	// The new company is resolvable on tenant routes straight away.
	rec = serve(h, authedRequest(t, http.MethodGet, "/products", "", "stranger"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListProducts_LowStockFilter(t *testing.T) {
	svc := newFakeApp()
	h := newTestHandler(t, svc, Config{})

	rec := serve(h, authedRequest(t, http.MethodGet, "/products?lowStock=true", "", "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.lowStock)

	var body struct {
		Products []core.ProductWithStock `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, 7, body.Products[0].CompanyID)

	rec = serve(h, authedRequest(t, http.MethodGet, "/products?lowStock=maybe", "", "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMovements_Limit(t *testing.T) {
	svc := newFakeApp()
	h := newTestHandler(t, svc, Config{})

	tests := []struct {
		query     string
		wantCode  int
		wantLimit int
	}{
		{"", http.StatusOK, 0},
		{"?limit=25", http.StatusOK, 25},
		{"?limit=abc", http.StatusBadRequest, 0},
		{"?limit=-1", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			svc.lastLimit = 0
			rec := serve(h, authedRequest(t, http.MethodGet, "/stock/movements"+tt.query, "", "user-1"))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLimit, svc.lastLimit)
		})
	}
}

func TestListRoutes_WrapInEnvelope(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{})

	tests := []struct {
		path string
		key  string
		want int
	}{
		{"/warehouses", "warehouses", 1},
		{"/customers", "customers", 1},
		{"/suppliers", "suppliers", 1},
		{"/products", "products", 1},
		{"/stock/movements", "movements", 0},
		{"/sales-orders", "orders", 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(h, authedRequest(t, http.MethodGet, tt.path, "", "user-1"))
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]json.RawMessage
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			raw, ok := body[tt.key]
			require.True(t, ok, "missing %q in %v", tt.key, body)

			var items []json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &items))
			assert.Len(t, items, tt.want)
		})
	}
}

func TestGetStockLevel_PathParams(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{})

	rec := serve(h, authedRequest(t, http.MethodGet, "/stock/levels/3/4", "", "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var level core.StockLevel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&level))
	assert.Equal(t, 3, level.ProductID)
	assert.Equal(t, 4, level.WarehouseID)
	assert.Equal(t, 42, level.Quantity)

	rec = serve(h, authedRequest(t, http.MethodGet, "/stock/levels/x/4", "", "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSalesOrders_StatusFilter(t *testing.T) {
	svc := newFakeApp()
	h := newTestHandler(t, svc, Config{})

	rec := serve(h, authedRequest(t, http.MethodGet, "/sales-orders?status=confirmed", "", "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastStatus)
	assert.Equal(t, core.OrderConfirmed, *svc.lastStatus)

	svc.lastStatus = nil
	rec = serve(h, authedRequest(t, http.MethodGet, "/sales-orders", "", "user-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastStatus)

	rec = serve(h, authedRequest(t, http.MethodGet, "/sales-orders?status=lost", "", "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFulfillSalesOrder(t *testing.T) {
	svc := newFakeApp()
	h := newTestHandler(t, svc, Config{})

	rec := serve(h, authedRequest(t, http.MethodPost, "/sales-orders/12/fulfill", `{"warehouseId":3}`, "user-1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, [3]int{7, 12, 3}, svc.fulfilled)

	rec = serve(h, authedRequest(t, http.MethodPost, "/sales-orders/12/fulfill", `{}`, "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.fulfillErr = fmt.Errorf("order 12 is pending: %w", core.ErrFailedPrecondition)
	rec = serve(h, authedRequest(t, http.MethodPost, "/sales-orders/12/fulfill", `{"warehouseId":3}`, "user-1"))
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "FAILED_PRECONDITION", decodeError(t, rec).Code)
}

func TestContactRoutes_UseTheirDirectory(t *testing.T) {
	svc := newFakeApp()
	h := newTestHandler(t, svc, Config{})

	rec := serve(h, authedRequest(t, http.MethodDelete, "/suppliers/5", "", "user-1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, app.Suppliers, svc.lastKind)

	svc.contactErr = fmt.Errorf("customer 5: %w", core.ErrNotFound)
	rec = serve(h, authedRequest(t, http.MethodDelete, "/customers/5", "", "user-1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, app.Customers, svc.lastKind)
}

func TestRequestBodyLimit(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{MaxBodyBytes: 16})

	body := `{"warehouseId":3,"padding":"` + strings.Repeat("x", 64) + `"}`
	rec := serve(h, authedRequest(t, http.MethodPost, "/sales-orders/12/fulfill", body, "user-1"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecoverer(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{})

	rec := serve(h, authedRequest(t, http.MethodPost, "/stock/adjust", `{"productId":1,"warehouseId":1,"quantity":1}`, "user-1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Code)
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("product 9: %w", core.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"already exists", fmt.Errorf("sku: %w", core.ErrAlreadyExists), http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid", fmt.Errorf("empty patch: %w", core.ErrInvalidArgument), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"precondition", fmt.Errorf("not confirmed: %w", core.ErrFailedPrecondition), http.StatusPreconditionFailed, "FAILED_PRECONDITION"},
		{"internal", fmt.Errorf("insert returned no row: %w", core.ErrInternal), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unclassified", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Error)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{AllowedOrigins: []string{"https://app.example.test"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.test")
	rec := serve(h, req)
	assert.Equal(t, "https://app.example.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.test")
	rec = serve(h, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint_UsesRoutePatterns(t *testing.T) {
	h := newTestHandler(t, newFakeApp(), Config{})

	serve(h, authedRequest(t, http.MethodGet, "/stock/levels/3/4", "", "user-1"))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "inventory_http_requests_total")
	assert.Contains(t, body, `route="/stock/levels/{productId}/{warehouseId}"`)
	assert.NotContains(t, body, `route="/stock/levels/3/4"`)
}
