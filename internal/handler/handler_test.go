package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imperialessence/essence-backend/internal/domain/discount"
	"github.com/imperialessence/essence-backend/internal/domain/order"
	"github.com/imperialessence/essence-backend/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	products  []product.Product
	searchErr error
	lastName  string
	lastBrand string
}

func (m *mockProductRepo) Search(_ context.Context, name, brand string) ([]product.Product, error) {
	m.lastName, m.lastBrand = name, brand
	return m.products, m.searchErr
}

func (m *mockProductRepo) GetByID(_ context.Context, _ string) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) Create(_ context.Context, p product.Product) (*product.Product, error) {
	return &p, nil
}

func (m *mockProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

type mockOrderPlacer struct {
	lastReq order.PlaceOrderRequest
	order   *order.Order
	err     error
}

func (m *mockOrderPlacer) PlaceOrder(_ context.Context, req order.PlaceOrderRequest) (*order.Order, error) {
	m.lastReq = req
	return m.order, m.err
}

type mockSeeder struct {
	inserted int
	err      error
}

func (m *mockSeeder) Run(_ context.Context) (int, error) {
	return m.inserted, m.err
}

type mockStore struct {
	pingErr     error
	collections []string
	counts      map[string]int64
	revenue     decimal.Decimal
}

func (m *mockStore) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockStore) Collections(_ context.Context) ([]string, error) {
	return m.collections, nil
}

func (m *mockStore) Count(_ context.Context, collection string) (int64, error) {
	return m.counts[collection], nil
}

func (m *mockStore) SumNumeric(_ context.Context, _, _ string) (decimal.Decimal, error) {
	return m.revenue, nil
}

// --- Helpers ---

type testDeps struct {
	products *mockProductRepo
	orders   *mockOrderPlacer
	seeder   *mockSeeder
	store    *mockStore
}

func newTestHandler(deps *testDeps) *Handler {
	return New(
		Config{DatabaseURLSet: true, DatabaseName: "imperial_essence"},
		deps.products,
		discount.New(),
		deps.orders,
		deps.seeder,
		deps.store,
	)
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{products: []product.Product{
			{
				ID:       "p1",
				Name:     "Oud Royale",
				Brand:    "Imperial House",
				Category: "fragrance",
				Price:    decimal.RequireFromString("320.00"),
				Stock:    12,
				Notes:    []string{"Oud", "Rose", "Saffron"},
			},
		}},
		orders: &mockOrderPlacer{},
		seeder: &mockSeeder{},
		store:  &mockStore{},
	}
	rec := serve(newTestHandler(deps), http.MethodGet, "/products?q=oud&brand=imperial", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "oud", deps.products.lastName)
	assert.Equal(t, "imperial", deps.products.lastBrand)

	var got []map[string]any
	decodeBody(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0]["id"])
	assert.Equal(t, "Oud Royale", got[0]["name"])
	assert.InDelta(t, 320.0, got[0]["price"], 1e-9)
	assert.Equal(t, []any{"Oud", "Rose", "Saffron"}, got[0]["notes"])
	// Optional fields absent when empty.
	assert.NotContains(t, got[0], "description")
	assert.NotContains(t, got[0], "image")
}

func TestListProducts_StoreError(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{searchErr: errors.New("connection refused")},
		orders:   &mockOrderPlacer{},
		seeder:   &mockSeeder{},
		store:    &mockStore{},
	}
	rec := serve(newTestHandler(deps), http.MethodGet, "/products", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCheckDiscount_Valid(t *testing.T) {
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{}, seeder: &mockSeeder{}, store: &mockStore{}}
	rec := serve(newTestHandler(deps), http.MethodPost, "/discount", `{"code": " oud15 "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Valid   bool    `json:"valid"`
		Percent float64 `json:"percent"`
	}
	decodeBody(t, rec, &got)
	assert.True(t, got.Valid)
	assert.InDelta(t, 0.15, got.Percent, 1e-9)
}

func TestCheckDiscount_Unknown(t *testing.T) {
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{}, seeder: &mockSeeder{}, store: &mockStore{}}
	rec := serve(newTestHandler(deps), http.MethodPost, "/discount", `{"code": "BOGUS"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Valid   bool    `json:"valid"`
		Percent float64 `json:"percent"`
	}
	decodeBody(t, rec, &got)
	assert.False(t, got.Valid)
	assert.Zero(t, got.Percent)
}

func TestCheckDiscount_BadBody(t *testing.T) {
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{}, seeder: &mockSeeder{}, store: &mockStore{}}
	rec := serve(newTestHandler(deps), http.MethodPost, "/discount", `{"code": 12`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	placed := &order.Order{
		ID: "o1",
		Items: []order.LineItem{
			{ProductID: "p1", Name: "Oud Royale", Price: decimal.RequireFromString("100.00"), Quantity: 2},
		},
		Subtotal:       decimal.RequireFromString("200.00"),
		DiscountCode:   "OUD15",
		DiscountAmount: decimal.RequireFromString("30.00"),
		Total:          decimal.RequireFromString("170.00"),
	}
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{order: placed}, seeder: &mockSeeder{}, store: &mockStore{}}

	body := `{
		"items": [{"product_id": "p1", "quantity": 2}],
		"discount_code": "OUD15",
		"customer_name": "Amina K"
	}`
	rec := serve(newTestHandler(deps), http.MethodPost, "/order", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	// Request decoded into the domain form.
	require.Len(t, deps.orders.lastReq.Items, 1)
	assert.Equal(t, order.CartItem{ProductID: "p1", Quantity: 2}, deps.orders.lastReq.Items[0])
	assert.Equal(t, "OUD15", deps.orders.lastReq.DiscountCode)
	assert.Equal(t, "Amina K", deps.orders.lastReq.CustomerName)

	var got map[string]any
	decodeBody(t, rec, &got)
	assert.Equal(t, "o1", got["id"])
	assert.InDelta(t, 200.0, got["subtotal"], 1e-9)
	assert.Equal(t, "OUD15", got["discount_code"])
	assert.InDelta(t, 30.0, got["discount_amount"], 1e-9)
	assert.InDelta(t, 170.0, got["total"], 1e-9)
}

func TestPlaceOrder_NoDiscountEchoesNull(t *testing.T) {
	placed := &order.Order{
		ID:       "o1",
		Subtotal: decimal.RequireFromString("100.00"),
		Total:    decimal.RequireFromString("100.00"),
	}
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{order: placed}, seeder: &mockSeeder{}, store: &mockStore{}}

	rec := serve(newTestHandler(deps), http.MethodPost, "/order", `{"items": [{"product_id": "p1", "quantity": 1}], "discount_code": "BOGUS"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got map[string]any
	decodeBody(t, rec, &got)
	val, present := got["discount_code"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestPlaceOrder_InvalidProduct(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{},
		orders:   &mockOrderPlacer{err: &order.InvalidProductError{ProductID: "ghost"}},
		seeder:   &mockSeeder{},
		store:    &mockStore{},
	}
	rec := serve(newTestHandler(deps), http.MethodPost, "/order", `{"items": [{"product_id": "ghost", "quantity": 1}]}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var got struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &got)
	assert.Contains(t, got.Message, "ghost")
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{},
		orders:   &mockOrderPlacer{err: order.ErrEmptyItems},
		seeder:   &mockSeeder{},
		store:    &mockStore{},
	}
	rec := serve(newTestHandler(deps), http.MethodPost, "/order", `{"items": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{},
		orders:   &mockOrderPlacer{err: &order.InvalidQuantityError{ProductID: "p1"}},
		seeder:   &mockSeeder{},
		store:    &mockStore{},
	}
	rec := serve(newTestHandler(deps), http.MethodPost, "/order", `{"items": [{"product_id": "p1", "quantity": 0}]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{}, seeder: &mockSeeder{}, store: &mockStore{}}
	rec := serve(newTestHandler(deps), http.MethodPost, "/order", `{"items": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeed(t *testing.T) {
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{}, seeder: &mockSeeder{inserted: 4}, store: &mockStore{}}
	rec := serve(newTestHandler(deps), http.MethodPost, "/seed", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Seeded   bool `json:"seeded"`
		Inserted int  `json:"inserted"`
	}
	decodeBody(t, rec, &got)
	assert.True(t, got.Seeded)
	assert.Equal(t, 4, got.Inserted)
}

func TestSeed_AlreadySeeded(t *testing.T) {
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{}, seeder: &mockSeeder{inserted: 0}, store: &mockStore{}}
	rec := serve(newTestHandler(deps), http.MethodPost, "/seed", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Seeded   bool `json:"seeded"`
		Inserted int  `json:"inserted"`
	}
	decodeBody(t, rec, &got)
	assert.False(t, got.Seeded)
	assert.Zero(t, got.Inserted)
}

func TestStatus_Healthy(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{},
		orders:   &mockOrderPlacer{},
		seeder:   &mockSeeder{},
		store:    &mockStore{collections: []string{"order", "product"}},
	}
	rec := serve(newTestHandler(deps), http.MethodGet, "/test", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	decodeBody(t, rec, &got)
	assert.Equal(t, "running", got["backend"])
	assert.Equal(t, "available", got["database"])
	assert.Equal(t, "connected", got["connection_status"])
	assert.Equal(t, []any{"order", "product"}, got["collections"])
}

func TestStatus_DegradesOnStoreFailure(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{},
		orders:   &mockOrderPlacer{},
		seeder:   &mockSeeder{},
		store:    &mockStore{pingErr: errors.New("dial tcp: connection refused")},
	}
	rec := serve(newTestHandler(deps), http.MethodGet, "/test", "")

	// Still 200: the status endpoint reports errors instead of failing.
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	decodeBody(t, rec, &got)
	assert.Equal(t, "unavailable", got["database"])
	assert.Equal(t, "not connected", got["connection_status"])
	assert.Contains(t, got["error"], "connection refused")
}

func TestStats(t *testing.T) {
	deps := &testDeps{
		products: &mockProductRepo{},
		orders:   &mockOrderPlacer{},
		seeder:   &mockSeeder{},
		store: &mockStore{
			counts:  map[string]int64{"product": 4, "order": 2},
			revenue: decimal.RequireFromString("490.00"),
		},
	}
	rec := serve(newTestHandler(deps), http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Products int64   `json:"products"`
		Orders   int64   `json:"orders"`
		Revenue  float64 `json:"revenue"`
	}
	decodeBody(t, rec, &got)
	assert.EqualValues(t, 4, got.Products)
	assert.EqualValues(t, 2, got.Orders)
	assert.InDelta(t, 490.0, got.Revenue, 1e-9)
}

func TestRoot(t *testing.T) {
	deps := &testDeps{products: &mockProductRepo{}, orders: &mockOrderPlacer{}, seeder: &mockSeeder{}, store: &mockStore{}}
	rec := serve(newTestHandler(deps), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Imperial Essence")
}
