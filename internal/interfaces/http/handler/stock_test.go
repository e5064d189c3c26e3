package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/inventra/backend/internal/application/ledger"
	"github.com/inventra/backend/internal/domain/catalog"
	"github.com/inventra/backend/internal/domain/ledger"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/infrastructure/cache"
	"github.com/inventra/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeProductRepo is a map-backed catalog.ProductRepository
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepo) find(tenantID, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if !p.BelongsTo(tenantID) {
		return nil, shared.ErrCrossTenant
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(tenantID, id)
}

func (r *fakeProductRepo) FindByIDForTenantLocked(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(tenantID, id)
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sku = strings.ToUpper(sku)
	for _, p := range r.products {
		if p.BelongsTo(tenantID) && p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []catalog.Product
	for _, p := range r.products {
		if p.BelongsTo(tenantID) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakeProductRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.products {
		if p.BelongsTo(tenantID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.BelongsTo(tenantID) {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// fakeEntryRepo is an append-only slice of ledger entries
type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*ledger.Entry
}

func (r *fakeEntryRepo) Append(_ context.Context, e *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *e
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *fakeEntryRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			if e.TenantID != tenantID {
				return nil, shared.ErrCrossTenant
			}
			clone := *e
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeEntryRepo) SumForProduct(_ context.Context, tenantID, productID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.ProductID == productID {
			sum += e.QuantityDelta
		}
	}
	return sum, nil
}

func (r *fakeEntryRepo) ListForProduct(_ context.Context, tenantID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[ledger.Entry], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []ledger.Entry
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.ProductID == productID {
			matched = append(matched, *e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RecordedAt.After(matched[j].RecordedAt)
	})
	result := shared.NewPaginated(matched, int64(len(matched)), filter.Page, filter.PageSize)
	return &result, nil
}

func (r *fakeEntryRepo) ListForOrder(_ context.Context, tenantID, orderID uuid.UUID) ([]*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*ledger.Entry
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.OrderID != nil && *e.OrderID == orderID {
			clone := *e
			matched = append(matched, &clone)
		}
	}
	return matched, nil
}

// stockTestEnv wires a real StockService over fakes behind a gin engine
type stockTestEnv struct {
	tenantID  uuid.UUID
	productID uuid.UUID
	engine    *gin.Engine
}

func newStockTestEnv(t *testing.T) *stockTestEnv {
	t.Helper()

	tenantID := uuid.New()
	products := newFakeProductRepo()
	entries := &fakeEntryRepo{}

	product, err := catalog.NewProduct(tenantID, "SKU-100", "Widget", "pcs")
	require.NoError(t, err)
	require.NoError(t, product.SetPricing(decimal.NewFromInt(10), decimal.NewFromInt(25), decimal.NewFromInt(8)))
	require.NoError(t, product.SetThresholds(5, 50))
	require.NoError(t, products.Save(context.Background(), product))

	scope := ledgerapp.NewNoOpTransactionScope(products, entries, nil)
	stock := ledgerapp.NewStockService(scope, nil, nil, nil, nil)

	handler := NewStockHandler(stock)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.TenantContextKey, tenantID.String())
	})
	engine.POST("/products/:id/stock/adjustments", handler.Adjust)
	engine.GET("/products/:id/stock", handler.GetQuantity)
	engine.GET("/products/:id/stock/entries", handler.ListEntries)

	return &stockTestEnv{
		tenantID:  tenantID,
		productID: product.ID,
		engine:    engine,
	}
}

func (env *stockTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func TestStockHandler_AdjustAndGetQuantity(t *testing.T) {
	env := newStockTestEnv(t)

	w := env.do(t, http.MethodPost, "/products/"+env.productID.String()+"/stock/adjustments", gin.H{
		"delta":  10,
		"cause":  "adjustment",
		"reason": "initial stock count",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			QuantityDelta int64  `json:"quantity_delta"`
			BalanceAfter  int64  `json:"balance_after"`
			Cause         string `json:"cause"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, int64(10), created.Data.QuantityDelta)
	assert.Equal(t, int64(10), created.Data.BalanceAfter)

	w = env.do(t, http.MethodGet, "/products/"+env.productID.String()+"/stock", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var quantity struct {
		Data struct {
			Quantity int64 `json:"quantity"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quantity))
	assert.Equal(t, int64(10), quantity.Data.Quantity)
}

func TestStockHandler_InsufficientStockReturns422(t *testing.T) {
	env := newStockTestEnv(t)

	w := env.do(t, http.MethodPost, "/products/"+env.productID.String()+"/stock/adjustments", gin.H{
		"delta":  -3,
		"cause":  "loss",
		"reason": "damaged in transit",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, shared.ErrCodeInsufficientStock, resp.Error.Code)
	assert.EqualValues(t, 0, resp.Error.Details["current_quantity"])
	assert.EqualValues(t, -3, resp.Error.Details["requested_delta"])
}

func TestStockHandler_UnknownProductReturns404(t *testing.T) {
	env := newStockTestEnv(t)

	w := env.do(t, http.MethodGet, "/products/"+uuid.NewString()+"/stock", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStockHandler_BadProductIDReturns400(t *testing.T) {
	env := newStockTestEnv(t)

	w := env.do(t, http.MethodGet, "/products/not-a-uuid/stock", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockHandler_MissingReasonReturns400(t *testing.T) {
	env := newStockTestEnv(t)

	w := env.do(t, http.MethodPost, "/products/"+env.productID.String()+"/stock/adjustments", gin.H{
		"delta": 5,
		"cause": "adjustment",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestStockHandler_DuplicateIdempotencyKeyReturns409(t *testing.T) {
	tenantID := uuid.New()
	products := newFakeProductRepo()
	entries := &fakeEntryRepo{}

	product, err := catalog.NewProduct(tenantID, "SKU-300", "Sprocket", "pcs")
	require.NoError(t, err)
	require.NoError(t, products.Save(context.Background(), product))

	store := cache.NewMemoryIdempotencyStore()
	defer store.Close()

	scope := ledgerapp.NewNoOpTransactionScope(products, entries, nil)
	stock := ledgerapp.NewStockService(scope, store, nil, nil, nil)
	handler := NewStockHandler(stock)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.TenantContextKey, tenantID.String())
	})
	engine.POST("/products/:id/stock/adjustments", handler.Adjust)

	body := gin.H{"delta": 5, "cause": "adjustment", "reason": "recount"}
	path := "/products/" + product.ID.String() + "/stock/adjustments"

	send := func() *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(IdempotencyKeyHeader, "adj-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := send()
	assert.Equal(t, http.StatusConflict, second.Code, second.Body.String())

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, shared.ErrCodeAlreadyExists, resp.Error.Code)
	assert.Len(t, entries.entries, 1)
}

func TestStockHandler_FailedAdjustmentDoesNotConsumeIdempotencyKey(t *testing.T) {
	tenantID := uuid.New()
	products := newFakeProductRepo()
	entries := &fakeEntryRepo{}

	product, err := catalog.NewProduct(tenantID, "SKU-301", "Cog", "pcs")
	require.NoError(t, err)
	require.NoError(t, products.Save(context.Background(), product))

	store := cache.NewMemoryIdempotencyStore()
	defer store.Close()

	scope := ledgerapp.NewNoOpTransactionScope(products, entries, nil)
	stock := ledgerapp.NewStockService(scope, store, nil, nil, nil)
	handler := NewStockHandler(stock)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.TenantContextKey, tenantID.String())
	})
	engine.POST("/products/:id/stock/adjustments", handler.Adjust)

	path := "/products/" + product.ID.String() + "/stock/adjustments"
	send := func(delta int64) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(gin.H{
			"delta": delta, "cause": "loss", "reason": "cycle count",
		}))
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(IdempotencyKeyHeader, "adj-retry-1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	// seed a balance of 5 without a key
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(gin.H{
		"delta": 5, "cause": "purchase", "reason": "opening balance",
	}))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// overdrawn adjustment fails and must hand the key back
	failed := send(-10)
	require.Equal(t, http.StatusUnprocessableEntity, failed.Code, failed.Body.String())

	// a corrected retry under the same key applies
	retried := send(-3)
	require.Equal(t, http.StatusCreated, retried.Code, retried.Body.String())
	assert.Len(t, entries.entries, 2)
}

func TestStockHandler_ListEntries(t *testing.T) {
	env := newStockTestEnv(t)

	for _, delta := range []int64{10, -4} {
		cause := "adjustment"
		if delta < 0 {
			cause = "loss"
		}
		w := env.do(t, http.MethodPost, "/products/"+env.productID.String()+"/stock/adjustments", gin.H{
			"delta":  delta,
			"cause":  cause,
			"reason": "test movement",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodGet, "/products/"+env.productID.String()+"/stock/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			QuantityDelta int64 `json:"quantity_delta"`
		} `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Meta.Total)
	require.Len(t, resp.Data, 2)
}
