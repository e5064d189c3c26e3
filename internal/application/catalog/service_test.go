package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/backend/internal/domain/catalog"
	"github.com/inventra/backend/internal/domain/shared"
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) find(tenantID, id uuid.UUID) (*catalog.Product, error) {
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

func (r *memProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(tenantID, id)
}

func (r *memProductRepo) FindByIDForTenantLocked(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(tenantID, id)
}

func (r *memProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
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

func (r *memProductRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
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

func (r *memProductRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
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

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *memProductRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.BelongsTo(tenantID) {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func newTestService() (*ProductService, *memProductRepo) {
	repo := newMemProductRepo()
	return NewProductService(repo, nil), repo
}

func validCreateRequest() CreateProductRequest {
	return CreateProductRequest{
		SKU:          "SKU-001",
		Name:         "Widget",
		Unit:         "pcs",
		CostPrice:    decimal.NewFromInt(10),
		SellingPrice: decimal.NewFromInt(25),
		TaxRate:      decimal.NewFromInt(8),
		MinQuantity:  5,
		MaxQuantity:  50,
	}
}

func TestProductService_Create(t *testing.T) {
	svc, _ := newTestService()
	tenantID := uuid.New()

	resp, err := svc.Create(context.Background(), tenantID, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "SKU-001", resp.SKU)
	assert.Equal(t, int64(5), resp.MinQuantity)
	assert.True(t, resp.SellingPrice.Equal(decimal.NewFromInt(25)))
}

func TestProductService_CreateDuplicateSKU(t *testing.T) {
	svc, _ := newTestService()
	tenantID := uuid.New()

	_, err := svc.Create(context.Background(), tenantID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tenantID, validCreateRequest())
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrCodeAlreadyExists, domainErr.Code)
	assert.Equal(t, "SKU-001", domainErr.Details["sku"])
}

func TestProductService_CreateSameSKUDifferentTenants(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)
}

func TestProductService_GetBySKU(t *testing.T) {
	svc, _ := newTestService()
	tenantID := uuid.New()

	created, err := svc.Create(context.Background(), tenantID, validCreateRequest())
	require.NoError(t, err)

	fetched, err := svc.GetBySKU(context.Background(), tenantID, "sku-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestProductService_UpdatePartial(t *testing.T) {
	svc, _ := newTestService()
	tenantID := uuid.New()

	created, err := svc.Create(context.Background(), tenantID, validCreateRequest())
	require.NoError(t, err)

	newName := "Improved widget"
	newMax := int64(80)
	updated, err := svc.Update(context.Background(), tenantID, created.ID, UpdateProductRequest{
		Name:        &newName,
		MaxQuantity: &newMax,
	})
	require.NoError(t, err)
	assert.Equal(t, "Improved widget", updated.Name)
	assert.Equal(t, int64(80), updated.MaxQuantity)

	// untouched fields keep their values
	assert.Equal(t, int64(5), updated.MinQuantity)
	assert.True(t, updated.CostPrice.Equal(decimal.NewFromInt(10)))
}

func TestProductService_UpdateRejectsInvalidThresholds(t *testing.T) {
	svc, _ := newTestService()
	tenantID := uuid.New()

	created, err := svc.Create(context.Background(), tenantID, validCreateRequest())
	require.NoError(t, err)

	badMax := int64(2) // below the existing min of 5
	_, err = svc.Update(context.Background(), tenantID, created.ID, UpdateProductRequest{
		MaxQuantity: &badMax,
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrCodeValidation, domainErr.Code)
}

func TestProductService_CrossTenantGet(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), uuid.New(), validCreateRequest())
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), uuid.New(), created.ID)
	assert.ErrorIs(t, err, shared.ErrCrossTenant)
}

func TestProductService_Delete(t *testing.T) {
	svc, repo := newTestService()
	tenantID := uuid.New()

	created, err := svc.Create(context.Background(), tenantID, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), tenantID, created.ID))
	assert.Empty(t, repo.products)

	err = svc.Delete(context.Background(), tenantID, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
