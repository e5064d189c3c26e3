package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/domain/catalog"
	"github.com/inventra/backend/internal/domain/shared"
)

// ProductService handles product management operations
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{productRepo: productRepo, logger: logger}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindBySKU(ctx, tenantID, req.SKU)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.ErrCodeAlreadyExists, "Product with this SKU already exists").
			WithDetail("sku", req.SKU)
	}

	product, err := catalog.NewProduct(tenantID, req.SKU, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		product.SetCreatedBy(*req.CreatedBy)
	}
	if err := product.SetPricing(req.CostPrice, req.SellingPrice, req.TaxRate); err != nil {
		return nil, err
	}
	if err := product.SetThresholds(req.MinQuantity, req.MaxQuantity); err != nil {
		return nil, err
	}
	product.SetFlags(req.Perishable, req.Seasonal)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	return toProductResponse(product), nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetBySKU retrieves a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List retrieves products for a tenant with pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *toProductResponse(&products[i]))
	}

	if filter.PageSize == 0 {
		filter = shared.DefaultFilter()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update applies partial changes to a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.CostPrice != nil || req.SellingPrice != nil || req.TaxRate != nil {
		cost, selling, taxRate := product.CostPrice, product.SellingPrice, product.TaxRate
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if req.TaxRate != nil {
			taxRate = *req.TaxRate
		}
		if err := product.SetPricing(cost, selling, taxRate); err != nil {
			return nil, err
		}
	}

	if req.MinQuantity != nil || req.MaxQuantity != nil {
		min, max := product.MinQuantity, product.MaxQuantity
		if req.MinQuantity != nil {
			min = *req.MinQuantity
		}
		if req.MaxQuantity != nil {
			max = *req.MaxQuantity
		}
		if err := product.SetThresholds(min, max); err != nil {
			return nil, err
		}
	}

	if req.Perishable != nil || req.Seasonal != nil {
		perishable, seasonal := product.Perishable, product.Seasonal
		if req.Perishable != nil {
			perishable = *req.Perishable
		}
		if req.Seasonal != nil {
			seasonal = *req.Seasonal
		}
		product.SetFlags(perishable, seasonal)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	return toProductResponse(product), nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.productRepo.DeleteForTenant(ctx, tenantID, productID)
}
