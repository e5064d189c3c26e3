package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// FindByIDForTenantLocked loads the product row under a row-level lock
	// (SELECT ... FOR UPDATE). Must be called within a transaction; it is the
	// serialization point for all stock-affecting writes on the product.
	FindByIDForTenantLocked(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
}
