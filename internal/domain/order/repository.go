package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

// Repository persists order aggregates
type Repository interface {
	// FindByIDForTenant retrieves an order with its line items, scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByNumber retrieves an order by its order number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)

	// FindAllForTenant retrieves orders for a tenant with pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)

	// Save persists an order and its line items
	Save(ctx context.Context, o *Order) error

	// SaveWithLock persists an order with an optimistic version check,
	// returning ErrConcurrencyConflict when the stored version moved on
	SaveWithLock(ctx context.Context, o *Order) error

	// DeleteForTenant removes a draft order and its line items
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateNumber produces the next sequential order number for the
	// tenant, e.g. SO-2026-00042
	GenerateNumber(ctx context.Context, tenantID uuid.UUID, typ OrderType) (string, error)
}
