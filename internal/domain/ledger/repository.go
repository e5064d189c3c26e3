package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

// EntryRepository persists ledger entries. The ledger is append-only:
// there is deliberately no update or delete operation.
type EntryRepository interface {
	// Append inserts a new entry
	Append(ctx context.Context, entry *Entry) error

	// FindByIDForTenant retrieves an entry by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error)

	// SumForProduct returns the sum of all quantity deltas for a product,
	// which is the product's derived on-hand quantity
	SumForProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// ListForProduct returns a product's entries, newest first
	ListForProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[Entry], error)

	// ListForOrder returns all entries linked to an order
	ListForOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*Entry, error)
}
