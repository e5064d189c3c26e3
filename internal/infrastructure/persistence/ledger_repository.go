package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/ledger"
	"github.com/inventra/backend/internal/domain/shared"
)

// GormEntryRepository implements ledger.EntryRepository using GORM.
// The table is append-only; there is no update or delete method.
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

var _ ledger.EntryRepository = (*GormEntryRepository)(nil)

// Append inserts a new ledger entry
func (r *GormEntryRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByIDForTenant retrieves an entry by ID scoped to a tenant
func (r *GormEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Entry, error) {
	var entry ledger.Entry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if entry.TenantID != tenantID {
		return nil, shared.ErrCrossTenant
	}
	return &entry, nil
}

// SumForProduct returns the sum of all quantity deltas for a product.
// An empty ledger sums to zero, not NULL.
func (r *GormEntryRepository) SumForProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&ledger.Entry{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Select("COALESCE(SUM(quantity_delta), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// ListForProduct returns a product's entries, newest first
func (r *GormEntryRepository) ListForProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[ledger.Entry], error) {
	base := r.db.WithContext(ctx).
		Model(&ledger.Entry{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}

	var entries []ledger.Entry
	if err := base.
		Order("recorded_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(entries, total, page, pageSize)
	return &result, nil
}

// ListForOrder returns all entries linked to an order, oldest first
func (r *GormEntryRepository) ListForOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("recorded_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
