package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ order.Repository = (*GormOrderRepository)(nil)

// FindByIDForTenant retrieves an order with its line items. An order that
// exists under a different tenant yields ErrCrossTenant.
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if !o.BelongsTo(tenantID) {
		return nil, shared.ErrCrossTenant
	}
	return &o, nil
}

// FindByNumber retrieves an order by its order number within a tenant
func (r *GormOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAllForTenant retrieves orders for a tenant with pagination
func (r *GormOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	base := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&order.Order{}).Where("tenant_id = ?", tenantID),
		filter,
	)

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

	var orders []order.Order
	query := base.Preload("Items").
		Offset((page - 1) * pageSize).
		Limit(pageSize)
	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else {
		query = query.Order("created_at DESC")
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(orders, total, page, pageSize)
	return &result, nil
}

// Save persists an order and its line items, removing items no longer
// present on the aggregate. A unique violation on the order number means a
// concurrent create drew the same number; it surfaces as a concurrency
// conflict so the caller can retry with a fresh number.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrConcurrencyConflict
			}
			return err
		}
		return r.saveItems(tx, o)
	})
}

// SaveWithLock persists an order with an optimistic version check. The
// update only lands if the stored row still holds the version the aggregate
// was loaded with; on success the version advances by one.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&order.Order{}).
			Where("id = ? AND version = ?", o.ID, o.Version).
			Updates(map[string]interface{}{
				"counterparty_id":     o.CounterpartyID,
				"counterparty_name":   o.CounterpartyName,
				"status":              o.Status,
				"payment_status":      o.PaymentStatus,
				"global_discount_pct": o.GlobalDiscountPct,
				"shipping_cost":       o.ShippingCost,
				"subtotal":            o.Totals.Subtotal,
				"discount":            o.Totals.Discount,
				"tax":                 o.Totals.Tax,
				"shipping":            o.Totals.Shipping,
				"total":               o.Totals.Total,
				"amount_paid":         o.AmountPaid,
				"notes":               o.Notes,
				"submitted_at":        o.SubmittedAt,
				"confirmed_at":        o.ConfirmedAt,
				"completed_at":        o.CompletedAt,
				"cancelled_at":        o.CancelledAt,
				"cancel_reason":       o.CancelReason,
				"version":             o.Version + 1,
				"updated_at":          time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		o.IncrementVersion()
		return r.saveItems(tx, o)
	})
}

func (r *GormOrderRepository) saveItems(tx *gorm.DB, o *order.Order) error {
	currentIDs := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		currentIDs[i] = item.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, currentIDs).
			Delete(&order.LineItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.LineItem{}).Error; err != nil {
			return err
		}
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteForTenant logically deletes an order. The row and its line items
// stay in the database with deleted_at set; all reads filter them out.
func (r *GormOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&order.Order{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateNumber produces the next sequential order number for the tenant
// and year, e.g. SO-2026-00042 for sales, PO-2026-00042 for purchases. The
// scan locks the highest-numbered row so concurrent creates in the same
// transaction scope serialize; the first order of a year has no row to lock,
// which the unique index on (tenant_id, order_number) backstops via the
// duplicate-key mapping in Save.
func (r *GormOrderRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID, typ order.OrderType) (string, error) {
	prefix := "SO"
	if typ == order.TypePurchase {
		prefix = "PO"
	}
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	// Unscoped: logically deleted drafts keep their numbers reserved
	var last order.Order
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&order.Order{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, yearPrefix+"%").
		Order("order_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var next int64 = 1
	if err == nil && last.OrderNumber != "" {
		parts := strings.Split(last.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				next = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", yearPrefix, next), nil
}

// applyFilterWithoutPagination applies search and attribute filters only
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR counterparty_name ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "counterparty_id":
			query = query.Where("counterparty_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}
