package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// Product represents a sellable/purchasable item owned by one organization.
//
// OnHandQuantity is a cached projection of the stock ledger: it is refreshed
// inside the same transaction as every ledger append and is never treated as
// authoritative for stock decisions. The ledger sum is the single source of
// truth.
type Product struct {
	shared.TenantAggregateRoot
	SKU            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_tenant_sku,priority:2"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Unit           string          `gorm:"type:varchar(20);not null"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"` // percentage, 0-100
	MinQuantity    int64           `gorm:"not null;default:0"`                   // low-stock alert threshold
	MaxQuantity    int64           `gorm:"not null;default:0"`                   // overstock alert threshold, 0 = none
	OnHandQuantity int64           `gorm:"not null;default:0"`                   // cached ledger sum, read-only projection
	Perishable     bool            `gorm:"not null;default:false"`
	Seasonal       bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product for the given organization
func NewProduct(tenantID uuid.UUID, sku, name, unit string) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Organization ID cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewValidationError("SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewValidationError("Unit of measure cannot be empty")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(sku),
		Name:                name,
		Unit:                unit,
		CostPrice:           decimal.Zero,
		SellingPrice:        decimal.Zero,
		TaxRate:             decimal.Zero,
	}, nil
}

// Rename changes the product's display name
func (p *Product) Rename(name string) error {
	if name == "" {
		return shared.NewValidationError("Product name cannot be empty")
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

// SetPricing updates cost price, selling price and tax rate
func (p *Product) SetPricing(cost, selling, taxRate decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewValidationError("Cost price cannot be negative")
	}
	if selling.IsNegative() {
		return shared.NewValidationError("Selling price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("Tax rate must be between 0 and 100")
	}

	p.CostPrice = cost
	p.SellingPrice = selling
	p.TaxRate = taxRate
	p.UpdatedAt = time.Now()
	return nil
}

// SetThresholds updates the stock alert thresholds
func (p *Product) SetThresholds(min, max int64) error {
	if min < 0 {
		return shared.NewValidationError("Minimum quantity cannot be negative")
	}
	if max < 0 {
		return shared.NewValidationError("Maximum quantity cannot be negative")
	}
	if max > 0 && max < min {
		return shared.NewValidationError("Maximum quantity cannot be below minimum quantity")
	}

	p.MinQuantity = min
	p.MaxQuantity = max
	p.UpdatedAt = time.Now()
	return nil
}

// SetFlags updates the perishable/seasonal flags
func (p *Product) SetFlags(perishable, seasonal bool) {
	p.Perishable = perishable
	p.Seasonal = seasonal
	p.UpdatedAt = time.Now()
}

// RefreshOnHand overwrites the cached quantity projection with the authoritative
// ledger balance. Called only from within a ledger transaction.
func (p *Product) RefreshOnHand(balance int64) {
	p.OnHandQuantity = balance
	p.UpdatedAt = time.Now()
}
