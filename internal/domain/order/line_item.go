package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

var oneHundred = decimal.NewFromInt(100)

// LineItem represents a single product line within an order. Unit price,
// discount and tax rate are snapshots taken at order time and do not follow
// later product changes.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductSKU  string          `gorm:"type:varchar(64);not null"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	TaxRatePct  decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "order_line_items"
}

// NewLineItem creates a new order line item
func NewLineItem(orderID, productID uuid.UUID, sku, name string, quantity int64, unitPrice, discountPct, taxRatePct decimal.Decimal) (*LineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("Quantity must be positive").
			WithDetail("quantity", quantity)
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	if err := validatePercent("discount percentage", discountPct); err != nil {
		return nil, err
	}
	if err := validatePercent("tax rate percentage", taxRatePct); err != nil {
		return nil, err
	}

	now := time.Now()
	return &LineItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductSKU:  sku,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		DiscountPct: discountPct,
		TaxRatePct:  taxRatePct,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validatePercent(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(oneHundred) {
		return shared.NewValidationError("Invalid "+field+", must be between 0 and 100").
			WithDetail("value", pct.String())
	}
	return nil
}

// Subtotal returns quantity * unit price before any discount
func (i *LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Discount returns the line-level discount amount
func (i *LineItem) Discount() decimal.Decimal {
	return i.Subtotal().Mul(i.DiscountPct).Div(oneHundred)
}

// Taxable returns the amount tax is computed on
func (i *LineItem) Taxable() decimal.Decimal {
	return i.Subtotal().Sub(i.Discount())
}

// Tax returns the line tax amount
func (i *LineItem) Tax() decimal.Decimal {
	return i.Taxable().Mul(i.TaxRatePct).Div(oneHundred)
}

// Total returns taxable amount plus tax
func (i *LineItem) Total() decimal.Decimal {
	return i.Taxable().Add(i.Tax())
}
