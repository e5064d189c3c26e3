package order

import (
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// Totals is the computed financial summary of an order. It is always a
// deterministic projection of the line items plus the order-level modifiers
// and is never edited by hand.
type Totals struct {
	Subtotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	Tax      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax"`
	Shipping decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"shipping"`
	Total    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
}

// ZeroTotals returns an all-zero totals block
func ZeroTotals() Totals {
	return Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// Equals compares two totals blocks value-wise
func (t Totals) Equals(other Totals) bool {
	return t.Subtotal.Equal(other.Subtotal) &&
		t.Discount.Equal(other.Discount) &&
		t.Tax.Equal(other.Tax) &&
		t.Shipping.Equal(other.Shipping) &&
		t.Total.Equal(other.Total)
}

// CalculateTotals computes the totals block for a set of line items and
// order-level modifiers.
//
// Per line: subtotal = qty * unitPrice, discount = subtotal * discountPct,
// tax = (subtotal - discount) * taxRatePct. The order-level discount is
// applied on top of the summed line subtotals, but tax stays the sum of the
// line taxes: the global discount does not reduce the taxable base. That
// asymmetry is intentional and load-bearing; reordering these operations
// changes stored totals and breaks the integrity check on existing orders.
//
// Finally: total = subtotal - discount + tax + shipping.
func CalculateTotals(items []LineItem, globalDiscountPct, shippingCost decimal.Decimal) (Totals, error) {
	if err := validatePercent("global discount percentage", globalDiscountPct); err != nil {
		return Totals{}, err
	}
	if shippingCost.IsNegative() {
		return Totals{}, shared.NewValidationError("Shipping cost cannot be negative")
	}
	// An order with no line items has nothing to charge for; modifiers do not
	// apply, so shipping alone never produces a payable total.
	if len(items) == 0 {
		return ZeroTotals(), nil
	}

	subtotal := decimal.Zero
	itemsDiscount := decimal.Zero
	tax := decimal.Zero

	for idx := range items {
		item := &items[idx]
		if item.Quantity <= 0 {
			return Totals{}, shared.NewValidationError("Quantity must be positive").
				WithDetail("product_id", item.ProductID.String())
		}
		if item.UnitPrice.IsNegative() {
			return Totals{}, shared.NewValidationError("Unit price cannot be negative").
				WithDetail("product_id", item.ProductID.String())
		}
		if err := validatePercent("discount percentage", item.DiscountPct); err != nil {
			return Totals{}, err
		}
		if err := validatePercent("tax rate percentage", item.TaxRatePct); err != nil {
			return Totals{}, err
		}

		subtotal = subtotal.Add(item.Subtotal())
		itemsDiscount = itemsDiscount.Add(item.Discount())
		tax = tax.Add(item.Tax())
	}

	globalDiscount := subtotal.Mul(globalDiscountPct).Div(oneHundred)
	discount := itemsDiscount.Add(globalDiscount)
	total := subtotal.Sub(discount).Add(tax).Add(shippingCost)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: shippingCost,
		Total:    total,
	}, nil
}

// VerifyTotals recomputes the totals for the given inputs and compares them
// against a stored block. A mismatch means the stored row was corrupted after
// write and must surface as an integrity error, never be silently repaired.
func VerifyTotals(stored Totals, items []LineItem, globalDiscountPct, shippingCost decimal.Decimal) error {
	expected, err := CalculateTotals(items, globalDiscountPct, shippingCost)
	if err != nil {
		return err
	}
	if !stored.Equals(expected) {
		return shared.NewIntegrityError("Stored order totals do not match recomputation").
			WithDetail("stored_total", stored.Total.String()).
			WithDetail("expected_total", expected.Total.String())
	}
	return nil
}
