package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/order"
)

// LineItemRequest is one product line of an incoming create/update request.
// UnitPrice and TaxRatePct default to the product's current selling price
// (or cost price for purchase orders) and tax rate when omitted; once the
// order is saved they are snapshots.
type LineItemRequest struct {
	ProductID   uuid.UUID        `json:"product_id"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
	TaxRatePct  *decimal.Decimal `json:"tax_rate_pct,omitempty"`
}

// CreateOrderRequest creates a new order in draft status
type CreateOrderRequest struct {
	Type              order.OrderType   `json:"type"`
	CounterpartyID    uuid.UUID         `json:"counterparty_id"`
	CounterpartyName  string            `json:"counterparty_name"`
	Items             []LineItemRequest `json:"items"`
	GlobalDiscountPct decimal.Decimal   `json:"global_discount_pct"`
	ShippingCost      decimal.Decimal   `json:"shipping_cost"`
	Notes             string            `json:"notes"`
	CreatedBy         *uuid.UUID        `json:"-"`
}

// UpdateOrderRequest replaces an editable order's items and modifiers
type UpdateOrderRequest struct {
	Items             []LineItemRequest `json:"items"`
	GlobalDiscountPct decimal.Decimal   `json:"global_discount_pct"`
	ShippingCost      decimal.Decimal   `json:"shipping_cost"`
	Notes             *string           `json:"notes,omitempty"`
}

// TransitionRequest moves an order to a target lifecycle state
type TransitionRequest struct {
	Target order.Status `json:"target"`
	Reason string       `json:"reason"`
}

// RecordPaymentRequest records a payment against an order
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// LineItemResponse is the outward representation of an order line
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct"`
	Total       decimal.Decimal `json:"total"`
}

// OrderResponse is the outward representation of an order
type OrderResponse struct {
	ID                uuid.UUID          `json:"id"`
	OrderNumber       string             `json:"order_number"`
	Type              order.OrderType    `json:"type"`
	Status            order.Status       `json:"status"`
	PaymentStatus     order.PaymentStatus `json:"payment_status"`
	CounterpartyID    uuid.UUID          `json:"counterparty_id"`
	CounterpartyName  string             `json:"counterparty_name"`
	Items             []LineItemResponse `json:"items"`
	GlobalDiscountPct decimal.Decimal    `json:"global_discount_pct"`
	ShippingCost      decimal.Decimal    `json:"shipping_cost"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	Discount          decimal.Decimal    `json:"discount"`
	Tax               decimal.Decimal    `json:"tax"`
	Total             decimal.Decimal    `json:"total"`
	AmountPaid        decimal.Decimal    `json:"amount_paid"`
	Notes             string             `json:"notes,omitempty"`
	CancelReason      string             `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	SubmittedAt       *time.Time         `json:"submitted_at,omitempty"`
	ConfirmedAt       *time.Time         `json:"confirmed_at,omitempty"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
	CancelledAt       *time.Time         `json:"cancelled_at,omitempty"`
}

func toOrderResponse(o *order.Order) *OrderResponse {
	items := make([]LineItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, LineItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductSKU:  item.ProductSKU,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DiscountPct: item.DiscountPct,
			TaxRatePct:  item.TaxRatePct,
			Total:       item.Total(),
		})
	}

	return &OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		Type:              o.Type,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		CounterpartyID:    o.CounterpartyID,
		CounterpartyName:  o.CounterpartyName,
		Items:             items,
		GlobalDiscountPct: o.GlobalDiscountPct,
		ShippingCost:      o.ShippingCost,
		Subtotal:          o.Totals.Subtotal,
		Discount:          o.Totals.Discount,
		Tax:               o.Totals.Tax,
		Total:             o.Totals.Total,
		AmountPaid:        o.AmountPaid,
		Notes:             o.Notes,
		CancelReason:      o.CancelReason,
		CreatedAt:         o.CreatedAt,
		SubmittedAt:       o.SubmittedAt,
		ConfirmedAt:       o.ConfirmedAt,
		CompletedAt:       o.CompletedAt,
		CancelledAt:       o.CancelledAt,
	}
}
