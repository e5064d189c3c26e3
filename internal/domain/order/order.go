package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/shared"
)

// OrderType distinguishes sale orders (outbound stock) from purchase orders
// (inbound stock)
type OrderType string

const (
	TypeSale     OrderType = "sale"
	TypePurchase OrderType = "purchase"
)

// IsValid checks if the type is a known OrderType
func (t OrderType) IsValid() bool {
	return t == TypeSale || t == TypePurchase
}

// String returns the string representation of OrderType
func (t OrderType) String() string {
	return string(t)
}

// Status represents the lifecycle state of an order
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsEditable returns true for states in which line items and modifiers may change
func (s Status) IsEditable() bool {
	return s == StatusDraft || s == StatusPending
}

// CanTransitionTo checks if the status can transition to the target status.
// Stock moves only at the processing -> completed edge; everything before
// that can still be cancelled.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPending || target == StatusCancelled
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false
	}
	return false
}

// PaymentStatus tracks how much of the order has been paid, orthogonally to
// the lifecycle status
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// String returns the string representation of PaymentStatus
func (p PaymentStatus) String() string {
	return string(p)
}

// Order is the aggregate root for a sale or purchase order. Totals are a
// computed projection of the line items plus the order-level modifiers and
// are recalculated on every edit.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_tenant_number,priority:2"`
	Type              OrderType       `gorm:"type:varchar(20);not null"`
	Status            Status          `gorm:"type:varchar(20);not null;index"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null"`
	CounterpartyID    uuid.UUID       `gorm:"type:uuid;not null"`
	CounterpartyName  string          `gorm:"type:varchar(255);not null"`
	Items             []LineItem      `gorm:"foreignKey:OrderID"`
	GlobalDiscountPct decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Totals            Totals          `gorm:"embedded"`
	AmountPaid        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes             string          `gorm:"type:text"`
	SubmittedAt       *time.Time
	ConfirmedAt       *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	CancelReason      string         `gorm:"type:varchar(255)"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in draft status with zero totals
func NewOrder(tenantID uuid.UUID, typ OrderType, orderNumber string, counterpartyID uuid.UUID, counterpartyName string) (*Order, error) {
	if !typ.IsValid() {
		return nil, shared.NewValidationError("Unknown order type: " + string(typ))
	}
	if orderNumber == "" {
		return nil, shared.NewValidationError("Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewValidationError("Order number cannot exceed 50 characters")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewValidationError("Counterparty ID cannot be empty")
	}
	if counterpartyName == "" {
		return nil, shared.NewValidationError("Counterparty name cannot be empty")
	}

	o := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		Type:                typ,
		Status:              StatusDraft,
		PaymentStatus:       PaymentPending,
		CounterpartyID:      counterpartyID,
		CounterpartyName:    counterpartyName,
		Items:               make([]LineItem, 0),
		GlobalDiscountPct:   decimal.Zero,
		ShippingCost:        decimal.Zero,
		Totals:              ZeroTotals(),
		AmountPaid:          decimal.Zero,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AddItem appends a line item. Only allowed while the order is editable.
func (o *Order) AddItem(productID uuid.UUID, sku, name string, quantity int64, unitPrice, discountPct, taxRatePct decimal.Decimal) (*LineItem, error) {
	if !o.Status.IsEditable() {
		return nil, o.invalidTransitionError("modify items")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewValidationError("Product already exists in order, update quantity instead").
				WithDetail("product_id", productID.String())
		}
	}

	item, err := NewLineItem(o.ID, productID, sku, name, quantity, unitPrice, discountPct, taxRatePct)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	if err := o.recalculateTotals(); err != nil {
		o.Items = o.Items[:len(o.Items)-1]
		return nil, err
	}
	o.UpdatedAt = time.Now()

	return item, nil
}

// ReplaceItems swaps the full line-item set and recalculates totals.
// Only allowed while the order is editable.
func (o *Order) ReplaceItems(items []LineItem) error {
	if !o.Status.IsEditable() {
		return o.invalidTransitionError("modify items")
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ProductID]; dup {
			return shared.NewValidationError("Duplicate product in order").
				WithDetail("product_id", items[i].ProductID.String())
		}
		seen[items[i].ProductID] = struct{}{}
		items[i].OrderID = o.ID
	}

	previous := o.Items
	o.Items = items
	if err := o.recalculateTotals(); err != nil {
		o.Items = previous
		return err
	}
	o.UpdatedAt = time.Now()

	return nil
}

// RemoveItem removes a line item by ID. Only allowed while the order is editable.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if !o.Status.IsEditable() {
		return o.invalidTransitionError("modify items")
	}
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			if err := o.recalculateTotals(); err != nil {
				return err
			}
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError(shared.ErrCodeNotFound, "Line item not found").
		WithDetail("item_id", itemID.String())
}

// SetModifiers updates the order-level discount and shipping cost and
// recalculates totals. Only allowed while the order is editable.
func (o *Order) SetModifiers(globalDiscountPct, shippingCost decimal.Decimal) error {
	if !o.Status.IsEditable() {
		return o.invalidTransitionError("modify order")
	}
	if err := validatePercent("global discount percentage", globalDiscountPct); err != nil {
		return err
	}
	if shippingCost.IsNegative() {
		return shared.NewValidationError("Shipping cost cannot be negative")
	}

	prevDiscount, prevShipping := o.GlobalDiscountPct, o.ShippingCost
	o.GlobalDiscountPct = globalDiscountPct
	o.ShippingCost = shippingCost
	if err := o.recalculateTotals(); err != nil {
		o.GlobalDiscountPct, o.ShippingCost = prevDiscount, prevShipping
		return err
	}
	o.UpdatedAt = time.Now()

	return nil
}

// SetNotes updates the free-text notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}

// Submit transitions the order from draft to pending.
// Requires at least one line item.
func (o *Order) Submit() error {
	if !o.Status.CanTransitionTo(StatusPending) {
		return o.invalidTransitionErrorTo(StatusPending)
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError("Cannot submit an order without items")
	}

	now := time.Now()
	from := o.Status
	o.Status = StatusPending
	o.SubmittedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))

	return nil
}

// Confirm transitions the order from pending to confirmed.
// No stock moves yet, for either order type.
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(StatusConfirmed) {
		return o.invalidTransitionErrorTo(StatusConfirmed)
	}

	now := time.Now()
	from := o.Status
	o.Status = StatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))

	return nil
}

// StartProcessing transitions the order from confirmed to processing
func (o *Order) StartProcessing() error {
	if !o.Status.CanTransitionTo(StatusProcessing) {
		return o.invalidTransitionErrorTo(StatusProcessing)
	}

	now := time.Now()
	from := o.Status
	o.Status = StatusProcessing
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))

	return nil
}

// Complete transitions the order from processing to completed. This is the
// single point where physical stock moves; the application service records
// one ledger entry per line item in the same transaction as this status
// write. Completed is terminal, so stock can never be double-counted.
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(StatusCompleted) {
		return o.invalidTransitionErrorTo(StatusCompleted)
	}

	now := time.Now()
	from := o.Status
	o.Status = StatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Cancel transitions the order to cancelled from any non-terminal state.
// A reason is required. Stock has never moved before completion, so
// cancellation never touches the ledger. If payments were recorded the
// payment status flips to refunded.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return o.invalidTransitionErrorTo(StatusCancelled)
	}
	if reason == "" {
		return shared.NewValidationError("Cancel reason is required")
	}

	now := time.Now()
	from := o.Status
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	if o.AmountPaid.IsPositive() {
		o.PaymentStatus = PaymentRefunded
	}

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// TransitionTo dispatches to the matching transition method
func (o *Order) TransitionTo(target Status, reason string) error {
	switch target {
	case StatusPending:
		return o.Submit()
	case StatusConfirmed:
		return o.Confirm()
	case StatusProcessing:
		return o.StartProcessing()
	case StatusCompleted:
		return o.Complete()
	case StatusCancelled:
		return o.Cancel(reason)
	default:
		return shared.NewValidationError("Unknown target status: " + string(target))
	}
}

// RecordPayment records a payment against the order. The cumulative paid
// amount may never exceed the order total.
func (o *Order) RecordPayment(amount decimal.Decimal, method string) error {
	if o.Status == StatusCancelled {
		return o.invalidTransitionError("record a payment")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Payment amount must be positive").
			WithDetail("amount", amount.String())
	}
	if method == "" {
		return shared.NewValidationError("Payment method is required")
	}

	newPaid := o.AmountPaid.Add(amount)
	if newPaid.GreaterThan(o.Totals.Total) {
		return shared.NewValidationError("Cumulative payments cannot exceed order total").
			WithDetail("order_total", o.Totals.Total.String()).
			WithDetail("already_paid", o.AmountPaid.String()).
			WithDetail("amount", amount.String())
	}

	o.AmountPaid = newPaid
	if o.AmountPaid.Equal(o.Totals.Total) {
		o.PaymentStatus = PaymentPaid
	} else {
		o.PaymentStatus = PaymentPartial
	}
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewPaymentRecordedEvent(o, amount, method))

	return nil
}

// VerifyIntegrity recomputes the totals from the line items and modifiers
// and compares them to the stored block
func (o *Order) VerifyIntegrity() error {
	return VerifyTotals(o.Totals, o.Items, o.GlobalDiscountPct, o.ShippingCost)
}

// CanDelete returns true only while the order is still a draft
func (o *Order) CanDelete() bool {
	return o.Status == StatusDraft
}

// IsCompleted returns true if the order reached the completed state
func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted
}

// IsCancelled returns true if the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

func (o *Order) recalculateTotals() error {
	totals, err := CalculateTotals(o.Items, o.GlobalDiscountPct, o.ShippingCost)
	if err != nil {
		return err
	}
	o.Totals = totals
	return nil
}

func (o *Order) invalidTransitionErrorTo(target Status) error {
	return shared.NewDomainError(shared.ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target)).
		WithDetail("current_status", o.Status.String()).
		WithDetail("target_status", target.String())
}

func (o *Order) invalidTransitionError(action string) error {
	return shared.NewDomainError(shared.ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot %s while order is %s", action, o.Status)).
		WithDetail("current_status", o.Status.String())
}
