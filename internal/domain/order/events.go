package order

import (
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

const (
	EventTypeOrderCreated    = "order.created"
	EventTypeOrderStatus     = "order.status_changed"
	EventTypeOrderCompleted  = "order.completed"
	EventTypeOrderCancelled  = "order.cancelled"
	EventTypePaymentRecorded = "order.payment_recorded"
)

const aggregateTypeOrder = "Order"

// OrderCreatedEvent is raised when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	OrderType   OrderType `json:"order_type"`
}

// NewOrderCreatedEvent creates an order created event
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, aggregateTypeOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		OrderType:       o.Type,
	}
}

// OrderStatusChangedEvent is raised on every lifecycle transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	FromStatus  Status `json:"from_status"`
	ToStatus    Status `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a status changed event
func NewOrderStatusChangedEvent(o *Order, from Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatus, aggregateTypeOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from,
		ToStatus:        o.Status,
	}
}

// OrderCompletedEvent is raised when an order completes and stock has moved
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	OrderType   OrderType       `json:"order_type"`
	Total       decimal.Decimal `json:"total"`
}

// NewOrderCompletedEvent creates an order completed event
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, aggregateTypeOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		OrderType:       o.Type,
		Total:           o.Totals.Total,
	}
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewOrderCancelledEvent creates an order cancelled event
func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, aggregateTypeOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}

// PaymentRecordedEvent is raised when a payment is recorded against an order
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPaymentRecordedEvent creates a payment recorded event
func NewPaymentRecordedEvent(o *Order, amount decimal.Decimal, method string) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, aggregateTypeOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		Amount:          amount,
		Method:          method,
		AmountPaid:      o.AmountPaid,
		PaymentStatus:   o.PaymentStatus,
	}
}
