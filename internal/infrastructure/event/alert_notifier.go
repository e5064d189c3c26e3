package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/inventra/backend/internal/domain/alert"
	"github.com/inventra/backend/internal/domain/shared"
)

// EventTypeStockAlertRaised is published whenever a stock alert fires
const EventTypeStockAlertRaised = "stock.alert_raised"

// StockAlertRaisedEvent carries a stock alert onto the event bus so other
// components (dashboards, notification channels) can react to it.
type StockAlertRaisedEvent struct {
	shared.BaseDomainEvent
	Alert *alert.Alert `json:"alert"`
}

// NewStockAlertRaisedEvent wraps an alert as a domain event
func NewStockAlertRaisedEvent(a *alert.Alert) *StockAlertRaisedEvent {
	return &StockAlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAlertRaised, "StockAlert", a.ProductID, a.TenantID),
		Alert:           a,
	}
}

// BusNotifier delivers stock alerts by publishing them on the event bus and
// writing a structured log line at a level matching the alert severity.
type BusNotifier struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewBusNotifier creates a BusNotifier
func NewBusNotifier(publisher shared.EventPublisher, logger *zap.Logger) *BusNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusNotifier{publisher: publisher, logger: logger}
}

// Notify publishes the alert and logs it
func (n *BusNotifier) Notify(ctx context.Context, a *alert.Alert) error {
	fields := []zap.Field{
		zap.String("alert_type", string(a.Type)),
		zap.String("severity", string(a.Severity)),
		zap.String("tenant_id", a.TenantID.String()),
		zap.String("product_id", a.ProductID.String()),
		zap.Int64("quantity", a.Quantity),
		zap.Int64("min_quantity", a.MinQuantity),
		zap.Int64("max_quantity", a.MaxQuantity),
	}
	switch a.Severity {
	case alert.SeverityCritical:
		n.logger.Error("stock alert", fields...)
	case alert.SeverityWarning:
		n.logger.Warn("stock alert", fields...)
	default:
		n.logger.Info("stock alert", fields...)
	}

	return n.publisher.Publish(ctx, NewStockAlertRaisedEvent(a))
}

var _ alert.Notifier = (*BusNotifier)(nil)
