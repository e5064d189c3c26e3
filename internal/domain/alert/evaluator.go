package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Severity grades how urgent a stock alert is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertType classifies what condition fired
type AlertType string

const (
	TypeOutOfStock AlertType = "out_of_stock"
	TypeLowStock   AlertType = "low_stock"
	TypeOverstock  AlertType = "overstock"
)

// Alert is an advisory record about a product's stock level. It is emitted
// after ledger writes and owns no state of its own; delivery channels live
// behind the Notifier port.
type Alert struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Quantity    int64     `json:"quantity"`
	MinQuantity int64     `json:"min_quantity"`
	MaxQuantity int64     `json:"max_quantity"`
	RaisedAt    time.Time `json:"raised_at"`
}

// Notifier delivers alerts. Implementations must not block the caller's
// transaction; evaluation happens strictly after the ledger commit.
type Notifier interface {
	Notify(ctx context.Context, a *Alert) error
}

// Evaluate applies the threshold rule to a product's current quantity.
// Returns nil when no alert condition holds.
//
// quantity == 0 is a critical out-of-stock. Between zero and half the
// minimum threshold is a critical low-stock, between half and the full
// minimum a warning. Above the maximum threshold (when one is set) is an
// informational overstock.
func Evaluate(tenantID, productID uuid.UUID, quantity, minQuantity, maxQuantity int64) *Alert {
	var (
		alertType AlertType
		severity  Severity
	)

	switch {
	case quantity == 0:
		alertType, severity = TypeOutOfStock, SeverityCritical
	case minQuantity > 0 && quantity*2 <= minQuantity:
		alertType, severity = TypeLowStock, SeverityCritical
	case minQuantity > 0 && quantity <= minQuantity:
		alertType, severity = TypeLowStock, SeverityWarning
	case maxQuantity > 0 && quantity > maxQuantity:
		alertType, severity = TypeOverstock, SeverityInfo
	default:
		return nil
	}

	return &Alert{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ProductID:   productID,
		Type:        alertType,
		Severity:    severity,
		Quantity:    quantity,
		MinQuantity: minQuantity,
		MaxQuantity: maxQuantity,
		RaisedAt:    time.Now(),
	}
}
