package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// EntryCause classifies what caused a stock movement
type EntryCause string

const (
	CauseSale        EntryCause = "sale"
	CausePurchase    EntryCause = "purchase"
	CauseAdjustment  EntryCause = "adjustment"
	CauseReturn      EntryCause = "return"
	CauseLoss        EntryCause = "loss"
	CauseTransferIn  EntryCause = "transfer_in"
	CauseTransferOut EntryCause = "transfer_out"
	CauseDamage      EntryCause = "damage"
)

// String returns the string representation of EntryCause
func (c EntryCause) String() string {
	return string(c)
}

// IsValid returns true if the cause is a known value
func (c EntryCause) IsValid() bool {
	switch c {
	case CauseSale, CausePurchase, CauseAdjustment, CauseReturn,
		CauseLoss, CauseTransferIn, CauseTransferOut, CauseDamage:
		return true
	}
	return false
}

// Entry is an immutable record of a single stock movement for one product.
// The signed QuantityDelta is positive for inbound and negative for outbound
// movements. Corrections are compensating entries, never edits: the repository
// exposes no update or delete operation.
type Entry struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tenant_product,priority:1"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tenant_product,priority:2"`
	QuantityDelta int64           `gorm:"not null"`
	Cause         EntryCause      `gorm:"type:varchar(20);not null;index"`
	OrderID       *uuid.UUID      `gorm:"type:uuid;index"` // set when the movement was driven by an order
	UnitValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BalanceAfter  int64           `gorm:"not null"` // running balance snapshot after this entry
	Reason        string          `gorm:"type:varchar(255)"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	RecordedAt    time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "stock_ledger_entries"
}

// NewEntry creates a new ledger entry. The balanceAfter snapshot must be
// computed by the caller while holding the product row lock.
func NewEntry(tenantID, productID uuid.UUID, delta int64, cause EntryCause, unitValue decimal.Decimal, balanceAfter int64) (*Entry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Organization ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if delta == 0 {
		return nil, shared.NewValidationError("Quantity delta cannot be zero")
	}
	if !cause.IsValid() {
		return nil, shared.NewValidationError("Unknown ledger entry cause: " + string(cause))
	}
	if unitValue.IsNegative() {
		return nil, shared.NewValidationError("Unit value cannot be negative")
	}
	if balanceAfter < 0 {
		return nil, shared.NewValidationError("Balance after entry cannot be negative")
	}

	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		ProductID:     productID,
		QuantityDelta: delta,
		Cause:         cause,
		UnitValue:     unitValue,
		BalanceAfter:  balanceAfter,
		RecordedAt:    time.Now(),
	}, nil
}

// WithOrderID links the entry to the order that caused it
func (e *Entry) WithOrderID(orderID uuid.UUID) *Entry {
	e.OrderID = &orderID
	return e
}

// WithReason records why the movement happened (required for manual adjustments)
func (e *Entry) WithReason(reason string) *Entry {
	e.Reason = reason
	return e
}

// WithCreatedBy records the acting user
func (e *Entry) WithCreatedBy(userID uuid.UUID) *Entry {
	e.CreatedBy = &userID
	return e
}

// IsInbound returns true if the entry increases on-hand quantity
func (e *Entry) IsInbound() bool {
	return e.QuantityDelta > 0
}

// IsOutbound returns true if the entry decreases on-hand quantity
func (e *Entry) IsOutbound() bool {
	return e.QuantityDelta < 0
}

// TotalValue returns |delta| * unit value
func (e *Entry) TotalValue() decimal.Decimal {
	qty := e.QuantityDelta
	if qty < 0 {
		qty = -qty
	}
	return e.UnitValue.Mul(decimal.NewFromInt(qty))
}
