package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/ledger"
)

// AdjustStockRequest is a manual stock adjustment outside any order
type AdjustStockRequest struct {
	ProductID      uuid.UUID         `json:"product_id"`
	Delta          int64             `json:"delta"`
	Cause          ledger.EntryCause `json:"cause"`
	Reason         string            `json:"reason"`
	UnitValue      decimal.Decimal   `json:"unit_value"`
	CreatedBy      *uuid.UUID        `json:"-"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// EntryResponse is the outward representation of a ledger entry
type EntryResponse struct {
	ID            uuid.UUID          `json:"id"`
	ProductID     uuid.UUID          `json:"product_id"`
	QuantityDelta int64              `json:"quantity_delta"`
	Cause         ledger.EntryCause  `json:"cause"`
	OrderID       *uuid.UUID         `json:"order_id,omitempty"`
	UnitValue     decimal.Decimal    `json:"unit_value"`
	BalanceAfter  int64              `json:"balance_after"`
	Reason        string             `json:"reason,omitempty"`
	RecordedAt    time.Time          `json:"recorded_at"`
}

// QuantityResponse is the derived on-hand quantity of a product
type QuantityResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

func toEntryResponse(e *ledger.Entry) *EntryResponse {
	return &EntryResponse{
		ID:            e.ID,
		ProductID:     e.ProductID,
		QuantityDelta: e.QuantityDelta,
		Cause:         e.Cause,
		OrderID:       e.OrderID,
		UnitValue:     e.UnitValue,
		BalanceAfter:  e.BalanceAfter,
		Reason:        e.Reason,
		RecordedAt:    e.RecordedAt,
	}
}
