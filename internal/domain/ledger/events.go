package ledger

import (
	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

const (
	EventTypeStockLevelChanged = "ledger.stock_level_changed"
)

// StockLevelChangedEvent is raised after a ledger entry commits
type StockLevelChangedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID  `json:"product_id"`
	QuantityDelta int64      `json:"quantity_delta"`
	BalanceAfter  int64      `json:"balance_after"`
	Cause         EntryCause `json:"cause"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
}

// NewStockLevelChangedEvent creates a stock level changed event
func NewStockLevelChangedEvent(tenantID uuid.UUID, entry *Entry) *StockLevelChangedEvent {
	return &StockLevelChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLevelChanged, "StockLedgerEntry", entry.ID, tenantID),
		ProductID:       entry.ProductID,
		QuantityDelta:   entry.QuantityDelta,
		BalanceAfter:    entry.BalanceAfter,
		Cause:           entry.Cause,
		OrderID:         entry.OrderID,
	}
}
