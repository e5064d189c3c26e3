package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/domain/alert"
	"github.com/inventra/backend/internal/domain/catalog"
	"github.com/inventra/backend/internal/domain/ledger"
	"github.com/inventra/backend/internal/domain/shared"
)

// adjustmentKeyTTL is how long a manual adjustment's idempotency key is remembered
const adjustmentKeyTTL = 24 * time.Hour

// StockService owns all writes to the stock ledger. Both manual adjustments
// and order-driven movements funnel through RecordMovement, which performs
// the read-check-write sequence under the product's row lock so concurrent
// writers cannot both pass the non-negativity check.
type StockService struct {
	scope       TransactionScope
	idempotency shared.IdempotencyStore
	publisher   shared.EventPublisher
	notifier    alert.Notifier
	logger      *zap.Logger
}

// NewStockService creates a new StockService. The idempotency store,
// publisher and notifier are optional.
func NewStockService(scope TransactionScope, idempotency shared.IdempotencyStore, publisher shared.EventPublisher, notifier alert.Notifier, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		scope:       scope,
		idempotency: idempotency,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger,
	}
}

// Adjust applies a manual stock adjustment. The adjustment is subject to the
// same non-negativity guarantee as order-driven movements and requires a
// reason. A repeated idempotency key returns an ALREADY_EXISTS failure
// instead of double-applying the delta.
func (s *StockService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*EntryResponse, error) {
	if req.Reason == "" {
		return nil, shared.NewValidationError("Adjustment reason is required")
	}

	keyClaimed := false
	if req.IdempotencyKey != "" && s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, adjustmentKeyTTL)
		if err != nil {
			s.logger.Warn("idempotency store unavailable, proceeding without dedup",
				zap.String("key", req.IdempotencyKey), zap.Error(err))
		} else if !fresh {
			return nil, shared.NewDomainError(shared.ErrCodeAlreadyExists, "Adjustment with this idempotency key was already applied").
				WithDetail("idempotency_key", req.IdempotencyKey)
		} else {
			keyClaimed = true
		}
	}

	var (
		entry   *ledger.Entry
		product *catalog.Product
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entry, product, err = s.RecordMovement(ctx, repos, MovementCommand{
			TenantID:  tenantID,
			ProductID: req.ProductID,
			Delta:     req.Delta,
			Cause:     req.Cause,
			UnitValue: req.UnitValue,
			Reason:    req.Reason,
			CreatedBy: req.CreatedBy,
		})
		return err
	})
	if err != nil {
		if keyClaimed {
			s.releaseIdempotencyKey(req.IdempotencyKey)
		}
		return nil, err
	}

	s.AnnounceStockChange(product, entry)

	return toEntryResponse(entry), nil
}

// releaseIdempotencyKey frees a claimed key after the adjustment it guarded
// failed, so the client can retry under the same key. Runs on a detached
// context: the request context may already be cancelled when we get here.
func (s *StockService) releaseIdempotencyKey(key string) {
	bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.idempotency.Release(bg, key); err != nil {
		s.logger.Warn("failed to release idempotency key after failed adjustment",
			zap.String("key", key), zap.Error(err))
	}
}

// GetQuantity returns the product's derived on-hand quantity, the sum of all
// its ledger entries
func (s *StockService) GetQuantity(ctx context.Context, tenantID, productID uuid.UUID) (*QuantityResponse, error) {
	var quantity int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Products().FindByIDForTenant(ctx, tenantID, productID); err != nil {
			return err
		}
		var err error
		quantity, err = repos.Entries().SumForProduct(ctx, tenantID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &QuantityResponse{ProductID: productID, Quantity: quantity}, nil
}

// ListEntries returns a product's ledger history, newest first
func (s *StockService) ListEntries(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[EntryResponse], error) {
	var page *shared.Paginated[ledger.Entry]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Products().FindByIDForTenant(ctx, tenantID, productID); err != nil {
			return err
		}
		var err error
		page, err = repos.Entries().ListForProduct(ctx, tenantID, productID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]EntryResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *toEntryResponse(&page.Items[i]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// MovementCommand describes one stock movement to record
type MovementCommand struct {
	TenantID  uuid.UUID
	ProductID uuid.UUID
	Delta     int64
	Cause     ledger.EntryCause
	OrderID   *uuid.UUID
	UnitValue decimal.Decimal
	Reason    string
	CreatedBy *uuid.UUID
}

// RecordMovement records one stock movement inside the caller's transaction.
// It locks the product row first, then derives the current quantity from the
// ledger, rejects outbound deltas that would drive it negative, appends the
// entry and refreshes the product's cached on-hand projection. The returned
// product carries the post-movement balance for alert evaluation after the
// caller commits.
func (s *StockService) RecordMovement(ctx context.Context, repos TransactionalRepositories, cmd MovementCommand) (*ledger.Entry, *catalog.Product, error) {
	product, err := repos.Products().FindByIDForTenantLocked(ctx, cmd.TenantID, cmd.ProductID)
	if err != nil {
		return nil, nil, err
	}

	current, err := repos.Entries().SumForProduct(ctx, cmd.TenantID, cmd.ProductID)
	if err != nil {
		return nil, nil, err
	}

	balance := current + cmd.Delta
	if balance < 0 {
		return nil, nil, shared.NewDomainError(shared.ErrCodeInsufficientStock, "Insufficient stock for requested movement").
			WithDetail("product_id", cmd.ProductID.String()).
			WithDetail("current_quantity", current).
			WithDetail("requested_delta", cmd.Delta)
	}

	entry, err := ledger.NewEntry(cmd.TenantID, cmd.ProductID, cmd.Delta, cmd.Cause, cmd.UnitValue, balance)
	if err != nil {
		return nil, nil, err
	}
	if cmd.OrderID != nil {
		entry.WithOrderID(*cmd.OrderID)
	}
	if cmd.Reason != "" {
		entry.WithReason(cmd.Reason)
	}
	if cmd.CreatedBy != nil {
		entry.WithCreatedBy(*cmd.CreatedBy)
	}

	if err := repos.Entries().Append(ctx, entry); err != nil {
		return nil, nil, err
	}

	product.RefreshOnHand(balance)
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, nil, err
	}

	return entry, product, nil
}

// AnnounceStockChange runs the post-commit side effects of a ledger write:
// the threshold evaluation and the stock-changed event. Both are advisory
// and must never block or fail the committed mutation, so they run on their
// own goroutine with a detached context.
func (s *StockService) AnnounceStockChange(product *catalog.Product, entry *ledger.Entry) {
	if product == nil || entry == nil {
		return
	}

	snapshot := *product
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if s.publisher != nil {
			event := ledger.NewStockLevelChangedEvent(snapshot.TenantID, entry)
			if err := s.publisher.Publish(bg, event); err != nil {
				s.logger.Warn("failed to publish stock level change",
					zap.String("product_id", entry.ProductID.String()), zap.Error(err))
			}
		}

		if s.notifier == nil {
			return
		}
		a := alert.Evaluate(snapshot.TenantID, snapshot.ID, entry.BalanceAfter, snapshot.MinQuantity, snapshot.MaxQuantity)
		if a == nil {
			return
		}
		if err := s.notifier.Notify(bg, a); err != nil {
			s.logger.Warn("failed to deliver stock alert",
				zap.String("product_id", a.ProductID.String()),
				zap.String("type", string(a.Type)), zap.Error(err))
		}
	}()
}
