package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appledger "github.com/inventra/backend/internal/application/ledger"
	"github.com/inventra/backend/internal/domain/catalog"
	"github.com/inventra/backend/internal/domain/ledger"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/shared"
)

// Service drives orders through their lifecycle. Every operation that can
// change totals or state runs inside one transaction scope, so line items,
// totals, the status flag and any ledger entries always commit together.
type Service struct {
	scope     appledger.TransactionScope
	stock     *appledger.StockService
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new order Service. The publisher is optional.
func NewService(scope appledger.TransactionScope, stock *appledger.StockService, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:     scope,
		stock:     stock,
		publisher: publisher,
		logger:    logger,
	}
}

// Create creates a new order in draft status. Unit prices and tax rates are
// snapshotted from the products unless the request overrides them.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		number, err := repos.Orders().GenerateNumber(ctx, tenantID, req.Type)
		if err != nil {
			return err
		}

		o, err = order.NewOrder(tenantID, req.Type, number, req.CounterpartyID, req.CounterpartyName)
		if err != nil {
			return err
		}
		if req.CreatedBy != nil {
			o.SetCreatedBy(*req.CreatedBy)
		}

		items, err := s.buildLineItems(ctx, repos, tenantID, o, req.Items)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := o.ReplaceItems(items); err != nil {
				return err
			}
		}
		if err := o.SetModifiers(req.GlobalDiscountPct, req.ShippingCost); err != nil {
			return err
		}
		if req.Notes != "" {
			o.SetNotes(req.Notes)
		}

		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	return toOrderResponse(o), nil
}

// Update replaces the line items and modifiers of an editable order and
// recomputes its totals
func (s *Service) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		o, err = s.loadVerified(ctx, repos, tenantID, orderID)
		if err != nil {
			return err
		}

		items, err := s.buildLineItems(ctx, repos, tenantID, o, req.Items)
		if err != nil {
			return err
		}
		if err := o.ReplaceItems(items); err != nil {
			return err
		}
		if err := o.SetModifiers(req.GlobalDiscountPct, req.ShippingCost); err != nil {
			return err
		}
		if req.Notes != nil {
			o.SetNotes(*req.Notes)
		}

		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	return toOrderResponse(o), nil
}

// Transition moves an order to the requested lifecycle state. Reaching
// completed records one ledger entry per line item in the same transaction
// as the status write: outbound for sale orders, inbound for purchases.
func (s *Service) Transition(ctx context.Context, tenantID, orderID uuid.UUID, req TransitionRequest) (*OrderResponse, error) {
	type movement struct {
		entry   *ledger.Entry
		product *catalog.Product
	}

	var (
		o         *order.Order
		movements []movement
	)
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		movements = movements[:0]

		var err error
		o, err = s.loadVerified(ctx, repos, tenantID, orderID)
		if err != nil {
			return err
		}

		if err := o.TransitionTo(req.Target, req.Reason); err != nil {
			return err
		}

		if o.IsCompleted() {
			for i := range o.Items {
				item := &o.Items[i]
				delta := item.Quantity
				cause := ledger.CausePurchase
				if o.Type == order.TypeSale {
					delta = -delta
					cause = ledger.CauseSale
				}

				entry, product, err := s.stock.RecordMovement(ctx, repos, appledger.MovementCommand{
					TenantID:  tenantID,
					ProductID: item.ProductID,
					Delta:     delta,
					Cause:     cause,
					OrderID:   &o.ID,
					UnitValue: item.UnitPrice,
					CreatedBy: o.CreatedBy,
				})
				if err != nil {
					return err
				}
				movements = append(movements, movement{entry: entry, product: product})
			}
		}

		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	for _, m := range movements {
		s.stock.AnnounceStockChange(m.product, m.entry)
	}

	return toOrderResponse(o), nil
}

// RecordPayment records a payment against an order
func (s *Service) RecordPayment(ctx context.Context, tenantID, orderID uuid.UUID, req RecordPaymentRequest) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		o, err = s.loadVerified(ctx, repos, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := o.RecordPayment(req.Amount, req.Method); err != nil {
			return err
		}
		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	return toOrderResponse(o), nil
}

// Get retrieves an order. Totals are verified against recomputation on
// every load; a mismatch surfaces as an integrity failure.
func (s *Service) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		o, err = s.loadVerified(ctx, repos, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// List retrieves orders for a tenant with pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	var page *shared.Paginated[order.Order]
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		page, err = repos.Orders().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *toOrderResponse(&page.Items[i]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Delete removes an order. Only drafts can be deleted.
func (s *Service) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		o, err := repos.Orders().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !o.CanDelete() {
			return shared.NewDomainError(shared.ErrCodeInvalidTransition, "Only draft orders can be deleted").
				WithDetail("current_status", o.Status.String())
		}
		return repos.Orders().DeleteForTenant(ctx, tenantID, orderID)
	})
}

func (s *Service) loadVerified(ctx context.Context, repos appledger.TransactionalRepositories, tenantID, orderID uuid.UUID) (*order.Order, error) {
	o, err := repos.Orders().FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.VerifyIntegrity(); err != nil {
		s.logger.Error("order totals failed integrity verification",
			zap.String("order_id", o.ID.String()),
			zap.String("order_number", o.OrderNumber))
		return nil, err
	}
	return o, nil
}

func (s *Service) buildLineItems(ctx context.Context, repos appledger.TransactionalRepositories, tenantID uuid.UUID, o *order.Order, reqs []LineItemRequest) ([]order.LineItem, error) {
	items := make([]order.LineItem, 0, len(reqs))
	for _, req := range reqs {
		product, err := repos.Products().FindByIDForTenant(ctx, tenantID, req.ProductID)
		if err != nil {
			return nil, err
		}

		price := product.SellingPrice
		if o.Type == order.TypePurchase {
			price = product.CostPrice
		}
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}

		taxRate := product.TaxRate
		if req.TaxRatePct != nil {
			taxRate = *req.TaxRatePct
		}

		item, err := order.NewLineItem(o.ID, product.ID, product.SKU, product.Name, req.Quantity, price, req.DiscountPct, taxRate)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.publisher == nil || o == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_id", o.ID.String()), zap.Error(err))
	}
	o.ClearDomainEvents()
}
