package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), TypeSale, "SO-2026-0001", uuid.New(), "Acme Retail")
	require.NoError(t, err)
	return o
}

func newSubmittableOrder(t *testing.T) *Order {
	t.Helper()
	o := newTestOrder(t)
	_, err := o.AddItem(uuid.New(), "SKU-1", "Widget", 4,
		decimal.RequireFromString("25.00"),
		decimal.RequireFromString("10"),
		decimal.RequireFromString("8"))
	require.NoError(t, err)
	return o
}

func assertDomainErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestNewOrder(t *testing.T) {
	tests := []struct {
		name             string
		typ              OrderType
		orderNumber      string
		counterpartyID   uuid.UUID
		counterpartyName string
		wantErr          bool
	}{
		{"valid sale order", TypeSale, "SO-1", uuid.New(), "Acme", false},
		{"valid purchase order", TypePurchase, "PO-1", uuid.New(), "Supplier Inc", false},
		{"unknown type", OrderType("transfer"), "XX-1", uuid.New(), "Acme", true},
		{"empty number", TypeSale, "", uuid.New(), "Acme", true},
		{"empty counterparty id", TypeSale, "SO-1", uuid.Nil, "Acme", true},
		{"empty counterparty name", TypeSale, "SO-1", uuid.New(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrder(uuid.New(), tt.typ, tt.orderNumber, tt.counterpartyID, tt.counterpartyName)
			if tt.wantErr {
				assertDomainErrCode(t, err, shared.ErrCodeValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusDraft, o.Status)
			assert.Equal(t, PaymentPending, o.PaymentStatus)
			assert.True(t, o.Totals.Equals(ZeroTotals()))
			assert.Len(t, o.GetDomainEvents(), 1)
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusDraft, StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled}
	allowed := map[Status][]Status{
		StatusDraft:      {StatusPending, StatusCancelled},
		StatusPending:    {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusCompleted, StatusCancelled},
		StatusCompleted:  {},
		StatusCancelled:  {},
	}

	for from, targets := range allowed {
		ok := make(map[Status]bool)
		for _, to := range targets {
			ok[to] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrder_HappyPathLifecycle(t *testing.T) {
	o := newSubmittableOrder(t)

	require.NoError(t, o.Submit())
	assert.Equal(t, StatusPending, o.Status)
	require.NotNil(t, o.SubmittedAt)

	require.NoError(t, o.Confirm())
	assert.Equal(t, StatusConfirmed, o.Status)
	require.NotNil(t, o.ConfirmedAt)

	require.NoError(t, o.StartProcessing())
	assert.Equal(t, StatusProcessing, o.Status)

	require.NoError(t, o.Complete())
	assert.Equal(t, StatusCompleted, o.Status)
	require.NotNil(t, o.CompletedAt)
	assert.True(t, o.IsCompleted())

	// Terminal: nothing leaves completed, ever
	assertDomainErrCode(t, o.Complete(), shared.ErrCodeInvalidTransition)
	assertDomainErrCode(t, o.Cancel("changed mind"), shared.ErrCodeInvalidTransition)
}

func TestOrder_SubmitRequiresItems(t *testing.T) {
	o := newTestOrder(t)
	assertDomainErrCode(t, o.Submit(), shared.ErrCodeValidation)
}

func TestOrder_NoSkippingStates(t *testing.T) {
	o := newSubmittableOrder(t)
	require.NoError(t, o.Submit())

	// pending cannot jump to processing or completed
	assertDomainErrCode(t, o.StartProcessing(), shared.ErrCodeInvalidTransition)
	assertDomainErrCode(t, o.Complete(), shared.ErrCodeInvalidTransition)
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("requires reason", func(t *testing.T) {
		o := newTestOrder(t)
		assertDomainErrCode(t, o.Cancel(""), shared.ErrCodeValidation)
	})

	t.Run("from every non-terminal state", func(t *testing.T) {
		advance := map[string]func(*Order){
			"draft":      func(o *Order) {},
			"pending":    func(o *Order) { require.NoError(t, o.Submit()) },
			"confirmed":  func(o *Order) { require.NoError(t, o.Submit()); require.NoError(t, o.Confirm()) },
			"processing": func(o *Order) { require.NoError(t, o.Submit()); require.NoError(t, o.Confirm()); require.NoError(t, o.StartProcessing()) },
		}
		for name, setup := range advance {
			t.Run(name, func(t *testing.T) {
				o := newSubmittableOrder(t)
				setup(o)
				require.NoError(t, o.Cancel("customer withdrew"))
				assert.Equal(t, StatusCancelled, o.Status)
				assert.Equal(t, "customer withdrew", o.CancelReason)
				require.NotNil(t, o.CancelledAt)
			})
		}
	})

	t.Run("refunds recorded payments", func(t *testing.T) {
		o := newSubmittableOrder(t)
		require.NoError(t, o.Submit())
		require.NoError(t, o.RecordPayment(decimal.RequireFromString("50"), "card"))
		require.NoError(t, o.Cancel("out of stock at supplier"))
		assert.Equal(t, PaymentRefunded, o.PaymentStatus)
	})
}

func TestOrder_EditingRules(t *testing.T) {
	o := newSubmittableOrder(t)
	require.NoError(t, o.Submit())

	// pending is still editable
	_, err := o.AddItem(uuid.New(), "SKU-2", "Gadget", 1, decimal.RequireFromString("5"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, o.SetModifiers(decimal.RequireFromString("5"), decimal.RequireFromString("2.50")))

	require.NoError(t, o.Confirm())

	// confirmed is frozen
	_, err = o.AddItem(uuid.New(), "SKU-3", "Gizmo", 1, decimal.RequireFromString("5"), decimal.Zero, decimal.Zero)
	assertDomainErrCode(t, err, shared.ErrCodeInvalidTransition)
	assertDomainErrCode(t, o.SetModifiers(decimal.Zero, decimal.Zero), shared.ErrCodeInvalidTransition)
	assertDomainErrCode(t, o.ReplaceItems(nil), shared.ErrCodeInvalidTransition)
}

func TestOrder_AddItem(t *testing.T) {
	o := newTestOrder(t)
	productID := uuid.New()

	_, err := o.AddItem(productID, "SKU-1", "Widget", 2, decimal.RequireFromString("10"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, o.Totals.Total.Equal(decimal.RequireFromString("20")))

	// same product twice is rejected
	_, err = o.AddItem(productID, "SKU-1", "Widget", 1, decimal.RequireFromString("10"), decimal.Zero, decimal.Zero)
	assertDomainErrCode(t, err, shared.ErrCodeValidation)

	// invalid quantity leaves totals untouched
	_, err = o.AddItem(uuid.New(), "SKU-2", "Gadget", 0, decimal.RequireFromString("10"), decimal.Zero, decimal.Zero)
	assertDomainErrCode(t, err, shared.ErrCodeValidation)
	assert.Equal(t, 1, o.ItemCount())
	assert.True(t, o.Totals.Total.Equal(decimal.RequireFromString("20")))
}

func TestOrder_ReplaceItemsRecalculatesTotals(t *testing.T) {
	o := newSubmittableOrder(t)
	before := o.Totals

	item, err := NewLineItem(o.ID, uuid.New(), "SKU-9", "Bracket", 10,
		decimal.RequireFromString("1.50"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, o.ReplaceItems([]LineItem{*item}))
	assert.False(t, o.Totals.Equals(before))
	assert.True(t, o.Totals.Total.Equal(decimal.RequireFromString("15")))

	// duplicate products in the replacement set are rejected, keeping the old items
	dup := *item
	err = o.ReplaceItems([]LineItem{*item, dup})
	assertDomainErrCode(t, err, shared.ErrCodeValidation)
	assert.Equal(t, 1, o.ItemCount())
}

func TestOrder_RemoveItem(t *testing.T) {
	o := newTestOrder(t)
	item, err := o.AddItem(uuid.New(), "SKU-1", "Widget", 2, decimal.RequireFromString("10"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, o.RemoveItem(item.ID))
	assert.Equal(t, 0, o.ItemCount())
	assert.True(t, o.Totals.Equals(ZeroTotals()))

	assertDomainErrCode(t, o.RemoveItem(uuid.New()), shared.ErrCodeNotFound)
}

func TestOrder_RecordPayment(t *testing.T) {
	o := newSubmittableOrder(t)
	total := o.Totals.Total // 102.2 without shipping/global modifiers: 100 - 10 + 7.2

	t.Run("partial then paid", func(t *testing.T) {
		require.NoError(t, o.RecordPayment(decimal.RequireFromString("50"), "card"))
		assert.Equal(t, PaymentPartial, o.PaymentStatus)

		remainder := total.Sub(decimal.RequireFromString("50"))
		require.NoError(t, o.RecordPayment(remainder, "bank_transfer"))
		assert.Equal(t, PaymentPaid, o.PaymentStatus)
		assert.True(t, o.AmountPaid.Equal(total))
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		assertDomainErrCode(t, o.RecordPayment(decimal.RequireFromString("0.01"), "cash"), shared.ErrCodeValidation)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		o := newSubmittableOrder(t)
		assertDomainErrCode(t, o.RecordPayment(decimal.Zero, "cash"), shared.ErrCodeValidation)
		assertDomainErrCode(t, o.RecordPayment(decimal.RequireFromString("-5"), "cash"), shared.ErrCodeValidation)
	})

	t.Run("rejected on cancelled order", func(t *testing.T) {
		o := newSubmittableOrder(t)
		require.NoError(t, o.Cancel("duplicate entry"))
		assertDomainErrCode(t, o.RecordPayment(decimal.RequireFromString("1"), "cash"), shared.ErrCodeInvalidTransition)
	})
}

func TestOrder_TransitionTo(t *testing.T) {
	o := newSubmittableOrder(t)

	require.NoError(t, o.TransitionTo(StatusPending, ""))
	require.NoError(t, o.TransitionTo(StatusConfirmed, ""))
	require.NoError(t, o.TransitionTo(StatusProcessing, ""))
	require.NoError(t, o.TransitionTo(StatusCompleted, ""))
	assert.Equal(t, StatusCompleted, o.Status)

	assertDomainErrCode(t, o.TransitionTo(Status("archived"), ""), shared.ErrCodeValidation)
	assertDomainErrCode(t, newTestOrder(t).TransitionTo(StatusConfirmed, ""), shared.ErrCodeInvalidTransition)
}

func TestOrder_VerifyIntegrity(t *testing.T) {
	o := newSubmittableOrder(t)
	require.NoError(t, o.VerifyIntegrity())

	// simulate post-write corruption of the stored totals block
	o.Totals.Total = o.Totals.Total.Add(decimal.RequireFromString("1"))
	assertDomainErrCode(t, o.VerifyIntegrity(), shared.ErrCodeIntegrity)
}

func TestOrder_CanDelete(t *testing.T) {
	o := newSubmittableOrder(t)
	assert.True(t, o.CanDelete())
	require.NoError(t, o.Submit())
	assert.False(t, o.CanDelete())
}
