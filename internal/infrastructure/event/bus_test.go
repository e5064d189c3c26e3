package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/domain/alert"
	"github.com/inventra/backend/internal/domain/shared"
)

// recordingHandler collects the events it receives
type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) received() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func newTestEvent(eventType string) shared.DomainEvent {
	ev := shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), uuid.New())
	return &ev
}

func TestInMemoryEventBus_PublishRoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	orders := &recordingHandler{types: []string{"order.created"}}
	everything := &recordingHandler{}
	bus.Subscribe(orders)
	bus.Subscribe(everything)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("stock.level_changed")))

	assert.Equal(t, 1, orders.received(), "typed handler only sees its type")
	assert.Equal(t, 2, everything.received(), "wildcard handler sees all events")
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"order.created"}, err: errors.New("handler broke")}
	healthy := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Equal(t, 1, healthy.received())
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"order.created"}, panics: true}
	healthy := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("order.created"))
	})
	assert.Equal(t, 1, healthy.received())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Zero(t, handler.received())
}

func TestInMemoryEventBus_Stop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.NoError(t, bus.Stop(context.Background()))
}

func TestBusNotifier_PublishesAlertEvent(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	received := &recordingHandler{types: []string{EventTypeStockAlertRaised}}
	bus.Subscribe(received)

	notifier := NewBusNotifier(bus, zap.NewNop())
	a := alert.Evaluate(uuid.New(), uuid.New(), 0, 5, 0)
	require.NotNil(t, a)

	require.NoError(t, notifier.Notify(context.Background(), a))
	require.Equal(t, 1, received.received())

	raised, ok := received.events[0].(*StockAlertRaisedEvent)
	require.True(t, ok)
	assert.Equal(t, alert.TypeOutOfStock, raised.Alert.Type)
	assert.Equal(t, a.TenantID, raised.TenantID())
}
