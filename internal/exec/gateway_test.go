package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/model/enum"
	"main/internal/order"
)

func TestSimGatewayAcknowledgesSubmit(t *testing.T) {
	var events []order.Event
	g, err := NewSimGateway(SimGatewayConfig{
		Clock: clock.NewManual(1_000),
		Sink:  func(e order.Event) { events = append(events, e) },
	})
	require.NoError(t, err)

	o := newLimit(t, "O-A", 100.00, 1)
	require.NoError(t, g.SubmitOrder(NewSubmitOrder(o, "CLIENT-1", "", 1_000)))

	require.Len(t, events, 2)
	assert.Equal(t, enum.OrderEventSubmitted, events[0].Kind)
	assert.Equal(t, enum.OrderEventAccepted, events[1].Kind)
	assert.NotEmpty(t, events[1].VenueOrderID)
}

func TestSimGatewayResendAfterReconnect(t *testing.T) {
	g, err := NewSimGateway(SimGatewayConfig{
		Clock:             clock.NewManual(1_000),
		Sink:              func(order.Event) {},
		ResendOnReconnect: true,
	})
	require.NoError(t, err)

	g.Disconnect()
	o := newLimit(t, "O-A", 100.00, 1)
	err = g.SubmitOrder(NewSubmitOrder(o, "CLIENT-1", "", 1_000))
	require.Error(t, err)

	resend := g.Reconnect()
	require.Len(t, resend, 1)
	assert.Equal(t, o.ClientOrderID, resend[0].ClientOrderID)
}

func TestClientSubmitFailureSynthesizesRejection(t *testing.T) {
	b := bus.New()
	cache := NewMemCache()
	clk := clock.NewManual(1_000)

	g, err := NewSimGateway(SimGatewayConfig{Clock: clk, Sink: func(order.Event) {}})
	require.NoError(t, err)
	g.Disconnect()

	client, err := NewClient(g, b, clk, cache)
	require.NoError(t, err)

	o := newLimit(t, "O-A", 100.00, 1)
	cache.AddOrder(o)

	var published []order.Event
	require.NoError(t, b.Subscribe("events.order.*", bus.HandlerFunc("rec", func(msg any) {
		published = append(published, msg.(order.Event))
	}), 0))

	client.Submit(NewSubmitOrder(o, "CLIENT-1", "", 1_000))

	require.Len(t, published, 1)
	assert.Equal(t, enum.OrderEventRejected, published[0].Kind)
	assert.Contains(t, published[0].Reason, "disconnected")
	assert.Equal(t, enum.OrderStatusRejected, o.Status)
}

func TestClientCancelFailureSurfacesCancelRejected(t *testing.T) {
	b := bus.New()
	cache := NewMemCache()
	clk := clock.NewManual(1_000)

	g, err := NewSimGateway(SimGatewayConfig{Clock: clk, Sink: func(order.Event) {}})
	require.NoError(t, err)

	client, err := NewClient(g, b, clk, cache)
	require.NoError(t, err)

	o := newLimit(t, "O-A", 100.00, 1)
	cache.AddOrder(o)
	accept(t, o)
	require.NoError(t, o.Apply(order.NewPendingCancel(o, 4, 4)))

	g.Disconnect()

	var published []order.Event
	require.NoError(t, b.Subscribe("events.order.*", bus.HandlerFunc("rec", func(msg any) {
		published = append(published, msg.(order.Event))
	}), 0))

	client.Cancel(CancelOrder{ClientOrderID: "O-A", InstrumentID: o.InstrumentID})

	require.Len(t, published, 1)
	assert.Equal(t, enum.OrderEventCancelRejected, published[0].Kind)
	assert.Equal(t, enum.OrderStatusAccepted, o.Status)
}

func TestReporterPublishesOnClientTopic(t *testing.T) {
	b := bus.New()
	r := NewReporter(b)

	var got []any
	require.NoError(t, b.Subscribe("reports.CLIENT-1", bus.HandlerFunc("rec", func(msg any) {
		got = append(got, msg)
	}), 0))

	o := newLimit(t, "O-A", 100.00, 1)
	r.PublishOrderStatus("CLIENT-1", StatusReportOf(o, 1_000))
	require.Len(t, got, 1)
	report, ok := got[0].(OrderStatusReport)
	require.True(t, ok)
	assert.Equal(t, enum.OrderStatusInitialized, report.OrderStatus)

	var account any
	require.NoError(t, b.Register(EndpointUpdateAccount, bus.HandlerFunc("portfolio", func(msg any) {
		account = msg
	})))
	r.UpdateAccount(AccountState{AccountID: "SIM-001"})
	require.NotNil(t, account)
}
