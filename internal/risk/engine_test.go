package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/exec"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/order"
)

func newLimit(t *testing.T, id model.ClientOrderID, side enum.OrderSide, px, qty float64) *order.Order {
	t.Helper()
	price := model.MustPrice(px, 2)
	o, err := order.NewOrder(order.Config{
		TraderID:      "TRADER-001",
		StrategyID:    "S-001",
		InstrumentID:  "ETHUSDT-PERP.SIM",
		ClientOrderID: id,
		Side:          side,
		OrderType:     enum.OrderTypeLimit,
		Quantity:      model.MustQuantity(qty, 0),
		TimeInForce:   enum.TimeInForceGTC,
		Price:         &price,
		TsInit:        1,
	})
	require.NoError(t, err)
	return o
}

func TestEvaluateKillSwitch(t *testing.T) {
	e := NewEngine(Config{KillSwitch: true})
	o := newLimit(t, "O-A", enum.OrderSideBuy, 100.00, 1)

	d := e.Evaluate(o, StateView{Now: 1})
	assert.Equal(t, ActionDeny, d.Action)
	assert.Equal(t, ReasonKillSwitch, d.Reason)
}

func TestEvaluateRateLimitWindow(t *testing.T) {
	e := NewEngine(Config{OrderRateLimit: 2, OrderRateWindow: time.Second})
	o := newLimit(t, "O-A", enum.OrderSideBuy, 100.00, 1)

	now := int64(1_000)
	assert.Equal(t, ActionAllow, e.Evaluate(o, StateView{Now: now}).Action)
	assert.Equal(t, ActionAllow, e.Evaluate(o, StateView{Now: now}).Action)

	d := e.Evaluate(o, StateView{Now: now})
	assert.Equal(t, ActionDeny, d.Action)
	assert.Equal(t, ReasonRateLimit, d.Reason)

	// A new window clears the count.
	later := now + int64(time.Second)
	assert.Equal(t, ActionAllow, e.Evaluate(o, StateView{Now: later}).Action)
}

func TestEvaluateMaxOrderQty(t *testing.T) {
	e := NewEngine(Config{MaxOrderQty: 5})

	ok := newLimit(t, "O-A", enum.OrderSideBuy, 100.00, 5)
	assert.Equal(t, ActionAllow, e.Evaluate(ok, StateView{Now: 1}).Action)

	big := newLimit(t, "O-B", enum.OrderSideBuy, 100.00, 6)
	d := e.Evaluate(big, StateView{Now: 1})
	assert.Equal(t, ActionDeny, d.Action)
	assert.Equal(t, ReasonMaxQty, d.Reason)
}

func TestEvaluatePriceBand(t *testing.T) {
	e := NewEngine(Config{MaxPriceDeviationBps: 100}) // 1%
	ref := model.MustPrice(100.00, 2)

	near := newLimit(t, "O-A", enum.OrderSideBuy, 100.50, 1)
	assert.Equal(t, ActionAllow, e.Evaluate(near, StateView{ReferencePrice: ref, Now: 1}).Action)

	far := newLimit(t, "O-B", enum.OrderSideBuy, 102.00, 1)
	d := e.Evaluate(far, StateView{ReferencePrice: ref, Now: 1})
	assert.Equal(t, ActionDeny, d.Action)
	assert.Equal(t, ReasonPriceBand, d.Reason)
}

func TestEvaluateMaxNotional(t *testing.T) {
	e := NewEngine(Config{MaxOrderNotional: 500})

	ok := newLimit(t, "O-A", enum.OrderSideBuy, 100.00, 5)
	assert.Equal(t, ActionAllow, e.Evaluate(ok, StateView{Now: 1}).Action)

	big := newLimit(t, "O-B", enum.OrderSideBuy, 100.00, 6)
	d := e.Evaluate(big, StateView{Now: 1})
	assert.Equal(t, ActionDeny, d.Action)
	assert.Equal(t, ReasonMaxNotional, d.Reason)
}

func TestEvaluatePositionLimit(t *testing.T) {
	e := NewEngine(Config{MaxPosition: 10})

	buy := newLimit(t, "O-A", enum.OrderSideBuy, 100.00, 4)
	assert.Equal(t, ActionAllow, e.Evaluate(buy, StateView{Position: 6, Now: 1}).Action)

	d := e.Evaluate(buy, StateView{Position: 7, Now: 1})
	assert.Equal(t, ActionDeny, d.Action)
	assert.Equal(t, ReasonPositionLimit, d.Reason)

	// A sell that grows a short position is checked the same way.
	sell := newLimit(t, "O-B", enum.OrderSideSell, 100.00, 4)
	d = e.Evaluate(sell, StateView{Position: -7, Now: 1})
	assert.Equal(t, ActionDeny, d.Action)
	assert.Equal(t, ReasonPositionLimit, d.Reason)

	// A sell that reduces a long position is fine.
	assert.Equal(t, ActionAllow, e.Evaluate(sell, StateView{Position: 7, Now: 1}).Action)
}

func TestBusEngineDeniesAndPublishes(t *testing.T) {
	b := bus.New()
	clk := clock.NewManual(1_000)
	e := NewBusEngine(NewEngine(Config{KillSwitch: true}), b, clk)
	require.NoError(t, e.Register())

	var published []order.Event
	require.NoError(t, b.Subscribe("events.order.*", bus.HandlerFunc("rec", func(msg any) {
		published = append(published, msg.(order.Event))
	}), 0))

	o := newLimit(t, "O-A", enum.OrderSideBuy, 100.00, 1)
	b.Send(exec.EndpointRiskExecute, exec.NewSubmitOrder(o, "CLIENT-1", "", 1_000))

	require.Len(t, published, 1)
	assert.Equal(t, enum.OrderEventDenied, published[0].Kind)
	assert.Equal(t, string(ReasonKillSwitch), published[0].Reason)
	assert.Equal(t, enum.OrderStatusDenied, o.Status)
}

func TestBusEngineForwardsAllowed(t *testing.T) {
	b := bus.New()
	clk := clock.NewManual(1_000)
	e := NewBusEngine(NewEngine(Config{}), b, clk)
	require.NoError(t, e.Register())

	var forwarded any
	require.NoError(t, b.Register(exec.EndpointExecExecute, bus.HandlerFunc("exec", func(msg any) {
		forwarded = msg
	})))

	o := newLimit(t, "O-A", enum.OrderSideBuy, 100.00, 1)
	b.Send(exec.EndpointRiskExecute, exec.NewSubmitOrder(o, "CLIENT-1", "", 1_000))

	cmd, ok := forwarded.(exec.SubmitOrder)
	require.True(t, ok)
	assert.Equal(t, model.ClientOrderID("O-A"), cmd.ClientOrderID)
	assert.Equal(t, enum.OrderStatusInitialized, o.Status)
}

func TestBusEngineForwardsCancelsUnchecked(t *testing.T) {
	b := bus.New()
	e := NewBusEngine(NewEngine(Config{KillSwitch: true}), b, clock.NewManual(1_000))
	require.NoError(t, e.Register())

	var forwarded any
	require.NoError(t, b.Register(exec.EndpointExecExecute, bus.HandlerFunc("exec", func(msg any) {
		forwarded = msg
	})))

	b.Send(exec.EndpointRiskExecute, exec.CancelOrder{ClientOrderID: "O-A"})
	_, ok := forwarded.(exec.CancelOrder)
	require.True(t, ok)
}
