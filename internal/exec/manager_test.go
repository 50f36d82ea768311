package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/order"
)

func newLimit(t *testing.T, id model.ClientOrderID, px float64, qty float64) *order.Order {
	t.Helper()
	price := model.MustPrice(px, 2)
	o, err := order.NewOrder(order.Config{
		TraderID:      "TRADER-001",
		StrategyID:    "S-001",
		InstrumentID:  "ETHUSDT-PERP.SIM",
		ClientOrderID: id,
		Side:          enum.OrderSideBuy,
		OrderType:     enum.OrderTypeLimit,
		Quantity:      model.MustQuantity(qty, 0),
		TimeInForce:   enum.TimeInForceGTC,
		Price:         &price,
		TsInit:        1,
	})
	require.NoError(t, err)
	return o
}

func accept(t *testing.T, o *order.Order) {
	t.Helper()
	require.NoError(t, o.Apply(order.NewSubmitted(o, "SIM-001", 2, 2)))
	require.NoError(t, o.Apply(order.NewAccepted(o, model.VenueOrderID("V-"+o.ClientOrderID), "SIM-001", 3, 3)))
}

func fillAll(t *testing.T, o *order.Order) order.Event {
	t.Helper()
	e := order.NewFilled(o, o.VenueOrderID, "T-1", o.Quantity, *o.Price, enum.LiquiditySideTaker, nil, 4, 4)
	require.NoError(t, o.Apply(e))
	return e
}

type managerFixture struct {
	manager  *Manager
	cache    *MemCache
	bus      *bus.Bus
	canceled []model.ClientOrderID
	modified map[model.ClientOrderID]model.Quantity
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	f := &managerFixture{
		cache:    NewMemCache(),
		bus:      bus.New(),
		modified: make(map[model.ClientOrderID]model.Quantity),
	}
	m, err := NewManager(ManagerConfig{
		Clock: clock.NewManual(1_000),
		Cache: f.cache,
		Bus:   f.bus,
		CancelHandler: func(o *order.Order) {
			f.canceled = append(f.canceled, o.ClientOrderID)
		},
		ModifyHandler: func(o *order.Order, q model.Quantity) {
			f.modified[o.ClientOrderID] = q
		},
	})
	require.NoError(t, err)
	f.manager = m
	return f
}

func TestOCOFillCancelsOtherSide(t *testing.T) {
	f := newManagerFixture(t)

	a := newLimit(t, "O-A", 100.00, 1)
	b := newLimit(t, "O-B", 99.00, 1)
	a.ContingencyType = enum.ContingencyOCO
	a.LinkedOrderIDs = []model.ClientOrderID{"O-B"}
	b.ContingencyType = enum.ContingencyOCO
	b.LinkedOrderIDs = []model.ClientOrderID{"O-A"}
	f.cache.AddOrder(a)
	f.cache.AddOrder(b)

	accept(t, a)
	accept(t, b)

	e := fillAll(t, a)
	assert.Equal(t, enum.OrderStatusFilled, a.Status)

	f.manager.HandleEvent(e)
	require.Equal(t, []model.ClientOrderID{"O-B"}, f.canceled)

	// The venue acknowledges the cancellation.
	require.NoError(t, b.Apply(order.NewCanceled(b, 5, 5)))
	assert.Equal(t, enum.OrderStatusCanceled, b.Status)
}

func TestOCOFillSkipsClosedContingent(t *testing.T) {
	f := newManagerFixture(t)

	a := newLimit(t, "O-A", 100.00, 1)
	b := newLimit(t, "O-B", 99.00, 1)
	a.ContingencyType = enum.ContingencyOCO
	a.LinkedOrderIDs = []model.ClientOrderID{"O-B"}
	f.cache.AddOrder(a)
	f.cache.AddOrder(b)

	accept(t, a)
	accept(t, b)
	require.NoError(t, b.Apply(order.NewCanceled(b, 4, 4)))

	f.manager.HandleEvent(fillAll(t, a))
	assert.Empty(t, f.canceled)
}

func TestOCOMissingLinkedOrderPanics(t *testing.T) {
	f := newManagerFixture(t)

	a := newLimit(t, "O-A", 100.00, 1)
	a.ContingencyType = enum.ContingencyOCO
	a.LinkedOrderIDs = []model.ClientOrderID{"O-MISSING"}
	f.cache.AddOrder(a)
	accept(t, a)
	e := fillAll(t, a)

	defer func() {
		if recover() == nil {
			t.Fatal("missing linked order should panic")
		}
	}()
	f.manager.HandleEvent(e)
}

func TestOTOParentCanceledCancelsChild(t *testing.T) {
	f := newManagerFixture(t)

	parent := newLimit(t, "O-P", 100.00, 2)
	child := newLimit(t, "O-C", 99.00, 2)
	parent.ContingencyType = enum.ContingencyOTO
	parent.LinkedOrderIDs = []model.ClientOrderID{"O-C"}
	child.ContingencyType = enum.ContingencyOTO
	child.ParentOrderID = "O-P"
	f.cache.AddOrder(parent)
	f.cache.AddOrder(child)

	accept(t, parent)
	accept(t, child)
	require.NoError(t, parent.Apply(order.NewCanceled(parent, 4, 4)))

	f.manager.HandleEvent(order.NewCanceled(parent, 4, 4))
	assert.Equal(t, []model.ClientOrderID{"O-C"}, f.canceled)
}

func TestOUOFillResizesContingent(t *testing.T) {
	f := newManagerFixture(t)

	a := newLimit(t, "O-A", 100.00, 10)
	b := newLimit(t, "O-B", 99.00, 10)
	a.ContingencyType = enum.ContingencyOUO
	a.LinkedOrderIDs = []model.ClientOrderID{"O-B"}
	f.cache.AddOrder(a)
	f.cache.AddOrder(b)

	accept(t, a)
	accept(t, b)

	// Partial fill on A leaves 6; B must shrink to match.
	e := order.NewFilled(a, a.VenueOrderID, "T-1",
		model.MustQuantity(4, 0), *a.Price, enum.LiquiditySideTaker, nil, 4, 4)
	require.NoError(t, a.Apply(e))

	f.manager.HandleEvent(e)
	got, ok := f.modified["O-B"]
	require.True(t, ok)
	assert.Equal(t, "6", got.String())
}

func TestContingencyUpdateResizesLinked(t *testing.T) {
	f := newManagerFixture(t)

	a := newLimit(t, "O-A", 100.00, 10)
	b := newLimit(t, "O-B", 99.00, 10)
	a.ContingencyType = enum.ContingencyOCO
	a.LinkedOrderIDs = []model.ClientOrderID{"O-B"}
	f.cache.AddOrder(a)
	f.cache.AddOrder(b)

	accept(t, a)
	accept(t, b)

	newQty := model.MustQuantity(7, 0)
	e := order.NewUpdated(a, &newQty, nil, nil, 4, 4)
	require.NoError(t, a.Apply(e))

	f.manager.HandleEvent(e)
	got, ok := f.modified["O-B"]
	require.True(t, ok)
	assert.Equal(t, "7", got.String())
}

func TestUnknownOrderEventLogsAndDrops(t *testing.T) {
	f := newManagerFixture(t)
	e := order.Event{Kind: enum.OrderEventFilled, ClientOrderID: "O-GHOST"}
	f.manager.HandleEvent(e)
	assert.Empty(t, f.canceled)
}

func TestCancelOrderSkipsPendingCancelLocal(t *testing.T) {
	f := newManagerFixture(t)
	a := newLimit(t, "O-A", 100.00, 1)
	f.cache.AddOrder(a)
	accept(t, a)

	f.cache.SetPendingCancelLocal("O-A", true)
	f.manager.CancelOrder(a)
	assert.Empty(t, f.canceled)

	f.cache.SetPendingCancelLocal("O-A", false)
	f.manager.CancelOrder(a)
	assert.Equal(t, []model.ClientOrderID{"O-A"}, f.canceled)
}

func TestCreateNewSubmitOrderRoutesToRisk(t *testing.T) {
	f := newManagerFixture(t)

	var gotRisk any
	require.NoError(t, f.bus.Register(EndpointRiskExecute, bus.HandlerFunc("risk", func(msg any) {
		gotRisk = msg
	})))

	a := newLimit(t, "O-A", 100.00, 1)
	f.cache.AddOrder(a)

	require.NoError(t, f.manager.CreateNewSubmitOrder(a, "", "CLIENT-1"))
	cmd, ok := gotRisk.(SubmitOrder)
	require.True(t, ok)
	assert.Equal(t, model.ClientOrderID("O-A"), cmd.ClientOrderID)

	cached, ok := f.manager.PopSubmitOrderCommand("O-A")
	require.True(t, ok)
	assert.Equal(t, cmd.CommandID, cached.CommandID)
}

func TestCreateNewSubmitOrderRoutesToAlgo(t *testing.T) {
	f := newManagerFixture(t)

	var gotAlgo any
	require.NoError(t, f.bus.Register("TWAP.execute", bus.HandlerFunc("twap", func(msg any) {
		gotAlgo = msg
	})))

	a := newLimit(t, "O-A", 100.00, 1)
	a.ExecAlgorithmID = "TWAP"
	f.cache.AddOrder(a)

	require.NoError(t, f.manager.CreateNewSubmitOrder(a, "", "CLIENT-1"))
	cmd, ok := gotAlgo.(SubmitOrder)
	require.True(t, ok)
	assert.Equal(t, model.ExecAlgorithmID("TWAP"), cmd.ExecAlgorithmID)
}

func TestCreateNewSubmitOrderRequiresClientID(t *testing.T) {
	f := newManagerFixture(t)
	a := newLimit(t, "O-A", 100.00, 1)
	if err := f.manager.CreateNewSubmitOrder(a, "", ""); err == nil {
		t.Fatal("missing client id should fail")
	}
}

func TestSpawnAggregates(t *testing.T) {
	c := NewMemCache()

	p1 := model.MustPrice(100.00, 2)
	for i, qty := range []float64{4, 6} {
		o, err := order.NewOrder(order.Config{
			TraderID:      "TRADER-001",
			StrategyID:    "S-001",
			InstrumentID:  "ETHUSDT-PERP.SIM",
			ClientOrderID: model.ClientOrderID([]string{"O-S1", "O-S2"}[i]),
			Side:          enum.OrderSideBuy,
			OrderType:     enum.OrderTypeLimit,
			Quantity:      model.MustQuantity(qty, 0),
			TimeInForce:   enum.TimeInForceGTC,
			Price:         &p1,
			ExecSpawnID:   "O-SPAWN",
			TsInit:        1,
		})
		require.NoError(t, err)
		c.AddOrder(o)
	}

	total, ok := c.ExecSpawnTotalQuantity("O-SPAWN", true)
	require.True(t, ok)
	assert.Equal(t, "10", total.String())

	leaves, ok := c.ExecSpawnTotalLeavesQty("O-SPAWN", true)
	require.True(t, ok)
	assert.Equal(t, "10", leaves.String())

	_, ok = c.ExecSpawnTotalFilledQty("O-NONE", true)
	assert.False(t, ok)
}
