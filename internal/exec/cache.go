package exec

import (
	"main/internal/model"
	"main/internal/order"
)

// Cache is the execution state the manager consults. The engine owns the
// canonical implementation; tests may substitute an in-memory one.
type Cache interface {
	Order(id model.ClientOrderID) (*order.Order, bool)
	PositionID(id model.ClientOrderID) (model.PositionID, bool)
	ClientID(id model.ClientOrderID) (model.ClientID, bool)

	// Spawn aggregates sum quantities across every order produced by one
	// execution algorithm spawn. activeOnly excludes closed orders from
	// the sum.
	ExecSpawnTotalFilledQty(spawnID model.ClientOrderID, activeOnly bool) (model.Quantity, bool)
	ExecSpawnTotalLeavesQty(spawnID model.ClientOrderID, activeOnly bool) (model.Quantity, bool)
	ExecSpawnTotalQuantity(spawnID model.ClientOrderID, activeOnly bool) (model.Quantity, bool)

	IsOrderPendingCancelLocal(id model.ClientOrderID) bool
}

// MemCache is the in-memory Cache used by the engine core.
type MemCache struct {
	orders             map[model.ClientOrderID]*order.Order
	positionIDs        map[model.ClientOrderID]model.PositionID
	clientIDs          map[model.ClientOrderID]model.ClientID
	spawns             map[model.ClientOrderID][]model.ClientOrderID
	pendingCancelLocal map[model.ClientOrderID]bool
}

func NewMemCache() *MemCache {
	return &MemCache{
		orders:             make(map[model.ClientOrderID]*order.Order),
		positionIDs:        make(map[model.ClientOrderID]model.PositionID),
		clientIDs:          make(map[model.ClientOrderID]model.ClientID),
		spawns:             make(map[model.ClientOrderID][]model.ClientOrderID),
		pendingCancelLocal: make(map[model.ClientOrderID]bool),
	}
}

// AddOrder indexes an order, including into its exec spawn set if any.
func (c *MemCache) AddOrder(o *order.Order) {
	c.orders[o.ClientOrderID] = o
	if o.ExecSpawnID != "" {
		c.spawns[o.ExecSpawnID] = append(c.spawns[o.ExecSpawnID], o.ClientOrderID)
	}
}

func (c *MemCache) SetPositionID(id model.ClientOrderID, positionID model.PositionID) {
	c.positionIDs[id] = positionID
}

func (c *MemCache) SetClientID(id model.ClientOrderID, clientID model.ClientID) {
	c.clientIDs[id] = clientID
}

func (c *MemCache) SetPendingCancelLocal(id model.ClientOrderID, pending bool) {
	c.pendingCancelLocal[id] = pending
}

func (c *MemCache) Order(id model.ClientOrderID) (*order.Order, bool) {
	o, ok := c.orders[id]
	return o, ok
}

func (c *MemCache) PositionID(id model.ClientOrderID) (model.PositionID, bool) {
	p, ok := c.positionIDs[id]
	return p, ok
}

func (c *MemCache) ClientID(id model.ClientOrderID) (model.ClientID, bool) {
	cl, ok := c.clientIDs[id]
	return cl, ok
}

func (c *MemCache) ExecSpawnTotalFilledQty(spawnID model.ClientOrderID, activeOnly bool) (model.Quantity, bool) {
	return c.spawnSum(spawnID, activeOnly, func(o *order.Order) model.Quantity {
		return o.FilledQty
	})
}

func (c *MemCache) ExecSpawnTotalLeavesQty(spawnID model.ClientOrderID, activeOnly bool) (model.Quantity, bool) {
	return c.spawnSum(spawnID, activeOnly, func(o *order.Order) model.Quantity {
		return o.LeavesQty
	})
}

func (c *MemCache) ExecSpawnTotalQuantity(spawnID model.ClientOrderID, activeOnly bool) (model.Quantity, bool) {
	return c.spawnSum(spawnID, activeOnly, func(o *order.Order) model.Quantity {
		return o.Quantity
	})
}

func (c *MemCache) IsOrderPendingCancelLocal(id model.ClientOrderID) bool {
	return c.pendingCancelLocal[id]
}

func (c *MemCache) spawnSum(spawnID model.ClientOrderID, activeOnly bool, pick func(*order.Order) model.Quantity) (model.Quantity, bool) {
	ids, ok := c.spawns[spawnID]
	if !ok {
		return model.Quantity{}, false
	}
	var total model.Quantity
	var seeded bool
	for _, id := range ids {
		o, ok := c.orders[id]
		if !ok {
			continue
		}
		if activeOnly && o.IsClosed() {
			continue
		}
		q := pick(o)
		if !seeded {
			total = model.ZeroQuantity(q.Precision)
			seeded = true
		}
		total = total.Add(q)
	}
	if !seeded {
		return model.Quantity{}, false
	}
	return total, true
}
