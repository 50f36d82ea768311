package book

import (
	"fmt"

	"github.com/shopspring/decimal"

	"main/internal/model"
)

// Level is a discrete price level holding its orders in FIFO order.
//
// Orders live in a map keyed by order ID with a parallel key slice that
// preserves insertion order. Replacing an existing order keeps its position
// in the queue; only a remove-and-add moves it to the back.
type Level struct {
	Price BookPrice

	keys   []uint64
	orders map[uint64]BookOrder
}

func NewLevel(price BookPrice) *Level {
	return &Level{
		Price:  price,
		orders: make(map[uint64]BookOrder),
	}
}

// LevelFromOrder builds a level keyed by the order's price and seeds it.
func LevelFromOrder(order BookOrder) *Level {
	l := NewLevel(order.ToBookPrice())
	l.Add(order)
	return l
}

func (l *Level) Len() int {
	return len(l.keys)
}

func (l *Level) IsEmpty() bool {
	return len(l.keys) == 0
}

// First returns the order at the front of the queue.
func (l *Level) First() (BookOrder, bool) {
	if len(l.keys) == 0 {
		return BookOrder{}, false
	}
	return l.orders[l.keys[0]], true
}

// Orders returns the level's orders in FIFO order.
func (l *Level) Orders() []BookOrder {
	out := make([]BookOrder, 0, len(l.keys))
	for _, id := range l.keys {
		out = append(out, l.orders[id])
	}
	return out
}

// Add appends an order to the back of the queue.
// Panics when the order's price differs from the level price.
func (l *Level) Add(order BookOrder) {
	if !order.Price.Equal(l.Price.Value) {
		panic(fmt.Sprintf("order price %s does not match level price %s", order.Price, l.Price.Value))
	}
	if _, ok := l.orders[order.OrderID]; !ok {
		l.keys = append(l.keys, order.OrderID)
	}
	l.orders[order.OrderID] = order
}

// Update replaces an order in place, keeping its queue position. A zero size
// removes the order. Panics when the order's price differs from the level price.
func (l *Level) Update(order BookOrder) {
	if !order.Price.Equal(l.Price.Value) {
		panic(fmt.Sprintf("order price %s does not match level price %s", order.Price, l.Price.Value))
	}
	if order.Size.IsZero() {
		l.removeKey(order.OrderID)
		delete(l.orders, order.OrderID)
		return
	}
	if _, ok := l.orders[order.OrderID]; !ok {
		l.keys = append(l.keys, order.OrderID)
	}
	l.orders[order.OrderID] = order
}

// Delete removes an order if present.
func (l *Level) Delete(orderID uint64) {
	if _, ok := l.orders[orderID]; !ok {
		return
	}
	l.removeKey(orderID)
	delete(l.orders, orderID)
}

// RemoveByID removes an order, panicking when it is absent. The sequence and
// event timestamp identify the offending delta in the panic message.
func (l *Level) RemoveByID(orderID uint64, sequence uint64, tsEvent int64) {
	if _, ok := l.orders[orderID]; !ok {
		panic(fmt.Sprintf("order %d not found at level %s (sequence=%d, ts_event=%d)",
			orderID, l.Price.Value, sequence, tsEvent))
	}
	l.removeKey(orderID)
	delete(l.orders, orderID)
}

// Size returns the summed size as a float.
func (l *Level) Size() float64 {
	var total float64
	for _, id := range l.keys {
		total += l.orders[id].Size.AsF64()
	}
	return total
}

// SizeRaw returns the summed size in raw fixed-point units.
func (l *Level) SizeRaw() uint64 {
	var total uint64
	for _, id := range l.keys {
		total += l.orders[id].Size.Raw
	}
	return total
}

// SizeDecimal returns the summed size as an exact decimal.
func (l *Level) SizeDecimal() decimal.Decimal {
	total := decimal.Zero
	for _, id := range l.keys {
		total = total.Add(l.orders[id].Size.AsDecimal())
	}
	return total
}

// Exposure returns the summed price * size as a float.
func (l *Level) Exposure() float64 {
	var total float64
	for _, id := range l.keys {
		total += l.orders[id].Exposure()
	}
	return total
}

// ExposureRaw returns the summed exposure in raw fixed-point units.
func (l *Level) ExposureRaw() uint64 {
	var total uint64
	for _, id := range l.keys {
		total += uint64(l.orders[id].Exposure() * model.FixedScalar)
	}
	return total
}

func (l *Level) removeKey(orderID uint64) {
	for i, id := range l.keys {
		if id == orderID {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)
			return
		}
	}
}
