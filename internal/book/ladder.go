package book

import (
	"strings"

	"github.com/tidwall/btree"

	"main/internal/model"
	"main/internal/model/enum"
)

// Ladder holds one side of an order book: price levels sorted best-first
// plus a reverse index from order ID to its current price key.
type Ladder struct {
	Side enum.OrderSide

	levels *btree.BTreeG[*Level]
	cache  map[uint64]BookPrice
}

func NewLadder(side enum.OrderSide) *Ladder {
	return &Ladder{
		Side: side,
		levels: btree.NewBTreeG(func(a, b *Level) bool {
			return a.Price.Less(b.Price)
		}),
		cache: make(map[uint64]BookPrice),
	}
}

func (l *Ladder) Len() int {
	return l.levels.Len()
}

func (l *Ladder) IsEmpty() bool {
	return l.levels.Len() == 0
}

// Clear removes all orders and levels.
func (l *Ladder) Clear() {
	l.levels.Clear()
	l.cache = make(map[uint64]BookPrice)
}

// Add inserts an order at its price level, creating the level if needed.
func (l *Ladder) Add(order BookOrder) {
	price := order.ToBookPrice()
	l.cache[order.OrderID] = price

	if level, ok := l.levels.Get(&Level{Price: price}); ok {
		level.Add(order)
		return
	}
	l.levels.Set(LevelFromOrder(order))
}

// Update amends an order in place when the price is unchanged, preserving its
// queue position. A price change removes the order and re-adds it at the new
// level, sending it to the back of that queue.
func (l *Ladder) Update(order BookOrder) {
	if price, ok := l.cache[order.OrderID]; ok {
		if level, ok := l.levels.Get(&Level{Price: price}); ok {
			if order.Price.Equal(level.Price.Value) {
				level.Update(order)
				if level.IsEmpty() {
					l.levels.Delete(level)
				}
				if order.Size.IsZero() {
					delete(l.cache, order.OrderID)
				}
				return
			}

			delete(l.cache, order.OrderID)
			level.Delete(order.OrderID)
			if level.IsEmpty() {
				l.levels.Delete(level)
			}
		}
	}

	l.Add(order)
}

// Delete removes an order from the ladder.
func (l *Ladder) Delete(order BookOrder, sequence uint64, tsEvent int64) {
	l.Remove(order.OrderID, sequence, tsEvent)
}

// Remove removes an order by ID. Unknown IDs are ignored; a known ID missing
// from its cached level panics via the level.
func (l *Ladder) Remove(orderID uint64, sequence uint64, tsEvent int64) {
	price, ok := l.cache[orderID]
	if !ok {
		return
	}
	delete(l.cache, orderID)
	if level, found := l.levels.Get(&Level{Price: price}); found {
		level.RemoveByID(orderID, sequence, tsEvent)
		if level.IsEmpty() {
			l.levels.Delete(level)
		}
	}
}

// Top returns the best level, or nil when the ladder is empty.
func (l *Ladder) Top() *Level {
	if level, ok := l.levels.Min(); ok {
		return level
	}
	return nil
}

// Sizes returns the total size across all levels.
func (l *Ladder) Sizes() float64 {
	var total float64
	l.levels.Scan(func(level *Level) bool {
		total += level.Size()
		return true
	})
	return total
}

// Exposures returns the total price * size across all levels.
func (l *Ladder) Exposures() float64 {
	var total float64
	l.levels.Scan(func(level *Level) bool {
		total += level.Exposure()
		return true
	})
	return total
}

// SimulateFills walks the ladder best-first and returns the (price, size)
// fills an aggressor of the given size and limit would take. Levels beyond
// the aggressor's limit price stop the walk. The ladder is not mutated.
func (l *Ladder) SimulateFills(order BookOrder) []Fill {
	var fills []Fill
	cumulative := model.ZeroQuantity(order.Size.Precision)
	target := order.Size

	l.levels.Scan(func(level *Level) bool {
		if l.Side == enum.OrderSideBuy {
			if level.Price.Value.Less(order.Price) {
				return false
			}
		} else {
			if order.Price.Less(level.Price.Value) {
				return false
			}
		}

		for _, resting := range level.Orders() {
			current := resting.Size
			if cumulative.Add(current).Raw >= target.Raw {
				remainder := target.SaturatingSub(cumulative)
				if remainder.IsPositive() {
					fills = append(fills, Fill{Price: resting.Price, Size: remainder})
				}
				return false
			}
			fills = append(fills, Fill{Price: resting.Price, Size: current})
			cumulative = cumulative.Add(current)
		}
		return true
	})

	return fills
}

// Fill is one simulated execution against resting liquidity.
type Fill struct {
	Price model.Price
	Size  model.Quantity
}

func (l *Ladder) String() string {
	var b strings.Builder
	b.WriteString("Ladder(side=" + l.Side.String() + ")\n")
	l.levels.Scan(func(level *Level) bool {
		b.WriteString("  " + level.Price.Value.String() + " x " + level.SizeDecimal().String() + "\n")
		return true
	})
	return b.String()
}
