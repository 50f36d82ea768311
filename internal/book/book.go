package book

import (
	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// Delta is one book mutation from a venue feed.
type Delta struct {
	InstrumentID model.InstrumentID
	Action       enum.BookAction
	Order        BookOrder
	Sequence     uint64
	TsEvent      int64
}

// OrderBook maintains both sides of a limit order book for one instrument.
type OrderBook struct {
	InstrumentID model.InstrumentID

	bids *Ladder
	asks *Ladder

	sequence uint64
	tsLast   int64
	count    uint64
}

func NewOrderBook(instrumentID model.InstrumentID) *OrderBook {
	return &OrderBook{
		InstrumentID: instrumentID,
		bids:         NewLadder(enum.OrderSideBuy),
		asks:         NewLadder(enum.OrderSideSell),
	}
}

// Sequence returns the last applied venue sequence number.
func (b *OrderBook) Sequence() uint64 { return b.sequence }

// TsLast returns the event timestamp of the last applied mutation.
func (b *OrderBook) TsLast() int64 { return b.tsLast }

// UpdateCount returns the number of mutations applied.
func (b *OrderBook) UpdateCount() uint64 { return b.count }

// Add inserts an order on its side.
func (b *OrderBook) Add(order BookOrder, sequence uint64, tsEvent int64) error {
	if err := checkBookOrder(order, enum.BookActionAdd); err != nil {
		return err
	}
	b.ladder(order.Side).Add(order)
	b.bump(sequence, tsEvent)
	return nil
}

// Update amends an order on its side, preserving queue position when only
// the size changed.
func (b *OrderBook) Update(order BookOrder, sequence uint64, tsEvent int64) error {
	if err := checkBookOrder(order, enum.BookActionUpdate); err != nil {
		return err
	}
	b.ladder(order.Side).Update(order)
	b.bump(sequence, tsEvent)
	return nil
}

// Delete removes an order from its side.
func (b *OrderBook) Delete(order BookOrder, sequence uint64, tsEvent int64) error {
	if !order.Side.IsAvailable() {
		return errors.Wrap(exception.ErrNoOrderSide, "book delete")
	}
	b.ladder(order.Side).Delete(order, sequence, tsEvent)
	b.bump(sequence, tsEvent)
	return nil
}

// Clear removes all orders and levels from both sides.
func (b *OrderBook) Clear(sequence uint64, tsEvent int64) {
	b.bids.Clear()
	b.asks.Clear()
	b.bump(sequence, tsEvent)
}

// ApplyDelta applies one feed mutation.
func (b *OrderBook) ApplyDelta(delta Delta) error {
	switch delta.Action {
	case enum.BookActionAdd:
		return b.Add(delta.Order, delta.Sequence, delta.TsEvent)
	case enum.BookActionUpdate:
		return b.Update(delta.Order, delta.Sequence, delta.TsEvent)
	case enum.BookActionDelete:
		return b.Delete(delta.Order, delta.Sequence, delta.TsEvent)
	case enum.BookActionClear:
		b.Clear(delta.Sequence, delta.TsEvent)
		return nil
	default:
		return errors.Wrapf(exception.ErrInvalidArgument, "book action %d", delta.Action)
	}
}

// Bids returns the buy-side ladder.
func (b *OrderBook) Bids() *Ladder { return b.bids }

// Asks returns the sell-side ladder.
func (b *OrderBook) Asks() *Ladder { return b.asks }

// BestBidPrice returns the highest bid, if any.
func (b *OrderBook) BestBidPrice() (model.Price, bool) {
	if top := b.bids.Top(); top != nil {
		return top.Price.Value, true
	}
	return model.Price{}, false
}

// BestAskPrice returns the lowest ask, if any.
func (b *OrderBook) BestAskPrice() (model.Price, bool) {
	if top := b.asks.Top(); top != nil {
		return top.Price.Value, true
	}
	return model.Price{}, false
}

// Spread returns ask - bid when both sides are populated.
func (b *OrderBook) Spread() (float64, bool) {
	bid, okB := b.BestBidPrice()
	ask, okA := b.BestAskPrice()
	if !okB || !okA {
		return 0, false
	}
	return ask.AsF64() - bid.AsF64(), true
}

// Midpoint returns (ask + bid) / 2 when both sides are populated.
func (b *OrderBook) Midpoint() (float64, bool) {
	bid, okB := b.BestBidPrice()
	ask, okA := b.BestAskPrice()
	if !okB || !okA {
		return 0, false
	}
	return (ask.AsF64() + bid.AsF64()) / 2, true
}

// SimulateFills previews the executions a marketable order would take
// against the opposite side.
func (b *OrderBook) SimulateFills(order BookOrder) []Fill {
	switch order.Side {
	case enum.OrderSideBuy:
		return b.asks.SimulateFills(order)
	case enum.OrderSideSell:
		return b.bids.SimulateFills(order)
	default:
		return nil
	}
}

// CheckIntegrity verifies the book is not crossed.
func (b *OrderBook) CheckIntegrity() error {
	bid, okB := b.BestBidPrice()
	ask, okA := b.BestAskPrice()
	if okB && okA && !bid.Less(ask) {
		return errors.Wrapf(exception.ErrInternal,
			"book %s crossed: bid %s >= ask %s", b.InstrumentID, bid, ask)
	}
	return nil
}

func (b *OrderBook) ladder(side enum.OrderSide) *Ladder {
	if side == enum.OrderSideBuy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) bump(sequence uint64, tsEvent int64) {
	b.sequence = sequence
	b.tsLast = tsEvent
	b.count++
}

func checkBookOrder(order BookOrder, action enum.BookAction) error {
	if !order.Side.IsAvailable() {
		return errors.Wrapf(exception.ErrNoOrderSide, "book %s", action)
	}
	if order.Size.IsZero() {
		return errors.Wrapf(exception.ErrInvalidArgument,
			"zero size is only valid for %s and %s, got %s",
			enum.BookActionDelete, enum.BookActionClear, action)
	}
	return nil
}
