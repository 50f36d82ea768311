package book

import (
	"fmt"

	"main/internal/model"
	"main/internal/model/enum"
)

// BookOrder is a single resting order as seen by the book.
type BookOrder struct {
	Side    enum.OrderSide
	Price   model.Price
	Size    model.Quantity
	OrderID uint64
}

func NewBookOrder(side enum.OrderSide, price model.Price, size model.Quantity, orderID uint64) BookOrder {
	return BookOrder{
		Side:    side,
		Price:   price,
		Size:    size,
		OrderID: orderID,
	}
}

// NullOrder is the zero-valued placeholder used by top-of-book feeds.
func NullOrder() BookOrder {
	return BookOrder{Side: enum.OrderSideNone}
}

// ToBookPrice returns the order's sortable price key.
func (o BookOrder) ToBookPrice() BookPrice {
	return BookPrice{Value: o.Price, Side: o.Side}
}

// Exposure returns price * size as a float.
func (o BookOrder) Exposure() float64 {
	return o.Price.AsF64() * o.Size.AsF64()
}

// SignedSize returns the size negated for sells.
func (o BookOrder) SignedSize() float64 {
	if o.Side == enum.OrderSideSell {
		return -o.Size.AsF64()
	}
	return o.Size.AsF64()
}

func (o BookOrder) String() string {
	return fmt.Sprintf("BookOrder(side=%s, price=%s, size=%s, order_id=%d)",
		o.Side, o.Price, o.Size, o.OrderID)
}

// BookPrice is a price keyed for one side of the book. Bids sort descending
// so that iteration always begins at the best price.
type BookPrice struct {
	Value model.Price
	Side  enum.OrderSide
}

// Less orders book prices best-first. Panics when the side is unset; keys
// without a side must never reach a ladder.
func (p BookPrice) Less(other BookPrice) bool {
	switch p.Side {
	case enum.OrderSideBuy:
		return other.Value.Less(p.Value)
	case enum.OrderSideSell:
		return p.Value.Less(other.Value)
	default:
		panic("book price has no side")
	}
}

func (p BookPrice) String() string {
	return p.Value.String()
}
