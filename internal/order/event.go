package order

import (
	"github.com/google/uuid"

	"main/internal/model"
	"main/internal/model/enum"
)

// Event is a single order lifecycle event. Kind discriminates which of the
// optional fields are meaningful.
type Event struct {
	Kind enum.OrderEventKind

	TraderID      model.TraderID
	StrategyID    model.StrategyID
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID
	AccountID     model.AccountID
	PositionID    model.PositionID
	TradeID       model.TradeID

	// Updated fields. Nil means unchanged.
	Price        *model.Price
	TriggerPrice *model.Price
	Quantity     *model.Quantity

	// Filled fields.
	LastQty       model.Quantity
	LastPx        model.Price
	LiquiditySide enum.LiquiditySide
	Commission    *model.Money

	// Released fields.
	ReleasedPrice *model.Price

	Reason string

	EventID uuid.UUID
	TsEvent int64
	TsInit  int64
}

func newEvent(kind enum.OrderEventKind, o ids, tsEvent, tsInit int64) Event {
	return Event{
		Kind:          kind,
		TraderID:      o.TraderID,
		StrategyID:    o.StrategyID,
		InstrumentID:  o.InstrumentID,
		ClientOrderID: o.ClientOrderID,
		EventID:       uuid.New(),
		TsEvent:       tsEvent,
		TsInit:        tsInit,
	}
}

// ids carries the identifiers every event repeats.
type ids struct {
	TraderID      model.TraderID
	StrategyID    model.StrategyID
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID
}

// EventIDs extracts the identifier set from an order.
func EventIDs(o *Order) ids {
	return ids{
		TraderID:      o.TraderID,
		StrategyID:    o.StrategyID,
		InstrumentID:  o.InstrumentID,
		ClientOrderID: o.ClientOrderID,
	}
}

func NewDenied(o *Order, reason string, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventDenied, EventIDs(o), tsEvent, tsInit)
	e.Reason = reason
	return e
}

func NewEmulated(o *Order, tsEvent, tsInit int64) Event {
	return newEvent(enum.OrderEventEmulated, EventIDs(o), tsEvent, tsInit)
}

func NewReleased(o *Order, releasedPrice model.Price, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventReleased, EventIDs(o), tsEvent, tsInit)
	e.ReleasedPrice = &releasedPrice
	return e
}

func NewSubmitted(o *Order, accountID model.AccountID, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventSubmitted, EventIDs(o), tsEvent, tsInit)
	e.AccountID = accountID
	return e
}

func NewAccepted(o *Order, venueOrderID model.VenueOrderID, accountID model.AccountID, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventAccepted, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = venueOrderID
	e.AccountID = accountID
	return e
}

func NewRejected(o *Order, accountID model.AccountID, reason string, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventRejected, EventIDs(o), tsEvent, tsInit)
	e.AccountID = accountID
	e.Reason = reason
	return e
}

func NewCanceled(o *Order, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventCanceled, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	return e
}

func NewExpired(o *Order, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventExpired, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	return e
}

func NewTriggered(o *Order, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventTriggered, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	return e
}

func NewPendingUpdate(o *Order, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventPendingUpdate, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	e.AccountID = o.AccountID
	return e
}

func NewPendingCancel(o *Order, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventPendingCancel, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	e.AccountID = o.AccountID
	return e
}

func NewModifyRejected(o *Order, reason string, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventModifyRejected, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	e.Reason = reason
	return e
}

func NewCancelRejected(o *Order, reason string, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventCancelRejected, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	e.Reason = reason
	return e
}

func NewUpdated(o *Order, quantity *model.Quantity, price, triggerPrice *model.Price, tsEvent, tsInit int64) Event {
	e := newEvent(enum.OrderEventUpdated, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = o.VenueOrderID
	e.Quantity = quantity
	e.Price = price
	e.TriggerPrice = triggerPrice
	return e
}

func NewFilled(o *Order, venueOrderID model.VenueOrderID, tradeID model.TradeID,
	lastQty model.Quantity, lastPx model.Price, liquiditySide enum.LiquiditySide,
	commission *model.Money, tsEvent, tsInit int64,
) Event {
	e := newEvent(enum.OrderEventFilled, EventIDs(o), tsEvent, tsInit)
	e.VenueOrderID = venueOrderID
	e.TradeID = tradeID
	e.LastQty = lastQty
	e.LastPx = lastPx
	e.LiquiditySide = liquiditySide
	e.Commission = commission
	return e
}
