package exec

import (
	"github.com/google/uuid"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/order"
)

// SubmitOrder carries a new order toward a venue.
type SubmitOrder struct {
	TraderID      model.TraderID
	ClientID      model.ClientID
	StrategyID    model.StrategyID
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID

	Order *order.Order

	ExecAlgorithmID model.ExecAlgorithmID
	PositionID      model.PositionID

	CommandID uuid.UUID
	TsInit    int64
}

// NewSubmitOrder builds a submit command from an order.
func NewSubmitOrder(o *order.Order, clientID model.ClientID, positionID model.PositionID, tsInit int64) SubmitOrder {
	return SubmitOrder{
		TraderID:        o.TraderID,
		ClientID:        clientID,
		StrategyID:      o.StrategyID,
		InstrumentID:    o.InstrumentID,
		ClientOrderID:   o.ClientOrderID,
		VenueOrderID:    o.VenueOrderID,
		Order:           o,
		ExecAlgorithmID: o.ExecAlgorithmID,
		PositionID:      positionID,
		CommandID:       uuid.New(),
		TsInit:          tsInit,
	}
}

// ModifyOrder amends price, trigger price, or quantity of a working order.
type ModifyOrder struct {
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID
	InstrumentID  model.InstrumentID

	Quantity     *model.Quantity
	Price        *model.Price
	TriggerPrice *model.Price

	CommandID uuid.UUID
	TsInit    int64
}

// CancelOrder cancels a single working order.
type CancelOrder struct {
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID
	InstrumentID  model.InstrumentID

	CommandID uuid.UUID
	TsInit    int64
}

// CancelAllOrders cancels every working order for an instrument, optionally
// filtered by side.
type CancelAllOrders struct {
	InstrumentID model.InstrumentID
	OrderSide    enum.OrderSide

	CommandID uuid.UUID
	TsInit    int64
}

// BatchCancelOrders cancels a specific set of venue orders.
type BatchCancelOrders struct {
	InstrumentID model.InstrumentID
	Cancels      []CancelOrder

	CommandID uuid.UUID
	TsInit    int64
}

// QueryOrder requests the venue's view of one order.
type QueryOrder struct {
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID
	InstrumentID  model.InstrumentID

	CommandID uuid.UUID
	TsInit    int64
}

// QueryAccount requests the current account state.
type QueryAccount struct {
	AccountID model.AccountID

	CommandID uuid.UUID
	TsInit    int64
}

// GenerateOrderStatusReport requests an order status report.
type GenerateOrderStatusReport struct {
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID

	CommandID uuid.UUID
	TsInit    int64
}

// GenerateFillReports requests fill reports for an instrument.
type GenerateFillReports struct {
	InstrumentID model.InstrumentID
	VenueOrderID model.VenueOrderID
	StartNs      int64
	EndNs        int64

	CommandID uuid.UUID
	TsInit    int64
}

// GeneratePositionReports requests position reports.
type GeneratePositionReports struct {
	InstrumentID model.InstrumentID
	StartNs      int64
	EndNs        int64

	CommandID uuid.UUID
	TsInit    int64
}
