package exec

import (
	"github.com/google/uuid"

	"main/internal/bus"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/order"
)

// OrderStatusReport is a venue's view of one order.
type OrderStatusReport struct {
	AccountID     model.AccountID
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID

	OrderSide   enum.OrderSide
	OrderType   enum.OrderType
	TimeInForce enum.TimeInForce
	OrderStatus enum.OrderStatus

	Quantity  model.Quantity
	FilledQty model.Quantity

	Price        *model.Price
	TriggerPrice *model.Price

	ReportID uuid.UUID
	TsLast   int64
	TsInit   int64
}

// FillReport is a venue's record of one execution.
type FillReport struct {
	AccountID     model.AccountID
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID
	TradeID       model.TradeID

	OrderSide     enum.OrderSide
	LastQty       model.Quantity
	LastPx        model.Price
	Commission    *model.Money
	LiquiditySide enum.LiquiditySide

	ReportID uuid.UUID
	TsEvent  int64
	TsInit   int64
}

// PositionReport is a venue's view of one open position.
type PositionReport struct {
	AccountID    model.AccountID
	InstrumentID model.InstrumentID
	PositionID   model.PositionID

	PositionSide enum.OrderSide
	Quantity     model.Quantity

	ReportID uuid.UUID
	TsLast   int64
	TsInit   int64
}

// AccountState is the balance snapshot delivered to the portfolio.
type AccountState struct {
	AccountID model.AccountID
	Balances  []model.Money
	Margins   []model.Money

	ReportID uuid.UUID
	TsEvent  int64
	TsInit   int64
}

// Reporter publishes execution reports and account state on their
// contracted surfaces.
type Reporter struct {
	bus *bus.Bus
}

func NewReporter(b *bus.Bus) *Reporter {
	return &Reporter{bus: b}
}

// PublishOrderStatus publishes an order status report for a client.
func (r *Reporter) PublishOrderStatus(clientID model.ClientID, report OrderStatusReport) {
	r.bus.Publish(TopicReports(clientID), report)
}

// PublishFill publishes a fill report for a client.
func (r *Reporter) PublishFill(clientID model.ClientID, report FillReport) {
	r.bus.Publish(TopicReports(clientID), report)
}

// PublishPosition publishes a position report for a client.
func (r *Reporter) PublishPosition(clientID model.ClientID, report PositionReport) {
	r.bus.Publish(TopicReports(clientID), report)
}

// UpdateAccount delivers account state to the portfolio endpoint.
func (r *Reporter) UpdateAccount(state AccountState) {
	r.bus.Send(EndpointUpdateAccount, state)
}

// StatusReportOf snapshots an order into a status report.
func StatusReportOf(o *order.Order, tsInit int64) OrderStatusReport {
	return OrderStatusReport{
		AccountID:     o.AccountID,
		InstrumentID:  o.InstrumentID,
		ClientOrderID: o.ClientOrderID,
		VenueOrderID:  o.VenueOrderID,
		OrderSide:     o.Side,
		OrderType:     o.OrderType,
		TimeInForce:   o.TimeInForce,
		OrderStatus:   o.Status,
		Quantity:      o.Quantity,
		FilledQty:     o.FilledQty,
		Price:         o.Price,
		TriggerPrice:  o.TriggerPrice,
		ReportID:      uuid.New(),
		TsLast:        o.TsLast,
		TsInit:        tsInit,
	}
}
