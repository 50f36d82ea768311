package order

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// Config is the full initialization payload for an order. One struct covers
// all order types; type-irrelevant fields stay nil.
type Config struct {
	TraderID      model.TraderID
	StrategyID    model.StrategyID
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID

	Side        enum.OrderSide
	OrderType   enum.OrderType
	Quantity    model.Quantity
	TimeInForce enum.TimeInForce

	Price        *model.Price
	TriggerPrice *model.Price
	TriggerType  enum.TriggerType

	// ExpireTimeNs is required when TimeInForce is GTD.
	ExpireTimeNs int64

	DisplayQty      *model.Quantity
	IsPostOnly      bool
	IsReduceOnly    bool
	IsQuoteQuantity bool

	EmulationTrigger enum.TriggerType

	ContingencyType enum.ContingencyType
	OrderListID     string
	LinkedOrderIDs  []model.ClientOrderID
	ParentOrderID   model.ClientOrderID

	ExecAlgorithmID     model.ExecAlgorithmID
	ExecAlgorithmParams map[string]string
	ExecSpawnID         model.ClientOrderID

	Tags []string

	InitID uuid.UUID
	TsInit int64
}

// Order is a single order of any type, driven through its lifecycle by
// applying events.
type Order struct {
	TraderID      model.TraderID
	StrategyID    model.StrategyID
	InstrumentID  model.InstrumentID
	ClientOrderID model.ClientOrderID
	VenueOrderID  model.VenueOrderID
	AccountID     model.AccountID
	PositionID    model.PositionID

	Side        enum.OrderSide
	OrderType   enum.OrderType
	Quantity    model.Quantity
	TimeInForce enum.TimeInForce

	Price        *model.Price
	TriggerPrice *model.Price
	TriggerType  enum.TriggerType

	ExpireTimeNs int64

	DisplayQty      *model.Quantity
	IsPostOnly      bool
	IsReduceOnly    bool
	IsQuoteQuantity bool
	IsTriggered     bool

	EmulationTrigger enum.TriggerType

	ContingencyType enum.ContingencyType
	OrderListID     string
	LinkedOrderIDs  []model.ClientOrderID
	ParentOrderID   model.ClientOrderID

	ExecAlgorithmID     model.ExecAlgorithmID
	ExecAlgorithmParams map[string]string
	ExecSpawnID         model.ClientOrderID

	Tags []string

	Status         enum.OrderStatus
	previousStatus enum.OrderStatus

	FilledQty model.Quantity
	LeavesQty model.Quantity

	avgPx       float64
	hasAvgPx    bool
	slippage    float64
	hasSlippage bool

	LiquiditySide enum.LiquiditySide

	commissions map[string]model.Money

	events        []Event
	venueOrderIDs []model.VenueOrderID
	tradeIDs      []model.TradeID
	LastTradeID   model.TradeID

	InitID uuid.UUID

	TsInit      int64
	TsLast      int64
	TsSubmitted int64
	TsAccepted  int64
	TsTriggered int64
	TsClosed    int64
}

// NewOrder validates the config and returns an initialized order.
func NewOrder(cfg Config) (*Order, error) {
	if !cfg.Side.IsAvailable() {
		return nil, errors.Wrap(exception.ErrNoOrderSide, "new order")
	}
	if !cfg.OrderType.IsAvailable() {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "order type %d", cfg.OrderType)
	}
	if !cfg.TimeInForce.IsAvailable() {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "time in force %d", cfg.TimeInForce)
	}
	if !cfg.Quantity.IsPositive() {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "quantity %s must be positive", cfg.Quantity)
	}
	if cfg.TimeInForce == enum.TimeInForceGTD && cfg.ExpireTimeNs <= 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "GTD order requires expire time")
	}
	if cfg.DisplayQty != nil && cfg.Quantity.Less(*cfg.DisplayQty) {
		return nil, errors.Wrapf(exception.ErrInvalidArgument,
			"display quantity %s exceeds quantity %s", cfg.DisplayQty, cfg.Quantity)
	}
	if cfg.OrderType.HasPrice() && cfg.Price == nil {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "%s order requires a price", cfg.OrderType)
	}
	if cfg.OrderType.HasTriggerPrice() && cfg.TriggerPrice == nil {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "%s order requires a trigger price", cfg.OrderType)
	}
	if cfg.ContingencyType.IsAvailable() && len(cfg.LinkedOrderIDs) == 0 && cfg.ParentOrderID == "" {
		return nil, errors.Wrapf(exception.ErrInvalidArgument,
			"%s order requires linked or parent orders", cfg.ContingencyType)
	}
	for _, linked := range cfg.LinkedOrderIDs {
		if linked == cfg.ClientOrderID {
			return nil, errors.Wrap(exception.ErrInvalidArgument, "order cannot link to itself")
		}
	}

	initID := cfg.InitID
	if initID == uuid.Nil {
		initID = uuid.New()
	}

	return &Order{
		TraderID:            cfg.TraderID,
		StrategyID:          cfg.StrategyID,
		InstrumentID:        cfg.InstrumentID,
		ClientOrderID:       cfg.ClientOrderID,
		Side:                cfg.Side,
		OrderType:           cfg.OrderType,
		Quantity:            cfg.Quantity,
		TimeInForce:         cfg.TimeInForce,
		Price:               cfg.Price,
		TriggerPrice:        cfg.TriggerPrice,
		TriggerType:         cfg.TriggerType,
		ExpireTimeNs:        cfg.ExpireTimeNs,
		DisplayQty:          cfg.DisplayQty,
		IsPostOnly:          cfg.IsPostOnly,
		IsReduceOnly:        cfg.IsReduceOnly,
		IsQuoteQuantity:     cfg.IsQuoteQuantity,
		EmulationTrigger:    cfg.EmulationTrigger,
		ContingencyType:     cfg.ContingencyType,
		OrderListID:         cfg.OrderListID,
		LinkedOrderIDs:      cfg.LinkedOrderIDs,
		ParentOrderID:       cfg.ParentOrderID,
		ExecAlgorithmID:     cfg.ExecAlgorithmID,
		ExecAlgorithmParams: cfg.ExecAlgorithmParams,
		ExecSpawnID:         cfg.ExecSpawnID,
		Tags:                cfg.Tags,
		Status:              enum.OrderStatusInitialized,
		FilledQty:           model.ZeroQuantity(cfg.Quantity.Precision),
		LeavesQty:           cfg.Quantity,
		commissions:         make(map[string]model.Money),
		InitID:              initID,
		TsInit:              cfg.TsInit,
		TsLast:              cfg.TsInit,
	}, nil
}

// Apply drives the order through one lifecycle event. On any validation or
// transition failure the order is left untouched.
func (o *Order) Apply(e Event) error {
	if e.ClientOrderID != o.ClientOrderID || e.StrategyID != o.StrategyID {
		return errors.Wrapf(exception.ErrInvalidOrderEvent,
			"event for %s/%s applied to %s/%s",
			e.StrategyID, e.ClientOrderID, o.StrategyID, o.ClientOrderID)
	}

	switch e.Kind {
	case enum.OrderEventInitialized:
		return errors.Wrap(exception.ErrOrderAlreadyInitialized, o.ClientOrderID.String())
	case enum.OrderEventModifyRejected:
		if o.Status != enum.OrderStatusPendingUpdate {
			return errors.Wrapf(exception.ErrInvalidStateTransition, "%s -> %s", o.Status, e.Kind)
		}
		o.Status = o.previousStatus
		o.record(e)
		return nil
	case enum.OrderEventCancelRejected:
		if o.Status != enum.OrderStatusPendingCancel {
			return errors.Wrapf(exception.ErrInvalidStateTransition, "%s -> %s", o.Status, e.Kind)
		}
		o.Status = o.previousStatus
		o.record(e)
		return nil
	case enum.OrderEventUpdated:
		if err := o.checkUpdate(e); err != nil {
			return err
		}
	}

	next, err := Transition(o.Status, e.Kind)
	if err != nil {
		return err
	}
	o.previousStatus = o.Status
	o.Status = next

	switch e.Kind {
	case enum.OrderEventDenied:
		o.TsClosed = e.TsEvent
	case enum.OrderEventReleased:
		o.EmulationTrigger = enum.TriggerNone
		if e.ReleasedPrice != nil {
			o.Price = e.ReleasedPrice
		}
	case enum.OrderEventSubmitted:
		o.AccountID = e.AccountID
		o.TsSubmitted = e.TsEvent
	case enum.OrderEventAccepted:
		o.setVenueOrderID(e.VenueOrderID)
		o.TsAccepted = e.TsEvent
	case enum.OrderEventRejected:
		o.TsClosed = e.TsEvent
	case enum.OrderEventCanceled:
		o.TsClosed = e.TsEvent
	case enum.OrderEventExpired:
		o.TsClosed = e.TsEvent
	case enum.OrderEventTriggered:
		o.IsTriggered = true
		o.TsTriggered = e.TsEvent
	case enum.OrderEventUpdated:
		o.applyUpdate(e)
	case enum.OrderEventFilled:
		o.applyFill(e)
	}

	o.record(e)
	return nil
}

// checkUpdate enforces which fields each order type may amend.
func (o *Order) checkUpdate(e Event) error {
	if e.Price != nil && !o.OrderType.HasPrice() && o.OrderType != enum.OrderTypeMarketToLimit {
		return errors.Wrapf(exception.ErrInvalidOrderEvent,
			"%s order cannot update price", o.OrderType)
	}
	if e.TriggerPrice != nil && !o.OrderType.HasTriggerPrice() {
		return errors.Wrapf(exception.ErrInvalidOrderEvent,
			"%s order cannot update trigger price", o.OrderType)
	}
	return nil
}

func (o *Order) applyUpdate(e Event) {
	if e.VenueOrderID != "" && e.VenueOrderID != o.VenueOrderID {
		o.setVenueOrderID(e.VenueOrderID)
	}
	if e.Price != nil {
		o.Price = e.Price
	}
	if e.TriggerPrice != nil {
		o.TriggerPrice = e.TriggerPrice
	}
	if e.Quantity != nil {
		o.Quantity = *e.Quantity
		o.LeavesQty = o.Quantity.SaturatingSub(o.FilledQty)
	}
}

func (o *Order) applyFill(e Event) {
	// The transition lands on Filled; a partial fill pulls it back.
	if o.FilledQty.Add(e.LastQty).Less(o.Quantity) {
		o.Status = enum.OrderStatusPartiallyFilled
	} else {
		o.TsClosed = e.TsEvent
	}

	o.setVenueOrderID(e.VenueOrderID)
	if e.PositionID != "" {
		o.PositionID = e.PositionID
	}
	o.tradeIDs = append(o.tradeIDs, e.TradeID)
	o.LastTradeID = e.TradeID
	o.LiquiditySide = e.LiquiditySide
	if e.Commission != nil {
		o.addCommission(*e.Commission)
	}

	prevFilled := o.FilledQty
	o.FilledQty = o.FilledQty.Add(e.LastQty)
	o.LeavesQty = o.Quantity.SaturatingSub(o.FilledQty)
	if o.TsAccepted == 0 {
		// First fill stands in for a missing acceptance timestamp.
		o.TsAccepted = e.TsEvent
	}

	o.setAvgPx(prevFilled, e.LastQty, e.LastPx)
	o.setSlippage(e.LastPx)
}

// setAvgPx folds one fill into the quantity-weighted average price.
func (o *Order) setAvgPx(prevFilled, lastQty model.Quantity, lastPx model.Price) {
	if !o.hasAvgPx {
		o.avgPx = lastPx.AsF64()
		o.hasAvgPx = true
		return
	}
	prev := prevFilled.AsF64()
	last := lastQty.AsF64()
	o.avgPx = (o.avgPx*prev + lastPx.AsF64()*last) / (prev + last)
}

// setSlippage records the signed deviation of the latest fill from the
// order's reference price. Positive means adverse for the order's side.
func (o *Order) setSlippage(lastPx model.Price) {
	ref := o.referencePrice()
	if ref == nil {
		return
	}
	switch o.Side {
	case enum.OrderSideBuy:
		o.slippage = lastPx.AsF64() - ref.AsF64()
	case enum.OrderSideSell:
		o.slippage = ref.AsF64() - lastPx.AsF64()
	}
	o.hasSlippage = true
}

// referencePrice is the price fills are measured against: the trigger price
// for market-on-trigger types, the limit price otherwise. MarketToLimit has
// one only after the venue assigns its limit price.
func (o *Order) referencePrice() *model.Price {
	switch o.OrderType {
	case enum.OrderTypeStopMarket, enum.OrderTypeMarketIfTouched, enum.OrderTypeTrailingStopMarket:
		return o.TriggerPrice
	default:
		return o.Price
	}
}

func (o *Order) setVenueOrderID(id model.VenueOrderID) {
	if id == "" || id == o.VenueOrderID {
		return
	}
	o.VenueOrderID = id
	o.venueOrderIDs = append(o.venueOrderIDs, id)
}

func (o *Order) addCommission(c model.Money) {
	code := c.Currency.Code
	if existing, ok := o.commissions[code]; ok {
		o.commissions[code] = existing.Add(c)
		return
	}
	o.commissions[code] = c
}

func (o *Order) record(e Event) {
	o.TsLast = e.TsEvent
	o.events = append(o.events, e)
}

// Events returns the applied events in order.
func (o *Order) Events() []Event {
	return o.events
}

// LastEvent returns the most recently applied event.
func (o *Order) LastEvent() (Event, bool) {
	if len(o.events) == 0 {
		return Event{}, false
	}
	return o.events[len(o.events)-1], true
}

// VenueOrderIDs returns every venue order id the order has carried.
func (o *Order) VenueOrderIDs() []model.VenueOrderID {
	return o.venueOrderIDs
}

// TradeIDs returns the trade ids of all fills.
func (o *Order) TradeIDs() []model.TradeID {
	return o.tradeIDs
}

// AvgPx returns the quantity-weighted average fill price.
func (o *Order) AvgPx() (float64, bool) {
	return o.avgPx, o.hasAvgPx
}

// Slippage returns the latest fill's deviation from the reference price.
func (o *Order) Slippage() (float64, bool) {
	return o.slippage, o.hasSlippage
}

// Commissions returns accumulated commissions per currency code.
func (o *Order) Commissions() map[string]model.Money {
	return o.commissions
}

// IsOpen reports whether the order is working at a venue.
func (o *Order) IsOpen() bool {
	return o.Status.IsOpen()
}

// IsClosed reports whether the order has reached a terminal state.
func (o *Order) IsClosed() bool {
	return o.Status.IsClosed()
}

// IsInflight reports whether a command is awaiting acknowledgement.
func (o *Order) IsInflight() bool {
	return o.Status.IsInflight()
}

// WouldReduceOnly reports whether the order's remaining quantity can only
// reduce an existing position of the given side and size.
func (o *Order) WouldReduceOnly(positionSide enum.OrderSide, positionQty model.Quantity) bool {
	if !positionSide.IsAvailable() {
		return false
	}
	if o.Side == positionSide {
		return false
	}
	return !positionQty.Less(o.LeavesQty)
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(%s, %s %s %s %s, status=%s, filled=%s)",
		o.ClientOrderID, o.Side, o.Quantity, o.InstrumentID, o.OrderType, o.Status, o.FilledQty)
}
