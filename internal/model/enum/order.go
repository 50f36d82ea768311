package enum

// OrderSide none, buy, sell
type OrderSide uint8

const (
	OrderSideNone OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_order_side_end
)

func (s OrderSide) IsAvailable() bool {
	return s > OrderSideNone && s < _order_side_end
}

func (s OrderSide) Opposite() OrderSide {
	switch s {
	case OrderSideBuy:
		return OrderSideSell
	case OrderSideSell:
		return OrderSideBuy
	default:
		return OrderSideNone
	}
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "NONE"
	}
}

// OrderType market, limit, stops, touched, trailing
type OrderType uint8

const (
	_order_type_beg OrderType = iota
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStopMarket
	OrderTypeStopLimit
	OrderTypeMarketIfTouched
	OrderTypeLimitIfTouched
	OrderTypeMarketToLimit
	OrderTypeTrailingStopMarket
	OrderTypeTrailingStopLimit
	_order_type_end
)

func (t OrderType) IsAvailable() bool {
	return t > _order_type_beg && t < _order_type_end
}

// HasPrice reports whether the type carries a limit price at initialization.
func (t OrderType) HasPrice() bool {
	switch t {
	case OrderTypeLimit, OrderTypeStopLimit, OrderTypeLimitIfTouched, OrderTypeTrailingStopLimit:
		return true
	default:
		return false
	}
}

// HasTriggerPrice reports whether the type carries a trigger price.
func (t OrderType) HasTriggerPrice() bool {
	switch t {
	case OrderTypeStopMarket, OrderTypeStopLimit, OrderTypeMarketIfTouched,
		OrderTypeLimitIfTouched, OrderTypeTrailingStopMarket, OrderTypeTrailingStopLimit:
		return true
	default:
		return false
	}
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStopMarket:
		return "STOP_MARKET"
	case OrderTypeStopLimit:
		return "STOP_LIMIT"
	case OrderTypeMarketIfTouched:
		return "MARKET_IF_TOUCHED"
	case OrderTypeLimitIfTouched:
		return "LIMIT_IF_TOUCHED"
	case OrderTypeMarketToLimit:
		return "MARKET_TO_LIMIT"
	case OrderTypeTrailingStopMarket:
		return "TRAILING_STOP_MARKET"
	case OrderTypeTrailingStopLimit:
		return "TRAILING_STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// TimeInForce GTC, IOC, FOK, GTD, DAY, at-the-open, at-the-close
type TimeInForce uint8

const (
	_time_in_force_beg TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
	TimeInForceGTD
	TimeInForceDay
	TimeInForceAtTheOpen
	TimeInForceAtTheClose
	_time_in_force_end
)

func (t TimeInForce) IsAvailable() bool {
	return t > _time_in_force_beg && t < _time_in_force_end
}

func (t TimeInForce) String() string {
	switch t {
	case TimeInForceGTC:
		return "GTC"
	case TimeInForceIOC:
		return "IOC"
	case TimeInForceFOK:
		return "FOK"
	case TimeInForceGTD:
		return "GTD"
	case TimeInForceDay:
		return "DAY"
	case TimeInForceAtTheOpen:
		return "AT_THE_OPEN"
	case TimeInForceAtTheClose:
		return "AT_THE_CLOSE"
	default:
		return "UNKNOWN"
	}
}

// ContingencyType none, OTO, OCO, OUO
type ContingencyType uint8

const (
	ContingencyNone ContingencyType = iota
	ContingencyOTO
	ContingencyOCO
	ContingencyOUO
	_contingency_end
)

func (c ContingencyType) IsAvailable() bool {
	return c > ContingencyNone && c < _contingency_end
}

func (c ContingencyType) String() string {
	switch c {
	case ContingencyOTO:
		return "OTO"
	case ContingencyOCO:
		return "OCO"
	case ContingencyOUO:
		return "OUO"
	default:
		return "NONE"
	}
}

// TriggerType no-trigger, default, last price, bid-ask
type TriggerType uint8

const (
	TriggerNone TriggerType = iota
	TriggerDefault
	TriggerLastPrice
	TriggerBidAsk
	_trigger_end
)

func (t TriggerType) IsAvailable() bool {
	return t > TriggerNone && t < _trigger_end
}

// LiquiditySide none, maker, taker
type LiquiditySide uint8

const (
	LiquiditySideNone LiquiditySide = iota
	LiquiditySideMaker
	LiquiditySideTaker
	_liquidity_side_end
)

func (s LiquiditySide) IsAvailable() bool {
	return s > LiquiditySideNone && s < _liquidity_side_end
}

func (s LiquiditySide) String() string {
	switch s {
	case LiquiditySideMaker:
		return "MAKER"
	case LiquiditySideTaker:
		return "TAKER"
	default:
		return "NONE"
	}
}
