package model

// Identifier newtypes. These are plain strings; Go's string values give
// cheap copies and map keys without an interner.

type (
	TraderID        string
	StrategyID      string
	InstrumentID    string
	ClientOrderID   string
	VenueOrderID    string
	PositionID      string
	AccountID       string
	ClientID        string
	ExecAlgorithmID string
	TradeID         string
)

func (id TraderID) String() string        { return string(id) }
func (id StrategyID) String() string      { return string(id) }
func (id InstrumentID) String() string    { return string(id) }
func (id ClientOrderID) String() string   { return string(id) }
func (id VenueOrderID) String() string    { return string(id) }
func (id PositionID) String() string      { return string(id) }
func (id AccountID) String() string       { return string(id) }
func (id ClientID) String() string        { return string(id) }
func (id ExecAlgorithmID) String() string { return string(id) }
func (id TradeID) String() string         { return string(id) }
