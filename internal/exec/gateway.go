package exec

import (
	"strconv"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/model"
	"main/internal/order"
	"main/pkg/exception"
)

// ErrGatewayDisconnected reports a venue connection loss.
var ErrGatewayDisconnected = errors.New("execution gateway disconnected")

// Gateway is the venue boundary the execution core submits through.
type Gateway interface {
	SubmitOrder(cmd SubmitOrder) error
	CancelOrder(cmd CancelOrder) error
	ModifyOrder(cmd ModifyOrder) error
}

// SimGatewayConfig controls the simulated gateway behavior.
type SimGatewayConfig struct {
	Clock clock.Clock

	// Sink receives the venue events the gateway acknowledges with.
	Sink func(order.Event)

	ResendOnReconnect bool
}

// SimGateway is an in-process venue: it acknowledges submits, cancels, and
// amendments immediately through its event sink. Used for wiring and tests.
type SimGateway struct {
	clock clock.Clock
	sink  func(order.Event)

	resendOnReconnect bool
	pending           map[string]SubmitOrder
	connected         bool
	nextVenueID       uint64
}

func NewSimGateway(cfg SimGatewayConfig) (*SimGateway, error) {
	if cfg.Clock == nil || cfg.Sink == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "new sim gateway")
	}
	return &SimGateway{
		clock:             cfg.Clock,
		sink:              cfg.Sink,
		resendOnReconnect: cfg.ResendOnReconnect,
		pending:           make(map[string]SubmitOrder),
		connected:         true,
	}, nil
}

// SubmitOrder acknowledges the order as submitted then accepted.
func (g *SimGateway) SubmitOrder(cmd SubmitOrder) error {
	if !g.connected {
		g.pending[cmd.ClientOrderID.String()] = cmd
		return errors.Wrapf(ErrGatewayDisconnected, "submit %s", cmd.ClientOrderID)
	}

	now := g.clock.NowNs()
	g.nextVenueID++
	venueID := "V-" + strconv.FormatUint(g.nextVenueID, 10)

	accountID := cmd.Order.AccountID
	if accountID == "" {
		accountID = "SIM-001"
	}
	g.sink(order.NewSubmitted(cmd.Order, accountID, now, now))
	g.sink(order.NewAccepted(cmd.Order, model.VenueOrderID(venueID), accountID, now, now))
	return nil
}

// CancelOrder acknowledges the cancellation.
func (g *SimGateway) CancelOrder(cmd CancelOrder) error {
	if !g.connected {
		return errors.Wrapf(ErrGatewayDisconnected, "cancel %s", cmd.ClientOrderID)
	}
	return nil
}

// ModifyOrder acknowledges the amendment.
func (g *SimGateway) ModifyOrder(cmd ModifyOrder) error {
	if !g.connected {
		return errors.Wrapf(ErrGatewayDisconnected, "modify %s", cmd.ClientOrderID)
	}
	return nil
}

// Disconnect drops the venue connection.
func (g *SimGateway) Disconnect() {
	g.connected = false
}

// Reconnect restores the connection and returns submits held while down.
func (g *SimGateway) Reconnect() []SubmitOrder {
	g.connected = true
	if !g.resendOnReconnect {
		return nil
	}
	out := make([]SubmitOrder, 0, len(g.pending))
	for _, cmd := range g.pending {
		out = append(out, cmd)
	}
	g.pending = make(map[string]SubmitOrder)
	return out
}

// Client drives the gateway on behalf of the engine, turning gateway
// failures into order events.
type Client struct {
	gateway Gateway
	bus     *bus.Bus
	clock   clock.Clock
	cache   Cache
}

func NewClient(gateway Gateway, b *bus.Bus, c clock.Clock, cache Cache) (*Client, error) {
	if gateway == nil || b == nil || c == nil || cache == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "new execution client")
	}
	return &Client{gateway: gateway, bus: b, clock: c, cache: cache}, nil
}

// Submit sends the order to the venue. A submit failure produces a
// synthetic OrderRejected carrying the upstream reason.
func (c *Client) Submit(cmd SubmitOrder) {
	if err := c.gateway.SubmitOrder(cmd); err != nil {
		logs.Errorf("submit %s failed: %v", cmd.ClientOrderID, err)
		now := c.clock.NowNs()
		rejected := order.NewRejected(cmd.Order, cmd.Order.AccountID, err.Error(), now, now)
		c.publishEvent(cmd.Order, rejected)
	}
}

// Cancel requests a cancellation. Failures are logged and surfaced as a
// cancel-rejected event.
func (c *Client) Cancel(cmd CancelOrder) {
	o, ok := c.cache.Order(cmd.ClientOrderID)
	if !ok {
		logs.Errorf("cancel %s: order not found", cmd.ClientOrderID)
		return
	}
	if err := c.gateway.CancelOrder(cmd); err != nil {
		logs.Errorf("cancel %s failed: %v", cmd.ClientOrderID, err)
		now := c.clock.NowNs()
		c.publishEvent(o, order.NewCancelRejected(o, err.Error(), now, now))
	}
}

// Modify requests an amendment. Failures are logged and surfaced as a
// modify-rejected event.
func (c *Client) Modify(cmd ModifyOrder) {
	o, ok := c.cache.Order(cmd.ClientOrderID)
	if !ok {
		logs.Errorf("modify %s: order not found", cmd.ClientOrderID)
		return
	}
	if err := c.gateway.ModifyOrder(cmd); err != nil {
		logs.Errorf("modify %s failed: %v", cmd.ClientOrderID, err)
		now := c.clock.NowNs()
		c.publishEvent(o, order.NewModifyRejected(o, err.Error(), now, now))
	}
}

func (c *Client) publishEvent(o *order.Order, e order.Event) {
	if err := o.Apply(e); err != nil {
		logs.Errorf("apply %s to %s: %v", e.Kind, o.ClientOrderID, err)
		return
	}
	c.bus.Publish(TopicOrderEvents(o.StrategyID, o.InstrumentID), e)
}
