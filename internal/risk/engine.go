package risk

import (
	"time"

	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/exec"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/order"
)

// Config defines simple pre-trade risk limits.
type Config struct {
	KillSwitch           bool          `json:"killSwitch"`
	MaxOrderQty          float64       `json:"maxOrderQty"`
	MaxOrderNotional     float64       `json:"maxOrderNotional"`
	MaxPosition          float64       `json:"maxPosition"`
	OrderRateLimit       int           `json:"orderRateLimit"`
	OrderRateWindow      time.Duration `json:"orderRateWindow"`
	MaxPriceDeviationBps int64         `json:"maxPriceDeviationBps"`
}

// Action is the outcome of a risk evaluation.
type Action uint8

const (
	ActionAllow Action = iota
	ActionDeny
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonKillSwitch    Reason = "kill switch engaged"
	ReasonRateLimit     Reason = "order rate limit exceeded"
	ReasonMaxQty        Reason = "order quantity above limit"
	ReasonMaxNotional   Reason = "order notional above limit"
	ReasonPriceBand     Reason = "price outside deviation band"
	ReasonPositionLimit Reason = "position limit exceeded"
)

// Decision is the result of evaluating one order.
type Decision struct {
	ClientOrderID model.ClientOrderID
	Action        Action
	Reason        Reason
}

// StateView provides the position snapshot an evaluation runs against.
type StateView struct {
	// Position is signed: positive long, negative short.
	Position       float64
	ReferencePrice model.Price
	Now            int64
}

// Engine evaluates pre-trade risk against static limits.
type Engine struct {
	cfg             Config
	rateWindowStart int64
	rateCount       int
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate applies the configured checks to an order.
func (e *Engine) Evaluate(o *order.Order, state StateView) Decision {
	decision := Decision{
		ClientOrderID: o.ClientOrderID,
		Action:        ActionAllow,
		Reason:        ReasonNone,
	}

	now := state.Now
	if now == 0 {
		now = time.Now().UTC().UnixNano()
	}

	if e.cfg.KillSwitch {
		return deny(decision, ReasonKillSwitch)
	}

	if e.cfg.OrderRateLimit > 0 && e.cfg.OrderRateWindow > 0 {
		window := int64(e.cfg.OrderRateWindow)
		if e.rateWindowStart == 0 || now-e.rateWindowStart >= window {
			e.rateWindowStart = now
			e.rateCount = 0
		}
		e.rateCount++
		if e.rateCount > e.cfg.OrderRateLimit {
			return deny(decision, ReasonRateLimit)
		}
	}

	qty := o.Quantity.AsF64()
	if e.cfg.MaxOrderQty > 0 && qty > e.cfg.MaxOrderQty {
		return deny(decision, ReasonMaxQty)
	}

	if e.cfg.MaxPriceDeviationBps > 0 && o.Price != nil && state.ReferencePrice.IsPositive() {
		ref := state.ReferencePrice.AsF64()
		diff := o.Price.AsF64() - ref
		if diff < 0 {
			diff = -diff
		}
		if diff*10_000 > ref*float64(e.cfg.MaxPriceDeviationBps) {
			return deny(decision, ReasonPriceBand)
		}
	}

	if e.cfg.MaxOrderNotional > 0 && o.Price != nil {
		if o.Price.AsF64()*qty > e.cfg.MaxOrderNotional {
			return deny(decision, ReasonMaxNotional)
		}
	}

	if e.cfg.MaxPosition > 0 {
		next := state.Position
		switch o.Side {
		case enum.OrderSideBuy:
			next += qty
		case enum.OrderSideSell:
			next -= qty
		}
		if next < 0 {
			next = -next
		}
		if next > e.cfg.MaxPosition {
			return deny(decision, ReasonPositionLimit)
		}
	}

	return decision
}

func deny(d Decision, reason Reason) Decision {
	d.Action = ActionDeny
	d.Reason = reason
	return d
}

// BusEngine is the risk engine's bus-facing shell: it consumes submit
// commands on RiskEngine.execute, denying or forwarding them to the
// execution engine.
type BusEngine struct {
	engine *Engine
	bus    *bus.Bus
	clock  clock.Clock

	// StateFor supplies the position snapshot per instrument.
	StateFor func(model.InstrumentID) StateView
}

func NewBusEngine(engine *Engine, b *bus.Bus, c clock.Clock) *BusEngine {
	return &BusEngine{
		engine: engine,
		bus:    b,
		clock:  c,
		StateFor: func(model.InstrumentID) StateView {
			return StateView{}
		},
	}
}

// Register binds the engine to its contracted endpoints.
func (e *BusEngine) Register() error {
	if err := e.bus.Register(exec.EndpointRiskExecute, bus.HandlerFunc("RiskEngine.execute", e.Execute)); err != nil {
		return err
	}
	return e.bus.Register(exec.EndpointRiskProcess, bus.HandlerFunc("RiskEngine.process", e.Process))
}

// Execute evaluates a submit command, denying it or forwarding it to the
// execution engine.
func (e *BusEngine) Execute(msg any) {
	cmd, ok := msg.(exec.SubmitOrder)
	if !ok {
		// Cancels and amendments are not risk checked.
		e.bus.Send(exec.EndpointExecExecute, msg)
		return
	}

	state := e.StateFor(cmd.InstrumentID)
	state.Now = e.clock.NowNs()
	decision := e.engine.Evaluate(cmd.Order, state)

	if decision.Action == ActionDeny {
		logs.Infof("denied order %s: %s", cmd.ClientOrderID, decision.Reason)
		now := e.clock.NowNs()
		denied := order.NewDenied(cmd.Order, string(decision.Reason), now, now)
		if err := cmd.Order.Apply(denied); err != nil {
			logs.Errorf("apply denied to %s: %v", cmd.ClientOrderID, err)
			return
		}
		e.bus.Publish(exec.TopicOrderEvents(cmd.StrategyID, cmd.InstrumentID), denied)
		return
	}

	e.bus.Send(exec.EndpointExecExecute, cmd)
}

// Process forwards risk-relevant events to the execution engine.
func (e *BusEngine) Process(msg any) {
	e.bus.Send(exec.EndpointExecProcess, msg)
}
