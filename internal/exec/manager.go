package exec

import (
	"fmt"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/clock"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/order"
	"main/pkg/exception"
)

// Standard endpoint names consumed and produced by the execution core.
const (
	EndpointRiskExecute     = "RiskEngine.execute"
	EndpointRiskProcess     = "RiskEngine.process"
	EndpointExecExecute     = "ExecEngine.execute"
	EndpointExecProcess     = "ExecEngine.process"
	EndpointEmulatorExecute = "OrderEmulator.execute"
	EndpointUpdateAccount   = "Portfolio.update_account"
)

// TopicOrderEvents is the topic order lifecycle events publish on.
func TopicOrderEvents(strategyID model.StrategyID, instrumentID model.InstrumentID) string {
	return "events.order." + strategyID.String() + "." + instrumentID.String()
}

// TopicReports is the topic execution reports publish on.
func TopicReports(clientID model.ClientID) string {
	return "reports." + clientID.String()
}

// EndpointAlgoExecute is the endpoint an execution algorithm consumes.
func EndpointAlgoExecute(id model.ExecAlgorithmID) string {
	return id.String() + ".execute"
}

// ManagerConfig wires the manager's collaborators.
type ManagerConfig struct {
	Clock clock.Clock
	Cache Cache
	Bus   *bus.Bus

	// ActiveLocal restricts contingency management to locally held orders
	// (emulated or algorithm-spawned). When false the manager works venue
	// orders instead.
	ActiveLocal bool

	SubmitHandler func(SubmitOrder)
	CancelHandler func(*order.Order)
	ModifyHandler func(*order.Order, model.Quantity)
}

// Manager owns submit command caching and contingency handling (OTO, OCO,
// OUO) across linked orders.
type Manager struct {
	clock       clock.Clock
	cache       Cache
	bus         *bus.Bus
	activeLocal bool

	submitCommands map[model.ClientOrderID]SubmitOrder

	submitHandler func(SubmitOrder)
	cancelHandler func(*order.Order)
	modifyHandler func(*order.Order, model.Quantity)
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Clock == nil || cfg.Cache == nil || cfg.Bus == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "new order manager")
	}
	return &Manager{
		clock:          cfg.Clock,
		cache:          cfg.Cache,
		bus:            cfg.Bus,
		activeLocal:    cfg.ActiveLocal,
		submitCommands: make(map[model.ClientOrderID]SubmitOrder),
		submitHandler:  cfg.SubmitHandler,
		cancelHandler:  cfg.CancelHandler,
		modifyHandler:  cfg.ModifyHandler,
	}, nil
}

// SubmitOrderCommands returns the cached submit commands keyed by client
// order id.
func (m *Manager) SubmitOrderCommands() map[model.ClientOrderID]SubmitOrder {
	out := make(map[model.ClientOrderID]SubmitOrder, len(m.submitCommands))
	for k, v := range m.submitCommands {
		out[k] = v
	}
	return out
}

// CacheSubmitOrderCommand stores a submit command for later processing.
func (m *Manager) CacheSubmitOrderCommand(cmd SubmitOrder) {
	m.submitCommands[cmd.ClientOrderID] = cmd
}

// PopSubmitOrderCommand removes and returns a cached submit command.
func (m *Manager) PopSubmitOrderCommand(id model.ClientOrderID) (SubmitOrder, bool) {
	cmd, ok := m.submitCommands[id]
	if ok {
		delete(m.submitCommands, id)
	}
	return cmd, ok
}

// Reset clears all cached commands.
func (m *Manager) Reset() {
	m.submitCommands = make(map[model.ClientOrderID]SubmitOrder)
}

// CancelOrder requests cancellation unless the order is already pending a
// local cancel or closed.
func (m *Manager) CancelOrder(o *order.Order) {
	if m.cache.IsOrderPendingCancelLocal(o.ClientOrderID) {
		return
	}
	if o.IsClosed() {
		logs.Infof("skip cancel for %s: already closed", o.ClientOrderID)
		return
	}

	delete(m.submitCommands, o.ClientOrderID)

	if m.cancelHandler != nil {
		m.cancelHandler(o)
	}
}

// ModifyOrderQuantity requests a quantity amendment.
func (m *Manager) ModifyOrderQuantity(o *order.Order, quantity model.Quantity) {
	if m.modifyHandler != nil {
		m.modifyHandler(o, quantity)
	}
}

// CreateNewSubmitOrder builds and routes a submit command for the order.
// Orders with an emulation trigger go to the submit handler (the emulator
// path); everything else routes to its execution algorithm or the risk
// engine.
func (m *Manager) CreateNewSubmitOrder(o *order.Order, positionID model.PositionID, clientID model.ClientID) error {
	if clientID == "" {
		return errors.Wrap(exception.ErrInvalidArgument, "client id is required")
	}

	cmd := NewSubmitOrder(o, clientID, positionID, m.clock.NowNs())

	if o.EmulationTrigger == enum.TriggerNone {
		m.CacheSubmitOrderCommand(cmd)
		if o.ExecAlgorithmID != "" {
			m.SendAlgoCommand(cmd, o.ExecAlgorithmID)
		} else {
			m.SendRiskCommand(cmd)
		}
		return nil
	}

	if m.submitHandler != nil {
		m.submitHandler(cmd)
	}
	return nil
}

// ShouldManageOrder reports whether contingency handling applies to the
// order. An active-local manager works only orders still held locally;
// otherwise any order not yet closed is managed.
func (m *Manager) ShouldManageOrder(o *order.Order) bool {
	if m.activeLocal {
		return isActiveLocal(o)
	}
	return !o.IsClosed()
}

func isActiveLocal(o *order.Order) bool {
	switch o.Status {
	case enum.OrderStatusInitialized, enum.OrderStatusEmulated, enum.OrderStatusReleased:
		return true
	default:
		return false
	}
}

// HandleEvent routes one order event into contingency handling. Events that
// are not order lifecycle events pass through to the execution engine.
func (m *Manager) HandleEvent(e order.Event) {
	switch e.Kind {
	case enum.OrderEventRejected:
		m.handleClosingEvent(e)
	case enum.OrderEventCanceled:
		m.handleClosingEvent(e)
	case enum.OrderEventExpired:
		m.handleClosingEvent(e)
	case enum.OrderEventUpdated:
		m.handleOrderUpdated(e)
	case enum.OrderEventFilled:
		m.handleOrderFilled(e)
	default:
		m.HandlePositionEvent(e)
	}
}

// handleClosingEvent covers rejected, canceled, and expired orders.
func (m *Manager) handleClosingEvent(e order.Event) {
	o, ok := m.cache.Order(e.ClientOrderID)
	if !ok {
		logs.Errorf("cannot handle %s: order %s not found", e.Kind, e.ClientOrderID)
		return
	}
	if o.ContingencyType.IsAvailable() {
		m.HandleContingencies(o)
	}
}

func (m *Manager) handleOrderUpdated(e order.Event) {
	o, ok := m.cache.Order(e.ClientOrderID)
	if !ok {
		logs.Errorf("cannot handle %s: order %s not found", e.Kind, e.ClientOrderID)
		return
	}
	if o.ContingencyType.IsAvailable() {
		m.HandleContingenciesUpdate(o)
	}
}

func (m *Manager) handleOrderFilled(e order.Event) {
	o, ok := m.cache.Order(e.ClientOrderID)
	if !ok {
		logs.Errorf("cannot handle %s: order %s not found", e.Kind, e.ClientOrderID)
		return
	}

	switch o.ContingencyType {
	case enum.ContingencyOTO:
		m.handleOTOFilled(o)
	case enum.ContingencyOCO:
		m.handleOCOFilled(o)
	case enum.ContingencyOUO:
		m.HandleContingencies(o)
	}
}

// handleOTOFilled releases the child orders of a filled OTO parent, sizing
// them to the parent's filled quantity.
func (m *Manager) handleOTOFilled(parent *order.Order) {
	positionID, _ := m.cache.PositionID(parent.ClientOrderID)
	clientID, _ := m.cache.ClientID(parent.ClientOrderID)

	parentFilled := parent.FilledQty
	if parent.ExecSpawnID != "" {
		qty, ok := m.cache.ExecSpawnTotalFilledQty(parent.ExecSpawnID, true)
		if !ok {
			logs.Errorf("failed to get spawn filled quantity for %s", parent.ExecSpawnID)
			return
		}
		parentFilled = qty
	}

	for _, childID := range parent.LinkedOrderIDs {
		child, ok := m.cache.Order(childID)
		if !ok {
			panic(fmt.Sprintf("cannot find OTO child order %s", childID))
		}
		if !m.ShouldManageOrder(child) {
			continue
		}

		if child.PositionID == "" {
			child.PositionID = positionID
		}

		if !parentFilled.Equal(child.LeavesQty) {
			m.ModifyOrderQuantity(child, parentFilled)
		}

		if _, cached := m.submitCommands[child.ClientOrderID]; !cached {
			if err := m.CreateNewSubmitOrder(child, positionID, clientID); err != nil {
				logs.Errorf("failed to create submit order for %s: %v", child.ClientOrderID, err)
			}
		}
	}
}

// handleOCOFilled cancels the other side of a filled OCO pair.
func (m *Manager) handleOCOFilled(o *order.Order) {
	for _, linkedID := range o.LinkedOrderIDs {
		contingent, ok := m.cache.Order(linkedID)
		if !ok {
			panic(fmt.Sprintf("cannot find OCO contingent order %s", linkedID))
		}
		if !m.ShouldManageOrder(contingent) || contingent.IsClosed() {
			continue
		}
		if contingent.ClientOrderID != o.ClientOrderID {
			m.CancelOrder(contingent)
		}
	}
}

// HandleContingencies propagates a closing or fill event across the
// order's linked orders.
func (m *Manager) HandleContingencies(o *order.Order) {
	filledQty, leavesQty := o.FilledQty, o.LeavesQty
	spawnActive := false
	if o.ExecSpawnID != "" {
		filled, okF := m.cache.ExecSpawnTotalFilledQty(o.ExecSpawnID, true)
		leaves, okL := m.cache.ExecSpawnTotalLeavesQty(o.ExecSpawnID, true)
		if !okF || !okL {
			logs.Errorf("failed to get spawn quantities for %s", o.ExecSpawnID)
			return
		}
		filledQty, leavesQty = filled, leaves
		spawnActive = leaves.IsPositive()
	}

	for _, linkedID := range o.LinkedOrderIDs {
		contingent, ok := m.cache.Order(linkedID)
		if !ok {
			panic(fmt.Sprintf("cannot find contingent order %s", linkedID))
		}
		if !m.ShouldManageOrder(contingent) || contingent.ClientOrderID == o.ClientOrderID {
			continue
		}
		if contingent.IsClosed() {
			delete(m.submitCommands, o.ClientOrderID)
			continue
		}

		switch o.ContingencyType {
		case enum.ContingencyOTO:
			if o.IsClosed() && filledQty.IsZero() && (o.ExecSpawnID == "" || !spawnActive) {
				m.CancelOrder(contingent)
			} else if filledQty.IsPositive() && !filledQty.Equal(contingent.Quantity) {
				m.ModifyOrderQuantity(contingent, filledQty)
			}
		case enum.ContingencyOCO:
			if o.IsClosed() && (o.ExecSpawnID == "" || !spawnActive) {
				m.CancelOrder(contingent)
			}
		case enum.ContingencyOUO:
			if (leavesQty.IsZero() && o.ExecSpawnID != "") ||
				(o.IsClosed() && (o.ExecSpawnID == "" || !spawnActive)) {
				m.CancelOrder(contingent)
			} else if !leavesQty.Equal(contingent.LeavesQty) {
				m.ModifyOrderQuantity(contingent, leavesQty)
			}
		}
	}
}

// HandleContingenciesUpdate resizes linked orders after a quantity
// amendment.
func (m *Manager) HandleContingenciesUpdate(o *order.Order) {
	quantity := o.Quantity
	if o.ExecSpawnID != "" {
		qty, ok := m.cache.ExecSpawnTotalQuantity(o.ExecSpawnID, true)
		if !ok {
			logs.Errorf("failed to get spawn total quantity for %s", o.ExecSpawnID)
			return
		}
		quantity = qty
	}
	if quantity.IsZero() {
		return
	}

	for _, linkedID := range o.LinkedOrderIDs {
		contingent, ok := m.cache.Order(linkedID)
		if !ok {
			panic(fmt.Sprintf("cannot find contingent order %s", linkedID))
		}
		if !m.ShouldManageOrder(contingent) ||
			contingent.ClientOrderID == o.ClientOrderID ||
			contingent.IsClosed() {
			continue
		}

		switch o.ContingencyType {
		case enum.ContingencyOTO, enum.ContingencyOCO:
			if !quantity.Equal(contingent.Quantity) {
				m.ModifyOrderQuantity(contingent, quantity)
			}
		}
	}
}

// HandlePositionEvent passes non-order events through to the execution
// engine unchanged.
func (m *Manager) HandlePositionEvent(e order.Event) {
	m.SendExecEvent(e)
}

// SendEmulatorCommand delivers a command to the order emulator endpoint.
func (m *Manager) SendEmulatorCommand(cmd any) {
	m.bus.Send(EndpointEmulatorExecute, cmd)
}

// SendAlgoCommand delivers a submit command to its execution algorithm.
func (m *Manager) SendAlgoCommand(cmd SubmitOrder, id model.ExecAlgorithmID) {
	m.bus.Send(EndpointAlgoExecute(id), cmd)
}

// SendRiskCommand delivers a command to the risk engine.
func (m *Manager) SendRiskCommand(cmd any) {
	m.bus.Send(EndpointRiskExecute, cmd)
}

// SendExecCommand delivers a command to the execution engine.
func (m *Manager) SendExecCommand(cmd any) {
	m.bus.Send(EndpointExecExecute, cmd)
}

// SendRiskEvent delivers an event to the risk engine.
func (m *Manager) SendRiskEvent(e order.Event) {
	m.bus.Send(EndpointRiskProcess, e)
}

// SendExecEvent delivers an event to the execution engine.
func (m *Manager) SendExecEvent(e order.Event) {
	m.bus.Send(EndpointExecProcess, e)
}
