package enum

// BookAction is the kind of mutation a book delta applies.
type BookAction uint8

const (
	_book_action_beg BookAction = iota
	BookActionAdd
	BookActionUpdate
	BookActionDelete
	BookActionClear
	_book_action_end
)

func (a BookAction) IsAvailable() bool {
	return a > _book_action_beg && a < _book_action_end
}

func (a BookAction) String() string {
	switch a {
	case BookActionAdd:
		return "ADD"
	case BookActionUpdate:
		return "UPDATE"
	case BookActionDelete:
		return "DELETE"
	case BookActionClear:
		return "CLEAR"
	default:
		return "UNKNOWN"
	}
}

// OrderEventKind discriminates lifecycle events for state transitions.
type OrderEventKind uint8

const (
	_order_event_beg OrderEventKind = iota
	OrderEventInitialized
	OrderEventDenied
	OrderEventEmulated
	OrderEventReleased
	OrderEventSubmitted
	OrderEventAccepted
	OrderEventRejected
	OrderEventCanceled
	OrderEventExpired
	OrderEventTriggered
	OrderEventPendingUpdate
	OrderEventPendingCancel
	OrderEventModifyRejected
	OrderEventCancelRejected
	OrderEventUpdated
	OrderEventFilled
	_order_event_end
)

func (k OrderEventKind) IsAvailable() bool {
	return k > _order_event_beg && k < _order_event_end
}

func (k OrderEventKind) String() string {
	switch k {
	case OrderEventInitialized:
		return "INITIALIZED"
	case OrderEventDenied:
		return "DENIED"
	case OrderEventEmulated:
		return "EMULATED"
	case OrderEventReleased:
		return "RELEASED"
	case OrderEventSubmitted:
		return "SUBMITTED"
	case OrderEventAccepted:
		return "ACCEPTED"
	case OrderEventRejected:
		return "REJECTED"
	case OrderEventCanceled:
		return "CANCELED"
	case OrderEventExpired:
		return "EXPIRED"
	case OrderEventTriggered:
		return "TRIGGERED"
	case OrderEventPendingUpdate:
		return "PENDING_UPDATE"
	case OrderEventPendingCancel:
		return "PENDING_CANCEL"
	case OrderEventModifyRejected:
		return "MODIFY_REJECTED"
	case OrderEventCancelRejected:
		return "CANCEL_REJECTED"
	case OrderEventUpdated:
		return "UPDATED"
	case OrderEventFilled:
		return "FILLED"
	default:
		return "UNKNOWN"
	}
}
