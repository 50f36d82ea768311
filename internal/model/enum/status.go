package enum

// OrderStatus is the lifecycle state of an order.
type OrderStatus uint8

const (
	_order_status_beg OrderStatus = iota
	OrderStatusInitialized
	OrderStatusDenied
	OrderStatusEmulated
	OrderStatusReleased
	OrderStatusSubmitted
	OrderStatusAccepted
	OrderStatusRejected
	OrderStatusCanceled
	OrderStatusExpired
	OrderStatusTriggered
	OrderStatusPendingUpdate
	OrderStatusPendingCancel
	OrderStatusPartiallyFilled
	OrderStatusFilled
	_order_status_end
)

func (s OrderStatus) IsAvailable() bool {
	return s > _order_status_beg && s < _order_status_end
}

// IsClosed reports whether the status is terminal.
func (s OrderStatus) IsClosed() bool {
	switch s {
	case OrderStatusDenied, OrderStatusRejected, OrderStatusCanceled,
		OrderStatusExpired, OrderStatusFilled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the order remains working at a venue.
func (s OrderStatus) IsOpen() bool {
	switch s {
	case OrderStatusAccepted, OrderStatusTriggered, OrderStatusPendingUpdate,
		OrderStatusPendingCancel, OrderStatusPartiallyFilled:
		return true
	default:
		return false
	}
}

// IsInflight reports whether a command is awaiting venue acknowledgement.
func (s OrderStatus) IsInflight() bool {
	switch s {
	case OrderStatusSubmitted, OrderStatusPendingUpdate, OrderStatusPendingCancel:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusInitialized:
		return "INITIALIZED"
	case OrderStatusDenied:
		return "DENIED"
	case OrderStatusEmulated:
		return "EMULATED"
	case OrderStatusReleased:
		return "RELEASED"
	case OrderStatusSubmitted:
		return "SUBMITTED"
	case OrderStatusAccepted:
		return "ACCEPTED"
	case OrderStatusRejected:
		return "REJECTED"
	case OrderStatusCanceled:
		return "CANCELED"
	case OrderStatusExpired:
		return "EXPIRED"
	case OrderStatusTriggered:
		return "TRIGGERED"
	case OrderStatusPendingUpdate:
		return "PENDING_UPDATE"
	case OrderStatusPendingCancel:
		return "PENDING_CANCEL"
	case OrderStatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case OrderStatusFilled:
		return "FILLED"
	default:
		return "UNKNOWN"
	}
}
