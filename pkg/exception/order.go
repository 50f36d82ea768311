package exception

import "github.com/yanun0323/errors"

// Order lifecycle errors
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStateTransition  = errors.New("invalid order state transition")
	ErrInvalidOrderEvent       = errors.New("invalid event for order type")
	ErrOrderAlreadyInitialized = errors.New("order already initialized")
	ErrNoOrderSide             = errors.New("order must have a side for this operation")
	ErrOrderQueueFull          = errors.New("order command queue full")
)
