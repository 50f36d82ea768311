package exception

import "github.com/yanun0323/errors"

// Message bus errors
var (
	ErrQueueFull    = errors.New("event queue full")
	ErrQueueClosed  = errors.New("event queue closed")
	ErrEmptyTopic   = errors.New("empty topic")
	ErrEmptyHandler = errors.New("empty handler id")
)
