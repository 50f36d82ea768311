package exception

import "github.com/yanun0323/errors"

// Fixed-point value errors
var (
	ErrValueOutOfRange   = errors.New("value out of range")
	ErrPrecisionExceeded = errors.New("precision exceeded maximum fixed precision")
	ErrValueUnparsable   = errors.New("value unparsable")
)
