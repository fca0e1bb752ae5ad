package schedule

import "errors"

// Set of errors returned by schedule operations. A call that fails with any
// of these leaves the schedule exactly as it was before the call.
var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrUnauthorized    = errors.New("caller is not the owner")
	ErrTooEarly        = errors.New("blocks from last withdrawal not greater than the withdraw interval")
	ErrTransferFailed  = errors.New("transfer failed")
	ErrOverflow        = errors.New("custodied balance overflow")
	ErrInvalidConfig   = errors.New("invalid schedule config")
	ErrInvalidSnapshot = errors.New("invalid schedule snapshot")
)
