package handle

import (
	"errors"
	"fmt"
)

// ErrInvalidHandle matches every resolution failure. Scripts see a single
// stale-reference condition; only the message differs by reason.
var ErrInvalidHandle = errors.New("invalid entity reference")

type Reason int

const (
	SessionNotActive Reason = iota + 1
	WrongEpoch
	IndexOutOfRange
	SlotNotLive
	SlotReused
)

func (r Reason) String() string {
	switch r {
	case SessionNotActive:
		return "server is not running"
	case WrongEpoch:
		return "edict was created in another server"
	case IndexOutOfRange:
		return "edict index out of range"
	case SlotNotLive:
		return "edict was freed"
	case SlotReused:
		return "edict slot was reused"
	}
	return "unknown"
}

// InvalidHandleError is returned by Resolver.Resolve.
type InvalidHandleError struct {
	Reason Reason
	Handle Handle
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Handle, e.Reason)
}

func (e *InvalidHandleError) Is(target error) bool {
	return target == ErrInvalidHandle
}

// ReasonOf extracts the failure reason, or 0 if err is not a resolution error.
func ReasonOf(err error) Reason {
	var ie *InvalidHandleError
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return 0
}
