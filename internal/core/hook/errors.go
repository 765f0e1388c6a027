package hook

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every wiring error: an event the table was never
// told about, an uninitialized table, or a handler value of the wrong shape.
var ErrConfiguration = errors.New("hook configuration error")

type ConfigurationError struct {
	Event string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	if e.Event == "" {
		return "hook: " + e.Msg
	}
	return fmt.Sprintf("hook %q: %s", e.Event, e.Msg)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DispatchError carries the failure of one handler. Handlers registered
// after it in the same round did not run.
type DispatchError struct {
	Event   string
	Handler int // position in the round
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("hook %q handler %d: %v", e.Event, e.Handler, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
