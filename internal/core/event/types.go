package event

import (
	"time"

	"github.com/l1jgo/edictbridge/internal/core/handle"
)

// SessionStarted is emitted once a level finished spawning.
type SessionStarted struct {
	Epoch    handle.Epoch
	Level    string
	Entities int
	At       time.Time
}

// SessionEnded is emitted when a session is torn down or restarted.
type SessionEnded struct {
	Epoch  handle.Epoch
	Reason string
	At     time.Time
}

// HookFailed records a handler failure swallowed in non-strict mode.
type HookFailed struct {
	Epoch   handle.Epoch
	Event   string
	Handler int
	Message string
	At      time.Time
}
