package system

import (
	"time"

	"github.com/l1jgo/edictbridge/internal/console"
	coresys "github.com/l1jgo/edictbridge/internal/core/system"
)

// InputSystem drains queued console lines (stdin, rcon) and executes them on
// the game goroutine. Phase 0 (Input).
type InputSystem struct {
	queue      *console.Queue
	console    *console.Console
	maxPerTick int
}

func NewInputSystem(queue *console.Queue, con *console.Console, maxPerTick int) *InputSystem {
	return &InputSystem{queue: queue, console: con, maxPerTick: maxPerTick}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.queue.Drain(s.maxPerTick, s.console.Exec)
}
