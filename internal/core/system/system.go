package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain console / rcon queue
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: simulation frame and hook dispatch
	PhasePersist                 // 3: journal flush
	PhaseCleanup                 // 4: release deferred frees

	phaseCount
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
