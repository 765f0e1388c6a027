package system

import (
	"time"

	coresys "github.com/l1jgo/edictbridge/internal/core/system"
	"github.com/l1jgo/edictbridge/internal/world"
)

// CleanupSystem frees edicts queued with RemoveLater at tick end.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	state *world.State
}

func NewCleanupSystem(state *world.State) *CleanupSystem {
	return &CleanupSystem{state: state}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.state.Flush()
}
