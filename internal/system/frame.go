package system

import (
	"errors"
	"time"

	"github.com/l1jgo/edictbridge/internal/core/hook"
	coresys "github.com/l1jgo/edictbridge/internal/core/system"
	"github.com/l1jgo/edictbridge/internal/world"
	"go.uber.org/zap"
)

// FrameSystem advances the simulation one frame. A frame only fails when a
// strict-mode hook fails; the session is then restarted on the same level.
// Phase 2 (Update).
type FrameSystem struct {
	state *world.State
	log   *zap.Logger
}

func NewFrameSystem(state *world.State, log *zap.Logger) *FrameSystem {
	return &FrameSystem{state: state, log: log}
}

func (s *FrameSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *FrameSystem) Update(dt time.Duration) {
	err := s.state.RunFrame(dt.Seconds())
	if err == nil {
		return
	}
	reason := "frame failed"
	var de *hook.DispatchError
	if errors.As(err, &de) {
		reason = "strict: " + de.Event
	}
	s.log.Error("frame aborted", zap.Error(err))
	if err := s.state.Restart(reason); err != nil {
		s.log.Error("session restart failed", zap.Error(err))
	}
}
