package system

import (
	"context"
	"time"

	coresys "github.com/l1jgo/edictbridge/internal/core/system"
	"github.com/l1jgo/edictbridge/internal/persist"
	"go.uber.org/zap"
)

// PersistenceSystem periodically writes the session journal. Phase 3 (Persist).
type PersistenceSystem struct {
	journal   *persist.Journal
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
}

func NewPersistenceSystem(journal *persist.Journal, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &PersistenceSystem{journal: journal, log: log, interval: intervalTicks}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes the journal immediately. Called on shutdown as well.
func (s *PersistenceSystem) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.journal.Flush(ctx); err != nil {
		s.log.Warn("journal flush failed", zap.Int("pending", s.journal.Pending()), zap.Error(err))
	}
}
