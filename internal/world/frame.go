package world

import (
	"github.com/l1jgo/edictbridge/internal/core/hook"
)

// RunFrame advances the simulation by dt seconds: startframe, player
// prethink, entity think, player postthink. Returns the first error a hook
// surfaced (strict mode); the frame stops there.
func (s *State) RunFrame(dt float64) error {
	if s.session != Active {
		return nil
	}
	s.time += dt

	if err := s.hooks.Fire(hook.StartFrame); err != nil {
		return err
	}
	for i := 1; i <= s.maxClients; i++ {
		if !s.clients[i].Spawned {
			continue
		}
		if err := s.hooks.Fire(hook.PlayerPreThink, i); err != nil {
			return err
		}
	}

	// Entities spawned during this pass think next frame.
	high := s.pool.NumEdicts()
	for i := s.maxClients + 1; i < high; i++ {
		if !s.pool.IsLive(i) {
			continue
		}
		e := s.pool.Get(i)
		if e.NextThink <= 0 || e.NextThink > s.time {
			continue
		}
		if err := s.think(i); err != nil {
			return err
		}
		if s.session != Active {
			return nil
		}
	}

	for i := 1; i <= s.maxClients; i++ {
		if !s.clients[i].Spawned {
			continue
		}
		if err := s.hooks.Fire(hook.PlayerPostThink, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) think(i int) error {
	e := s.pool.Get(i)
	e.NextThink = 0
	if !s.hooks.ShouldOverrideNative(hook.EntityThink) {
		if fn := s.natives.Think(s.charset.Decode(e.Classname)); fn != nil {
			fn(s, i)
		}
	}
	if !s.pool.IsLive(i) {
		return nil
	}
	return s.hooks.Fire(hook.EntityThink, i)
}

// Touch reports that a touched b. Both edicts must be live.
func (s *State) Touch(a, b int) error {
	if s.session != Active || !s.pool.IsLive(a) || !s.pool.IsLive(b) {
		return nil
	}
	if !s.hooks.ShouldOverrideNative(hook.EntityTouch) {
		if fn := s.natives.Touch(s.charset.Decode(s.pool.Get(a).Classname)); fn != nil {
			fn(s, a, b)
		}
	}
	if !s.pool.IsLive(a) || !s.pool.IsLive(b) {
		return nil
	}
	return s.hooks.Fire(hook.EntityTouch, a, b)
}

// Blocked reports that pusher a was blocked by b.
func (s *State) Blocked(a, b int) error {
	if s.session != Active || !s.pool.IsLive(a) || !s.pool.IsLive(b) {
		return nil
	}
	if fn := s.natives.Blocked(s.charset.Decode(s.pool.Get(a).Classname)); fn != nil {
		fn(s, a, b)
	}
	if !s.pool.IsLive(a) || !s.pool.IsLive(b) {
		return nil
	}
	return s.hooks.Fire(hook.EntityBlocked, a, b)
}

// Flush releases edicts queued with RemoveLater and returns how many were
// freed.
func (s *State) Flush() int {
	return s.pool.Flush()
}
