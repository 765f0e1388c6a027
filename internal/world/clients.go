package world

import (
	"fmt"

	"github.com/l1jgo/edictbridge/internal/core/hook"
	"go.uber.org/zap"
)

// Client returns the state of client slot i (1-based).
func (s *State) Client(i int) (*Client, error) {
	if !s.IsClientSlot(i) {
		return nil, fmt.Errorf("%w: %d", ErrBadClientSlot, i)
	}
	return &s.clients[i], nil
}

// ConnectClient occupies the first free client slot and fires setnewparms
// followed by clientconnect. Returns the slot.
func (s *State) ConnectClient(name string) (int, error) {
	if s.session != Active {
		return 0, ErrNotRunning
	}
	slot := 0
	for i := 1; i <= s.maxClients; i++ {
		if !s.clients[i].Connected {
			slot = i
			break
		}
	}
	if slot == 0 {
		return 0, fmt.Errorf("server is full (%d clients)", s.maxClients)
	}

	c := &s.clients[slot]
	*c = Client{Connected: true, Name: name}
	s.clearClientSlot(slot)
	e := s.pool.Get(slot)
	e.Classname = s.charset.Encode("player")
	e.Netname = s.charset.Encode(name)
	s.relink(slot)

	if err := s.SetNewParms(); err != nil {
		return slot, err
	}
	if err := s.hooks.Fire(hook.ClientConnect, slot); err != nil {
		return slot, err
	}
	s.log.Info("client connected", zap.Int("slot", slot), zap.String("name", name))
	return slot, nil
}

// PutClientInServer spawns the client's player entity.
func (s *State) PutClientInServer(slot int) error {
	c, err := s.Client(slot)
	if err != nil {
		return err
	}
	if !c.Connected {
		return fmt.Errorf("client %d is not connected", slot)
	}
	if s.session != Active {
		return ErrNotRunning
	}
	if !s.hooks.ShouldOverrideNative(hook.EntitySpawn) {
		if fn := s.natives.Spawn("player"); fn != nil {
			fn(s, slot)
		}
	}
	c.Spawned = true
	return s.hooks.Fire(hook.PutClientInServer, slot)
}

// KillClient handles the client's suicide request.
func (s *State) KillClient(slot int) error {
	c, err := s.Client(slot)
	if err != nil {
		return err
	}
	if !c.Spawned {
		return nil
	}
	e := s.pool.Get(slot)
	e.Health = 0
	e.DeadFlag = DeadDead
	e.Frags--
	return s.hooks.Fire(hook.ClientKill, slot)
}

// SetNewParms fires setnewparms so scripts can prime the parms of a fresh
// connection.
func (s *State) SetNewParms() error {
	return s.hooks.Fire(hook.SetNewParms)
}

// SetChangeParms fires setchangeparms for the client and returns the parms
// the hook left behind; used before a level change.
func (s *State) SetChangeParms(slot int) ([16]float64, error) {
	c, err := s.Client(slot)
	if err != nil {
		return [16]float64{}, err
	}
	if err := s.hooks.Fire(hook.SetChangeParms, slot); err != nil {
		return c.Parms, err
	}
	return c.Parms, nil
}

// DisconnectClient frees the client slot. The edict slot stays reserved.
func (s *State) DisconnectClient(slot int) error {
	c, err := s.Client(slot)
	if err != nil {
		return err
	}
	if !c.Connected {
		return nil
	}
	name := c.Name
	*c = Client{}
	s.clearClientSlot(slot)
	s.log.Info("client disconnected", zap.Int("slot", slot), zap.String("name", name))
	return nil
}

// clearClientSlot wipes a client edict and everything stored against its
// slot. Client slots are never freed, so the pool registry is not cleared
// for them otherwise.
func (s *State) clearClientSlot(slot int) {
	*s.pool.Get(slot) = Edict{}
	s.pool.Registry().RemoveAll(slot)
}

// Clients returns the connected slots in order.
func (s *State) Clients() []int {
	var out []int
	for i := 1; i <= s.maxClients; i++ {
		if s.clients[i].Connected {
			out = append(out, i)
		}
	}
	return out
}
