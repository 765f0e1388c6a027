package world

// NativeFunc is host-side behavior bound to a classname.
type NativeFunc func(s *State, self int)

// NativeTouch runs when self touches other.
type NativeTouch func(s *State, self, other int)

// NativeClass groups the native callbacks for one classname. Any may be nil.
type NativeClass struct {
	Spawn   NativeFunc
	Think   NativeFunc
	Touch   NativeTouch
	Blocked NativeTouch
}

// Natives maps classnames to their native callbacks.
type Natives struct {
	classes map[string]*NativeClass
}

func NewNatives() *Natives {
	return &Natives{classes: make(map[string]*NativeClass)}
}

// Register binds a classname. A later call replaces the earlier binding.
func (n *Natives) Register(classname string, c *NativeClass) {
	n.classes[classname] = c
}

func (n *Natives) Class(classname string) *NativeClass { return n.classes[classname] }

func (n *Natives) Spawn(classname string) NativeFunc {
	if c := n.classes[classname]; c != nil {
		return c.Spawn
	}
	return nil
}

func (n *Natives) Think(classname string) NativeFunc {
	if c := n.classes[classname]; c != nil {
		return c.Think
	}
	return nil
}

func (n *Natives) Touch(classname string) NativeTouch {
	if c := n.classes[classname]; c != nil {
		return c.Touch
	}
	return nil
}

func (n *Natives) Blocked(classname string) NativeTouch {
	if c := n.classes[classname]; c != nil {
		return c.Blocked
	}
	return nil
}

// Len returns the number of bound classnames.
func (n *Natives) Len() int { return len(n.classes) }

// DefaultNatives returns the built-in classes every level can rely on.
func DefaultNatives() *Natives {
	n := NewNatives()
	n.Register("worldspawn", &NativeClass{Spawn: spawnWorld})
	n.Register("player", &NativeClass{Spawn: spawnPlayer})
	n.Register("info_player_start", &NativeClass{})
	n.Register("info_null", &NativeClass{Spawn: removeSelf})
	n.Register("light", &NativeClass{Spawn: spawnLight})
	n.Register("temp_entity", &NativeClass{
		Spawn: func(s *State, self int) {
			s.Edict(self).NextThink = s.Time() + 0.1
		},
		Think: removeSelf,
	})
	return n
}

func spawnWorld(s *State, self int) {
	e := s.Edict(self)
	e.Solid = SolidBSP
	e.MoveType = MoveTypePush
	e.ModelIndex = 1
}

func spawnPlayer(s *State, self int) {
	e := s.Edict(self)
	e.Solid = SolidSlideBox
	e.MoveType = MoveTypeWalk
	e.Flags = FlagClient
	e.Health = 100
	e.MaxHealth = 100
	e.TakeDamage = 2
	e.DeadFlag = DeadNo
	e.ViewOfs = Vec3{Z: 22}
	_ = s.SetSize(self, Vec3{-16, -16, -24}, Vec3{16, 16, 32})
}

func spawnLight(s *State, self int) {
	// Targeted lights stay around to be toggled; static ones are baked.
	if s.Edict(self).Targetname == "" {
		removeSelf(s, self)
	}
}

func removeSelf(s *State, self int) {
	s.RemoveLater(self)
}
