package world

import (
	"errors"
	"fmt"

	"github.com/l1jgo/edictbridge/internal/core/edict"
	"github.com/l1jgo/edictbridge/internal/core/hook"
	"github.com/l1jgo/edictbridge/internal/data"
	"go.uber.org/zap"
)

// SessionState is the host's position in its session lifecycle.
type SessionState int

const (
	Inactive SessionState = iota
	Loading
	Active
)

func (s SessionState) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Loading:
		return "loading"
	case Active:
		return "active"
	}
	return "unknown"
}

var (
	ErrNotRunning    = errors.New("server is not running")
	ErrReservedSlot  = errors.New("world and client edicts cannot be removed")
	ErrBadClientSlot = errors.New("client slot out of range")
)

// Hooks is the script boundary as seen by the host. Native behavior for an
// event runs first unless ShouldOverrideNative says otherwise; Fire runs the
// script handlers afterwards. Fire only returns an error when the failure
// must stop the session (strict mode).
type Hooks interface {
	PreSpawn(capacity int)
	PostSpawn(level string, entities int) error
	EndSession(reason string)
	ShouldOverrideNative(k hook.Kind) bool
	Fire(k hook.Kind, ents ...int) error
}

type nopHooks struct{}

func (nopHooks) PreSpawn(int)                        {}
func (nopHooks) PostSpawn(string, int) error         { return nil }
func (nopHooks) EndSession(string)                   {}
func (nopHooks) ShouldOverrideNative(hook.Kind) bool { return false }
func (nopHooks) Fire(hook.Kind, ...int) error        { return nil }

// Client is the connection state of one reserved client slot.
type Client struct {
	Connected bool
	Spawned   bool
	Name      string
	Parms     [16]float64
}

// State is the host simulation: the edict pool, session lifecycle, clock and
// client slots. Accessed only from the game loop goroutine.
type State struct {
	pool       *edict.Pool[Edict]
	session    SessionState
	level      string
	time       float64
	maxClients int
	clients    []Client
	charset    *Charset
	natives    *Natives
	hooks      Hooks
	models     []string
	sounds     []string
	last       *data.Level
	area       *AreaGrid
	log        *zap.Logger
}

// Options configures a State.
type Options struct {
	MaxEdicts  int
	MaxClients int
	Charset    *Charset
	Natives    *Natives
}

func NewState(opts Options, log *zap.Logger) *State {
	if opts.MaxClients < 1 {
		opts.MaxClients = 1
	}
	if opts.MaxEdicts < opts.MaxClients+2 {
		opts.MaxEdicts = opts.MaxClients + 2
	}
	if opts.Charset == nil {
		opts.Charset = &Charset{name: "utf-8"}
	}
	if opts.Natives == nil {
		opts.Natives = NewNatives()
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &State{
		pool:       edict.NewPool[Edict](opts.MaxEdicts),
		maxClients: opts.MaxClients,
		clients:    make([]Client, opts.MaxClients+1),
		charset:    opts.Charset,
		natives:    opts.Natives,
		hooks:      nopHooks{},
		area:       NewAreaGrid(),
		log:        log,
	}
	s.pool.Registry().Register(s.area)
	s.pool.Reset(s.maxClients)
	return s
}

// SetHooks installs the script boundary. nil restores the no-op hooks.
func (s *State) SetHooks(h Hooks) {
	if h == nil {
		h = nopHooks{}
	}
	s.hooks = h
}

func (s *State) Pool() *edict.Pool[Edict] { return s.pool }
func (s *State) Session() SessionState    { return s.session }
func (s *State) Level() string            { return s.level }
func (s *State) Time() float64            { return s.time }
func (s *State) MaxClients() int          { return s.maxClients }
func (s *State) Charset() *Charset        { return s.charset }
func (s *State) Natives() *Natives        { return s.natives }

// Edict returns slot i's variables without any liveness check.
func (s *State) Edict(i int) *Edict { return s.pool.Get(i) }

// --- handle.Pool ---

func (s *State) IsSessionActive() bool   { return s.session == Active }
func (s *State) IsLoading() bool         { return s.session == Loading }
func (s *State) PoolCapacity() int       { return s.pool.Capacity() }
func (s *State) LiveHighWaterMark() int  { return s.pool.NumEdicts() }
func (s *State) SlotIsLive(i int) bool   { return s.pool.IsLive(i) }
func (s *State) SlotSerial(i int) uint32 { return s.pool.Serial(i) }
func (s *State) PlayerRange() (int, int) { return 1, s.maxClients }
func (s *State) IsClientSlot(i int) bool { return i >= 1 && i <= s.maxClients }

// RefTo returns a reference to slot i as it is now.
func (s *State) RefTo(i int) Ref { return Ref{Index: i, Serial: s.pool.Serial(i)} }

// --- session lifecycle ---

// SpawnServer tears down any running session and builds a new one from the
// level: epoch bump (PreSpawn), pool reset, per-entity spawn, then
// serverspawn (PostSpawn). On error the session is left inactive.
func (s *State) SpawnServer(lvl *data.Level) error {
	if s.session != Inactive {
		s.Shutdown("changelevel")
	}

	s.session = Loading
	s.last = lvl
	s.hooks.PreSpawn(s.pool.Capacity())

	s.pool.Reset(s.maxClients)
	s.level = lvl.Name
	s.time = 1.0
	s.models = append(s.models[:0], "")
	s.sounds = append(s.sounds[:0], "")
	for i := 1; i <= s.maxClients; i++ {
		s.clients[i].Spawned = false
	}

	spawned := 0
	for n, ent := range lvl.Entities {
		idx := 0
		if n > 0 {
			var err error
			if idx, err = s.pool.Alloc(); err != nil {
				s.session = Inactive
				return fmt.Errorf("spawn %s: %w", ent.Classname(), err)
			}
		}
		if err := s.parseEntity(idx, ent); err != nil {
			s.log.Warn("entity field ignored", zap.Int("edict", idx), zap.Error(err))
		}
		if err := s.spawnEntity(idx); err != nil {
			s.session = Inactive
			return fmt.Errorf("spawn %s: %w", ent.Classname(), err)
		}
		spawned++
	}

	s.session = Active
	if err := s.hooks.PostSpawn(s.level, spawned); err != nil {
		s.session = Inactive
		return fmt.Errorf("serverspawn: %w", err)
	}
	s.log.Info("server spawned",
		zap.String("level", s.level),
		zap.Int("entities", spawned),
		zap.Int("edicts", s.pool.NumEdicts()),
	)
	return nil
}

// Restart tears the session down and spawns the last level again. Used when
// a strict-mode hook failure leaves the session unusable.
func (s *State) Restart(reason string) error {
	if s.last == nil {
		return ErrNotRunning
	}
	s.log.Warn("restarting session", zap.String("level", s.last.Name), zap.String("reason", reason))
	s.Shutdown(reason)
	return s.SpawnServer(s.last)
}

// Shutdown ends the running session. Client connections survive.
func (s *State) Shutdown(reason string) {
	if s.session == Inactive {
		return
	}
	s.hooks.EndSession(reason)
	s.session = Inactive
	s.log.Info("server stopped", zap.String("level", s.level), zap.String("reason", reason))
}

// parseEntity applies level key/values to slot i (classname first).
func (s *State) parseEntity(i int, ent data.Entity) error {
	e := s.pool.Get(i)
	e.Classname = s.charset.Encode(ent.Classname())
	var errs []error
	for k, v := range ent {
		if k == "classname" {
			continue
		}
		if err := s.ParseField(i, k, v); err != nil {
			errs = append(errs, err)
		}
	}
	s.relink(i)
	return errors.Join(errs...)
}

// ParseField sets one field from its level-file text form.
func (s *State) ParseField(i int, key, value string) error {
	f, ok := LookupField(key)
	if !ok {
		return fmt.Errorf("unknown field %q", key)
	}
	e := s.pool.Get(i)
	switch f.Kind {
	case FieldString:
		f.SetRaw(e, s.charset.Encode(value))
	case FieldVector:
		v, err := ParseVec3(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		f.SetVector(e, v)
	case FieldNumber, FieldEntity:
		var n float64
		if _, err := fmt.Sscan(value, &n); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if f.Kind == FieldEntity {
			f.SetEntity(e, s.RefTo(int(n)))
		} else {
			f.SetNumber(e, n)
		}
	}
	return nil
}

// spawnEntity runs the native spawn function (unless overridden) and then
// the entityspawn hooks.
func (s *State) spawnEntity(i int) error {
	if !s.hooks.ShouldOverrideNative(hook.EntitySpawn) {
		cn := s.String(i, s.pool.Get(i).Classname)
		if fn := s.natives.Spawn(cn); fn != nil {
			fn(s, i)
		} else {
			s.log.Debug("no native spawn function", zap.String("classname", cn))
		}
	}
	if !s.pool.IsLive(i) {
		return nil // native spawn removed it
	}
	return s.hooks.Fire(hook.EntitySpawn, i)
}

// --- builtins used by scripts ---

// Spawn allocates a fresh edict.
func (s *State) Spawn() (int, error) {
	if s.session == Inactive {
		return 0, ErrNotRunning
	}
	i, err := s.pool.Alloc()
	if err != nil {
		return 0, err
	}
	s.relink(i)
	return i, nil
}

// Remove frees an ordinary edict immediately.
func (s *State) Remove(i int) error {
	if i == 0 || s.IsClientSlot(i) {
		return ErrReservedSlot
	}
	if s.pool.Free(i) {
		s.pool.Get(i).FreeTime = s.time
	}
	return nil
}

// RemoveLater frees an ordinary edict at the end of the tick.
func (s *State) RemoveLater(i int) {
	if i == 0 || s.IsClientSlot(i) {
		return
	}
	s.pool.FreeLater(i)
}

// SetOrigin moves the entity and relinks its bounds.
func (s *State) SetOrigin(i int, v Vec3) {
	e := s.pool.Get(i)
	e.Origin = v
	s.relink(i)
}

// SetSize sets the bounding box; maxs must not be below mins.
func (s *State) SetSize(i int, mins, maxs Vec3) error {
	if mins.X > maxs.X || mins.Y > maxs.Y || mins.Z > maxs.Z {
		return fmt.Errorf("backwards mins/maxs %s %s", mins, maxs)
	}
	e := s.pool.Get(i)
	e.Mins, e.Maxs, e.Size = mins, maxs, maxs.Sub(mins)
	s.relink(i)
	return nil
}

// SetModel sets the model name and its precache index. Models must be
// precached while the level is loading.
func (s *State) SetModel(i int, name string) error {
	idx := s.modelIndex(name)
	if idx < 0 {
		if s.session != Loading {
			return fmt.Errorf("model %q not precached", name)
		}
		idx = s.PrecacheModel(name)
	}
	e := s.pool.Get(i)
	e.Model = s.charset.Encode(name)
	e.ModelIndex = float64(idx)
	return nil
}

func (s *State) modelIndex(name string) int {
	for i, m := range s.models {
		if m == name && i > 0 {
			return i
		}
	}
	return -1
}

// PrecacheModel registers a model name and returns its index.
func (s *State) PrecacheModel(name string) int {
	if i := s.modelIndex(name); i >= 0 {
		return i
	}
	s.models = append(s.models, name)
	return len(s.models) - 1
}

// PrecacheSound registers a sound name and returns its index.
func (s *State) PrecacheSound(name string) int {
	for i, n := range s.sounds {
		if n == name && i > 0 {
			return i
		}
	}
	s.sounds = append(s.sounds, name)
	return len(s.sounds) - 1
}

// relink recomputes the absolute bounds of slot i and files it in the area
// grid.
func (s *State) relink(i int) {
	e := s.pool.Get(i)
	e.link()
	s.area.Link(i, e.Origin)
}

// FindRadius returns the live edicts, world excluded, whose bounding box
// center lies within radius of org, in slot order.
func (s *State) FindRadius(org Vec3, radius float64) []int {
	var out []int
	for _, i := range s.area.Nearby(org, radius) {
		if i == 0 || !s.pool.IsLive(i) {
			continue
		}
		e := s.pool.Get(i)
		center := e.Origin.Add(e.Mins.Add(e.Maxs).Scale(0.5))
		if center.Sub(org).Len() <= radius {
			out = append(out, i)
		}
	}
	return out
}

// Find returns live edicts whose classname matches, in slot order.
func (s *State) Find(classname string) []int {
	raw := s.charset.Encode(classname)
	var out []int
	s.pool.Each(func(i int, e *Edict) {
		if e.Classname == raw {
			out = append(out, i)
		}
	})
	return out
}

// Live returns every live slot, in slot order.
func (s *State) Live() []int {
	out := make([]int, 0, s.pool.NumEdicts())
	s.pool.Each(func(i int, _ *Edict) { out = append(out, i) })
	return out
}

// String decodes a host-encoded string field value.
func (s *State) String(_ int, raw string) string {
	return s.charset.Decode(raw)
}

// GetString returns a string field as UTF-8.
func (s *State) GetString(i int, f *Field) string {
	return s.charset.Decode(f.Raw(s.pool.Get(i)))
}

// SetString stores a UTF-8 string field in the host charset.
func (s *State) SetString(i int, f *Field, v string) {
	f.SetRaw(s.pool.Get(i), s.charset.Encode(v))
}

// Broadcast prints a message to every connected client.
func (s *State) Broadcast(msg string) {
	s.log.Info("bprint", zap.String("msg", msg))
}
