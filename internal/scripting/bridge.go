package scripting

import (
	"errors"
	"time"

	"github.com/l1jgo/edictbridge/internal/core/edict"
	"github.com/l1jgo/edictbridge/internal/core/event"
	"github.com/l1jgo/edictbridge/internal/core/handle"
	"github.com/l1jgo/edictbridge/internal/core/hook"
	"github.com/l1jgo/edictbridge/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Bridge is the one context object between the host and the Lua VM: it owns
// the epoch, the resolver, the hook table and the dispatch policy.
// Game loop access only.
type Bridge struct {
	L        *lua.LState
	state    *world.State
	bus      *event.Bus
	log      *zap.Logger
	epoch    handle.EpochCounter
	resolver *handle.Resolver

	table      *hook.Table[*lua.LFunction]
	dispatcher *hook.Dispatcher[*lua.LFunction]
	policy     hook.Policy
	strict     bool

	// interned holds the userdata minted for each slot so equal handles
	// are the same Lua value. fields holds script-defined entity fields.
	// Both are cleared when their slot is freed.
	interned *edict.SlotStore[*lua.LUserData]
	fields   *edict.SlotStore[*lua.LTable]

	failures int
}

var _ world.Hooks = (*Bridge)(nil)
var _ hook.Invoker[*lua.LFunction] = (*Bridge)(nil)

func newBridge(L *lua.LState, state *world.State, bus *event.Bus, log *zap.Logger) *Bridge {
	if bus == nil {
		bus = event.NewBus()
	}
	b := &Bridge{
		L:        L,
		state:    state,
		bus:      bus,
		log:      log,
		table:    hook.NewTable[*lua.LFunction](),
		interned: edict.NewSlotStore[*lua.LUserData](state.PoolCapacity()),
		fields:   edict.NewSlotStore[*lua.LTable](state.PoolCapacity()),
	}
	b.resolver = handle.NewResolver(state, &b.epoch)
	b.table.Initialize(hook.Names())
	b.dispatcher = hook.NewDispatcher[*lua.LFunction](b.table, b)
	state.Pool().Registry().Register(b.interned)
	state.Pool().Registry().Register(b.fields)
	return b
}

func (b *Bridge) Epoch() handle.Epoch                { return b.epoch.Current() }
func (b *Bridge) Resolver() *handle.Resolver         { return b.resolver }
func (b *Bridge) Table() *hook.Table[*lua.LFunction] { return b.table }
func (b *Bridge) Strict() bool                       { return b.strict }
func (b *Bridge) SetStrict(on bool)                  { b.strict = on }
func (b *Bridge) OverrideNative() bool               { return b.policy.OverrideNative }
func (b *Bridge) SetOverrideNative(on bool)          { b.policy.OverrideNative = on }

// Failures returns how many handler failures were swallowed in
// non-strict mode.
func (b *Bridge) Failures() int { return b.failures }

// HandlerCount returns the number of registered handlers over all events.
func (b *Bridge) HandlerCount() int {
	n := 0
	for _, name := range b.table.Names() {
		n += b.table.Len(name)
	}
	return n
}

// --- world.Hooks ---

// PreSpawn starts a new epoch before the pool is reset so no handle from
// the previous session can name a slot of the next one.
func (b *Bridge) PreSpawn(capacity int) {
	e := b.epoch.Advance()
	b.interned.Grow(capacity)
	b.fields.Grow(capacity)
	b.log.Debug("epoch advanced", zap.Uint32("epoch", uint32(e)))
}

func (b *Bridge) PostSpawn(level string, entities int) error {
	event.Emit(b.bus, event.SessionStarted{Epoch: b.epoch.Current(), Level: level, Entities: entities, At: time.Now()})
	return b.Fire(hook.ServerSpawn)
}

func (b *Bridge) EndSession(reason string) {
	event.Emit(b.bus, event.SessionEnded{Epoch: b.epoch.Current(), Reason: reason, At: time.Now()})
}

func (b *Bridge) ShouldOverrideNative(k hook.Kind) bool {
	return b.policy.ShouldOverrideNative(k)
}

// Fire mints handles for the slots and runs one dispatch round. In strict
// mode the failure is returned to the host; otherwise it is logged, emitted
// as HookFailed and swallowed. Configuration errors are always returned.
func (b *Bridge) Fire(k hook.Kind, ents ...int) error {
	name := k.String()
	if b.table.Len(name) == 0 {
		return nil
	}
	args := make([]handle.Handle, len(ents))
	for i, idx := range ents {
		args[i] = b.resolver.Mint(idx)
	}
	return b.settle(name, b.dispatcher.Dispatch(name, args...))
}

func (b *Bridge) settle(name string, err error) error {
	if err == nil {
		return nil
	}
	if b.strict || errors.Is(err, hook.ErrConfiguration) {
		return err
	}
	b.failures++
	handler := -1
	var de *hook.DispatchError
	if errors.As(err, &de) {
		handler = de.Handler
	}
	b.log.Error("hook failed",
		zap.String("event", name),
		zap.Int("handler", handler),
		zap.Error(err),
	)
	event.Emit(b.bus, event.HookFailed{
		Epoch:   b.epoch.Current(),
		Event:   name,
		Handler: handler,
		Message: err.Error(),
		At:      time.Now(),
	})
	return nil
}

// --- hook.Invoker ---

func (b *Bridge) Invoke(fn *lua.LFunction, args ...handle.Handle) error {
	lv := make([]lua.LValue, len(args))
	for i, h := range args {
		lv[i] = b.entityValue(h)
	}
	return b.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lv...)
}
