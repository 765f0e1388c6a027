package scripting

import (
	"fmt"

	"github.com/l1jgo/edictbridge/internal/core/hook"
	"github.com/l1jgo/edictbridge/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func (e *Engine) registerTypes() {
	e.registerEntityType()
	e.registerVecType()
}

// registerGame installs the "game" module: the builtins scripts use to
// reach the host.
func (e *Engine) registerGame() {
	b := e.bridge
	s := b.state
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"spawn": func(L *lua.LState) int {
			idx, err := s.Spawn()
			if err != nil {
				L.RaiseError("spawn: %s", err.Error())
			}
			if cn := L.OptString(1, ""); cn != "" {
				f, _ := world.LookupField("classname")
				s.SetString(idx, f, cn)
			}
			L.Push(b.pushSlot(idx))
			return 1
		},
		"remove": func(L *lua.LState) int {
			if err := s.Remove(b.checkEntity(L, 1)); err != nil {
				L.RaiseError("remove: %s", err.Error())
			}
			return 0
		},
		"entities": func(L *lua.LState) int {
			t := L.NewTable()
			for _, idx := range s.Live() {
				t.Append(b.pushSlot(idx))
			}
			L.Push(t)
			return 1
		},
		"find": func(L *lua.LState) int {
			t := L.NewTable()
			for _, idx := range s.Find(L.CheckString(1)) {
				t.Append(b.pushSlot(idx))
			}
			L.Push(t)
			return 1
		},
		"findradius": func(L *lua.LState) int {
			t := L.NewTable()
			for _, idx := range s.FindRadius(checkVec(L, 1), float64(L.CheckNumber(2))) {
				t.Append(b.pushSlot(idx))
			}
			L.Push(t)
			return 1
		},
		"world": func(L *lua.LState) int {
			L.Push(b.pushSlot(0))
			return 1
		},
		"time": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.Time()))
			return 1
		},
		"epoch": func(L *lua.LState) int {
			L.Push(lua.LNumber(b.epoch.Current()))
			return 1
		},
		"level": func(L *lua.LState) int {
			L.Push(lua.LString(s.Level()))
			return 1
		},
		"maxclients": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.MaxClients()))
			return 1
		},
		"setorigin": func(L *lua.LState) int {
			s.SetOrigin(b.checkEntity(L, 1), checkVec(L, 2))
			return 0
		},
		"setsize": func(L *lua.LState) int {
			if err := s.SetSize(b.checkEntity(L, 1), checkVec(L, 2), checkVec(L, 3)); err != nil {
				L.RaiseError("setsize: %s", err.Error())
			}
			return 0
		},
		"setmodel": func(L *lua.LState) int {
			if err := s.SetModel(b.checkEntity(L, 1), L.CheckString(2)); err != nil {
				L.RaiseError("setmodel: %s", err.Error())
			}
			return 0
		},
		"precache_model": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.PrecacheModel(L.CheckString(1))))
			return 1
		},
		"precache_sound": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.PrecacheSound(L.CheckString(1))))
			return 1
		},
		"parm": func(L *lua.LState) int {
			c, n := e.checkParm(L)
			L.Push(lua.LNumber(c.Parms[n]))
			return 1
		},
		"setparm": func(L *lua.LState) int {
			c, n := e.checkParm(L)
			c.Parms[n] = float64(L.CheckNumber(3))
			return 0
		},
		"bprint": func(L *lua.LState) int {
			s.Broadcast(L.CheckString(1))
			return 0
		},
		"dprint": func(L *lua.LState) int {
			e.log.Debug("lua", zap.String("msg", L.CheckString(1)))
			return 0
		},
		"vec": luaVec,
	})
	e.vm.SetGlobal("game", mod)
}

// checkParm reads (client entity, parm number 1-16) from the stack.
func (e *Engine) checkParm(L *lua.LState) (*world.Client, int) {
	idx := e.bridge.checkEntity(L, 1)
	c, err := e.bridge.state.Client(idx)
	if err != nil {
		L.ArgError(1, "client entity expected")
	}
	n := L.CheckInt(2)
	if n < 1 || n > len(c.Parms) {
		L.ArgError(2, fmt.Sprintf("parm number must be 1-%d", len(c.Parms)))
	}
	return c, n - 1
}

// registerHooks installs the "hooks" module.
func (e *Engine) registerHooks() {
	b := e.bridge
	raise := func(L *lua.LState, err error) {
		if err != nil {
			L.RaiseError("%s", err.Error())
		}
	}
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"register": func(L *lua.LState) int {
			raise(L, b.table.Register(L.CheckString(1), L.CheckFunction(2)))
			return 0
		},
		"unregister": func(L *lua.LState) int {
			removed, err := b.table.Unregister(L.CheckString(1), L.CheckFunction(2))
			raise(L, err)
			L.Push(lua.LBool(removed))
			return 1
		},
		"set": func(L *lua.LState) int {
			name := L.CheckString(1)
			v, err := toHookValue(L.Get(2))
			if err != nil {
				if ce, ok := err.(*hook.ConfigurationError); ok {
					ce.Event = name
				}
				raise(L, err)
			}
			raise(L, b.table.Set(name, v))
			return 0
		},
		"count": func(L *lua.LState) int {
			hs, err := b.table.Lookup(L.CheckString(1))
			raise(L, err)
			L.Push(lua.LNumber(len(hs)))
			return 1
		},
		"names": func(L *lua.LState) int {
			t := L.NewTable()
			for _, n := range b.table.Names() {
				t.Append(lua.LString(n))
			}
			L.Push(t)
			return 1
		},
		"set_strict": func(L *lua.LState) int {
			b.SetStrict(L.CheckBool(1))
			return 0
		},
		"strict": func(L *lua.LState) int {
			L.Push(lua.LBool(b.Strict()))
			return 1
		},
		"set_override": func(L *lua.LState) int {
			b.SetOverrideNative(L.CheckBool(1))
			return 0
		},
		"override": func(L *lua.LState) int {
			L.Push(lua.LBool(b.OverrideNative()))
			return 1
		},
	})
	e.vm.SetGlobal("hooks", mod)
}

// toHookValue converts what a script assigns to an event into a table
// value: nil, a function, or an array of functions.
func toHookValue(v lua.LValue) (hook.Value[*lua.LFunction], error) {
	switch tv := v.(type) {
	case *lua.LNilType:
		return hook.Empty[*lua.LFunction](), nil
	case *lua.LFunction:
		return hook.Single(tv), nil
	case *lua.LTable:
		n := tv.Len()
		fns := make([]*lua.LFunction, 0, n)
		for i := 1; i <= n; i++ {
			fn, ok := tv.RawGetInt(i).(*lua.LFunction)
			if !ok {
				return hook.Value[*lua.LFunction]{}, &hook.ConfigurationError{
					Msg: fmt.Sprintf("handler list element %d is a %s, want function", i, tv.RawGetInt(i).Type()),
				}
			}
			fns = append(fns, fn)
		}
		return hook.Many(fns), nil
	}
	return hook.Value[*lua.LFunction]{}, &hook.ConfigurationError{
		Msg: fmt.Sprintf("handler must be a function, a list of functions or nil, got %s", v.Type()),
	}
}
