package scripting

import (
	"fmt"

	"github.com/l1jgo/edictbridge/internal/core/handle"
	"github.com/l1jgo/edictbridge/internal/world"
	lua "github.com/yuin/gopher-lua"
)

const entityTypeName = "entity"

// entityValue returns the userdata for h. While h names the slot's current
// occupant the same userdata is handed out every time, so entities work as
// table keys and compare with rawequal.
func (b *Bridge) entityValue(h handle.Handle) lua.LValue {
	idx := h.Index
	if ud, ok := b.interned.Get(idx); ok && ud != nil {
		if cur, ok := ud.Value.(handle.Handle); ok && cur == h {
			return ud
		}
	}
	ud := b.L.NewUserData()
	ud.Value = h
	b.L.SetMetatable(ud, b.L.GetTypeMetatable(entityTypeName))
	if h == b.resolver.Mint(idx) {
		b.interned.Set(idx, ud)
	}
	return ud
}

// pushSlot mints a handle for a live slot and returns its userdata.
func (b *Bridge) pushSlot(idx int) lua.LValue {
	return b.entityValue(b.resolver.Mint(idx))
}

// checkHandle returns the handle stored in argument n.
func checkHandle(L *lua.LState, n int) handle.Handle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(handle.Handle)
	if !ok {
		L.ArgError(n, "entity expected")
	}
	return h
}

// checkEntity resolves argument n, raising a Lua error if it no longer
// names a live edict.
func (b *Bridge) checkEntity(L *lua.LState, n int) int {
	h := checkHandle(L, n)
	idx, err := b.resolver.Resolve(h)
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	return idx
}

func (e *Engine) registerEntityType() {
	L := e.vm
	b := e.bridge
	mt := L.NewTypeMetatable(entityTypeName)
	L.SetField(mt, "__index", L.NewFunction(b.entityIndex))
	L.SetField(mt, "__newindex", L.NewFunction(b.entityNewIndex))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		a, c := checkHandle(L, 1), checkHandle(L, 2)
		L.Push(lua.LBool(a.Equal(c)))
		return 1
	}))
	L.SetField(mt, "__tostring", L.NewFunction(b.entityString))
	L.SetField(mt, "__metatable", lua.LString(entityTypeName))
}

var entityMethods = map[string]func(b *Bridge, L *lua.LState) int{
	"valid": func(b *Bridge, L *lua.LState) int {
		L.Push(lua.LBool(b.resolver.Valid(checkHandle(L, 1))))
		return 1
	},
	"index": func(b *Bridge, L *lua.LState) int {
		L.Push(lua.LNumber(b.checkEntity(L, 1)))
		return 1
	},
	"epoch": func(b *Bridge, L *lua.LState) int {
		L.Push(lua.LNumber(checkHandle(L, 1).Epoch))
		return 1
	},
}

func (b *Bridge) entityIndex(L *lua.LState) int {
	key := L.CheckString(2)
	if m, ok := entityMethods[key]; ok {
		L.Push(L.NewFunction(func(L *lua.LState) int { return m(b, L) }))
		return 1
	}

	idx := b.checkEntity(L, 1)
	if f, ok := world.LookupField(key); ok {
		L.Push(b.fieldValue(idx, f))
		return 1
	}
	if t, ok := b.fields.Get(idx); ok && t != nil {
		L.Push(t.RawGetString(key))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func (b *Bridge) fieldValue(idx int, f *world.Field) lua.LValue {
	e := b.state.Edict(idx)
	switch f.Kind {
	case world.FieldNumber:
		return lua.LNumber(f.Number(e))
	case world.FieldVector:
		return newVec(b.L, f.Vector(e))
	case world.FieldString:
		return lua.LString(b.state.GetString(idx, f))
	case world.FieldEntity:
		ref := f.Entity(e)
		return b.entityValue(handle.New(b.epoch.Current(), ref.Index, ref.Serial))
	}
	return lua.LNil
}

func (b *Bridge) entityNewIndex(L *lua.LState) int {
	key := L.CheckString(2)
	idx := b.checkEntity(L, 1)
	val := L.Get(3)

	f, ok := world.LookupField(key)
	if !ok {
		t, _ := b.fields.Get(idx)
		if t == nil {
			if val == lua.LNil {
				return 0
			}
			t = L.NewTable()
			b.fields.Set(idx, t)
		}
		t.RawSetString(key, val)
		return 0
	}
	if f.ReadOnly {
		L.RaiseError("field %q is read-only", key)
	}

	e := b.state.Edict(idx)
	switch f.Kind {
	case world.FieldNumber:
		f.SetNumber(e, float64(L.CheckNumber(3)))
	case world.FieldVector:
		f.SetVector(e, checkVec(L, 3))
	case world.FieldString:
		b.state.SetString(idx, f, L.CheckString(3))
	case world.FieldEntity:
		if val == lua.LNil {
			f.SetEntity(e, world.Ref{})
		} else {
			f.SetEntity(e, b.state.RefTo(b.checkEntity(L, 3)))
		}
	}
	return 0
}

func (b *Bridge) entityString(L *lua.LState) int {
	h := checkHandle(L, 1)
	idx, err := b.resolver.Resolve(h)
	if err != nil {
		L.Push(lua.LString("<invalid entity reference>"))
		return 1
	}
	cn := b.state.String(idx, b.state.Edict(idx).Classname)
	L.Push(lua.LString(fmt.Sprintf("<edict #%d, classname %q>", idx, cn)))
	return 1
}
