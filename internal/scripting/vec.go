package scripting

import (
	"github.com/l1jgo/edictbridge/internal/world"
	lua "github.com/yuin/gopher-lua"
)

const vecTypeName = "vec"

// newVec wraps v as an immutable vec userdata.
func newVec(L *lua.LState, v world.Vec3) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = v
	L.SetMetatable(ud, L.GetTypeMetatable(vecTypeName))
	return ud
}

func toVec(lv lua.LValue) (world.Vec3, bool) {
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return world.Vec3{}, false
	}
	v, ok := ud.Value.(world.Vec3)
	return v, ok
}

func checkVec(L *lua.LState, n int) world.Vec3 {
	v, ok := toVec(L.Get(n))
	if !ok {
		L.ArgError(n, "vec expected")
	}
	return v
}

func (e *Engine) registerVecType() {
	L := e.vm
	mt := L.NewTypeMetatable(vecTypeName)
	L.SetField(mt, "__index", L.NewFunction(vecIndex))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("vec is immutable")
		return 0
	}))
	L.SetField(mt, "__add", L.NewFunction(func(L *lua.LState) int {
		L.Push(newVec(L, checkVec(L, 1).Add(checkVec(L, 2))))
		return 1
	}))
	L.SetField(mt, "__sub", L.NewFunction(func(L *lua.LState) int {
		L.Push(newVec(L, checkVec(L, 1).Sub(checkVec(L, 2))))
		return 1
	}))
	L.SetField(mt, "__mul", L.NewFunction(vecMul))
	L.SetField(mt, "__unm", L.NewFunction(func(L *lua.LState) int {
		L.Push(newVec(L, checkVec(L, 1).Scale(-1)))
		return 1
	}))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkVec(L, 1) == checkVec(L, 2)))
		return 1
	}))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkVec(L, 1).String()))
		return 1
	}))
}

func vecIndex(L *lua.LState) int {
	v := checkVec(L, 1)
	switch L.CheckString(2) {
	case "x":
		L.Push(lua.LNumber(v.X))
	case "y":
		L.Push(lua.LNumber(v.Y))
	case "z":
		L.Push(lua.LNumber(v.Z))
	case "len":
		L.Push(L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(checkVec(L, 1).Len()))
			return 1
		}))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

// vecMul scales by a number on either side; vec * vec is the dot product.
func vecMul(L *lua.LState) int {
	a, b := L.Get(1), L.Get(2)
	if n, ok := a.(lua.LNumber); ok {
		L.Push(newVec(L, checkVec(L, 2).Scale(float64(n))))
		return 1
	}
	if n, ok := b.(lua.LNumber); ok {
		L.Push(newVec(L, checkVec(L, 1).Scale(float64(n))))
		return 1
	}
	L.Push(lua.LNumber(checkVec(L, 1).Dot(checkVec(L, 2))))
	return 1
}

func luaVec(L *lua.LState) int {
	L.Push(newVec(L, world.Vec3{
		X: float64(L.OptNumber(1, 0)),
		Y: float64(L.OptNumber(2, 0)),
		Z: float64(L.OptNumber(3, 0)),
	}))
	return 1
}
