package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// RunChunk runs operator-supplied source in the console environment and
// returns everything it printed followed by its results. New globals land
// in the console environment; reads fall through to the script globals.
// Expressions are accepted as-is ("game.time()").
func (e *Engine) RunChunk(src string) (string, error) {
	fn, err := e.vm.LoadString("return " + src)
	if err != nil {
		if fn, err = e.vm.LoadString(src); err != nil {
			return "", err
		}
	}
	e.vm.SetFEnv(fn, e.console)

	var out strings.Builder
	e.capture = &out
	defer func() { e.capture = nil }()

	top := e.vm.GetTop()
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    lua.MultRet,
		Protect: true,
	}); err != nil {
		return out.String(), err
	}
	n := e.vm.GetTop() - top
	if n > 0 {
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = e.vm.ToStringMeta(e.vm.Get(top + i)).String()
		}
		out.WriteString(strings.Join(parts, "\t"))
		out.WriteByte('\n')
		e.vm.Pop(n)
	}
	return out.String(), nil
}

// ClearConsole drops every variable defined from the console.
func (e *Engine) ClearConsole() {
	env := e.vm.NewTable()
	meta := e.vm.NewTable()
	meta.RawSetString("__index", e.vm.G.Global)
	e.vm.SetMetatable(env, meta)
	e.console = env
}
