package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/l1jgo/edictbridge/internal/core/event"
	"github.com/l1jgo/edictbridge/internal/core/hook"
	"github.com/l1jgo/edictbridge/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Options configures the Lua engine.
type Options struct {
	Dir            string // script root; "" loads nothing
	Sandbox        bool
	Strict         bool
	OverrideNative bool
}

// Engine wraps a single gopher-lua VM for game logic execution.
// Single-goroutine access only (game loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	bridge *Bridge
	opts   Options

	console *lua.LTable
	capture *strings.Builder
}

// NewEngine creates the VM, installs the script API, loads every script
// under opts.Dir and attaches itself to the host as its hook boundary.
func NewEngine(state *world.State, bus *event.Bus, opts Options, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var vm *lua.LState
	if opts.Sandbox {
		vm = newSandboxedState()
	} else {
		vm = lua.NewState()
	}

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(2))

	e := &Engine{vm: vm, log: log, opts: opts}
	e.bridge = newBridge(vm, state, bus, log)
	e.bridge.policy.OverrideNative = opts.OverrideNative
	e.bridge.strict = opts.Strict

	e.registerTypes()
	e.registerGame()
	e.registerHooks()
	vm.SetGlobal("print", vm.NewFunction(e.luaPrint))
	vm.SetGlobal("callbacks", vm.NewTable())
	e.ClearConsole()

	if opts.Dir != "" {
		if err := e.loadAll(opts.Dir); err != nil {
			vm.Close()
			return nil, err
		}
	}
	if err := e.installCallbacks(); err != nil {
		vm.Close()
		return nil, err
	}

	state.SetHooks(e.bridge)
	log.Info("lua engine ready",
		zap.String("dir", opts.Dir),
		zap.Bool("sandbox", opts.Sandbox),
		zap.Int("handlers", e.bridge.HandlerCount()),
	)
	return e, nil
}

// newSandboxedState opens only the safe standard libraries and strips the
// globals that reach the filesystem or the loader.
func newSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Bridge returns the hook boundary bound to this VM.
func (e *Engine) Bridge() *Bridge { return e.bridge }

// Close releases the VM. The host falls back to no hooks.
func (e *Engine) Close() {
	e.bridge.state.SetHooks(nil)
	e.vm.Close()
}

// loadAll loads core/ first, then every other sub-directory in name order,
// then the .lua files at the root.
func (e *Engine) loadAll(root string) error {
	if err := e.loadDir(filepath.Join(root, "core")); err != nil {
		return fmt.Errorf("load core scripts: %w", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("script directory missing", zap.String("dir", root))
			return nil
		}
		return err
	}
	var subs []string
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() != "core" {
			subs = append(subs, entry.Name())
		}
	}
	sort.Strings(subs)
	for _, sub := range subs {
		if err := e.loadDir(filepath.Join(root, sub)); err != nil {
			return fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e.loadDir(root)
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk in the global environment.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// installCallbacks moves every known event in the legacy callbacks table
// into the hook table, with hooks.set semantics.
func (e *Engine) installCallbacks() error {
	tbl, ok := e.vm.GetGlobal("callbacks").(*lua.LTable)
	if !ok {
		return nil
	}
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		name := lua.LVAsString(k)
		if _, known := hook.ByName(name); !known {
			e.log.Warn("ignoring unknown callback", zap.String("event", name))
			return
		}
		val, verr := toHookValue(v)
		if verr != nil {
			err = fmt.Errorf("callbacks.%s: %w", name, verr)
			return
		}
		if len(val.Handlers()) > 0 {
			err = e.bridge.table.Set(name, val)
		}
	})
	return err
}

func (e *Engine) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	line := strings.Join(parts, "\t")
	if e.capture != nil {
		e.capture.WriteString(line)
		e.capture.WriteByte('\n')
	}
	e.log.Info("lua", zap.String("out", line))
	return 0
}
