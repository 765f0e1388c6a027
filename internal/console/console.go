// Package console implements the operator command set and the remote
// console that feeds it.
package console

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/l1jgo/edictbridge/internal/core/hook"
	"github.com/l1jgo/edictbridge/internal/data"
	"github.com/l1jgo/edictbridge/internal/scripting"
	"github.com/l1jgo/edictbridge/internal/world"
	"go.uber.org/zap"
)

// LevelLoader resolves a level name given to "map".
type LevelLoader func(name string) (*data.Level, error)

type command struct {
	usage string
	run   func(c *Console, args []string, rest string) (string, error)
}

// Console executes operator lines against the host and the script engine.
// Game loop access only.
type Console struct {
	state  *world.State
	engine *scripting.Engine
	levels LevelLoader
	log    *zap.Logger
	cmds   map[string]command
}

func New(state *world.State, engine *scripting.Engine, levels LevelLoader, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Console{state: state, engine: engine, levels: levels, log: log}
	c.cmds = map[string]command{
		"help":       {"help", cmdHelp},
		"lua":        {"lua <chunk>", cmdLua},
		"lua_clear":  {"lua_clear", cmdLuaClear},
		"status":     {"status", cmdStatus},
		"hooks":      {"hooks", cmdHooks},
		"strict":     {"strict [0|1]", cmdStrict},
		"override":   {"override [0|1]", cmdOverride},
		"map":        {"map <level>", cmdMap},
		"connect":    {"connect <name>", cmdConnect},
		"disconnect": {"disconnect <slot>", cmdDisconnect},
		"kill":       {"kill <slot>", cmdKill},
		"touch":      {"touch <edict> <edict>", cmdTouch},
	}
	return c
}

// Exec runs one console line and returns its output. Errors are reported
// in the output as well so remote operators see them.
func (c *Console) Exec(line string) string {
	out, err := c.Run(line)
	if err != nil {
		c.log.Warn("console command failed", zap.String("line", line), zap.Error(err))
		return out + "error: " + err.Error() + "\n"
	}
	return out
}

// Run parses and executes one line.
func (c *Console) Run(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	cmd, ok := c.cmds[name]
	if !ok {
		return "", fmt.Errorf("unknown command %q", name)
	}
	c.log.Debug("console", zap.String("cmd", name))
	out, err := cmd.run(c, strings.Fields(rest), rest)

	// A strict hook failure leaves the session unusable.
	var de *hook.DispatchError
	if errors.As(err, &de) && c.engine.Bridge().Strict() {
		if rerr := c.state.Restart("strict: " + de.Event); rerr != nil {
			return out, errors.Join(err, rerr)
		}
		out += "session restarted\n"
	}
	return out, err
}

func cmdHelp(c *Console, _ []string, _ string) (string, error) {
	names := make([]string, 0, len(c.cmds))
	for n := range c.cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(c.cmds[n].usage)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func cmdLua(c *Console, _ []string, rest string) (string, error) {
	if rest == "" {
		return "", fmt.Errorf("usage: lua <chunk>")
	}
	return c.engine.RunChunk(rest)
}

func cmdLuaClear(c *Console, _ []string, _ string) (string, error) {
	c.engine.ClearConsole()
	return "console environment cleared\n", nil
}

func cmdStatus(c *Console, _ []string, _ string) (string, error) {
	s := c.state
	b := c.engine.Bridge()
	var out strings.Builder
	fmt.Fprintf(&out, "level:    %s (%s)\n", s.Level(), s.Session())
	fmt.Fprintf(&out, "epoch:    %d\n", b.Epoch())
	fmt.Fprintf(&out, "time:     %.1f\n", s.Time())
	fmt.Fprintf(&out, "edicts:   %d live, %d/%d used\n", len(s.Live()), s.LiveHighWaterMark(), s.PoolCapacity())
	fmt.Fprintf(&out, "clients:  %d/%d\n", len(s.Clients()), s.MaxClients())
	fmt.Fprintf(&out, "handlers: %d\n", b.HandlerCount())
	fmt.Fprintf(&out, "strict:   %t\n", b.Strict())
	fmt.Fprintf(&out, "override: %t\n", b.OverrideNative())
	fmt.Fprintf(&out, "failures: %d\n", b.Failures())
	return out.String(), nil
}

func cmdHooks(c *Console, _ []string, _ string) (string, error) {
	t := c.engine.Bridge().Table()
	var out strings.Builder
	for _, n := range t.Names() {
		fmt.Fprintf(&out, "%-18s %d\n", n, t.Len(n))
	}
	return out.String(), nil
}

func parseToggle(args []string) (bool, bool, error) {
	if len(args) == 0 {
		return false, false, nil
	}
	switch args[0] {
	case "1", "on", "true":
		return true, true, nil
	case "0", "off", "false":
		return false, true, nil
	}
	return false, false, fmt.Errorf("want 0 or 1, got %q", args[0])
}

func cmdStrict(c *Console, args []string, _ string) (string, error) {
	on, set, err := parseToggle(args)
	if err != nil {
		return "", err
	}
	b := c.engine.Bridge()
	if set {
		b.SetStrict(on)
	}
	return fmt.Sprintf("strict = %t\n", b.Strict()), nil
}

func cmdOverride(c *Console, args []string, _ string) (string, error) {
	on, set, err := parseToggle(args)
	if err != nil {
		return "", err
	}
	b := c.engine.Bridge()
	if set {
		b.SetOverrideNative(on)
	}
	return fmt.Sprintf("override = %t\n", b.OverrideNative()), nil
}

func cmdMap(c *Console, args []string, _ string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: map <level>")
	}
	if c.levels == nil {
		return "", fmt.Errorf("no level source configured")
	}
	lvl, err := c.levels(args[0])
	if err != nil {
		return "", err
	}
	if err := c.state.SpawnServer(lvl); err != nil {
		return "", err
	}
	return fmt.Sprintf("spawned %s, epoch %d\n", lvl.Name, c.engine.Bridge().Epoch()), nil
}

func cmdConnect(c *Console, args []string, _ string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: connect <name>")
	}
	slot, err := c.state.ConnectClient(args[0])
	if err != nil {
		return "", err
	}
	if err := c.state.PutClientInServer(slot); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s connected on slot %d\n", args[0], slot), nil
}

func slotArg(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d edict numbers", n)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad edict number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func cmdDisconnect(c *Console, args []string, _ string) (string, error) {
	slots, err := slotArg(args, 1)
	if err != nil {
		return "", err
	}
	if err := c.state.DisconnectClient(slots[0]); err != nil {
		return "", err
	}
	return fmt.Sprintf("slot %d disconnected\n", slots[0]), nil
}

func cmdKill(c *Console, args []string, _ string) (string, error) {
	slots, err := slotArg(args, 1)
	if err != nil {
		return "", err
	}
	if err := c.state.KillClient(slots[0]); err != nil {
		return "", err
	}
	return fmt.Sprintf("slot %d killed\n", slots[0]), nil
}

func cmdTouch(c *Console, args []string, _ string) (string, error) {
	slots, err := slotArg(args, 2)
	if err != nil {
		return "", err
	}
	if err := c.state.Touch(slots[0], slots[1]); err != nil {
		return "", err
	}
	return "", nil
}
