package hook

type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueSingle
	ValueMany
)

// Value is what is registered against one event name: nothing, one bare
// callable, or an ordered list of callables.
type Value[F comparable] struct {
	kind   ValueKind
	single F
	many   []F
}

func Empty[F comparable]() Value[F] { return Value[F]{} }

func Single[F comparable](fn F) Value[F] {
	return Value[F]{kind: ValueSingle, single: fn}
}

// Many copies fns; an empty list is Empty and a one-element list is Single.
func Many[F comparable](fns []F) Value[F] {
	switch len(fns) {
	case 0:
		return Empty[F]()
	case 1:
		return Single(fns[0])
	}
	cp := make([]F, len(fns))
	copy(cp, fns)
	return Value[F]{kind: ValueMany, many: cp}
}

func (v Value[F]) Kind() ValueKind { return v.kind }

// Handlers collapses the value to a fresh slice the caller may keep.
func (v Value[F]) Handlers() []F {
	switch v.kind {
	case ValueSingle:
		return []F{v.single}
	case ValueMany:
		cp := make([]F, len(v.many))
		copy(cp, v.many)
		return cp
	}
	return nil
}

func (v Value[F]) Len() int {
	switch v.kind {
	case ValueSingle:
		return 1
	case ValueMany:
		return len(v.many)
	}
	return 0
}

func (v Value[F]) appended(fn F) Value[F] {
	switch v.kind {
	case ValueEmpty:
		return Single(fn)
	case ValueSingle:
		return Value[F]{kind: ValueMany, many: []F{v.single, fn}}
	}
	many := make([]F, len(v.many), len(v.many)+1)
	copy(many, v.many)
	return Value[F]{kind: ValueMany, many: append(many, fn)}
}

func (v Value[F]) without(fn F) (Value[F], bool) {
	hs := v.Handlers()
	for i, h := range hs {
		if h == fn {
			return Many(append(hs[:i], hs[i+1:]...)), true
		}
	}
	return v, false
}

// Table maps every known event name to its registered handlers. Names are
// fixed at Initialize; asking for any other name is a wiring bug.
// Game loop access only.
type Table[F comparable] struct {
	entries map[string]Value[F]
	order   []string
}

func NewTable[F comparable]() *Table[F] {
	return &Table[F]{}
}

// Initialize creates an empty entry for every name. Calling it again drops
// all registrations.
func (t *Table[F]) Initialize(names []string) {
	t.entries = make(map[string]Value[F], len(names))
	t.order = t.order[:0]
	for _, n := range names {
		if _, dup := t.entries[n]; dup {
			continue
		}
		t.entries[n] = Empty[F]()
		t.order = append(t.order, n)
	}
}

func (t *Table[F]) Initialized() bool { return t.entries != nil }

func (t *Table[F]) entry(name string) (Value[F], error) {
	if t.entries == nil {
		return Value[F]{}, &ConfigurationError{Event: name, Msg: "hook table not initialized"}
	}
	v, ok := t.entries[name]
	if !ok {
		return Value[F]{}, &ConfigurationError{Event: name, Msg: "unknown event"}
	}
	return v, nil
}

// Register appends fn. The same handler may be registered more than once
// and then runs once per registration.
func (t *Table[F]) Register(name string, fn F) error {
	v, err := t.entry(name)
	if err != nil {
		return err
	}
	t.entries[name] = v.appended(fn)
	return nil
}

// Unregister removes the first registration of fn. It reports whether a
// registration was removed.
func (t *Table[F]) Unregister(name string, fn F) (bool, error) {
	v, err := t.entry(name)
	if err != nil {
		return false, err
	}
	nv, removed := v.without(fn)
	t.entries[name] = nv
	return removed, nil
}

// Set replaces the whole registration for name.
func (t *Table[F]) Set(name string, v Value[F]) error {
	if _, err := t.entry(name); err != nil {
		return err
	}
	t.entries[name] = v
	return nil
}

// Lookup returns a snapshot of the handlers for name. A known name with no
// handlers returns an empty slice and no error.
func (t *Table[F]) Lookup(name string) ([]F, error) {
	v, err := t.entry(name)
	if err != nil {
		return nil, err
	}
	return v.Handlers(), nil
}

func (t *Table[F]) Get(name string) (Value[F], error) {
	return t.entry(name)
}

// Len returns the handler count for name, 0 for unknown names.
func (t *Table[F]) Len(name string) int {
	v, err := t.entry(name)
	if err != nil {
		return 0
	}
	return v.Len()
}

// Names returns the known names in initialization order.
func (t *Table[F]) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Clear empties every entry but keeps the known names.
func (t *Table[F]) Clear() {
	for n := range t.entries {
		t.entries[n] = Empty[F]()
	}
}
