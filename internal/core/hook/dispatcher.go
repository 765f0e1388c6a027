package hook

import "github.com/l1jgo/edictbridge/internal/core/handle"

// MaxArgs is the most entity arguments any host event passes.
const MaxArgs = 2

// Invoker calls one script handler with handle arguments. Implemented by the
// script runtime.
type Invoker[F comparable] interface {
	Invoke(fn F, args ...handle.Handle) error
}

// Dispatcher runs every handler registered for an event, in registration
// order, stopping at the first failure.
type Dispatcher[F comparable] struct {
	table   *Table[F]
	invoker Invoker[F]
}

func NewDispatcher[F comparable](table *Table[F], invoker Invoker[F]) *Dispatcher[F] {
	return &Dispatcher[F]{table: table, invoker: invoker}
}

func (d *Dispatcher[F]) Table() *Table[F] { return d.table }

// Dispatch runs one round for name. The handler list is snapshotted first,
// so registrations made by a running handler take effect next round.
// Returns *ConfigurationError for unknown names and *DispatchError when a
// handler fails.
func (d *Dispatcher[F]) Dispatch(name string, args ...handle.Handle) error {
	handlers, err := d.table.Lookup(name)
	if err != nil {
		return err
	}
	if len(args) > MaxArgs {
		return &ConfigurationError{Event: name, Msg: "too many entity arguments"}
	}
	for i, fn := range handlers {
		if err := d.invoker.Invoke(fn, args...); err != nil {
			return &DispatchError{Event: name, Handler: i, Err: err}
		}
	}
	return nil
}
