// Package handle implements script-visible references to pool slots and the
// rules deciding whether a reference still denotes a live object.
//
// A Handle is a plain value: epoch, slot index and the slot's reuse serial at
// mint time. Minting never validates; every access goes through Resolver.
package handle

import "fmt"

// Epoch counts session (re)initializations for the life of the process.
type Epoch uint32

// EpochCounter owns the current epoch. It only moves forward.
type EpochCounter struct {
	current Epoch
}

func (c *EpochCounter) Current() Epoch { return c.current }

// Advance bumps the epoch. Must run before any handle is minted for the new
// session.
func (c *EpochCounter) Advance() Epoch {
	c.current++
	return c.current
}

// Handle is an opaque (epoch, index, serial) reference to a pool slot.
// Index keeps the full int so an out-of-range index can never wrap onto a
// valid slot.
type Handle struct {
	Epoch  Epoch
	Index  int
	Serial uint32
}

func New(epoch Epoch, index int, serial uint32) Handle {
	return Handle{Epoch: epoch, Index: index, Serial: serial}
}

// Equal reports whether both handles were minted for the same nominal slot
// in the same epoch. It says nothing about liveness.
func (h Handle) Equal(o Handle) bool {
	return h == o
}

// Hash is stable for equal handles.
func (h Handle) Hash() uint64 {
	x := uint64(h.Epoch)<<32 | uint64(h.Index)
	x ^= uint64(h.Serial) * 0x9E3779B97F4A7C15
	x ^= x >> 33
	x *= 0xFF51AFD7ED558CCD
	x ^= x >> 33
	return x
}

func (h Handle) String() string {
	return fmt.Sprintf("edict#%d@%d.%d", h.Index, h.Epoch, h.Serial)
}
