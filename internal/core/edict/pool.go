package edict

import "errors"

// ErrPoolFull is returned by Alloc when every slot up to capacity is in use.
var ErrPoolFull = errors.New("edict pool full")

// slot is one addressable element of the pool. A freed slot keeps its data
// until it is handed out again; serial increments on every free so stale
// references can tell a reused slot apart from the one they were minted for.
type slot[T any] struct {
	free   bool
	serial uint32
	data   T
}

// Pool is a fixed-capacity, index-addressed object pool with in-place reuse.
// Slot 0 is the world and slots [1, reserved] belong to clients; both are
// allocated by Reset and never freed. Game loop access only.
type Pool[T any] struct {
	slots     []slot[T]
	numEdicts int // live high-water mark
	reserved  int
	freeQueue []int
	registry  *Registry
}

func NewPool[T any](capacity int) *Pool[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool[T]{
		slots:     make([]slot[T], capacity),
		freeQueue: make([]int, 0, 64),
		registry:  NewRegistry(),
	}
}

// Registry returns the auxiliary store registry cleared on every free.
func (p *Pool[T]) Registry() *Registry { return p.registry }

// Reset wipes every slot and re-allocates the world and client range.
// Serials survive so a handle minted before the reset can never match a
// slot populated after it.
func (p *Pool[T]) Reset(reserved int) {
	if reserved > len(p.slots)-1 {
		reserved = len(p.slots) - 1
	}
	if reserved < 0 {
		reserved = 0
	}
	var zero T
	for i := range p.slots {
		p.slots[i].free = true
		p.slots[i].data = zero
		p.registry.RemoveAll(i)
	}
	for i := 0; i <= reserved; i++ {
		p.slots[i].free = false
	}
	p.reserved = reserved
	p.numEdicts = reserved + 1
	p.freeQueue = p.freeQueue[:0]
}

// Alloc returns the first free ordinary slot, growing the high-water mark
// when none is free below it.
func (p *Pool[T]) Alloc() (int, error) {
	var zero T
	for i := p.reserved + 1; i < p.numEdicts; i++ {
		if p.slots[i].free {
			p.slots[i].free = false
			p.slots[i].data = zero
			return i, nil
		}
	}
	if p.numEdicts >= len(p.slots) {
		return 0, ErrPoolFull
	}
	i := p.numEdicts
	p.numEdicts++
	p.slots[i].free = false
	p.slots[i].data = zero
	return i, nil
}

// Free releases an ordinary slot in place. Reserved slots and slots that are
// already free are left untouched; the return value reports whether the
// slot changed state.
func (p *Pool[T]) Free(i int) bool {
	if i <= p.reserved || i >= p.numEdicts || p.slots[i].free {
		return false
	}
	p.slots[i].free = true
	p.slots[i].serial++
	p.registry.RemoveAll(i)
	return true
}

// FreeLater queues a slot for release at the end of the tick.
func (p *Pool[T]) FreeLater(i int) {
	p.freeQueue = append(p.freeQueue, i)
}

// Flush releases all queued slots. Called by CleanupSystem each tick.
func (p *Pool[T]) Flush() int {
	n := 0
	for _, i := range p.freeQueue {
		if p.Free(i) {
			n++
		}
	}
	p.freeQueue = p.freeQueue[:0]
	return n
}

// Get returns the slot payload regardless of liveness. Callers that took the
// index from a script handle must resolve it first.
func (p *Pool[T]) Get(i int) *T {
	if i < 0 || i >= len(p.slots) {
		return nil
	}
	return &p.slots[i].data
}

func (p *Pool[T]) Capacity() int  { return len(p.slots) }
func (p *Pool[T]) NumEdicts() int { return p.numEdicts }
func (p *Pool[T]) Reserved() int  { return p.reserved }

func (p *Pool[T]) IsLive(i int) bool {
	return i >= 0 && i < len(p.slots) && !p.slots[i].free
}

func (p *Pool[T]) Serial(i int) uint32 {
	if i < 0 || i >= len(p.slots) {
		return 0
	}
	return p.slots[i].serial
}

// Each calls fn for every live slot below the high-water mark, in index order.
func (p *Pool[T]) Each(fn func(int, *T)) {
	for i := 0; i < p.numEdicts; i++ {
		if !p.slots[i].free {
			fn(i, &p.slots[i].data)
		}
	}
}
