package edict

// Removable is implemented by all per-slot stores so the Registry can
// clear a slot's auxiliary data when the slot is freed.
type Removable interface {
	Remove(index int)
}

// SlotStore is dense per-slot auxiliary storage living next to the pool.
// It only ever grows; a freed slot's entry is reset to the zero value.
type SlotStore[T any] struct {
	data []T
}

func NewSlotStore[T any](size int) *SlotStore[T] {
	return &SlotStore[T]{data: make([]T, size)}
}

// Grow extends the store to hold at least n slots.
func (s *SlotStore[T]) Grow(n int) {
	if n <= len(s.data) {
		return
	}
	grown := make([]T, n)
	copy(grown, s.data)
	s.data = grown
}

func (s *SlotStore[T]) Get(index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(s.data) {
		return zero, false
	}
	return s.data[index], true
}

func (s *SlotStore[T]) Set(index int, v T) bool {
	if index < 0 || index >= len(s.data) {
		return false
	}
	s.data[index] = v
	return true
}

func (s *SlotStore[T]) Remove(index int) {
	if index < 0 || index >= len(s.data) {
		return
	}
	var zero T
	s.data[index] = zero
}

func (s *SlotStore[T]) Len() int {
	return len(s.data)
}
