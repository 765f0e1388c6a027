package handle

// Pool is the read-only view of the host object pool the resolver needs.
type Pool interface {
	IsSessionActive() bool
	IsLoading() bool
	PoolCapacity() int
	LiveHighWaterMark() int
	SlotIsLive(index int) bool
	SlotSerial(index int) uint32
	// PlayerRange returns the inclusive client slot range. low > high means
	// no client slots exist.
	PlayerRange() (low, high int)
}

// Resolver turns handles into validated slot indices. It never caches:
// the same handle can resolve now and fail on the next call.
type Resolver struct {
	pool  Pool
	epoch *EpochCounter
}

func NewResolver(pool Pool, epoch *EpochCounter) *Resolver {
	return &Resolver{pool: pool, epoch: epoch}
}

// Mint returns a handle for the slot as it is right now.
func (r *Resolver) Mint(index int) Handle {
	return New(r.epoch.Current(), index, r.pool.SlotSerial(index))
}

// Resolve validates h against the current pool state and returns its slot
// index. The world (slot 0) and client slots ignore epoch and serial: they
// stay nameable while a session loads or between sessions.
func (r *Resolver) Resolve(h Handle) (int, error) {
	idx := h.Index
	low, high := r.pool.PlayerRange()
	exempt := idx == 0 || (low <= high && idx >= low && idx <= high)

	if !r.pool.IsSessionActive() && !r.pool.IsLoading() && !exempt {
		return 0, &InvalidHandleError{Reason: SessionNotActive, Handle: h}
	}
	if exempt {
		if idx >= r.pool.PoolCapacity() {
			return 0, &InvalidHandleError{Reason: IndexOutOfRange, Handle: h}
		}
		return idx, nil
	}

	if h.Epoch != r.epoch.Current() {
		return 0, &InvalidHandleError{Reason: WrongEpoch, Handle: h}
	}
	if idx < 0 || idx >= r.pool.LiveHighWaterMark() {
		return 0, &InvalidHandleError{Reason: IndexOutOfRange, Handle: h}
	}
	if !r.pool.SlotIsLive(idx) {
		return 0, &InvalidHandleError{Reason: SlotNotLive, Handle: h}
	}
	if r.pool.SlotSerial(idx) != h.Serial {
		return 0, &InvalidHandleError{Reason: SlotReused, Handle: h}
	}
	return idx, nil
}

// Valid is Resolve without the index.
func (r *Resolver) Valid(h Handle) bool {
	_, err := r.Resolve(h)
	return err == nil
}
