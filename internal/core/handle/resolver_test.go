package handle

import (
	"strconv"
	"testing"

	"github.com/l1jgo/edictbridge/internal/core/edict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool adapts an edict.Pool to the resolver's Pool view.
type testPool struct {
	*edict.Pool[struct{}]
	active     bool
	loading    bool
	maxClients int
}

func (p *testPool) IsSessionActive() bool   { return p.active }
func (p *testPool) IsLoading() bool         { return p.loading }
func (p *testPool) PoolCapacity() int       { return p.Capacity() }
func (p *testPool) LiveHighWaterMark() int  { return p.NumEdicts() }
func (p *testPool) SlotIsLive(i int) bool   { return p.IsLive(i) }
func (p *testPool) SlotSerial(i int) uint32 { return p.Serial(i) }
func (p *testPool) PlayerRange() (int, int) { return 1, p.maxClients }

type fixture struct {
	pool     *testPool
	epoch    *EpochCounter
	resolver *Resolver
}

// newFixture builds scenario A's pool: capacity 8, world at 0, clients 1-2.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	p := &testPool{Pool: edict.NewPool[struct{}](8), maxClients: 2}
	p.Reset(2)
	e := &EpochCounter{}
	return &fixture{pool: p, epoch: e, resolver: NewResolver(p, e)}
}

// restart mimics a session respawn: epoch first, then the pool.
func (f *fixture) restart() {
	f.epoch.Advance()
	f.pool.loading = true
	f.pool.active = false
	f.pool.Reset(f.pool.maxClients)
	f.pool.loading = false
	f.pool.active = true
}

func (f *fixture) alloc(t *testing.T) Handle {
	t.Helper()
	i, err := f.pool.Alloc()
	require.NoError(t, err)
	return f.resolver.Mint(i)
}

func TestHandle_EqualityAndHash(t *testing.T) {
	a := New(3, 4, 0)
	b := New(3, 4, 0)
	c := New(2, 4, 0)
	d := New(3, 4, 1)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))

	m := map[Handle]string{a: "x"}
	assert.Equal(t, "x", m[b])
}

func TestResolve_ScenarioA_LoadingExemptions(t *testing.T) {
	f := newFixture(t)
	f.epoch.Advance()
	f.pool.loading = true

	idx, err := f.resolver.Resolve(Handle{Epoch: 1, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	f.pool.loading = false
	_, err = f.resolver.Resolve(Handle{Epoch: 1, Index: 5})
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Equal(t, SessionNotActive, ReasonOf(err))

	_, err = f.resolver.Resolve(Handle{Epoch: 1, Index: 0})
	assert.NoError(t, err, "world is valid between sessions")
	_, err = f.resolver.Resolve(Handle{Epoch: 1, Index: 2})
	assert.NoError(t, err, "clients are valid between sessions")
}

func TestResolve_ScenarioB_FreedSlot(t *testing.T) {
	f := newFixture(t)
	f.epoch.Advance()
	f.epoch.Advance()
	f.restart() // epoch 3
	require.Equal(t, Epoch(3), f.epoch.Current())

	_, _ = f.pool.Alloc() // slot 3
	h := f.alloc(t)
	require.Equal(t, Handle{Epoch: 3, Index: 4}, h)

	f.pool.Free(4)
	_, err := f.resolver.Resolve(h)
	assert.Equal(t, SlotNotLive, ReasonOf(err))
}

func TestResolve_EpochIsolation(t *testing.T) {
	f := newFixture(t)
	f.restart()

	var old []Handle
	for i := 0; i < 3; i++ {
		old = append(old, f.alloc(t))
	}
	world := f.resolver.Mint(0)
	player := f.resolver.Mint(1)

	f.restart()
	for i := 0; i < 3; i++ {
		f.alloc(t)
	}

	for _, h := range old {
		_, err := f.resolver.Resolve(h)
		assert.Equal(t, WrongEpoch, ReasonOf(err), "%s", h)
	}
	_, err := f.resolver.Resolve(world)
	assert.NoError(t, err)
	_, err = f.resolver.Resolve(player)
	assert.NoError(t, err)
}

func TestResolve_StaleEpochExemptRanges(t *testing.T) {
	f := newFixture(t)
	f.restart()
	f.restart()

	tests := []struct {
		name    string
		index   int
		active  bool
		loading bool
		wantErr bool
	}{
		{"world active", 0, true, false, false},
		{"world loading", 0, false, true, false},
		{"player 1 active", 1, true, false, false},
		{"player 2 loading", 2, false, true, false},
		{"ordinary stale", 3, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.pool.active, f.pool.loading = tt.active, tt.loading
			_, err := f.resolver.Resolve(Handle{Epoch: 1, Index: tt.index, Serial: 99})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolve_SlotReuseInvalidatesOldHandle(t *testing.T) {
	f := newFixture(t)
	f.restart()

	h1 := f.alloc(t)
	f.pool.Free(h1.Index)

	_, err := f.resolver.Resolve(h1)
	assert.Equal(t, SlotNotLive, ReasonOf(err))

	h2 := f.alloc(t)
	require.Equal(t, h1.Index, h2.Index, "slot reused")
	assert.False(t, h1.Equal(h2))

	_, err = f.resolver.Resolve(h1)
	assert.Equal(t, SlotReused, ReasonOf(err))
	_, err = f.resolver.Resolve(h2)
	assert.NoError(t, err)
}

func TestResolve_IndexOutOfRange(t *testing.T) {
	f := newFixture(t)
	f.restart()
	cur := f.epoch.Current()

	for _, idx := range []int{-1, 3, 7, 100} {
		_, err := f.resolver.Resolve(Handle{Epoch: cur, Index: idx})
		assert.Equal(t, IndexOutOfRange, ReasonOf(err), "index %d", idx)
	}
}

func TestResolve_WideIndexDoesNotWrap(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("needs 64-bit int")
	}
	f := newFixture(t)
	f.restart()

	shift := 32
	for _, idx := range []int{1 << shift, 1<<shift + 1} {
		h := New(f.epoch.Current(), idx, 0)
		assert.Equal(t, idx, h.Index)
		_, err := f.resolver.Resolve(h)
		assert.Equal(t, IndexOutOfRange, ReasonOf(err), "index %d", idx)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.restart()
	h := f.alloc(t)

	a, err := f.resolver.Resolve(h)
	require.NoError(t, err)
	b, err := f.resolver.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, f.resolver.Valid(h))
}

func TestInvalidHandleError_Message(t *testing.T) {
	err := &InvalidHandleError{Reason: WrongEpoch, Handle: New(1, 9, 0)}
	assert.Contains(t, err.Error(), "another server")
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Equal(t, Reason(0), ReasonOf(assert.AnError))
}
