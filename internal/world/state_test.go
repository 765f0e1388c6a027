package world

import (
	"errors"
	"fmt"
	"testing"

	"github.com/l1jgo/edictbridge/internal/core/handle"
	"github.com/l1jgo/edictbridge/internal/core/hook"
	"github.com/l1jgo/edictbridge/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Hooks fake that logs every call as a string.
type recorder struct {
	calls    []string
	override map[hook.Kind]bool
	failOn   hook.Kind
	fail     bool
	preSpawn func()
}

func (r *recorder) PreSpawn(capacity int) {
	r.calls = append(r.calls, fmt.Sprintf("prespawn %d", capacity))
	if r.preSpawn != nil {
		r.preSpawn()
	}
}

func (r *recorder) PostSpawn(level string, n int) error {
	r.calls = append(r.calls, fmt.Sprintf("postspawn %s %d", level, n))
	return nil
}

func (r *recorder) EndSession(reason string) {
	r.calls = append(r.calls, "end "+reason)
}

func (r *recorder) ShouldOverrideNative(k hook.Kind) bool { return r.override[k] }

func (r *recorder) Fire(k hook.Kind, ents ...int) error {
	r.calls = append(r.calls, fmt.Sprintf("%s %v", k, ents))
	if r.fail && k == r.failOn {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) reset() { r.calls = nil }

func testLevel() *data.Level {
	return &data.Level{
		Name: "e1m1",
		Entities: []data.Entity{
			{"classname": "worldspawn", "message": "the Slipgate Complex"},
			{"classname": "info_player_start", "origin": "480 -352 88"},
			{"classname": "monster_army", "origin": "0 0 24", "health": "30"},
			{"classname": "light", "origin": "0 0 64"},
		},
	}
}

func newTestState(t *testing.T) (*State, *recorder) {
	t.Helper()
	s := NewState(Options{MaxEdicts: 16, MaxClients: 2, Natives: DefaultNatives()}, nil)
	r := &recorder{override: map[hook.Kind]bool{}}
	s.SetHooks(r)
	return s, r
}

func TestSpawnServer_Lifecycle(t *testing.T) {
	s, r := newTestState(t)
	assert.Equal(t, Inactive, s.Session())

	var during SessionState
	r.preSpawn = func() { during = s.Session() }

	require.NoError(t, s.SpawnServer(testLevel()))
	assert.Equal(t, Loading, during)
	assert.Equal(t, Active, s.Session())
	assert.Equal(t, "e1m1", s.Level())
	assert.Equal(t, 1.0, s.Time())

	assert.Equal(t, []string{
		"prespawn 16",
		"entityspawn [0]",
		"entityspawn [3]",
		"entityspawn [4]",
		"entityspawn [5]",
		"postspawn e1m1 4",
	}, r.calls)

	// world + 2 clients reserved, entities from slot 3 on
	assert.Equal(t, "monster_army", s.Edict(4).Classname)
	assert.Equal(t, 30.0, s.Edict(4).Health)
	assert.Equal(t, Vec3{480, -352, 88}, s.Edict(3).Origin)
	assert.Equal(t, float64(SolidBSP), s.Edict(0).Solid)
}

func TestSpawnServer_RestartEndsPrevious(t *testing.T) {
	s, r := newTestState(t)
	require.NoError(t, s.SpawnServer(testLevel()))
	r.reset()

	require.NoError(t, s.SpawnServer(testLevel()))
	assert.Equal(t, "end changelevel", r.calls[0])
	assert.Equal(t, "prespawn 16", r.calls[1])
}

func TestSpawnServer_NativeDeferredRemoval(t *testing.T) {
	s, r := newTestState(t)
	lvl := &data.Level{Name: "x", Entities: []data.Entity{
		{"classname": "worldspawn"},
		{"classname": "info_null"},
	}}
	require.NoError(t, s.SpawnServer(lvl))
	assert.Contains(t, r.calls, "entityspawn [3]")

	// info_null queues itself for removal; cleanup frees it.
	assert.Equal(t, 1, s.Flush())
	assert.False(t, s.Pool().IsLive(3))
}

func TestSpawnServer_OverrideSkipsNative(t *testing.T) {
	s, r := newTestState(t)
	r.override[hook.EntitySpawn] = true
	require.NoError(t, s.SpawnServer(testLevel()))
	assert.Equal(t, 0.0, s.Edict(0).Solid)
}

func TestSpawnServer_StrictFailure(t *testing.T) {
	s, r := newTestState(t)
	r.fail, r.failOn = true, hook.EntitySpawn
	err := s.SpawnServer(testLevel())
	require.Error(t, err)
	assert.Equal(t, Inactive, s.Session())
}

func TestSpawnServer_PoolFull(t *testing.T) {
	s := NewState(Options{MaxEdicts: 4, MaxClients: 2}, nil)
	err := s.SpawnServer(testLevel())
	require.Error(t, err)
	assert.Equal(t, Inactive, s.Session())
}

func TestState_HandlePool(t *testing.T) {
	s, _ := newTestState(t)
	var _ handle.Pool = s

	low, high := s.PlayerRange()
	assert.Equal(t, 1, low)
	assert.Equal(t, 2, high)
	assert.False(t, s.IsSessionActive())

	require.NoError(t, s.SpawnServer(testLevel()))
	assert.True(t, s.IsSessionActive())
	assert.Equal(t, 16, s.PoolCapacity())
	assert.Equal(t, 6, s.LiveHighWaterMark())
}

func TestState_SpawnRemove(t *testing.T) {
	s, _ := newTestState(t)
	_, err := s.Spawn()
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, s.SpawnServer(testLevel()))
	i, err := s.Spawn()
	require.NoError(t, err)
	serial := s.Pool().Serial(i)

	require.NoError(t, s.Remove(i))
	assert.False(t, s.Pool().IsLive(i))
	assert.Equal(t, serial+1, s.Pool().Serial(i))

	assert.ErrorIs(t, s.Remove(0), ErrReservedSlot)
	assert.ErrorIs(t, s.Remove(1), ErrReservedSlot)
}

func TestState_SetSizeAndOrigin(t *testing.T) {
	s, _ := newTestState(t)
	require.NoError(t, s.SpawnServer(testLevel()))

	require.NoError(t, s.SetSize(4, Vec3{-16, -16, -24}, Vec3{16, 16, 40}))
	s.SetOrigin(4, Vec3{100, 0, 0})
	e := s.Edict(4)
	assert.Equal(t, Vec3{32, 32, 64}, e.Size)
	assert.Equal(t, Vec3{84, -16, -24}, e.AbsMin)
	assert.Equal(t, Vec3{116, 16, 40}, e.AbsMax)

	assert.Error(t, s.SetSize(4, Vec3{1, 0, 0}, Vec3{0, 0, 0}))
}

func TestState_SetModelPrecache(t *testing.T) {
	s, _ := newTestState(t)
	require.NoError(t, s.SpawnServer(testLevel()))

	assert.Error(t, s.SetModel(4, "progs/soldier.mdl"))
	idx := s.PrecacheModel("progs/soldier.mdl")
	require.NoError(t, s.SetModel(4, "progs/soldier.mdl"))
	assert.Equal(t, float64(idx), s.Edict(4).ModelIndex)
	assert.Equal(t, idx, s.PrecacheModel("progs/soldier.mdl"))
}

func TestState_FindAndLive(t *testing.T) {
	s, _ := newTestState(t)
	require.NoError(t, s.SpawnServer(testLevel()))
	assert.Equal(t, []int{4}, s.Find("monster_army"))
	// light without targetname is queued for removal but still live
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, s.Live())
	s.Flush()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.Live())
}

func TestState_ParseField(t *testing.T) {
	s, _ := newTestState(t)
	require.NoError(t, s.SpawnServer(testLevel()))

	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"health", "55", false},
		{"angles", "0 90 0", false},
		{"enemy", "3", false},
		{"netname", "grunt", false},
		{"angles", "0 90", true},
		{"health", "lots", true},
		{"no_such_field", "1", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := s.ParseField(4, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	e := s.Edict(4)
	assert.Equal(t, 55.0, e.Health)
	assert.Equal(t, Vec3{0, 90, 0}, e.Angles)
	assert.Equal(t, Ref{Index: 3, Serial: s.SlotSerial(3)}, e.Enemy)
	assert.Equal(t, "grunt", e.Netname)
}

func TestCharset_RoundTrip(t *testing.T) {
	cs, err := NewCharset("windows-1252")
	require.NoError(t, err)
	raw := cs.Encode("café")
	assert.Equal(t, 4, len(raw))
	assert.Equal(t, "café", cs.Decode(raw))

	utf, err := NewCharset("")
	require.NoError(t, err)
	assert.Equal(t, "café", utf.Encode("café"))

	_, err = NewCharset("klingon")
	assert.Error(t, err)
}
