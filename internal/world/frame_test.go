package world

import (
	"testing"

	"github.com/l1jgo/edictbridge/internal/core/edict"
	"github.com/l1jgo/edictbridge/internal/core/hook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// running spawns the test level and frees the static light.
func running(t *testing.T) (*State, *recorder) {
	t.Helper()
	s, r := newTestState(t)
	require.NoError(t, s.SpawnServer(testLevel()))
	require.Equal(t, 1, s.Flush())
	r.reset()
	return s, r
}

func TestRunFrame_Order(t *testing.T) {
	s, r := running(t)
	slot, err := s.ConnectClient("ranger")
	require.NoError(t, err)
	require.NoError(t, s.PutClientInServer(slot))

	s.Edict(4).NextThink = 1.05
	s.Edict(3).NextThink = 5
	r.reset()

	require.NoError(t, s.RunFrame(0.1))
	assert.Equal(t, []string{
		"startframe []",
		"playerprethink [1]",
		"entitythink [4]",
		"playerpostthink [1]",
	}, r.calls)
	assert.Equal(t, 0.0, s.Edict(4).NextThink)
	assert.InDelta(t, 1.1, s.Time(), 1e-9)
}

func TestRunFrame_Inactive(t *testing.T) {
	s, r := newTestState(t)
	require.NoError(t, s.RunFrame(0.1))
	assert.Empty(t, r.calls)
	assert.Equal(t, 0.0, s.Time())
}

func TestRunFrame_StrictErrorStops(t *testing.T) {
	s, r := running(t)
	r.fail, r.failOn = true, hook.StartFrame

	assert.Error(t, s.RunFrame(0.1))
	assert.Equal(t, []string{"startframe []"}, r.calls)
}

func TestRunFrame_TempEntityThinksAway(t *testing.T) {
	s, r := running(t)
	i, err := s.Spawn()
	require.NoError(t, err)
	s.Edict(i).Classname = "temp_entity"
	s.Natives().Spawn("temp_entity")(s, i)
	r.reset()

	require.NoError(t, s.RunFrame(0.2))
	assert.Contains(t, r.calls, "entitythink [5]")
	assert.Equal(t, 1, s.Flush())
	assert.False(t, s.Pool().IsLive(i))
}

func TestRunFrame_OverrideThink(t *testing.T) {
	s, r := running(t)
	i, err := s.Spawn()
	require.NoError(t, err)
	s.Edict(i).Classname = "temp_entity"
	s.Edict(i).NextThink = 1.0
	r.override[hook.EntityThink] = true

	require.NoError(t, s.RunFrame(0.1))
	assert.Equal(t, 0, s.Flush(), "native think must not run")
}

func TestTouch(t *testing.T) {
	s, r := running(t)
	var touched [2]int
	s.Natives().Register("trigger_once", &NativeClass{
		Touch: func(_ *State, self, other int) { touched = [2]int{self, other} },
	})
	s.Edict(3).Classname = "trigger_once"
	r.reset()

	require.NoError(t, s.Touch(3, 4))
	assert.Equal(t, [2]int{3, 4}, touched)
	assert.Equal(t, []string{"entitytouch [3 4]"}, r.calls)

	r.reset()
	require.NoError(t, s.Remove(4))
	require.NoError(t, s.Touch(3, 4))
	assert.Empty(t, r.calls)
}

func TestBlocked(t *testing.T) {
	s, r := running(t)
	require.NoError(t, s.Blocked(3, 4))
	assert.Equal(t, []string{"entityblocked [3 4]"}, r.calls)
}

func TestClients(t *testing.T) {
	s, r := newTestState(t)
	_, err := s.ConnectClient("early")
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, s.SpawnServer(testLevel()))
	r.reset()

	a, err := s.ConnectClient("a")
	require.NoError(t, err)
	b, err := s.ConnectClient("b")
	require.NoError(t, err)
	_, err = s.ConnectClient("c")
	assert.ErrorContains(t, err, "full")

	assert.Equal(t, []int{1, 2}, []int{a, b})
	assert.Equal(t, []string{
		"setnewparms []", "clientconnect [1]",
		"setnewparms []", "clientconnect [2]",
	}, r.calls)

	require.NoError(t, s.PutClientInServer(a))
	assert.Equal(t, 100.0, s.Edict(a).Health)
	require.NoError(t, s.KillClient(a))
	assert.Equal(t, float64(DeadDead), s.Edict(a).DeadFlag)
	assert.Equal(t, -1.0, s.Edict(a).Frags)

	_, err = s.SetChangeParms(a)
	require.NoError(t, err)
	assert.Equal(t, "setchangeparms [1]", r.calls[len(r.calls)-1])

	require.NoError(t, s.DisconnectClient(a))
	assert.Equal(t, []int{2}, s.Clients())
	assert.True(t, s.Pool().IsLive(a), "client slots stay reserved")

	_, err = s.Client(9)
	assert.ErrorIs(t, err, ErrBadClientSlot)
}

func TestClients_ReconnectClearsSlotStores(t *testing.T) {
	s, _ := running(t)
	notes := edict.NewSlotStore[string](s.PoolCapacity())
	s.Pool().Registry().Register(notes)

	a, err := s.ConnectClient("alice")
	require.NoError(t, err)
	notes.Set(a, "alice-only")
	s.Edict(a).Frags = 7

	require.NoError(t, s.DisconnectClient(a))
	v, _ := notes.Get(a)
	assert.Empty(t, v, "disconnect clears per-slot stores")

	notes.Set(a, "leftover")
	b, err := s.ConnectClient("bob")
	require.NoError(t, err)
	require.Equal(t, a, b, "slot reused")
	v, _ = notes.Get(b)
	assert.Empty(t, v, "connect clears per-slot stores")
	assert.Equal(t, 0.0, s.Edict(b).Frags)
	assert.Equal(t, "bob", s.String(b, s.Edict(b).Netname))
}
