package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreaGrid_LinkMoveRemove(t *testing.T) {
	g := NewAreaGrid()
	g.Link(3, Vec3{X: 10, Y: 10})
	g.Link(4, Vec3{X: -10, Y: -10})
	g.Link(5, Vec3{X: 2000, Y: 0})
	assert.Equal(t, 3, g.Len())

	assert.Equal(t, []int{3, 4}, g.Nearby(Vec3{}, 50))

	g.Link(5, Vec3{X: 20, Y: 0})
	assert.Equal(t, []int{3, 4, 5}, g.Nearby(Vec3{}, 50))
	assert.Equal(t, 3, g.Len(), "move does not duplicate")

	g.Remove(4)
	g.Remove(4)
	assert.Equal(t, []int{3, 5}, g.Nearby(Vec3{}, 50))
	assert.Equal(t, 2, g.Len())
}

func TestAreaGrid_NegativeCells(t *testing.T) {
	g := NewAreaGrid()
	g.Link(7, Vec3{X: -1, Y: -1})
	assert.Equal(t, int32(-1), toCellCoord(-1))
	assert.Equal(t, int32(0), toCellCoord(0))
	assert.Equal(t, []int{7}, g.Nearby(Vec3{X: -100, Y: -100}, 1))
	assert.Empty(t, g.Nearby(Vec3{X: 300, Y: 300}, 1))
}

func TestState_FindRadius(t *testing.T) {
	s, _ := running(t)

	// slot 3 is info_player_start at 480 -352 88, slot 4 monster_army at 0 0 24
	near := s.FindRadius(Vec3{X: 470, Y: -350, Z: 88}, 32)
	assert.Equal(t, []int{3}, near)

	i, err := s.Spawn()
	require.NoError(t, err)
	s.SetOrigin(i, Vec3{X: 490, Y: -352, Z: 88})
	assert.Equal(t, []int{3, i}, s.FindRadius(Vec3{X: 480, Y: -352, Z: 88}, 16))

	require.NoError(t, s.Remove(i))
	assert.Equal(t, []int{3}, s.FindRadius(Vec3{X: 480, Y: -352, Z: 88}, 16))
	assert.Empty(t, s.FindRadius(Vec3{X: 5000}, 10))
}
