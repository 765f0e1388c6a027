package world

import (
	"math"
	"sort"
)

// AreaGrid buckets edicts by the horizontal cell of their origin so radius
// queries only visit nearby cells. Registered with the pool registry; a
// freed slot drops out of the grid.
// Accessed only from the game loop goroutine, no locks.

const areaCellSize = 256.0

type cellKey struct {
	cx int32
	cy int32
}

func toCellCoord(v float64) int32 {
	return int32(math.Floor(v / areaCellSize))
}

type AreaGrid struct {
	cells map[cellKey]map[int]struct{} // cellKey → set of slots
	where map[int]cellKey
}

func NewAreaGrid() *AreaGrid {
	return &AreaGrid{
		cells: make(map[cellKey]map[int]struct{}),
		where: make(map[int]cellKey),
	}
}

func (g *AreaGrid) key(org Vec3) cellKey {
	return cellKey{cx: toCellCoord(org.X), cy: toCellCoord(org.Y)}
}

// Link places slot i at org, moving it if it was linked elsewhere.
func (g *AreaGrid) Link(i int, org Vec3) {
	k := g.key(org)
	if old, ok := g.where[i]; ok {
		if old == k {
			return
		}
		g.Remove(i)
	}
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[int]struct{})
		g.cells[k] = cell
	}
	cell[i] = struct{}{}
	g.where[i] = k
}

// Remove takes slot i out of the grid.
func (g *AreaGrid) Remove(i int) {
	k, ok := g.where[i]
	if !ok {
		return
	}
	delete(g.where, i)
	if cell := g.cells[k]; cell != nil {
		delete(cell, i)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Nearby returns the slots in every cell touched by the square around org,
// in slot order. Caller does the distance filtering.
func (g *AreaGrid) Nearby(org Vec3, radius float64) []int {
	x0, x1 := toCellCoord(org.X-radius), toCellCoord(org.X+radius)
	y0, y1 := toCellCoord(org.Y-radius), toCellCoord(org.Y+radius)
	var result []int
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for i := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, i)
			}
		}
	}
	sort.Ints(result)
	return result
}

// Len returns the number of linked slots.
func (g *AreaGrid) Len() int { return len(g.where) }
