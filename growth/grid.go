package growth

import (
	"math"

	"github.com/jbeda/geom"

	"citygen/geometry"
)

type cellKey struct{ x, y int }

// grid buckets segment ids by the cells their bounding box covers. Entries
// are never removed: a segment that is later shortened keeps its old cells,
// which only costs a false candidate.
type grid struct {
	cell  float64
	cells map[cellKey][]int
	stamp []int
	epoch int
}

func newGrid(cell float64) *grid {
	return &grid{cell: cell, cells: make(map[cellKey][]int)}
}

func (g *grid) keyOf(x, y float64) cellKey {
	return cellKey{int(math.Floor(x / g.cell)), int(math.Floor(y / g.cell))}
}

func (g *grid) span(a, b geom.Coord) (cellKey, cellKey) {
	r := geometry.SegmentBounds(a, b)
	return g.keyOf(r.Min.X, r.Min.Y), g.keyOf(r.Max.X, r.Max.Y)
}

func (g *grid) insert(id int, a, b geom.Coord) {
	lo, hi := g.span(a, b)
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			k := cellKey{x, y}
			g.cells[k] = append(g.cells[k], id)
		}
	}
	for len(g.stamp) <= id {
		g.stamp = append(g.stamp, 0)
	}
}

// query calls fn once for every segment id sharing a cell with a-b.
func (g *grid) query(a, b geom.Coord, fn func(id int)) {
	g.epoch++
	lo, hi := g.span(a, b)
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for _, id := range g.cells[cellKey{x, y}] {
				if g.stamp[id] == g.epoch {
					continue
				}
				g.stamp[id] = g.epoch
				fn(id)
			}
		}
	}
}
