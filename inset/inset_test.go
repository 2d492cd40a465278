package inset

import (
	"math"
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citygen/geometry"
)

func rect(w, h float64) []geom.Coord {
	return []geom.Coord{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

func assertPolygon(t *testing.T, want, got []geom.Coord) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-9, "vertex %d", i)
		assert.InDelta(t, want[i].Y, got[i].Y, 1e-9, "vertex %d", i)
	}
}

func TestShrinkSquare(t *testing.T) {
	got := Shrink(rect(10, 10), 1)
	assertPolygon(t, []geom.Coord{{1, 1}, {9, 1}, {9, 9}, {1, 9}}, got)
	assert.InDelta(t, 64, geometry.SignedArea(got), 1e-9)
}

func TestShrinkKeepsClockwiseWinding(t *testing.T) {
	cw := geometry.Reverse(rect(10, 10))
	got := Shrink(cw, 1)
	require.NotNil(t, got)
	assert.InDelta(t, -64, geometry.SignedArea(got), 1e-9)
}

func TestShrinkFeasibility(t *testing.T) {
	sq := rect(10, 10)
	assert.Nil(t, Shrink(sq, 5), "offset equal to 2A/P collapses the square")
	assert.Nil(t, Shrink(sq, 7))
	assert.Nil(t, Shrink(sq, 0))
	assert.Nil(t, Shrink(sq, -1))

	tiny := Shrink(sq, 4.9)
	require.NotNil(t, tiny)
	assert.InDelta(t, 0.04, geometry.SignedArea(tiny), 1e-9)

	assert.Nil(t, Shrink([]geom.Coord{{0, 0}, {1, 1}}, 0.1))
	assert.Nil(t, Shrink([]geom.Coord{{0, 0}, {1, 0}, {2, 0}}, 0.1))
}

func TestShrinkConcave(t *testing.T) {
	l := []geom.Coord{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
	got := Shrink(l, 0.2)
	want := []geom.Coord{{0.2, 0.2}, {1.8, 0.2}, {1.8, 0.8}, {0.8, 0.8}, {0.8, 1.8}, {0.2, 1.8}}
	assertPolygon(t, want, got)
	assert.InDelta(t, 1.56, geometry.SignedArea(got), 1e-9)
}

func TestShrinkCollinearVertices(t *testing.T) {
	// Degree-two street nodes leave collinear vertices on block outlines.
	poly := []geom.Coord{{0, 0}, {5, 0}, {10, 0}, {10, 10}, {5, 10}, {0, 10}}
	got := Shrink(poly, 1)
	require.NotNil(t, got)
	assert.InDelta(t, 64, geometry.SignedArea(got), 1e-9)
}

func TestShrinkAcuteTriangle(t *testing.T) {
	tri := []geom.Coord{{0, 0}, {20, 0}, {20, 3}}
	got := Shrink(tri, 0.5)
	require.NotNil(t, got)
	assert.True(t, geometry.IsSimple(got))
	a := geometry.SignedArea(got)
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, geometry.SignedArea(tri))
	for _, p := range got {
		assert.True(t, geometry.ContainsPoint(tri, p), "vertex %v outside the block", p)
	}
}

func TestShrinkBevelsSharpReflexCorner(t *testing.T) {
	// A narrow notch cut down from the top edge ends in a needle-sharp
	// reflex vertex at (2, 1).
	poly := []geom.Coord{{0, 0}, {10, 0}, {10, 10}, {2.1, 10}, {2, 1}, {1.9, 10}, {0, 10}}
	beveled := ShrinkWith(poly, 0.3, Options{MiterLimit: 2})
	require.NotNil(t, beveled)
	assert.True(t, geometry.IsSimple(beveled))
	for _, p := range beveled {
		assert.Greater(t, p.DistanceFrom(geom.Coord{2, 1}), 0.29, "vertex %v too close to the notch tip", p)
	}
	a := geometry.SignedArea(beveled)
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, geometry.SignedArea(poly))
}

// assertClearance checks that every corner of lot lies inside block and at
// least offset away from its outline.
func assertClearance(t *testing.T, block, lot []geom.Coord, offset float64) {
	t.Helper()
	for _, p := range lot {
		assert.True(t, geometry.ContainsPoint(block, p), "vertex %v outside the block", p)
		assert.GreaterOrEqual(t, geometry.MinEdgeDistance(block, p), offset*(1-1e-6), "vertex %v too close to the block", p)
	}
}

func TestShrinkCollapsesShortEdges(t *testing.T) {
	// A 0.02 chamfer on the lower left corner vanishes under a 0.4 offset.
	chamfer := []geom.Coord{{0.02, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0.02}}
	got := Shrink(chamfer, 0.4)
	assertPolygon(t, []geom.Coord{{0.4, 0.4}, {9.6, 0.4}, {9.6, 9.6}, {0.4, 9.6}}, got)
	assertClearance(t, chamfer, got, 0.4)

	// A needle narrower than the street leaves the square behind.
	needle := []geom.Coord{{0, 0}, {10, 0}, {10, 5}, {13, 5}, {13, 5.02}, {10, 5.02}, {10, 10}, {0, 10}}
	got = Shrink(needle, 0.4)
	require.NotNil(t, got)
	assert.InDelta(t, 9.2*9.2, geometry.SignedArea(got), 1e-9)
	assertClearance(t, needle, got, 0.4)
}

func TestShrinkKeepsClearance(t *testing.T) {
	polys := [][]geom.Coord{
		rect(10, 10),
		{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}},
		{{0, 0}, {20, 0}, {20, 3}},
		{{0, 0}, {4, 0}, {4, 4}, {2, 0.5}, {0, 4}},
		{{0, 0}, {6, 0}, {6, 0.3}, {3, 0.35}, {6, 0.4}, {6, 6}, {0, 6}},
	}
	for _, poly := range polys {
		for _, off := range []float64{0.05, 0.1, 0.2, 0.4} {
			got := Shrink(poly, off)
			if got == nil {
				continue
			}
			assert.True(t, geometry.IsSimple(got), "%v by %v", poly, off)
			assertClearance(t, poly, got, off)
		}
	}
}

func TestShrinkAreaMonotonic(t *testing.T) {
	for n := 3; n <= 12; n++ {
		for _, r := range []float64{1, 3, 10} {
			poly := make([]geom.Coord, n)
			for i := range poly {
				poly[i] = geometry.FromAngle(2 * math.Pi * float64(i) / float64(n)).Times(r)
			}
			area := geometry.SignedArea(poly)
			limit := 2 * area / geometry.Perimeter(poly)
			for _, f := range []float64{0.1, 0.5, 0.9} {
				for _, p := range [][]geom.Coord{poly, geometry.Reverse(poly)} {
					got := Shrink(p, limit*f)
					require.NotNil(t, got, "n=%d r=%v f=%v", n, r, f)
					ga := geometry.SignedArea(got)
					assert.Equal(t, math.Signbit(geometry.SignedArea(p)), math.Signbit(ga))
					assert.Greater(t, math.Abs(ga), 0.0)
					assert.Less(t, math.Abs(ga), area)
				}
			}
			assert.Nil(t, Shrink(poly, limit))
		}
	}
}

func TestShrinkDoesNotModifyInput(t *testing.T) {
	poly := geometry.Reverse(rect(4, 3))
	orig := append([]geom.Coord(nil), poly...)
	Shrink(poly, 0.5)
	assert.Equal(t, orig, poly)
}

func TestResolveSelfIntersections(t *testing.T) {
	bowtie := []geom.Coord{{0, 0}, {2, 2}, {2, 0}, {0, 2}}
	got := ResolveSelfIntersections(bowtie)
	assertPolygon(t, []geom.Coord{{1, 1}, {0, 2}, {0, 0}}, got)
	assert.True(t, geometry.IsSimple(got))

	assert.Nil(t, ResolveSelfIntersections([]geom.Coord{{0, 0}, {1, 0}}))
}

func TestResolveSelfIntersectionsIdempotent(t *testing.T) {
	l := []geom.Coord{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
	once := ResolveSelfIntersections(l)
	assert.Equal(t, l, once)
	assert.Equal(t, once, ResolveSelfIntersections(once))

	fixed := ResolveSelfIntersections([]geom.Coord{{0, 0}, {4, 0}, {4, 4}, {1, 4}, {3, 2}, {3, 5}, {0, 5}})
	require.NotNil(t, fixed)
	assert.Equal(t, fixed, ResolveSelfIntersections(fixed))
}
