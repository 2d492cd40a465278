// Package inset shrinks city blocks into buildable lots.
//
// Every edge is pushed inward by the street margin, corners are mitered
// and sharp miters are beveled, and loops created by the offset are cut
// away. Infeasible input yields nil rather than an error.
package inset

import (
	"github.com/jbeda/geom"

	"citygen/geometry"
)

// DefaultMiterLimit matches the SVG stroke default.
const DefaultMiterLimit = 4.0

// duplicateEps merges vertices closer than this.
const duplicateEps = 1e-9

// clearanceTolerance is the relative slack allowed when checking that lot
// corners keep the full offset from the block outline.
const clearanceTolerance = 1e-6

type Options struct {
	// MiterLimit caps how far a corner may move from the original vertex,
	// as a multiple of the offset. Corners past it are beveled.
	MiterLimit float64
}

func DefaultOptions() Options {
	return Options{MiterLimit: DefaultMiterLimit}
}

// Shrink insets poly by offset with the default options.
func Shrink(poly []geom.Coord, offset float64) []geom.Coord {
	return ShrinkWith(poly, offset, DefaultOptions())
}

// ShrinkWith insets poly by offset. The result keeps the winding of poly,
// has strictly smaller area and no self-intersections, and each of its
// corners lies at least offset inside poly. It is nil when no such polygon
// exists. poly is not modified.
func ShrinkWith(poly []geom.Coord, offset float64, opts Options) []geom.Coord {
	if !(offset > 0) {
		return nil
	}
	if opts.MiterLimit <= 0 {
		opts.MiterLimit = DefaultMiterLimit
	}

	pts := geometry.RemoveCollinear(poly, duplicateEps)
	if len(pts) < 3 {
		return nil
	}
	reversed := !geometry.IsCCW(pts)
	if reversed {
		pts = geometry.Reverse(pts)
	}
	area := geometry.SignedArea(pts)
	if area < geometry.AreaEpsilon {
		return nil
	}

	if offset >= 2*area/geometry.Perimeter(pts) {
		return nil
	}
	if offset > geometry.MinEdgeDistance(pts, geometry.Centroid(pts)) {
		return nil
	}

	out := offsetCorners(pts, offset, opts.MiterLimit)
	if out == nil {
		return nil
	}
	out = dedupe(out)
	if len(out) < 3 {
		return nil
	}
	out = ResolveSelfIntersections(out)
	if out == nil {
		return nil
	}

	shrunk := geometry.SignedArea(out)
	if !(shrunk > 0) || shrunk >= area {
		return nil
	}
	// Every corner must lie inside pts and a full offset away from it.
	clearance := offset * (1 - clearanceTolerance)
	for _, p := range out {
		if !geometry.ContainsPoint(pts, p) || geometry.MinEdgeDistance(pts, p) < clearance {
			return nil
		}
	}
	if reversed {
		out = geometry.Reverse(out)
	}
	return out
}

// offsetCorners intersects the inward-offset lines of consecutive edges of
// the counter-clockwise polygon pts. An edge whose offset runs backwards has
// collapsed: it is dropped and its neighbours are joined directly, until
// every remaining edge keeps its direction. It returns nil when fewer than
// three edges survive.
func offsetCorners(pts []geom.Coord, offset, miterLimit float64) []geom.Coord {
	n := len(pts)
	shift := make([]geom.Coord, n)
	live := make([]int, n)
	for i := range pts {
		d := pts[(i+1)%n].Minus(pts[i])
		shift[i] = geometry.Normalize(geometry.Perp(d)).Times(offset)
		live[i] = i
	}

	for len(live) >= 3 {
		m := len(live)
		corners := make([][]geom.Coord, m)
		for k, e := range live {
			corners[k] = joinEdges(pts, shift, live[(k+m-1)%m], e, offset, miterLimit)
		}

		collapsed, shortest := -1, 0.0
		for k, e := range live {
			from := corners[k][len(corners[k])-1]
			to := corners[(k+1)%m][0]
			d := pts[(e+1)%n].Minus(pts[e])
			if geometry.Dot(to.Minus(from), d) > 0 {
				continue
			}
			if l := d.Magnitude(); collapsed < 0 || l < shortest {
				collapsed, shortest = k, l
			}
		}
		if collapsed < 0 {
			out := make([]geom.Coord, 0, m+m/2)
			for _, c := range corners {
				out = append(out, c...)
			}
			return out
		}
		live = append(live[:collapsed], live[collapsed+1:]...)
	}
	return nil
}

// joinEdges returns the corner between the offset lines of edge prev and
// the following live edge next: their miter point, or a bevel when the
// miter reaches past miterLimit offsets from the original corner.
func joinEdges(pts, shift []geom.Coord, prev, next int, offset, miterLimit float64) []geom.Coord {
	n := len(pts)
	end, start := pts[(prev+1)%n], pts[next]
	a1 := pts[prev].Plus(shift[prev])
	a2 := end.Plus(shift[prev])
	b1 := start.Plus(shift[next])
	b2 := pts[(next+1)%n].Plus(shift[next])

	h, ok := geometry.LineIntersection(a1, a2, b1, b2)
	if !ok {
		return []geom.Coord{geometry.Lerp(a2, b1, 0.5)}
	}
	reach := min(h.Point.DistanceFrom(end), h.Point.DistanceFrom(start))
	if reach > offset*miterLimit {
		return []geom.Coord{a2, b1}
	}
	return []geom.Coord{h.Point}
}

func dedupe(pts []geom.Coord) []geom.Coord {
	out := make([]geom.Coord, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && p.DistanceFrom(out[len(out)-1]) <= duplicateEps {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].DistanceFrom(out[len(out)-1]) <= duplicateEps {
		out = out[:len(out)-1]
	}
	return out
}

// ResolveSelfIntersections cuts poly at its first crossing into two loops,
// keeps the counter-clockwise one (the larger if both are) and repeats
// until no crossing remains. It returns nil when both loops are clockwise,
// when fewer than three vertices remain, or after 2×len(poly) cuts. A
// simple polygon comes back unchanged.
func ResolveSelfIntersections(poly []geom.Coord) []geom.Coord {
	if len(poly) < 3 {
		return nil
	}
	pts := append([]geom.Coord(nil), poly...)
	limit := 2 * len(poly)
	for cuts := 0; ; cuts++ {
		i, j, hit, found := geometry.FindCrossing(pts)
		if !found {
			return pts
		}
		if cuts >= limit {
			return nil
		}

		inner := append([]geom.Coord{hit.Point}, pts[i+1:j+1]...)
		outer := append([]geom.Coord{hit.Point}, pts[j+1:]...)
		outer = append(outer, pts[:i+1]...)
		inner, outer = dedupe(inner), dedupe(outer)

		ai, ao := geometry.SignedArea(inner), geometry.SignedArea(outer)
		switch {
		case ai > 0 && (ao <= 0 || ai >= ao):
			pts = inner
		case ao > 0:
			pts = outer
		default:
			return nil
		}
		if len(pts) < 3 {
			return nil
		}
	}
}
