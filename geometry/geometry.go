// Package geometry holds the pure 2D helpers used by the growth graph, the
// region extractor and the inset step. All functions are free of shared
// state and safe to call from any goroutine.
package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// Tolerances. Epsilon guards determinants, AreaEpsilon rejects
// zero-area polygons.
const (
	Epsilon     = 1e-10
	AreaEpsilon = 1e-9
	// FloatEqualThresh is used when comparing coordinates for identity.
	FloatEqualThresh = 1e-8
)

func FloatAlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < FloatEqualThresh
}

func AlmostEqualsCoord(a, b geom.Coord) bool {
	return FloatAlmostEqual(a.X, b.X) && FloatAlmostEqual(a.Y, b.Y)
}

// Cross returns the z component of a×b.
func Cross(a, b geom.Coord) float64 {
	return a.X*b.Y - a.Y*b.X
}

func Dot(a, b geom.Coord) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Perp rotates v by +90 degrees.
func Perp(v geom.Coord) geom.Coord {
	return geom.Coord{X: -v.Y, Y: v.X}
}

// Rotate rotates v counter-clockwise by angle radians.
func Rotate(v geom.Coord, angle float64) geom.Coord {
	s, c := math.Sincos(angle)
	return geom.Coord{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// FromAngle returns the unit vector at angle radians.
func FromAngle(angle float64) geom.Coord {
	s, c := math.Sincos(angle)
	return geom.Coord{X: c, Y: s}
}

// Normalize is geom.Coord.Unit that returns the zero vector for
// zero-length input instead of NaNs.
func Normalize(v geom.Coord) geom.Coord {
	if v.Magnitude() < Epsilon {
		return geom.Coord{}
	}
	return v.Unit()
}

// Lerp interpolates from a to b.
func Lerp(a, b geom.Coord, t float64) geom.Coord {
	return a.Plus(b.Minus(a).Times(t))
}

// Orientation returns 0 for collinear points, 1 for a clockwise turn
// and 2 for a counter-clockwise turn p→q→r.
func Orientation(p, q, r geom.Coord) int {
	val := (q.Y-p.Y)*(r.X-q.X) - (q.X-p.X)*(r.Y-q.Y)
	if math.Abs(val) < Epsilon {
		return 0
	}
	if val > 0 {
		return 1
	}
	return 2
}

// OnSegment reports whether q lies inside the bounding box of p-r. Only
// meaningful when p, q and r are collinear.
func OnSegment(p, q, r geom.Coord) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// SegmentBounds returns the bounding rectangle of a-b.
func SegmentBounds(a, b geom.Coord) geom.Rect {
	r := geom.Rect{a, a}
	r.ExpandToContainCoord(b)
	return r
}

// PointSegmentDistance returns the distance from p to the closed segment a-b.
func PointSegmentDistance(p, a, b geom.Coord) float64 {
	ab := b.Minus(a)
	l2 := Dot(ab, ab)
	if l2 < Epsilon {
		return p.DistanceFrom(a)
	}
	t := Dot(p.Minus(a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.DistanceFrom(a.Plus(ab.Times(t)))
}
