package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// endpointEpsilon is the parametric margin used when endpoints are excluded.
const endpointEpsilon = 1e-9

// Hit describes where two segments or lines meet. T is the parameter along
// the first segment (0 at its start, 1 at its end) and U along the second.
type Hit struct {
	Point geom.Coord
	T, U  float64
}

// SegmentIntersection intersects a1-a2 with b1-b2. Parallel segments never
// intersect. With includeEndpoints false, touching at an endpoint of either
// segment is not a hit.
func SegmentIntersection(a1, a2, b1, b2 geom.Coord, includeEndpoints bool) (Hit, bool) {
	h, ok := LineIntersection(a1, a2, b1, b2)
	if !ok {
		return Hit{}, false
	}
	lo, hi := 0.0, 1.0
	if !includeEndpoints {
		lo, hi = endpointEpsilon, 1-endpointEpsilon
	}
	if h.T < lo || h.T > hi || h.U < lo || h.U > hi {
		return Hit{}, false
	}
	return h, true
}

// LineIntersection intersects the infinite lines through a1-a2 and b1-b2.
func LineIntersection(a1, a2, b1, b2 geom.Coord) (Hit, bool) {
	r := a2.Minus(a1)
	s := b2.Minus(b1)
	det := Cross(r, s)
	if math.Abs(det) < Epsilon {
		return Hit{}, false
	}
	qp := b1.Minus(a1)
	t := Cross(qp, s) / det
	u := Cross(qp, r) / det
	return Hit{Point: a1.Plus(r.Times(t)), T: t, U: u}, true
}

// SegmentsCross reports whether p1-p2 and p3-p4 touch or cross, including
// collinear overlap.
func SegmentsCross(p1, p2, p3, p4 geom.Coord) bool {
	o1 := Orientation(p1, p2, p3)
	o2 := Orientation(p1, p2, p4)
	o3 := Orientation(p3, p4, p1)
	o4 := Orientation(p3, p4, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Special cases
	if o1 == 0 && OnSegment(p1, p3, p2) {
		return true
	}
	if o2 == 0 && OnSegment(p1, p4, p2) {
		return true
	}
	if o3 == 0 && OnSegment(p3, p1, p4) {
		return true
	}
	if o4 == 0 && OnSegment(p3, p2, p4) {
		return true
	}
	return false
}
