package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// SignedArea returns the shoelace area of poly. Counter-clockwise polygons
// have positive area.
func SignedArea(poly []geom.Coord) float64 {
	area := 0.0
	n := len(poly)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += poly[i].X * poly[j].Y
		area -= poly[j].X * poly[i].Y
	}
	return area / 2
}

func Area(poly []geom.Coord) float64 {
	return math.Abs(SignedArea(poly))
}

func IsCCW(poly []geom.Coord) bool {
	return SignedArea(poly) > 0
}

func Perimeter(poly []geom.Coord) float64 {
	total := 0.0
	for i := range poly {
		total += poly[i].DistanceFrom(poly[(i+1)%len(poly)])
	}
	return total
}

// Reverse returns a reversed copy of poly.
func Reverse(poly []geom.Coord) []geom.Coord {
	r := make([]geom.Coord, len(poly))
	for i, p := range poly {
		r[len(poly)-1-i] = p
	}
	return r
}

// Centroid returns the area centroid of poly, or the vertex average when
// the area vanishes.
func Centroid(poly []geom.Coord) geom.Coord {
	a := SignedArea(poly)
	if math.Abs(a) < AreaEpsilon {
		var sum geom.Coord
		for _, p := range poly {
			sum = sum.Plus(p)
		}
		if len(poly) == 0 {
			return sum
		}
		return sum.Times(1 / float64(len(poly)))
	}
	var cx, cy float64
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		f := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * f
		cy += (p.Y + q.Y) * f
	}
	return geom.Coord{X: cx / (6 * a), Y: cy / (6 * a)}
}

// Bounds returns the axis-aligned bounds of poly.
func Bounds(poly []geom.Coord) geom.Rect {
	if len(poly) == 0 {
		return geom.NilRect()
	}
	r := geom.Rect{poly[0], poly[0]}
	for _, p := range poly[1:] {
		r.ExpandToContainCoord(p)
	}
	return r
}

// ContainsPoint is an even-odd test. Points on the boundary may go either way.
func ContainsPoint(poly []geom.Coord, p geom.Coord) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// MinEdgeDistance returns the smallest distance from p to any edge of poly.
func MinEdgeDistance(poly []geom.Coord, p geom.Coord) float64 {
	best := math.Inf(1)
	for i := range poly {
		d := PointSegmentDistance(p, poly[i], poly[(i+1)%len(poly)])
		if d < best {
			best = d
		}
	}
	return best
}

// RemoveCollinear drops repeated vertices and vertices lying on the line
// through their neighbours (within eps, measured as distance from the line).
// The result may have fewer than 3 vertices.
func RemoveCollinear(poly []geom.Coord, eps float64) []geom.Coord {
	pts := make([]geom.Coord, 0, len(poly))
	for _, p := range poly {
		if len(pts) > 0 && p.DistanceFrom(pts[len(pts)-1]) <= eps {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && pts[0].DistanceFrom(pts[len(pts)-1]) <= eps {
		pts = pts[:len(pts)-1]
	}

	for changed := true; changed && len(pts) >= 3; {
		changed = false
		for i := 0; i < len(pts) && len(pts) >= 3; i++ {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			base := next.Minus(prev)
			l := base.Magnitude()
			var d float64
			if l < Epsilon {
				d = pts[i].DistanceFrom(prev)
			} else {
				d = math.Abs(Cross(base, pts[i].Minus(prev))) / l
			}
			if d <= eps {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return pts
}

// FindCrossing returns the first pair of non-adjacent edges (i, i+1) and
// (j, j+1), i < j, that intersect, scanning i then j in order.
func FindCrossing(poly []geom.Coord) (i, j int, hit Hit, ok bool) {
	n := len(poly)
	for i = 0; i < n; i++ {
		a1, a2 := poly[i], poly[(i+1)%n]
		for j = i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			b1, b2 := poly[j], poly[(j+1)%n]
			if !SegmentsCross(a1, a2, b1, b2) {
				continue
			}
			if hit, ok = SegmentIntersection(a1, a2, b1, b2, true); ok {
				return i, j, hit, true
			}
		}
	}
	return 0, 0, Hit{}, false
}

// IsSimple reports whether no two non-adjacent edges of poly intersect.
func IsSimple(poly []geom.Coord) bool {
	if len(poly) < 3 {
		return false
	}
	_, _, _, found := FindCrossing(poly)
	return !found
}
