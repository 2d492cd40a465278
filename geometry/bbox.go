package geometry

import (
	"math"

	"github.com/jbeda/geom"
)

// BoundingBox is an oriented rectangle. Width runs along Angle, Height
// across it.
type BoundingBox struct {
	Center        geom.Coord
	Width, Height float64
	Angle         float64
}

func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// Aspect returns long side over short side, +Inf for a zero-thickness box.
func (b BoundingBox) Aspect() float64 {
	lo, hi := math.Min(b.Width, b.Height), math.Max(b.Width, b.Height)
	if lo < Epsilon {
		return math.Inf(1)
	}
	return hi / lo
}

// Corners returns the four corners counter-clockwise.
func (b BoundingBox) Corners() []geom.Coord {
	u := FromAngle(b.Angle)
	v := Perp(u)
	hw, hh := u.Times(b.Width/2), v.Times(b.Height/2)
	return []geom.Coord{
		b.Center.Minus(hw).Minus(hh),
		b.Center.Plus(hw).Minus(hh),
		b.Center.Plus(hw).Plus(hh),
		b.Center.Minus(hw).Plus(hh),
	}
}

// MinimumBoundingBox tries a box aligned to every edge of poly and keeps the
// one with the smallest area.
func MinimumBoundingBox(poly []geom.Coord) BoundingBox {
	best := BoundingBox{Width: math.Inf(1), Height: math.Inf(1)}
	if len(poly) == 0 {
		return BoundingBox{}
	}
	for i := range poly {
		edge := poly[(i+1)%len(poly)].Minus(poly[i])
		if edge.Magnitude() < Epsilon {
			continue
		}
		u := edge.Unit()
		v := Perp(u)
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range poly {
			pu, pv := Dot(p, u), Dot(p, v)
			minU, maxU = math.Min(minU, pu), math.Max(maxU, pu)
			minV, maxV = math.Min(minV, pv), math.Max(maxV, pv)
		}
		w, h := maxU-minU, maxV-minV
		if w*h < best.Area() {
			cu, cv := (minU+maxU)/2, (minV+maxV)/2
			best = BoundingBox{
				Center: u.Times(cu).Plus(v.Times(cv)),
				Width:  w,
				Height: h,
				Angle:  math.Atan2(u.Y, u.X),
			}
		}
	}
	if math.IsInf(best.Width, 1) {
		return BoundingBox{Center: poly[0]}
	}
	return best
}
