package geometry

import (
	"math"
	"math/rand/v2"

	"github.com/jbeda/geom"
)

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Triangulate ear-clips a simple polygon of either winding and returns
// vertex index triples. Degenerate input yields fewer triangles; a
// polygon with fewer than 3 vertices yields none.
func Triangulate(poly []geom.Coord) [][3]int {
	n := len(poly)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if SignedArea(poly) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	tris := make([][3]int, 0, n-2)
	for guard := 0; len(idx) > 3 && guard < n*n; guard++ {
		clipped := false
		for k := range idx {
			a := idx[(k+len(idx)-1)%len(idx)]
			b := idx[k]
			c := idx[(k+1)%len(idx)]
			if !isEar(poly, idx, a, b, c) {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			idx = append(idx[:k], idx[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Numerically stuck; fan out what remains.
			break
		}
	}
	for k := 1; k+1 < len(idx); k++ {
		tris = append(tris, [3]int{idx[0], idx[k], idx[k+1]})
	}
	return tris
}

func isEar(poly []geom.Coord, idx []int, a, b, c int) bool {
	pa, pb, pc := poly[a], poly[b], poly[c]
	if Cross(pb.Minus(pa), pc.Minus(pb)) <= Epsilon {
		return false
	}
	for _, k := range idx {
		if k == a || k == b || k == c {
			continue
		}
		if inTriangle(poly[k], pa, pb, pc) {
			return false
		}
	}
	return true
}

func inTriangle(p, a, b, c geom.Coord) bool {
	d1 := Cross(b.Minus(a), p.Minus(a))
	d2 := Cross(c.Minus(b), p.Minus(b))
	d3 := Cross(a.Minus(c), p.Minus(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

func triangleArea(a, b, c geom.Coord) float64 {
	return math.Abs(Cross(b.Minus(a), c.Minus(a))) / 2
}

// SamplePoints returns n uniformly distributed points inside poly: a
// triangle is chosen with probability proportional to its area, then a
// point is placed in it with the square-root barycentric transform.
func SamplePoints(poly []geom.Coord, n int, rng *rand.Rand) []geom.Coord {
	tris := Triangulate(poly)
	if len(tris) == 0 || n <= 0 {
		return nil
	}
	cum := make([]float64, len(tris))
	total := 0.0
	for i, t := range tris {
		total += triangleArea(poly[t[0]], poly[t[1]], poly[t[2]])
		cum[i] = total
	}
	if total < AreaEpsilon {
		return nil
	}

	out := make([]geom.Coord, 0, n)
	for range n {
		r := rng.Float64() * total
		k := 0
		for k < len(cum)-1 && cum[k] < r {
			k++
		}
		t := tris[k]
		a, b, c := poly[t[0]], poly[t[1]], poly[t[2]]
		r1 := math.Sqrt(rng.Float64())
		r2 := rng.Float64()
		p := a.Times(1 - r1).Plus(b.Times(r1 * (1 - r2))).Plus(c.Times(r1 * r2))
		out = append(out, p)
	}
	return out
}
