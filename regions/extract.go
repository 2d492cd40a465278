// Package regions recovers the bounded faces of a planar straight-line
// graph by walking its rotation system.
package regions

import (
	"math"
	"sort"

	"github.com/jbeda/geom"

	"citygen/geometry"
	"citygen/internal/logging"
	"citygen/planar"
)

// Face is one bounded region. Nodes and Points run counter-clockwise and
// Area is positive.
type Face struct {
	Nodes  []int
	Points []geom.Coord
	Area   float64
}

// wedge is the angular step prev→pivot→next around pivot.
type wedge struct {
	prev, pivot, next int
}

type wedgeKey struct{ prev, pivot int }

// Extract returns every bounded face of g, largest first. Self-loops,
// duplicate edges and dangling filaments are removed first. A face whose
// walk breaks is logged and skipped; the rest are still returned.
func Extract(g planar.Graph) []Face {
	g = g.Simplify().PruneFilaments()
	wedges := buildWedges(g)
	faces := dropOuterFaces(g, walkFaces(g, wedges))
	if len(faces) == 0 {
		return nil
	}

	for i := range faces {
		if faces[i].Area < 0 {
			faces[i] = faces[i].reversed()
		}
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].Area > faces[j].Area })
	logging.Logger().Debug("faces extracted", "faces", len(faces), "wedges", len(wedges))
	return faces
}

// dropOuterFaces removes the unbounded face of every connected component,
// which is the one with the largest absolute area among its faces.
func dropOuterFaces(g planar.Graph, faces []Face) []Face {
	labels := g.ComponentLabels()
	outer := make(map[int]int)
	for i, f := range faces {
		c := labels[f.Nodes[0]]
		if j, ok := outer[c]; !ok || math.Abs(f.Area) > math.Abs(faces[j].Area) {
			outer[c] = i
		}
	}
	out := make([]Face, 0, len(faces)-len(outer))
	for i, f := range faces {
		if outer[labels[f.Nodes[0]]] != i {
			out = append(out, f)
		}
	}
	return out
}

// buildWedges sorts the neighbours of every node by polar angle and pairs
// consecutive ones, wrapping around.
func buildWedges(g planar.Graph) []wedge {
	adj := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}

	var wedges []wedge
	for v, ns := range adj {
		if len(ns) == 0 {
			continue
		}
		pv := g.Nodes[v]
		angle := func(w int) float64 {
			d := g.Nodes[w].Minus(pv)
			return math.Atan2(d.Y, d.X)
		}
		sort.Slice(ns, func(i, j int) bool { return angle(ns[i]) < angle(ns[j]) })
		for i, u := range ns {
			wedges = append(wedges, wedge{prev: u, pivot: v, next: ns[(i+1)%len(ns)]})
		}
	}
	return wedges
}

// walkFaces follows wedge (u,v,w) to the wedge keyed (v,w) until the walk
// returns to its first wedge. Every wedge lies on exactly one face.
func walkFaces(g planar.Graph, wedges []wedge) []Face {
	index := make(map[wedgeKey]int, len(wedges))
	for i, w := range wedges {
		index[wedgeKey{w.prev, w.pivot}] = i
	}
	used := make([]bool, len(wedges))

	var faces []Face
	for start := range wedges {
		if used[start] {
			continue
		}
		var nodes []int
		cur := start
		closed := false
		for range len(wedges) + 1 {
			used[cur] = true
			w := wedges[cur]
			nodes = append(nodes, w.pivot)
			next, ok := index[wedgeKey{w.pivot, w.next}]
			if !ok {
				logging.Logger().Warn("face walk broken, skipping face",
					"from", w.pivot, "to", w.next, "visited", len(nodes))
				break
			}
			if next == start {
				closed = true
				break
			}
			if used[next] {
				logging.Logger().Warn("face walk re-entered a used wedge, skipping face",
					"wedge", next, "visited", len(nodes))
				break
			}
			cur = next
		}
		if !closed || len(nodes) < 3 {
			continue
		}
		pts := make([]geom.Coord, len(nodes))
		for i, n := range nodes {
			pts[i] = g.Nodes[n]
		}
		faces = append(faces, Face{Nodes: nodes, Points: pts, Area: geometry.SignedArea(pts)})
	}
	return faces
}

func (f Face) reversed() Face {
	nodes := make([]int, len(f.Nodes))
	for i, n := range f.Nodes {
		nodes[len(nodes)-1-i] = n
	}
	return Face{Nodes: nodes, Points: geometry.Reverse(f.Points), Area: -f.Area}
}
