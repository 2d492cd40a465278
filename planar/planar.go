// Package planar holds the finished planar straight-line graph handed from
// the growth simulation to the region extractor.
package planar

import (
	"github.com/jbeda/geom"

	"citygen/geometry"
)

// Edge is an undirected edge between two node indices.
type Edge struct {
	From, To int
}

// Key returns the edge with its endpoints ordered, for deduplication.
func (e Edge) Key() Edge {
	if e.From > e.To {
		return Edge{e.To, e.From}
	}
	return e
}

// Graph is a vertex list plus an edge list referencing it by index.
type Graph struct {
	Nodes []geom.Coord
	Edges []Edge
}

// Segment returns the endpoints of edge i.
func (g Graph) Segment(i int) (geom.Coord, geom.Coord) {
	e := g.Edges[i]
	return g.Nodes[e.From], g.Nodes[e.To]
}

// Bounds returns the bounds of every node.
func (g Graph) Bounds() geom.Rect {
	return geometry.Bounds(g.Nodes)
}

// Simplify removes self-loops, zero-length and duplicate edges.
func (g Graph) Simplify() Graph {
	seen := make(map[Edge]bool, len(g.Edges))
	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.From == e.To || geometry.AlmostEqualsCoord(g.Nodes[e.From], g.Nodes[e.To]) {
			continue
		}
		k := e.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		edges = append(edges, e)
	}
	return Graph{Nodes: g.Nodes, Edges: edges}
}

// Degrees counts the edges touching each node.
func (g Graph) Degrees() []int {
	deg := make([]int, len(g.Nodes))
	for _, e := range g.Edges {
		deg[e.From]++
		deg[e.To]++
	}
	return deg
}

// PruneFilaments repeatedly drops edges with a degree-1 endpoint. What
// remains is the union of the graph's cycles.
func (g Graph) PruneFilaments() Graph {
	edges := append([]Edge(nil), g.Edges...)
	for {
		deg := Graph{Nodes: g.Nodes, Edges: edges}.Degrees()
		kept := edges[:0]
		for _, e := range edges {
			if deg[e.From] > 1 && deg[e.To] > 1 {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(edges) {
			return Graph{Nodes: g.Nodes, Edges: kept}
		}
		edges = kept
	}
}

// Components returns the number of connected components among nodes that
// have at least one edge.
func (g Graph) Components() int {
	roots := make(map[int]bool)
	for _, c := range g.ComponentLabels() {
		if c >= 0 {
			roots[c] = true
		}
	}
	return len(roots)
}

// ComponentLabels maps every node to a representative node of its connected
// component, or -1 when the node has no edges.
func (g Graph) ComponentLabels() []int {
	parent := make([]int, len(g.Nodes))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for _, e := range g.Edges {
		a, b := find(e.From), find(e.To)
		if a != b {
			parent[a] = b
		}
	}
	labels := make([]int, len(g.Nodes))
	for i, d := range g.Degrees() {
		labels[i] = -1
		if d > 0 {
			labels[i] = find(i)
		}
	}
	return labels
}

// UsedNodes counts nodes with at least one edge.
func (g Graph) UsedNodes() int {
	n := 0
	for _, d := range g.Degrees() {
		if d > 0 {
			n++
		}
	}
	return n
}

// ExpectedFaces returns E - V + C, the number of bounded faces of a plane
// embedding of g by Euler's formula (V - E + F = 1 + C).
func (g Graph) ExpectedFaces() int {
	return len(g.Edges) - g.UsedNodes() + g.Components()
}

// Crossings returns pairs of edges that intersect anywhere other than at a
// shared endpoint. A valid planar straight-line graph has none.
func (g Graph) Crossings() [][2]int {
	var out [][2]int
	for i := range g.Edges {
		a1, a2 := g.Segment(i)
		for j := i + 1; j < len(g.Edges); j++ {
			ei, ej := g.Edges[i], g.Edges[j]
			if ei.From == ej.From || ei.From == ej.To || ei.To == ej.From || ei.To == ej.To {
				continue
			}
			b1, b2 := g.Segment(j)
			if !geometry.SegmentsCross(a1, a2, b1, b2) {
				continue
			}
			if _, ok := geometry.SegmentIntersection(a1, a2, b1, b2, true); ok {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}
