// Package growth grows a network of streets from seed points.
//
// Every active line advances its tip by a fixed step per tick. A line stops
// when it crosses another segment or live line, leaves the boundary radius,
// or is cut short by a split or a twist, which restart growth from a new
// node. When no line remains active the nodes and closed segments form a
// planar straight-line graph.
package growth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/jbeda/geom"
	"github.com/ojrac/opensimplex-go"

	"citygen/geometry"
	"citygen/internal/logging"
	"citygen/planar"
)

// Hits closer than this to a line's previous tip are ignored, and crossing
// points closer than this to an existing node reuse the node.
const snapDistance = 1e-7

// Seed starts one line per angle (radians) from Pos.
type Seed struct {
	Pos    geom.Coord
	Angles []float64
}

// EvenSeed spreads n directions evenly, starting along +X.
func EvenSeed(pos geom.Coord, n int) Seed {
	s := Seed{Pos: pos, Angles: make([]float64, n)}
	for i := range s.Angles {
		s.Angles[i] = 2 * math.Pi * float64(i) / float64(n)
	}
	return s
}

// Line is a segment still growing from node Start towards Tip. Dir is a
// unit vector.
type Line struct {
	Start  int
	Tip    geom.Coord
	Dir    geom.Coord
	Active bool

	sinceSplit float64
	sinceTwist float64
}

// Snapshot is the in-progress state of a graph for incremental drawing.
type Snapshot struct {
	Nodes []geom.Coord
	Edges []planar.Edge
	// Rays holds the live segment (start, tip) of every active line.
	Rays [][2]geom.Coord
}

// Graph owns one generation episode: its node registry, its closed
// segments and its growing lines. A Graph is not safe for concurrent use;
// distinct graphs share nothing and may run in parallel.
type Graph struct {
	cfg      Config
	rng      *rand.Rand
	noise    opensimplex.Noise
	noiseZ   float64
	boundary []geom.Coord
	seeds    []Seed

	nodes    []geom.Coord
	segments []planar.Edge
	lines    []Line
	active   []int
	grid     *grid

	steps int
	done  bool

	// OnComplete, when set, is called once with the finished graph.
	OnComplete func(planar.Graph)
}

// New validates the configuration and seeds a graph. boundary may be empty
// only when cfg.Radius is positive; otherwise it needs at least three
// vertices. Every seed must lie inside the boundary and carry at least one
// direction. rng drives every random decision of the episode.
func New(cfg Config, boundary []geom.Coord, seeds []Seed, rng *rand.Rand) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfig)
	}
	switch {
	case len(boundary) == 0 && cfg.Radius == 0:
		return nil, fmt.Errorf("%w: need a boundary polygon or a radius", ErrConfig)
	case len(boundary) > 0 && len(boundary) < 3:
		return nil, fmt.Errorf("%w: boundary has %d vertices, need at least 3", ErrConfig, len(boundary))
	case len(boundary) > 0 && geometry.Area(boundary) < geometry.AreaEpsilon:
		return nil, fmt.Errorf("%w: boundary has no area", ErrConfig)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: no seeds", ErrConfig)
	}
	for i, s := range seeds {
		if len(s.Angles) == 0 {
			return nil, fmt.Errorf("%w: seed %d has no directions", ErrConfig, i)
		}
		if len(boundary) > 0 && !geometry.ContainsPoint(boundary, s.Pos) {
			return nil, fmt.Errorf("%w: seed %d at %v is outside the boundary", ErrConfig, i, s.Pos)
		}
		if cfg.Radius > 0 && s.Pos.DistanceFrom(cfg.Center) >= cfg.Radius {
			return nil, fmt.Errorf("%w: seed %d at %v is outside the radius", ErrConfig, i, s.Pos)
		}
	}

	g := &Graph{
		cfg:      cfg,
		rng:      rng,
		boundary: append([]geom.Coord(nil), boundary...),
		seeds:    append([]Seed(nil), seeds...),
	}
	g.noise = opensimplex.New(rng.Int64())
	g.noiseZ = rng.Float64() * 256
	g.reset()
	return g, nil
}

// Reset discards every node, segment and line and reseeds the graph from
// its configuration. The random source keeps its state, so a reset episode
// differs from the first one.
func (g *Graph) Reset() {
	g.reset()
}

func (g *Graph) reset() {
	g.nodes = make([]geom.Coord, 0, len(g.boundary)+len(g.seeds))
	g.segments = make([]planar.Edge, 0, len(g.boundary))
	g.lines = nil
	g.active = nil
	g.grid = nil
	if g.cfg.GridCellSize > 0 {
		g.grid = newGrid(g.cfg.GridCellSize)
	}
	g.steps = 0
	g.done = false

	for _, p := range g.boundary {
		g.addNode(p)
	}
	for i := range g.boundary {
		g.addSegment(i, (i+1)%len(g.boundary))
	}
	for _, s := range g.seeds {
		n := g.addNode(s.Pos)
		for _, a := range s.Angles {
			g.spawn(n, geometry.FromAngle(a), 0, 0)
		}
	}
}

func (g *Graph) addNode(p geom.Coord) int {
	g.nodes = append(g.nodes, p)
	return len(g.nodes) - 1
}

func (g *Graph) addSegment(from, to int) int {
	g.segments = append(g.segments, planar.Edge{From: from, To: to})
	id := len(g.segments) - 1
	if g.grid != nil {
		g.grid.insert(id, g.nodes[from], g.nodes[to])
	}
	return id
}

func (g *Graph) spawn(start int, dir geom.Coord, sinceSplit, sinceTwist float64) int {
	g.lines = append(g.lines, Line{
		Start:      start,
		Tip:        g.nodes[start],
		Dir:        geometry.Normalize(dir),
		Active:     true,
		sinceSplit: sinceSplit,
		sinceTwist: sinceTwist,
	})
	id := len(g.lines) - 1
	g.active = append(g.active, id)
	return id
}

// close turns line id into a closed segment ending at node end.
func (g *Graph) close(id, end int) {
	ln := &g.lines[id]
	ln.Active = false
	if end != ln.Start && !geometry.AlmostEqualsCoord(g.nodes[end], g.nodes[ln.Start]) {
		g.addSegment(ln.Start, end)
	}
}

// Done reports whether the episode has finished.
func (g *Graph) Done() bool { return g.done }

// Steps returns the number of ticks run so far.
func (g *Graph) Steps() int { return g.steps }

// Active returns the number of growing lines.
func (g *Graph) Active() int { return len(g.active) }

func (g *Graph) Config() Config { return g.cfg }

// Lines returns a copy of every line record, closed ones included.
func (g *Graph) Lines() []Line {
	return append([]Line(nil), g.lines...)
}

// Result returns a copy of the current nodes and closed segments. After
// Done it is the finished planar graph.
func (g *Graph) Result() planar.Graph {
	return planar.Graph{
		Nodes: append([]geom.Coord(nil), g.nodes...),
		Edges: append([]planar.Edge(nil), g.segments...),
	}
}

func (g *Graph) Snapshot() Snapshot {
	res := g.Result()
	s := Snapshot{Nodes: res.Nodes, Edges: res.Edges}
	for _, id := range g.active {
		ln := g.lines[id]
		s.Rays = append(s.Rays, [2]geom.Coord{g.nodes[ln.Start], ln.Tip})
	}
	return s
}

// Run steps until the episode is done and returns the finished graph.
func (g *Graph) Run() planar.Graph {
	for g.Step() {
	}
	return g.Result()
}

// Step advances every line that was active when the tick began. It returns
// false once no line remains active.
func (g *Graph) Step() bool {
	if g.done {
		return false
	}
	tick := append([]int(nil), g.active...)
	for _, id := range tick {
		if g.lines[id].Active {
			g.advance(id)
		}
	}
	g.steps++

	live := g.active[:0]
	for _, id := range g.active {
		if g.lines[id].Active {
			live = append(live, id)
		}
	}
	g.active = live

	if g.cfg.MaxSteps > 0 && g.steps >= g.cfg.MaxSteps && len(g.active) > 0 {
		logging.Logger().Warn("growth step limit reached, closing lines",
			"steps", g.steps, "active", len(g.active))
		for _, id := range g.active {
			g.close(id, g.addNode(g.lines[id].Tip))
		}
		g.active = nil
	}
	if len(g.active) == 0 {
		g.finish()
		return false
	}
	return true
}

func (g *Graph) finish() {
	g.done = true
	logging.Logger().Debug("growth complete",
		"steps", g.steps, "nodes", len(g.nodes), "segments", len(g.segments), "lines", len(g.lines))
	if g.OnComplete != nil {
		g.OnComplete(g.Result())
	}
}
