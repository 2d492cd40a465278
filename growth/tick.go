package growth

import (
	"math"

	"github.com/jbeda/geom"

	"citygen/geometry"
)

// paramSlack widens the accepted parameter range so a crossing that falls
// exactly on a step end or a segment end is not lost to rounding.
const paramSlack = 1e-9

type hitKind int

const (
	hitNone hitKind = iota
	hitSegment
	hitLine
)

type crossing struct {
	kind hitKind
	id   int // segment or line id
	hit  geometry.Hit
}

func (g *Graph) advance(id int) {
	ln := &g.lines[id]
	prev := ln.Tip
	next := prev.Plus(ln.Dir.Times(g.cfg.StepLength))

	if c := g.nearest(id, prev, next); c.kind != hitNone {
		g.resolve(id, c)
		return
	}

	if g.cfg.Radius > 0 && next.DistanceFrom(g.cfg.Center) > g.cfg.Radius {
		end := circleExit(prev, next, g.cfg.Center, g.cfg.Radius)
		g.close(id, g.addNode(end))
		return
	}

	ln.Tip = next
	ln.sinceSplit += g.cfg.StepLength
	ln.sinceTwist += g.cfg.StepLength

	if ln.sinceSplit > g.cfg.MinDistance && g.rng.Float64() < g.cfg.Probability {
		g.split(id)
		return
	}
	if g.cfg.twists() && ln.sinceTwist > g.cfg.MinTwistDistance {
		g.twist(id)
	}
}

// nearest finds the crossing of the step prev-next closest to prev, among
// closed segments and the live segments of other active lines.
func (g *Graph) nearest(id int, prev, next geom.Coord) crossing {
	best := crossing{hit: geometry.Hit{T: math.Inf(1)}}
	minT := snapDistance / g.cfg.StepLength

	consider := func(kind hitKind, other int, a, b geom.Coord) {
		h, ok := geometry.LineIntersection(prev, next, a, b)
		if !ok || h.T < minT || h.T > 1+paramSlack || h.U < -paramSlack || h.U > 1+paramSlack {
			return
		}
		if h.T >= best.hit.T {
			return
		}
		best = crossing{kind: kind, id: other, hit: h}
	}

	if g.grid != nil {
		g.grid.query(prev, next, func(s int) {
			e := g.segments[s]
			consider(hitSegment, s, g.nodes[e.From], g.nodes[e.To])
		})
	} else {
		for s, e := range g.segments {
			consider(hitSegment, s, g.nodes[e.From], g.nodes[e.To])
		}
	}

	for _, other := range g.active {
		ol := &g.lines[other]
		if other == id || !ol.Active {
			continue
		}
		consider(hitLine, other, g.nodes[ol.Start], ol.Tip)
	}
	return best
}

// resolve closes line id at its crossing c. A crossed segment is split at
// the new node; a crossed line is closed there and a continuation restarts
// from the node in its original direction.
func (g *Graph) resolve(id int, c crossing) {
	p := c.hit.Point
	var n int
	switch c.kind {
	case hitSegment:
		n = g.splitSegment(c.id, p)
	case hitLine:
		other := g.lines[c.id]
		if p.DistanceFrom(g.nodes[other.Start]) < snapDistance {
			n = other.Start
			break
		}
		n = g.addNode(p)
		g.close(c.id, n)
		cont := g.spawn(n, other.Dir, other.sinceSplit, other.sinceTwist)
		g.lines[cont].Tip = other.Tip
	}
	g.close(id, n)
}

// splitSegment returns the node at p on segment s, reusing an endpoint when
// p is on it and otherwise splitting s in two.
func (g *Graph) splitSegment(s int, p geom.Coord) int {
	e := g.segments[s]
	switch {
	case p.DistanceFrom(g.nodes[e.From]) < snapDistance:
		return e.From
	case p.DistanceFrom(g.nodes[e.To]) < snapDistance:
		return e.To
	}
	n := g.addNode(p)
	g.segments[s].To = n
	g.addSegment(n, e.To)
	return n
}

// split ends line id at its tip, continues it straight from a new node and
// branches per the split direction policy.
func (g *Graph) split(id int) {
	ln := g.lines[id]
	n := g.addNode(ln.Tip)
	g.close(id, n)
	g.spawn(n, ln.Dir, 0, ln.sinceTwist)

	angle := g.cfg.MinAngle + g.rng.Float64()*(g.cfg.MaxAngle-g.cfg.MinAngle)
	switch g.cfg.SplitDirection {
	case SplitRandom:
		if g.rng.Float64() < 0.5 {
			angle = -angle
		}
		g.spawn(n, geometry.Rotate(ln.Dir, angle), 0, 0)
	case SplitClockwise:
		g.spawn(n, geometry.Rotate(ln.Dir, -angle), 0, 0)
	case SplitCounterClockwise:
		g.spawn(n, geometry.Rotate(ln.Dir, angle), 0, 0)
	case SplitBoth:
		g.spawn(n, geometry.Rotate(ln.Dir, angle), 0, 0)
		g.spawn(n, geometry.Rotate(ln.Dir, angle+math.Pi), 0, 0)
	}
}

// twist ends line id at its tip and restarts it with its direction turned
// by the noise field sampled at the tip.
func (g *Graph) twist(id int) {
	ln := g.lines[id]
	n := g.addNode(ln.Tip)
	g.close(id, n)
	ns := g.cfg.NoiseScale
	turn := g.noise.Eval3(ln.Tip.X*ns, ln.Tip.Y*ns, g.noiseZ) * g.cfg.Twist
	g.spawn(n, geometry.Rotate(ln.Dir, turn), ln.sinceSplit, 0)
}

// circleExit returns where the step a-b leaves the circle (c, r). a must be
// inside the circle and b outside.
func circleExit(a, b, c geom.Coord, r float64) geom.Coord {
	d := b.Minus(a)
	f := a.Minus(c)
	qa := geometry.Dot(d, d)
	qb := 2 * geometry.Dot(f, d)
	qc := geometry.Dot(f, f) - r*r
	disc := qb*qb - 4*qa*qc
	if qa < geometry.Epsilon || disc < 0 {
		return b
	}
	t := (-qb + math.Sqrt(disc)) / (2 * qa)
	t = math.Max(0, math.Min(1, t))
	return a.Plus(d.Times(t))
}
