// Package render draws generated cities as SVG or PNG and exports them as
// YAML.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jbeda/geom"

	"citygen/city"
	"citygen/geometry"
	"citygen/growth"
	"citygen/planar"
)

// Tunable constants for output
const (
	DEFAULT_STYLE  = "stroke-linecap: round; stroke-linejoin: round; fill: none"
	STREET_STYLE   = "stroke: black"
	BLOCK_STYLE    = "stroke: none; fill: #e8e4d8"
	LOT_STYLE      = "stroke: #6b5b3e; fill: #c9b98f"
	SUBLOT_STYLE   = "stroke: #6b5b3e; fill: #dccb9d"
	RAY_STYLE      = "stroke: red"
	NODE_STYLE     = "stroke: none; fill: #444"
	STROKE_FACTOR  = 0.002
	NODE_FACTOR    = 0.003
	VIEWBOX_MARGIN = 0.02
)

////////////////////////////////////////////////////////////////////////////
// SVG serialization helper

// SVG writes elements to an io.Writer and remembers the first write error.
type SVG struct {
	writer io.Writer
	err    error
}

func NewSVG(w io.Writer) *SVG {
	return &SVG{writer: w}
}

func (svg *SVG) printf(format string, a ...any) {
	if svg.err != nil {
		return
	}
	_, svg.err = fmt.Fprintf(svg.writer, format, a...)
}

// Err returns the first error hit while writing.
func (svg *SVG) Err() error { return svg.err }

// extraparams turns "key=value" strings into attributes and anything else
// into a style attribute. Values are not escaped.
func extraparams(s []string) string {
	var b strings.Builder
	for _, p := range s {
		switch {
		case strings.Index(p, "=") > 0:
			b.WriteString(p)
			b.WriteByte(' ')
		case len(p) > 0:
			fmt.Fprintf(&b, "style='%s' ", p)
		}
	}
	return b.String()
}

func (svg *SVG) Start(viewBox geom.Rect, s ...string) {
	svg.printf(`<?xml version="1.0"?>
<svg version="1.1"
     viewBox="%f %f %f %f"
     xmlns="http://www.w3.org/2000/svg" %s>
`, viewBox.Min.X, viewBox.Min.Y, viewBox.Width(), viewBox.Height(), extraparams(s))
}

func (svg *SVG) End() {
	svg.printf("</svg>\n")
}

func (svg *SVG) StartGroup(s ...string) {
	svg.printf("<g %s>\n", extraparams(s))
}

func (svg *SVG) EndGroup() {
	svg.printf("</g>\n")
}

func (svg *SVG) Line(p1 geom.Coord, p2 geom.Coord, s ...string) {
	svg.printf("<line x1='%f' y1='%f' x2='%f' y2='%f' %s/>\n", p1.X, p1.Y, p2.X, p2.Y, extraparams(s))
}

func (svg *SVG) Circle(c geom.Coord, r float64, s ...string) {
	svg.printf("<circle cx='%f' cy='%f' r='%f' %s/>\n", c.X, c.Y, r, extraparams(s))
}

// Polygon draws a closed path through poly. Fewer than two points draw
// nothing.
func (svg *SVG) Polygon(poly []geom.Coord, s ...string) {
	if len(poly) < 2 {
		return
	}
	svg.StartPath(poly[0], s...)
	for _, p := range poly[1:] {
		svg.PathLineTo(p)
	}
	svg.ClosePath()
	svg.EndPath()
}

func (svg *SVG) StartPath(p1 geom.Coord, s ...string) {
	svg.printf("<path %sd='M%f,%f", extraparams(s), p1.X, p1.Y)
}

func (svg *SVG) EndPath() {
	svg.printf("'/>\n")
}

func (svg *SVG) PathLineTo(p geom.Coord) {
	svg.printf("\n  L%f,%f", p.X, p.Y)
}

func (svg *SVG) ClosePath() {
	svg.printf(" Z")
}

////////////////////////////////////////////////////////////////////////////
// City drawing

// Style selects the layers drawn by WriteSVG.
type Style struct {
	Blocks  bool
	Lots    bool
	Streets bool
	Nodes   bool
	// Stroke is the street width in world units. Zero picks a width from
	// the drawing size.
	Stroke float64
}

func DefaultStyle() Style {
	return Style{Blocks: true, Lots: true, Streets: true}
}

// viewBox grows r by VIEWBOX_MARGIN of its larger side.
func viewBox(r geom.Rect) geom.Rect {
	m := VIEWBOX_MARGIN * max(r.Width(), r.Height())
	if m == 0 {
		m = 1
	}
	return geom.Rect{
		Min: geom.Coord{X: r.Min.X - m, Y: r.Min.Y - m},
		Max: geom.Coord{X: r.Max.X + m, Y: r.Max.Y + m},
	}
}

func cityBounds(c *city.City) geom.Rect {
	r := c.Graph.Bounds()
	for _, b := range c.Blocks {
		r.ExpandToContainRect(geometry.Bounds(b.Face.Points))
	}
	return r
}

// WriteSVG draws c: block faces, lots (subdivided lots as their children),
// then streets on top.
func WriteSVG(w io.Writer, c *city.City, style Style) error {
	bounds := cityBounds(c)
	vb := viewBox(bounds)
	stroke := style.Stroke
	if stroke <= 0 {
		stroke = STROKE_FACTOR * max(vb.Width(), vb.Height())
	}

	svg := NewSVG(w)
	svg.Start(vb, DEFAULT_STYLE, fmt.Sprintf("stroke-width='%f'", stroke))

	// +++ Blocks
	if style.Blocks {
		svg.StartGroup("id='blocks'", BLOCK_STYLE)
		for _, b := range c.Blocks {
			svg.Polygon(b.Face.Points)
		}
		svg.EndGroup()
	}

	// +++ Lots
	if style.Lots {
		svg.StartGroup("id='lots'", LOT_STYLE)
		drawLots(svg, c.Blocks, 0)
		svg.EndGroup()
	}

	// +++ Streets
	if style.Streets {
		svg.StartGroup("id='streets'", STREET_STYLE)
		drawEdges(svg, c.Graph)
		svg.EndGroup()
	}

	// +++ Nodes
	if style.Nodes {
		r := NODE_FACTOR * max(vb.Width(), vb.Height())
		svg.StartGroup("id='nodes'", NODE_STYLE)
		for _, n := range c.Graph.Nodes {
			svg.Circle(n, r)
		}
		svg.EndGroup()
	}

	svg.End()
	return svg.Err()
}

func drawLots(svg *SVG, blocks []city.Block, depth int) {
	for _, b := range blocks {
		if len(b.Children) > 0 {
			drawLots(svg, b.Children, depth+1)
			continue
		}
		if b.Lot == nil {
			continue
		}
		if depth > 0 {
			svg.Polygon(b.Lot, SUBLOT_STYLE)
		} else {
			svg.Polygon(b.Lot)
		}
	}
}

func drawEdges(svg *SVG, g planar.Graph) {
	for i := range g.Edges {
		a, b := g.Segment(i)
		svg.Line(a, b)
	}
}

// WriteSnapshotSVG draws a graph in progress: closed segments in black,
// growing rays in red. bounds fixes the view so that consecutive frames
// line up; a NilRect bounds fits the snapshot.
func WriteSnapshotSVG(w io.Writer, s growth.Snapshot, bounds geom.Rect) error {
	g := planar.Graph{Nodes: s.Nodes, Edges: s.Edges}
	if bounds.Width() < 0 || bounds.Height() < 0 {
		bounds = g.Bounds()
		for _, r := range s.Rays {
			bounds.ExpandToContainCoord(r[1])
		}
	}
	vb := viewBox(bounds)

	svg := NewSVG(w)
	svg.Start(vb, DEFAULT_STYLE, fmt.Sprintf("stroke-width='%f'", STROKE_FACTOR*max(vb.Width(), vb.Height())))
	svg.StartGroup("id='streets'", STREET_STYLE)
	drawEdges(svg, g)
	svg.EndGroup()
	svg.StartGroup("id='rays'", RAY_STYLE)
	for _, r := range s.Rays {
		svg.Line(r[0], r[1])
	}
	svg.EndGroup()
	svg.End()
	return svg.Err()
}
