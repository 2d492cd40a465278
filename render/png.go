package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/jbeda/geom"
	"golang.org/x/image/vector"

	"citygen/city"
	"citygen/geometry"
)

var (
	BACKGROUND_COLOR = color.RGBA{0xff, 0xff, 0xff, 0xff}
	BLOCK_COLOR      = color.RGBA{0xe8, 0xe4, 0xd8, 0xff}
	LOT_COLOR        = color.RGBA{0xc9, 0xb9, 0x8f, 0xff}
	STREET_COLOR     = color.RGBA{0x20, 0x20, 0x20, 0xff}
)

// STREET_PIXELS is the drawn street width.
const STREET_PIXELS = 1.5

// raster maps world coordinates onto a size×size image, keeping the aspect
// ratio and flipping nothing: +Y points down as in the SVG output.
type raster struct {
	img    *image.RGBA
	ras    *vector.Rasterizer
	origin geom.Coord
	scale  float64
}

func newRaster(bounds geom.Rect, size int) *raster {
	vb := viewBox(bounds)
	side := max(vb.Width(), vb.Height())
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(BACKGROUND_COLOR), image.Point{}, draw.Src)
	return &raster{
		img:    img,
		ras:    vector.NewRasterizer(size, size),
		origin: vb.Min,
		scale:  float64(size) / side,
	}
}

func (r *raster) project(p geom.Coord) (float32, float32) {
	q := p.Minus(r.origin).Times(r.scale)
	return float32(q.X), float32(q.Y)
}

func (r *raster) path(poly []geom.Coord) {
	x, y := r.project(poly[0])
	r.ras.MoveTo(x, y)
	for _, p := range poly[1:] {
		x, y = r.project(p)
		r.ras.LineTo(x, y)
	}
	r.ras.ClosePath()
}

// fill paints every polygon in one pass.
func (r *raster) fill(polys [][]geom.Coord, c color.Color) {
	b := r.img.Bounds()
	r.ras.Reset(b.Dx(), b.Dy())
	for _, poly := range polys {
		if len(poly) >= 3 {
			r.path(poly)
		}
	}
	r.ras.Draw(r.img, b, image.NewUniform(c), image.Point{})
}

// strokeSegment adds a segment as a quad width pixels wide.
func (r *raster) strokeSegment(a, b geom.Coord, width float64) {
	d := b.Minus(a)
	if d.Magnitude() == 0 {
		return
	}
	n := geometry.Perp(d.Unit()).Times(width / (2 * r.scale))
	r.path([]geom.Coord{a.Plus(n), b.Plus(n), b.Minus(n), a.Minus(n)})
}

// WritePNG rasterizes blocks, leaf lots and streets of c into a size×size
// PNG.
func WritePNG(w io.Writer, c *city.City, size int) error {
	if size <= 0 {
		return fmt.Errorf("render: image size must be positive, got %d", size)
	}
	r := newRaster(cityBounds(c), size)

	faces := make([][]geom.Coord, len(c.Blocks))
	for i, b := range c.Blocks {
		faces[i] = b.Face.Points
	}
	r.fill(faces, BLOCK_COLOR)
	r.fill(c.Lots(), LOT_COLOR)

	// Every quad winds the same way, so overlaps at shared nodes saturate
	// instead of cancelling.
	b := r.img.Bounds()
	r.ras.Reset(b.Dx(), b.Dy())
	for i := range c.Graph.Edges {
		p, q := c.Graph.Segment(i)
		r.strokeSegment(p, q, STREET_PIXELS)
	}
	r.ras.Draw(r.img, b, image.NewUniform(STREET_COLOR), image.Point{})
	return png.Encode(w, r.img)
}
