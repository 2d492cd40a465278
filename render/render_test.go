package render

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"citygen/city"
	"citygen/geometry"
	"citygen/growth"
)

func square(h float64) []geom.Coord {
	return []geom.Coord{{-h, -h}, {h, -h}, {h, h}, {-h, h}}
}

// fourBlocks is a 20×20 square cut by two straight streets into four
// 10×10 blocks with 8×8 lots.
func fourBlocks(t *testing.T) *city.City {
	t.Helper()
	opts := city.DefaultOptions()
	opts.Growth.Probability = 0
	opts.Growth.NoiseScale = 0
	opts.StreetWidth = 1
	c, err := city.Generate(opts, square(10), []growth.Seed{growth.EvenSeed(geom.Coord{}, 4)})
	require.NoError(t, err)
	require.Len(t, c.Blocks, 4)
	return c
}

type failWriter struct{}

var errWrite = errors.New("disk full")

func (failWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestWriteSVG(t *testing.T) {
	c := fourBlocks(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, c, DefaultStyle()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0"?>`))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Equal(t, len(c.Graph.Edges), strings.Count(out, "<line "))
	assert.Equal(t, 8, strings.Count(out, "<path "), "four blocks and four lots")
	assert.Contains(t, out, "id='lots'")
	assert.NotContains(t, out, "<circle")

	buf.Reset()
	require.NoError(t, WriteSVG(&buf, c, Style{Nodes: true}))
	assert.Equal(t, len(c.Graph.Nodes), strings.Count(buf.String(), "<circle "))
	assert.Zero(t, strings.Count(buf.String(), "<line "))

	assert.ErrorIs(t, WriteSVG(failWriter{}, c, DefaultStyle()), errWrite)
}

func TestPolygonPath(t *testing.T) {
	var buf bytes.Buffer
	svg := NewSVG(&buf)
	svg.Polygon([]geom.Coord{{0, 0}, {1, 0}, {0, 1}}, "fill: red", "id='tri'")
	assert.Equal(t, "<path style='fill: red' id='tri' d='M0.000000,0.000000\n  L1.000000,0.000000\n  L0.000000,1.000000 Z'/>\n", buf.String())

	buf.Reset()
	svg.Polygon([]geom.Coord{{0, 0}})
	assert.Empty(t, buf.String())
}

func TestWriteSnapshotSVG(t *testing.T) {
	cfg := growth.DefaultConfig()
	cfg.Probability = 0
	cfg.NoiseScale = 0
	g, err := growth.New(cfg, square(10), []growth.Seed{growth.EvenSeed(geom.Coord{}, 4)}, geometry.NewRand(1))
	require.NoError(t, err)
	for range 5 {
		g.Step()
	}
	snap := g.Snapshot()
	require.Len(t, snap.Rays, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotSVG(&buf, snap, geom.NilRect()))
	out := buf.String()
	assert.Equal(t, len(snap.Edges)+len(snap.Rays), strings.Count(out, "<line "))
	assert.Contains(t, out, "id='rays'")

	buf.Reset()
	require.NoError(t, WriteSnapshotSVG(&buf, snap, geom.Rect{Min: geom.Coord{X: -10, Y: -10}, Max: geom.Coord{X: 10, Y: 10}}))
	assert.Contains(t, buf.String(), `viewBox="-10.400000 -10.400000 20.800000 20.800000"`)
}

func TestWritePNG(t *testing.T) {
	c := fourBlocks(t)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, c, 208))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 208, img.Bounds().Dx())
	assert.Equal(t, 208, img.Bounds().Dy())

	// The view spans -10.4..10.4, ten pixels per unit.
	r, g, b, _ := img.At(154, 154).RGBA()
	assert.Equal(t, [3]uint32{0xc9, 0xb9, 0x8f}, [3]uint32{r >> 8, g >> 8, b >> 8}, "lot fill at (5, 5)")
	r, _, _, _ = img.At(2, 2).RGBA()
	assert.Equal(t, uint32(0xff), r>>8, "background outside the boundary")
	r, _, _, _ = img.At(104, 50).RGBA()
	assert.Less(t, r>>8, uint32(0x80), "street along x=0")

	assert.Error(t, WritePNG(&buf, c, 0))
}

func TestWriteYAML(t *testing.T) {
	c := fourBlocks(t)
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, c))
	assert.Contains(t, buf.String(), "blocks:")

	var doc CityDoc
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, NewCityDoc(c), doc)
	require.Len(t, doc.Blocks, 4)
	for _, b := range doc.Blocks {
		assert.InDelta(t, 100, b.Area, 1e-9)
		assert.InDelta(t, 64, b.LotArea, 1e-9)
		require.NotNil(t, b.Box)
		assert.InDelta(t, 8, b.Box.Width, 1e-9)
	}
}
