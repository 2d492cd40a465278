package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citygen/city"
	"citygen/growth"
)

const sample = `
boundary = [[0.0, 0.0], [30.0, 0.0], [30.0, 20.0], [0.0, 20.0]]

[[seeds]]
pos = [10.0, 10.0]
directions = 3
rotation = 0.5

[[seeds]]
pos = [20.0, 5.0]
angles = [0.0, 3.14159]

[city]
seed = 42
street_width = 0.3
depth = 1

[city.growth]
probability = 0.6
split_direction = "ccw"
max_steps = 500
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []geom.Coord{{0, 0}, {30, 0}, {30, 20}, {0, 20}}, f.Polygon())

	seeds := f.GrowthSeeds()
	require.Len(t, seeds, 2)
	assert.Equal(t, geom.Coord{X: 10, Y: 10}, seeds[0].Pos)
	require.Len(t, seeds[0].Angles, 3)
	assert.InDelta(t, 0.5, seeds[0].Angles[0], 1e-12)
	assert.InDelta(t, 0.5+2*math.Pi/3, seeds[0].Angles[1], 1e-12)
	assert.Equal(t, []float64{0, 3.14159}, seeds[1].Angles)

	opts := f.Options()
	assert.Equal(t, uint64(42), opts.Seed)
	assert.Equal(t, 0.3, opts.StreetWidth)
	assert.Equal(t, 1, opts.Depth)
	assert.Equal(t, 0.6, opts.Growth.Probability)
	assert.Equal(t, growth.SplitCounterClockwise, opts.Growth.SplitDirection)
	assert.Equal(t, 500, opts.Growth.MaxSteps)

	// Untouched keys keep their defaults.
	def := city.DefaultOptions()
	assert.Equal(t, def.MiterLimit, opts.MiterLimit)
	assert.Equal(t, def.Growth.StepLength, opts.Growth.StepLength)
	assert.Equal(t, def.SubScale, opts.SubScale)
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
	assert.Len(t, f.Polygon(), 4)
	require.Len(t, f.GrowthSeeds(), 1)
	assert.Len(t, f.GrowthSeeds()[0].Angles, 4)
}

func TestParseRadiusOnly(t *testing.T) {
	f, err := Parse(strings.NewReader("center = [1.0, 2.0]\n[city.growth]\nradius = 8.0\n"))
	require.NoError(t, err)
	assert.Nil(t, f.Polygon())
	assert.Equal(t, geom.Coord{X: 1, Y: 2}, f.Options().Growth.Center)
	assert.Equal(t, 8.0, f.Options().Growth.Radius)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "streets = 3\n"},
		{"unknown nested key", "[city.growth]\nspeed = 3\n"},
		{"bad split direction", "[city.growth]\nsplit_direction = \"sideways\"\n"},
		{"wrong type", "[city]\ndepth = \"deep\"\n"},
		{"short boundary", "boundary = [[0.0, 0.0], [1.0, 1.0]]\n"},
		{"seed without directions", "[[seeds]]\npos = [0.0, 0.0]\n"},
		{"invalid growth", "[city.growth]\nprobability = 2.0\n"},
		{"invalid city", "[city]\nstreet_width = -1.0\n"},
		{"syntax", "boundary = [[0.0, 0.0]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse(strings.NewReader("[city.growth]\nprobability = 2.0\n"))
	assert.ErrorIs(t, err, growth.ErrConfig)
	_, err = Parse(strings.NewReader("[city]\nstreet_width = -1.0\n"))
	assert.ErrorIs(t, err, city.ErrOptions)
}

func TestEncodeParses(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Encode(&buf))
	assert.Contains(t, buf.String(), "counterclockwise")

	back, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Seeds, 2)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("nope = 1\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "bad.toml")
}
