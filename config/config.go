// Package config loads a city description from a TOML file.
//
//	boundary = [[-10.0, -10.0], [10.0, -10.0], [10.0, 10.0], [-10.0, 10.0]]
//
//	[[seeds]]
//	pos = [0.0, 0.0]
//	directions = 4
//
//	[city]
//	seed = 7
//	street_width = 0.4
//
//	[city.growth]
//	probability = 0.5
//	split_direction = "both"
//
// Keys left out keep their defaults. Unknown keys are an error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jbeda/geom"
	"github.com/pelletier/go-toml/v2"

	"citygen/city"
	"citygen/growth"
)

var ErrInvalid = errors.New("config: invalid")

// DEFAULT_HALF_SIZE is half the side of the square used when no boundary
// is given.
const DEFAULT_HALF_SIZE = 10.0

type Seed struct {
	Pos [2]float64 `toml:"pos"`
	// Directions spreads that many lines evenly, turned by Rotation
	// radians. Angles, when set, lists the directions explicitly instead.
	Directions int       `toml:"directions"`
	Rotation   float64   `toml:"rotation"`
	Angles     []float64 `toml:"angles,omitempty"`
}

type File struct {
	Boundary [][2]float64 `toml:"boundary"`

	// Center is the middle of the growth radius, if city.growth.radius is
	// set.
	Center [2]float64   `toml:"center"`
	Seeds  []Seed       `toml:"seeds"`
	City   city.Options `toml:"city"`
}

// Default is a 20×20 square with one four-way seed in the middle.
func Default() File {
	return File{
		Boundary: defaultBoundary(),
		Seeds:    []Seed{{Directions: 4}},
		City:     city.DefaultOptions(),
	}
}

func defaultBoundary() [][2]float64 {
	h := DEFAULT_HALF_SIZE
	return [][2]float64{{-h, -h}, {h, -h}, {h, h}, {-h, h}}
}

// Load reads and validates the file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes r over the defaults and validates the result.
func Parse(r io.Reader) (File, error) {
	f := File{City: city.DefaultOptions()}
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return File{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return File{}, fmt.Errorf("%w: line %d column %d: %s", ErrInvalid, row, col, de.Error())
		}
		return File{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(f.Boundary) == 0 && f.City.Growth.Radius == 0 {
		f.Boundary = defaultBoundary()
	}
	if len(f.Seeds) == 0 {
		f.Seeds = []Seed{{Directions: 4}}
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate checks what the file alone can tell. Seed placement is checked
// when the graph is built.
func (f File) Validate() error {
	if n := len(f.Boundary); n > 0 && n < 3 {
		return fmt.Errorf("%w: boundary has %d points, need at least 3", ErrInvalid, n)
	}
	for i, s := range f.Seeds {
		if len(s.Angles) == 0 && s.Directions < 1 {
			return fmt.Errorf("%w: seed %d needs directions or angles", ErrInvalid, i)
		}
	}
	if err := f.City.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (f File) Polygon() []geom.Coord {
	if len(f.Boundary) == 0 {
		return nil
	}
	out := make([]geom.Coord, len(f.Boundary))
	for i, p := range f.Boundary {
		out[i] = geom.Coord{X: p[0], Y: p[1]}
	}
	return out
}

func (f File) GrowthSeeds() []growth.Seed {
	out := make([]growth.Seed, len(f.Seeds))
	for i, s := range f.Seeds {
		pos := geom.Coord{X: s.Pos[0], Y: s.Pos[1]}
		if len(s.Angles) > 0 {
			out[i] = growth.Seed{Pos: pos, Angles: append([]float64(nil), s.Angles...)}
			continue
		}
		out[i] = growth.EvenSeed(pos, s.Directions)
		for k := range out[i].Angles {
			out[i].Angles[k] = math.Mod(out[i].Angles[k]+s.Rotation, 2*math.Pi)
		}
	}
	return out
}

// Options returns the city options with the growth center filled in.
func (f File) Options() city.Options {
	opts := f.City
	opts.Growth.Center = geom.Coord{X: f.Center[0], Y: f.Center[1]}
	return opts
}

// Encode writes f as TOML.
func (f File) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(f)
}
