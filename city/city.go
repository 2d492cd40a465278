// Package city runs the whole pipeline: grow a street graph, extract its
// blocks, inset them into lots and optionally subdivide every lot with a
// smaller street graph of its own.
package city

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/jbeda/geom"
	"golang.org/x/sync/errgroup"

	"citygen/geometry"
	"citygen/growth"
	"citygen/inset"
	"citygen/internal/logging"
	"citygen/planar"
	"citygen/regions"
)

var ErrOptions = errors.New("city: invalid options")

type Options struct {
	Seed   uint64        `toml:"seed"`
	Growth growth.Config `toml:"growth"`
	// StreetWidth is the inset applied to every block.
	StreetWidth float64 `toml:"street_width"`
	MiterLimit  float64 `toml:"miter_limit"`
	// Lots whose minimum bounding box is thinner than MinLotWidth, or
	// longer than MaxAspect times its width, are dropped. Zero disables a
	// check.
	MinLotWidth float64 `toml:"min_lot_width"`
	MaxAspect   float64 `toml:"max_aspect"`

	// Depth is the number of subdivision levels below the main graph.
	Depth int `toml:"depth"`
	// SubSeeds interior seeds with SubDirections lines each start the
	// graph of a subdivided lot.
	SubSeeds      int `toml:"sub_seeds"`
	SubDirections int `toml:"sub_directions"`
	// SubScale multiplies every length (growth config, street width, lot
	// width) at each level down.
	SubScale float64 `toml:"sub_scale"`
	// MinSubdivideArea keeps small lots whole. Scaled like lengths squared.
	MinSubdivideArea float64 `toml:"min_subdivide_area"`
	// Workers bounds the sub-graphs generated at once per level. Zero uses
	// GOMAXPROCS.
	Workers int `toml:"workers"`
}

func DefaultOptions() Options {
	return Options{
		Seed:             1,
		Growth:           growth.DefaultConfig(),
		StreetWidth:      0.4,
		MiterLimit:       inset.DefaultMiterLimit,
		MinLotWidth:      0.5,
		MaxAspect:        8,
		SubSeeds:         1,
		SubDirections:    2,
		SubScale:         0.35,
		MinSubdivideArea: 4,
	}
}

func (o Options) Validate() error {
	if err := o.Growth.Validate(); err != nil {
		return err
	}
	switch {
	case !(o.StreetWidth > 0):
		return fmt.Errorf("%w: street width must be positive", ErrOptions)
	case o.MiterLimit < 0:
		return fmt.Errorf("%w: miter limit must not be negative", ErrOptions)
	case o.MinLotWidth < 0 || o.MaxAspect < 0:
		return fmt.Errorf("%w: lot filters must not be negative", ErrOptions)
	case o.Depth < 0:
		return fmt.Errorf("%w: depth must not be negative", ErrOptions)
	case o.Depth > 0 && (o.SubSeeds < 1 || o.SubDirections < 1):
		return fmt.Errorf("%w: subdivision needs at least one seed and one direction", ErrOptions)
	case o.Depth > 0 && !(o.SubScale > 0 && o.SubScale <= 1):
		return fmt.Errorf("%w: sub scale %v outside (0,1]", ErrOptions, o.SubScale)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrOptions)
	}
	return nil
}

// Block is one extracted face, its lot (nil when the face could not be
// built on) and the blocks of its subdivision.
type Block struct {
	Face     regions.Face
	Lot      []geom.Coord
	Box      geometry.BoundingBox
	Children []Block
}

func (b Block) Buildable() bool { return b.Lot != nil }

type City struct {
	Graph  planar.Graph
	Blocks []Block
	Steps  int
}

// Lots returns the lots of the deepest blocks: a subdivided lot is
// replaced by its children's lots.
func (c *City) Lots() [][]geom.Coord {
	var out [][]geom.Coord
	var walk func([]Block)
	walk = func(bs []Block) {
		for _, b := range bs {
			switch {
			case len(b.Children) > 0:
				walk(b.Children)
			case b.Lot != nil:
				out = append(out, b.Lot)
			}
		}
	}
	walk(c.Blocks)
	return out
}

// Generate grows the main graph inside boundary from seeds and builds every
// block. Results depend only on opts and the inputs, not on scheduling.
func Generate(opts Options, boundary []geom.Coord, seeds []growth.Seed) (*City, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MiterLimit == 0 {
		opts.MiterLimit = inset.DefaultMiterLimit
	}
	b := builder{opts: opts}
	return b.build(boundary, seeds, geometry.NewRand(opts.Seed), 1, opts.Depth)
}

type builder struct {
	opts Options
}

func (b builder) build(boundary []geom.Coord, seeds []growth.Seed, rng *rand.Rand, scale float64, depth int) (*City, error) {
	cfg := b.opts.Growth.Scaled(scale)
	if scale != 1 {
		cfg.Radius = 0
	}
	g, err := growth.New(cfg, boundary, seeds, rng)
	if err != nil {
		return nil, err
	}
	c := &City{Graph: g.Run(), Steps: g.Steps()}
	faces := regions.Extract(c.Graph)

	c.Blocks = make([]Block, len(faces))
	childSeeds := make([]uint64, len(faces))
	dropped := 0
	for i, f := range faces {
		c.Blocks[i].Face = f
		childSeeds[i] = rng.Uint64()

		lot := inset.ShrinkWith(f.Points, b.opts.StreetWidth*scale, inset.Options{MiterLimit: b.opts.MiterLimit})
		if lot == nil {
			dropped++
			continue
		}
		box := geometry.MinimumBoundingBox(lot)
		if b.opts.MinLotWidth > 0 && math.Min(box.Width, box.Height) < b.opts.MinLotWidth*scale {
			dropped++
			continue
		}
		if b.opts.MaxAspect > 0 && box.Aspect() > b.opts.MaxAspect {
			dropped++
			continue
		}
		c.Blocks[i].Lot = lot
		c.Blocks[i].Box = box
	}
	logging.Logger().Debug("blocks built",
		"scale", scale, "faces", len(faces), "lots", len(faces)-dropped, "dropped", dropped)

	if depth == 0 {
		return c, nil
	}

	sub := scale * b.opts.SubScale
	minArea := b.opts.MinSubdivideArea * scale * scale
	var eg errgroup.Group
	eg.SetLimit(b.opts.Workers)
	for i := range c.Blocks {
		blk := &c.Blocks[i]
		if blk.Lot == nil || geometry.Area(blk.Lot) < minArea {
			continue
		}
		childRng := geometry.NewRand(childSeeds[i])
		eg.Go(func() error {
			children, err := b.subdivide(blk.Lot, childRng, sub, depth-1)
			if err != nil {
				return fmt.Errorf("subdividing block %d: %w", i, err)
			}
			blk.Children = children
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// subdivide grows a fresh graph bounded by lot from seeds sampled inside it.
func (b builder) subdivide(lot []geom.Coord, rng *rand.Rand, scale float64, depth int) ([]Block, error) {
	var seeds []growth.Seed
	for _, p := range geometry.SamplePoints(lot, b.opts.SubSeeds, rng) {
		if !geometry.ContainsPoint(lot, p) {
			continue
		}
		s := growth.EvenSeed(p, b.opts.SubDirections)
		turn := rng.Float64() * 2 * math.Pi
		for k := range s.Angles {
			s.Angles[k] += turn
		}
		seeds = append(seeds, s)
	}
	if len(seeds) == 0 {
		return nil, nil
	}
	c, err := b.build(lot, seeds, rng, scale, depth)
	if err != nil {
		return nil, err
	}
	return c.Blocks, nil
}
