package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jbeda/geom"
	"github.com/spf13/cobra"

	"citygen/city"
	"citygen/config"
	"citygen/geometry"
	"citygen/growth"
	"citygen/internal/logging"
	"citygen/planar"
	"citygen/render"
)

// DEFAULT_IMAGE_SIZE is the PNG side length in pixels.
const DEFAULT_IMAGE_SIZE = 1024

type cliOptions struct {
	configPath string
	seed       uint64
	seedSet    bool
	format     string
	out        string
	size       int
	frames     string
	frameEvery int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var o cliOptions
	cmd := &cobra.Command{
		Use:          "citygen",
		Short:        "Grow a street network and cut it into city blocks and lots",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.seedSet = cmd.Flags().Changed("seed")
			return run(o, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&o.configPath, "config", "", "TOML city description (defaults to a 20x20 square)")
	fl.Uint64Var(&o.seed, "seed", 0, "random seed, overrides the config")
	fl.StringVar(&o.format, "format", "svg", "output format: svg, png or yaml")
	fl.StringVarP(&o.out, "out", "o", "-", "output file, - for stdout")
	fl.IntVar(&o.size, "size", DEFAULT_IMAGE_SIZE, "PNG width and height in pixels")
	fl.StringVar(&o.frames, "frames", "", "write an SVG of the growing streets every --frame-every steps into this directory")
	fl.IntVar(&o.frameEvery, "frame-every", 10, "growth steps between frames")
	fl.BoolVarP(&o.verbose, "verbose", "v", false, "log debug details")
	return cmd
}

func run(o cliOptions, stdout, stderr io.Writer) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	defer logging.SetLogger(nil)

	switch o.format {
	case "svg", "png", "yaml":
	default:
		return fmt.Errorf("unknown format %q, want svg, png or yaml", o.format)
	}
	if o.frames != "" && o.frameEvery < 1 {
		return fmt.Errorf("--frame-every must be at least 1, got %d", o.frameEvery)
	}

	f := config.Default()
	if o.configPath != "" {
		var err error
		if f, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	if o.seedSet {
		f.City.Seed = o.seed
	}
	opts := f.Options()

	if o.frames != "" {
		if err := writeFrames(f, o.frames, o.frameEvery, stderr); err != nil {
			return err
		}
	}

	c, err := city.Generate(opts, f.Polygon(), f.GrowthSeeds())
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Growth steps: %d\n", c.Steps)
	fmt.Fprintf(stderr, "Street nodes: %d, segments: %d\n", len(c.Graph.Nodes), len(c.Graph.Edges))
	fmt.Fprintf(stderr, "Blocks: %d, lots: %d\n", len(c.Blocks), len(c.Lots()))

	w := stdout
	if o.out != "" && o.out != "-" {
		file, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	switch o.format {
	case "png":
		err = render.WritePNG(w, c, o.size)
	case "yaml":
		err = render.WriteYAML(w, c)
	default:
		err = render.WriteSVG(w, c, render.DefaultStyle())
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", o.format, err)
	}
	return nil
}

// writeFrames replays the growth of the main street graph, which draws the
// same random numbers as city.Generate, and saves a snapshot every few
// steps.
func writeFrames(f config.File, dir string, every int, stderr io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating frame directory: %w", err)
	}
	opts := f.Options()
	g, err := growth.New(opts.Growth, f.Polygon(), f.GrowthSeeds(), geometry.NewRand(opts.Seed))
	if err != nil {
		return err
	}
	g.OnComplete = func(res planar.Graph) {
		logging.Logger().Info("street growth finished",
			"steps", g.Steps(), "nodes", len(res.Nodes), "segments", len(res.Edges))
	}

	bounds := geometry.Bounds(f.Polygon())
	if r := opts.Growth.Radius; r > 0 {
		c := opts.Growth.Center
		bounds.ExpandToContainCoord(geom.Coord{X: c.X - r, Y: c.Y - r})
		bounds.ExpandToContainCoord(geom.Coord{X: c.X + r, Y: c.Y + r})
	}

	frame := 0
	write := func() error {
		name := filepath.Join(dir, fmt.Sprintf("frame%05d.svg", frame))
		file, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := render.WriteSnapshotSVG(file, g.Snapshot(), bounds); err != nil {
			file.Close()
			return fmt.Errorf("%s: %w", name, err)
		}
		frame++
		return file.Close()
	}

	if err := write(); err != nil {
		return err
	}
	for g.Step() {
		if g.Steps()%every == 0 {
			if err := write(); err != nil {
				return err
			}
		}
	}
	if err := write(); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Frames written: %d\n", frame)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
