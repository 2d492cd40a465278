package render

import (
	"io"

	"github.com/jbeda/geom"
	"gopkg.in/yaml.v3"

	"citygen/city"
	"citygen/geometry"
)

type Point [2]float64

type Box struct {
	Center Point   `yaml:"center,flow"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Angle  float64 `yaml:"angle"`
}

type BlockDoc struct {
	Area     float64    `yaml:"area"`
	Face     []Point    `yaml:"face,flow"`
	Lot      []Point    `yaml:"lot,omitempty,flow"`
	LotArea  float64    `yaml:"lot_area,omitempty"`
	Box      *Box       `yaml:"box,omitempty"`
	Children []BlockDoc `yaml:"children,omitempty"`
}

// CityDoc is the YAML form of a city.
type CityDoc struct {
	Steps  int        `yaml:"steps"`
	Nodes  []Point    `yaml:"nodes,flow"`
	Edges  [][2]int   `yaml:"edges,flow"`
	Blocks []BlockDoc `yaml:"blocks"`
}

func points(poly []geom.Coord) []Point {
	if poly == nil {
		return nil
	}
	out := make([]Point, len(poly))
	for i, p := range poly {
		out[i] = Point{p.X, p.Y}
	}
	return out
}

func blockDocs(blocks []city.Block) []BlockDoc {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]BlockDoc, len(blocks))
	for i, b := range blocks {
		d := BlockDoc{
			Area:     b.Face.Area,
			Face:     points(b.Face.Points),
			Children: blockDocs(b.Children),
		}
		if b.Buildable() {
			d.Lot = points(b.Lot)
			d.LotArea = geometry.Area(b.Lot)
			d.Box = &Box{
				Center: Point{b.Box.Center.X, b.Box.Center.Y},
				Width:  b.Box.Width,
				Height: b.Box.Height,
				Angle:  b.Box.Angle,
			}
		}
		out[i] = d
	}
	return out
}

func NewCityDoc(c *city.City) CityDoc {
	doc := CityDoc{
		Steps:  c.Steps,
		Nodes:  points(c.Graph.Nodes),
		Edges:  make([][2]int, len(c.Graph.Edges)),
		Blocks: blockDocs(c.Blocks),
	}
	for i, e := range c.Graph.Edges {
		doc.Edges[i] = [2]int{e.From, e.To}
	}
	return doc
}

// WriteYAML exports the street graph and every block of c.
func WriteYAML(w io.Writer, c *city.City) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewCityDoc(c)); err != nil {
		return err
	}
	return enc.Close()
}
