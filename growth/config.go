package growth

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jbeda/geom"
)

// ErrConfig is wrapped by every construction-time validation failure.
var ErrConfig = errors.New("growth: invalid configuration")

// SplitDirection decides on which side of a line new branches spawn.
type SplitDirection int

const (
	SplitRandom SplitDirection = iota
	SplitClockwise
	SplitCounterClockwise
	// SplitBoth spawns two branches, at +angle and +angle+π.
	SplitBoth
)

var splitDirectionNames = [...]string{"random", "clockwise", "counterclockwise", "both"}

func (d SplitDirection) String() string {
	if d < 0 || int(d) >= len(splitDirectionNames) {
		return fmt.Sprintf("SplitDirection(%d)", int(d))
	}
	return splitDirectionNames[d]
}

func (d SplitDirection) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(splitDirectionNames) {
		return nil, fmt.Errorf("%w: unknown split direction %d", ErrConfig, int(d))
	}
	return []byte(d.String()), nil
}

func (d *SplitDirection) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	switch s {
	case "cw":
		s = "clockwise"
	case "ccw":
		s = "counterclockwise"
	}
	for i, name := range splitDirectionNames {
		if name == s {
			*d = SplitDirection(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown split direction %q", ErrConfig, string(text))
}

// Config tunes one growth episode. Lengths are in world units, angles in
// radians.
type Config struct {
	// StepLength is how far every active tip advances per tick.
	StepLength float64 `toml:"step_length"`
	// MinDistance is the growth distance required between two splits.
	MinDistance float64 `toml:"min_distance"`
	// MinTwistDistance is the growth distance required between two twists.
	// Zero or less disables twisting.
	MinTwistDistance float64 `toml:"min_twist_distance"`
	MinAngle         float64 `toml:"min_angle"`
	MaxAngle         float64 `toml:"max_angle"`
	// Probability is the chance a split trial succeeds once MinDistance
	// has been covered.
	Probability    float64        `toml:"probability"`
	SplitDirection SplitDirection `toml:"split_direction"`
	// NoiseScale is the spatial frequency of the twist noise field. Zero
	// disables twisting.
	NoiseScale float64 `toml:"noise_scale"`
	// Twist is the largest rotation applied by a single twist.
	Twist float64 `toml:"twist"`
	// Radius closes lines whose tip leaves the circle around Center. Zero
	// means the boundary polygon alone stops growth.
	Radius  float64    `toml:"radius"`
	Center  geom.Coord `toml:"-"`
	// GridCellSize enables the uniform spatial grid for intersection
	// candidates. Zero scans every segment.
	GridCellSize float64 `toml:"grid_cell_size"`
	// MaxSteps force-closes all lines after that many ticks. Zero means
	// no limit.
	MaxSteps int `toml:"max_steps"`
}

func DefaultConfig() Config {
	return Config{
		StepLength:       0.25,
		MinDistance:      1,
		MinTwistDistance: 0.75,
		MinAngle:         math.Pi / 3,
		MaxAngle:         math.Pi / 2,
		Probability:      0.3,
		SplitDirection:   SplitRandom,
		NoiseScale:       0.05,
		Twist:            0.35,
		GridCellSize:     2,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case !(c.StepLength > 0):
		return fmt.Errorf("%w: step length must be positive, got %v", ErrConfig, c.StepLength)
	case c.MinDistance < 0:
		return fmt.Errorf("%w: min distance must not be negative", ErrConfig)
	case c.MinAngle > c.MaxAngle:
		return fmt.Errorf("%w: min angle %v exceeds max angle %v", ErrConfig, c.MinAngle, c.MaxAngle)
	case c.Probability < 0 || c.Probability > 1:
		return fmt.Errorf("%w: probability %v outside [0,1]", ErrConfig, c.Probability)
	case c.SplitDirection < SplitRandom || c.SplitDirection > SplitBoth:
		return fmt.Errorf("%w: unknown split direction %d", ErrConfig, int(c.SplitDirection))
	case c.NoiseScale < 0:
		return fmt.Errorf("%w: noise scale must not be negative", ErrConfig)
	case c.Radius < 0:
		return fmt.Errorf("%w: radius must not be negative", ErrConfig)
	case c.GridCellSize < 0:
		return fmt.Errorf("%w: grid cell size must not be negative", ErrConfig)
	case c.MaxSteps < 0:
		return fmt.Errorf("%w: max steps must not be negative", ErrConfig)
	}
	return nil
}

// Scaled returns a copy with every length multiplied by f and the noise
// frequency divided by it, so the same street pattern appears at a
// different scale.
func (c Config) Scaled(f float64) Config {
	c.StepLength *= f
	c.MinDistance *= f
	c.MinTwistDistance *= f
	c.Radius *= f
	c.GridCellSize *= f
	if f != 0 {
		c.NoiseScale /= f
	}
	return c
}

func (c Config) twists() bool {
	return c.MinTwistDistance > 0 && c.NoiseScale > 0 && c.Twist != 0
}
