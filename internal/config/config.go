package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted in Config.Strategy.
const (
	StrategyEdge          = "edge"
	StrategyDelaunay      = "delaunay"
	StrategyDelaunayAniso = "delaunay-aniso"
	StrategyTree          = "tree"
)

// Repulsion mode names accepted in ParamsConfig.RepulsionMode.
const (
	RepulsionFixed        = "fixed"
	RepulsionAdaptive     = "adaptive"
	RepulsionMaxNeighbour = "max-neighbour"
)

// Boundary kinds accepted in BoundaryConfig.Kind.
const (
	BoundaryNone     = "none"
	BoundarySphere   = "sphere"
	BoundaryCylinder = "cylinder"
)

const (
	DefaultIterations     = 10000
	DefaultGrowthInterval = 10
	DefaultMaxPoints      = 2000
	DefaultSnapshotEvery  = 1000
)

var (
	ErrInvalid = errors.New("config: invalid value")
)

type Config struct {
	Dim            int            `yaml:"dim"`
	Strategy       string         `yaml:"strategy"`
	Seed           int64          `yaml:"seed"`
	Iterations     int            `yaml:"iterations"`
	GrowthInterval int            `yaml:"growth_interval"`
	MaxPoints      int            `yaml:"max_points"`
	SnapshotEvery  int            `yaml:"snapshot_every"`
	Params         ParamsConfig   `yaml:"params"`
	Ring           RingConfig     `yaml:"ring"`
	Tree           TreeConfig     `yaml:"tree"`
	Boundary       BoundaryConfig `yaml:"boundary"`
}

type ParamsConfig struct {
	Attraction        float64   `yaml:"attraction"`
	Repulsion         float64   `yaml:"repulsion"`
	Damping           float64   `yaml:"damping"`
	Noise             float64   `yaml:"noise"`
	Anisotropy        []float64 `yaml:"anisotropy,flow"`
	Rigidity          float64   `yaml:"rigidity"`
	Pressure          float64   `yaml:"pressure"`
	TargetVolume      float64   `yaml:"target_volume"`
	FinalTargetVolume float64   `yaml:"final_target_volume"`
	Tension           float64   `yaml:"tension"`
	RepulsionMode     string    `yaml:"repulsion_mode"`
	Overdamped        bool      `yaml:"overdamped"`
	DT                float64   `yaml:"dt"`
	UseGrid           bool      `yaml:"use_grid"`
}

// RingConfig applies to the 2D edge strategy.
type RingConfig struct {
	InitialPoints int     `yaml:"initial_points"`
	InitialNoise  float64 `yaml:"initial_noise"`
	AttachFirst   bool    `yaml:"attach_first"`
}

type TreeConfig struct {
	AttachFirst    bool    `yaml:"attach_first"`
	AgeProbability float64 `yaml:"age_probability"`
	// GrowthDistance is the distance of new growth from its parent, as a
	// fraction of the attraction magnitude.
	GrowthDistance  float64 `yaml:"growth_distance"`
	MinBranchLength int     `yaml:"min_branch_length"`
	MaxBranchLength int     `yaml:"max_branch_length"`
	// StopBranchingAfter is the run progress in [0, 1] after which only
	// nodes near a leaf may grow. 0 disables the rule.
	StopBranchingAfter float64 `yaml:"stop_branching_after"`
	MaxLeafDistance    int     `yaml:"max_leaf_distance"`
	DensitySamples     int     `yaml:"density_samples"`
}

type BoundaryConfig struct {
	Kind          string  `yaml:"kind"`
	Radius        float64 `yaml:"radius"`
	MaxRadius     float64 `yaml:"max_radius"`
	Extent        float64 `yaml:"extent"`
	GrowthRate    float64 `yaml:"growth_rate"`
	TargetDensity float64 `yaml:"target_density"`
	Offset        bool    `yaml:"offset"`
}

// DefaultConfig returns the defaults for a 2 or 3 dimensional run. Any other
// dim falls back to 2.
func DefaultConfig(dim int) *Config {
	if dim == 3 {
		return &Config{
			Dim:            3,
			Strategy:       StrategyDelaunay,
			Iterations:     DefaultIterations,
			GrowthInterval: DefaultGrowthInterval,
			MaxPoints:      DefaultMaxPoints,
			SnapshotEvery:  DefaultSnapshotEvery,
			Params: ParamsConfig{
				Attraction:    0.025,
				Repulsion:     2.1,
				Damping:       0.15,
				Noise:         0.25,
				Anisotropy:    []float64{1, 1, 1},
				Tension:       1,
				RepulsionMode: RepulsionFixed,
				DT:            0.15,
				UseGrid:       true,
			},
			Ring: defaultRing(),
			Tree: defaultTree(),
			Boundary: BoundaryConfig{
				Kind:      BoundaryCylinder,
				Radius:    0.15,
				MaxRadius: 0.15,
				Extent:    0.05,
			},
		}
	}
	return &Config{
		Dim:            2,
		Strategy:       StrategyEdge,
		Iterations:     DefaultIterations,
		GrowthInterval: DefaultGrowthInterval,
		MaxPoints:      DefaultMaxPoints,
		SnapshotEvery:  DefaultSnapshotEvery,
		Params: ParamsConfig{
			Attraction:    0.01,
			Repulsion:     2.1,
			Damping:       0.5,
			Noise:         0.25,
			Anisotropy:    []float64{1, 1},
			Tension:       1,
			RepulsionMode: RepulsionFixed,
			DT:            0.5,
			UseGrid:       true,
		},
		Ring: defaultRing(),
		Tree: defaultTree(),
		Boundary: BoundaryConfig{
			Kind:      BoundarySphere,
			Radius:    0.5,
			MaxRadius: 0.5,
			Extent:    0.05,
		},
	}
}

func defaultRing() RingConfig {
	return RingConfig{InitialPoints: 3}
}

func defaultTree() TreeConfig {
	return TreeConfig{
		AgeProbability:  0.9,
		GrowthDistance:  0.1,
		MinBranchLength: 3,
		MaxBranchLength: 10,
		DensitySamples:  1,
	}
}

// Load reads a yaml file on top of the defaults for the dimension it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var head struct {
		Dim int `yaml:"dim"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg := DefaultConfig(head.Dim)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Params.Anisotropy = append([]float64(nil), c.Params.Anisotropy...)
	return &out
}

// Progress returns how far step is through the run, in [0, 1].
func (c *Config) Progress(step int) float64 {
	if c.Iterations <= 0 {
		return 1
	}
	p := float64(step) / float64(c.Iterations)
	if p > 1 {
		return 1
	}
	return p
}

func (c *Config) Validate() error {
	invalid := func(field string, v any) error {
		return fmt.Errorf("%w: %s = %v", ErrInvalid, field, v)
	}
	switch {
	case c.Dim != 2 && c.Dim != 3:
		return invalid("dim", c.Dim)
	case c.Iterations < 0:
		return invalid("iterations", c.Iterations)
	case c.GrowthInterval < 0:
		return invalid("growth_interval", c.GrowthInterval)
	case c.MaxPoints < 0:
		return invalid("max_points", c.MaxPoints)
	case c.SnapshotEvery < 0:
		return invalid("snapshot_every", c.SnapshotEvery)
	}

	switch c.Strategy {
	case StrategyEdge, StrategyTree:
	case StrategyDelaunay, StrategyDelaunayAniso:
		if c.Dim != 3 {
			return fmt.Errorf("%w: strategy %q needs dim 3", ErrInvalid, c.Strategy)
		}
	default:
		return invalid("strategy", c.Strategy)
	}

	p := c.Params
	switch {
	case p.Attraction <= 0:
		return invalid("params.attraction", p.Attraction)
	case p.Repulsion <= 0:
		return invalid("params.repulsion", p.Repulsion)
	case p.Damping < 0 || p.Damping > 1:
		return invalid("params.damping", p.Damping)
	case p.Noise < 0 || p.Noise >= 1:
		return invalid("params.noise", p.Noise)
	case p.Rigidity < 0 || p.Rigidity > 1:
		return invalid("params.rigidity", p.Rigidity)
	case p.Tension <= 0:
		return invalid("params.tension", p.Tension)
	case p.DT <= 0:
		return invalid("params.dt", p.DT)
	case p.TargetVolume < 0:
		return invalid("params.target_volume", p.TargetVolume)
	case p.FinalTargetVolume < 0:
		return invalid("params.final_target_volume", p.FinalTargetVolume)
	case len(p.Anisotropy) != 0 && len(p.Anisotropy) != c.Dim:
		return fmt.Errorf("%w: params.anisotropy has %d components, want %d", ErrInvalid, len(p.Anisotropy), c.Dim)
	}
	switch p.RepulsionMode {
	case "", RepulsionFixed, RepulsionAdaptive, RepulsionMaxNeighbour:
	default:
		return invalid("params.repulsion_mode", p.RepulsionMode)
	}

	if c.Strategy == StrategyEdge && c.Dim == 2 && c.Ring.InitialPoints < 3 {
		return invalid("ring.initial_points", c.Ring.InitialPoints)
	}

	if c.Strategy == StrategyTree {
		t := c.Tree
		switch {
		case t.AgeProbability < 0 || t.AgeProbability > 1:
			return invalid("tree.age_probability", t.AgeProbability)
		case t.GrowthDistance <= 0:
			return invalid("tree.growth_distance", t.GrowthDistance)
		case t.MinBranchLength < 0 || (t.MaxBranchLength > 0 && t.MaxBranchLength < t.MinBranchLength):
			return fmt.Errorf("%w: tree branch lengths [%d, %d]", ErrInvalid, t.MinBranchLength, t.MaxBranchLength)
		case t.StopBranchingAfter < 0 || t.StopBranchingAfter > 1:
			return invalid("tree.stop_branching_after", t.StopBranchingAfter)
		case t.MaxLeafDistance < 0:
			return invalid("tree.max_leaf_distance", t.MaxLeafDistance)
		}
	}

	b := c.Boundary
	switch b.Kind {
	case "", BoundaryNone:
	case BoundarySphere, BoundaryCylinder:
		if b.Kind == BoundaryCylinder && c.Dim != 3 {
			return fmt.Errorf("%w: cylinder boundary needs dim 3", ErrInvalid)
		}
		switch {
		case b.Radius <= 0:
			return invalid("boundary.radius", b.Radius)
		case b.Extent < 0 || b.Extent >= 1:
			return invalid("boundary.extent", b.Extent)
		case b.TargetDensity < 0:
			return invalid("boundary.target_density", b.TargetDensity)
		}
	default:
		return invalid("boundary.kind", b.Kind)
	}
	return nil
}

// HasBoundary reports whether the config names a boundary.
func (c *Config) HasBoundary() bool {
	return c.Boundary.Kind != "" && c.Boundary.Kind != BoundaryNone
}
