package surface

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/seals/internal/boundary"
	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/snapshot"
	"github.com/san-kum/seals/internal/vecmath"
)

// Model is a simulation of either dimension.
type Model interface {
	AddParticle()
	Update()
	Step() int
	Len() int
	Dim() int
	Seed() int64
	Strategy() string
	TypeHint() string
	Volume() float64
	SetProgress(p float64)
	Frame(meta FrameMeta) *snapshot.Frame
	Stats() Stats
	Validate() error
}

var (
	_ Model = (*Simulation[mgl64.Vec2])(nil)
	_ Model = (*Simulation[mgl64.Vec3])(nil)
)

var strategies = map[int]map[string]bool{
	2: {config.StrategyEdge: true, config.StrategyTree: true},
	3: {
		config.StrategyEdge:          true,
		config.StrategyDelaunay:      true,
		config.StrategyDelaunayAniso: true,
		config.StrategyTree:          true,
	},
}

// Strategies lists the growth strategies available in dim dimensions.
func Strategies(dim int) []string {
	names := make([]string, 0, len(strategies[dim]))
	for name := range strategies[dim] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build validates cfg and constructs the simulation it describes.
func Build(cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !strategies[cfg.Dim][cfg.Strategy] {
		return nil, fmt.Errorf("%w: %q in %dD", ErrUnknownStrategy, cfg.Strategy, cfg.Dim)
	}
	if cfg.Dim == 3 {
		return build3(cfg)
	}
	return build2(cfg)
}

func build2(cfg *config.Config) (Model, error) {
	params, err := paramsFromConfig[mgl64.Vec2](cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Boundary.Kind {
	case config.BoundarySphere:
		params.Boundary = boundary.NewSphere[mgl64.Vec2](boundaryOptions(cfg))
	case config.BoundaryCylinder:
		return nil, fmt.Errorf("%w: cylinder boundary in 2D", ErrDimension)
	}

	var g Growth[mgl64.Vec2]
	switch cfg.Strategy {
	case config.StrategyEdge:
		g = &RingGrowth[mgl64.Vec2]{
			InitialPoints: cfg.Ring.InitialPoints,
			InitialNoise:  cfg.Ring.InitialNoise,
			AttachFirst:   cfg.Ring.AttachFirst,
		}
	case config.StrategyTree:
		g = treeFromConfig[mgl64.Vec2](cfg)
	}

	sim, err := New(params, g, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

func build3(cfg *config.Config) (Model, error) {
	params, err := paramsFromConfig[mgl64.Vec3](cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Boundary.Kind {
	case config.BoundarySphere:
		params.Boundary = boundary.NewSphere[mgl64.Vec3](boundaryOptions(cfg))
	case config.BoundaryCylinder:
		params.Boundary = boundary.NewCylinder(boundaryOptions(cfg))
	}

	var g Growth[mgl64.Vec3]
	switch cfg.Strategy {
	case config.StrategyEdge:
		g = &EdgeGrowth{AttachFirst: cfg.Ring.AttachFirst}
	case config.StrategyDelaunay:
		g = &DelaunayGrowth{AttachFirst: cfg.Ring.AttachFirst}
	case config.StrategyDelaunayAniso:
		g = &DelaunayGrowth{Aniso: true, AttachFirst: cfg.Ring.AttachFirst}
	case config.StrategyTree:
		g = treeFromConfig[mgl64.Vec3](cfg)
	}

	sim, err := New(params, g, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

func paramsFromConfig[V vecmath.Vec[V]](cfg *config.Config) (Params[V], error) {
	p := cfg.Params
	mode, err := ParseRepulsionMode(p.RepulsionMode)
	if err != nil {
		return Params[V]{}, err
	}
	aniso := vecmath.Fill[V](1)
	if len(p.Anisotropy) > 0 {
		aniso = vecmath.FromSlice[V](p.Anisotropy)
	}
	return Params[V]{
		Attraction:        p.Attraction,
		Repulsion:         p.Repulsion,
		Damping:           p.Damping,
		Noise:             p.Noise,
		Anisotropy:        aniso,
		Rigidity:          p.Rigidity,
		Pressure:          p.Pressure,
		TargetVolume:      p.TargetVolume,
		FinalTargetVolume: p.FinalTargetVolume,
		Tension:           p.Tension,
		Mode:              mode,
		Overdamped:        p.Overdamped,
		DT:                p.DT,
		UseGrid:           p.UseGrid,
	}, nil
}

func boundaryOptions(cfg *config.Config) boundary.Options {
	b := cfg.Boundary
	return boundary.Options{
		Radius:        b.Radius,
		MaxRadius:     b.MaxRadius,
		Extent:        b.Extent,
		GrowthRate:    b.GrowthRate,
		TargetDensity: b.TargetDensity,
		Offset:        b.Offset,
	}
}

func treeFromConfig[V vecmath.Vec[V]](cfg *config.Config) *TreeGrowth[V] {
	t := cfg.Tree
	return &TreeGrowth[V]{
		AttachFirst:        t.AttachFirst,
		AgeProbability:     t.AgeProbability,
		GrowthDistance:     t.GrowthDistance,
		MinBranchLength:    t.MinBranchLength,
		MaxBranchLength:    t.MaxBranchLength,
		StopBranchingAfter: t.StopBranchingAfter,
		MaxLeafDistance:    t.MaxLeafDistance,
		DensitySamples:     t.DensitySamples,
	}
}
