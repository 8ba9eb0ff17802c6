package surface

import (
	"fmt"
	"math"

	"github.com/san-kum/seals/internal/boundary"
	"github.com/san-kum/seals/internal/vecmath"
)

// RepulsionMode selects how the repulsion threshold of a point is scaled.
type RepulsionMode int

const (
	// RepulsionFixed uses attraction * repulsion for every point.
	RepulsionFixed RepulsionMode = iota
	// RepulsionAdaptive scales the threshold by the mean distance to the
	// point's neighbours, relative to the rest length.
	RepulsionAdaptive
	// RepulsionMaxNeighbour scales the threshold by the largest distance to
	// a neighbour, relative to the rest length.
	RepulsionMaxNeighbour
)

// maxModeScale bounds the adaptive scales so the grid reach stays finite.
const maxModeScale = 2.0

func (m RepulsionMode) String() string {
	switch m {
	case RepulsionFixed:
		return "fixed"
	case RepulsionAdaptive:
		return "adaptive"
	case RepulsionMaxNeighbour:
		return "max-neighbour"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseRepulsionMode(s string) (RepulsionMode, error) {
	switch s {
	case "", "fixed":
		return RepulsionFixed, nil
	case "adaptive":
		return RepulsionAdaptive, nil
	case "max-neighbour":
		return RepulsionMaxNeighbour, nil
	}
	return 0, fmt.Errorf("%w: repulsion mode %q", ErrParameterBounds, s)
}

// Params are fixed for the lifetime of a simulation.
type Params[V vecmath.Vec[V]] struct {
	// Attraction is the rest length between neighbours.
	Attraction float64
	// Repulsion is the repulsion threshold as a multiple of Attraction.
	Repulsion float64
	Damping   float64
	// Noise scales each point's fixed noise value into its effective distance.
	Noise      float64
	Anisotropy V
	// Rigidity is the fraction of flexibility lost per step.
	Rigidity float64
	Pressure float64
	// TargetVolume is measured from the first step when 0.
	TargetVolume float64
	// FinalTargetVolume, when positive, is reached by interpolating the
	// target with the run progress.
	FinalTargetVolume float64
	// Tension multiplies the effective distance between non-neighbours.
	Tension    float64
	Mode       RepulsionMode
	Overdamped bool
	DT         float64
	UseGrid    bool
	Boundary   boundary.Boundary[V]
}

// DefaultParams returns a neutral parameter set with the given rest length.
func DefaultParams[V vecmath.Vec[V]](attraction float64) Params[V] {
	return Params[V]{
		Attraction: attraction,
		Repulsion:  2.1,
		Damping:    0.5,
		Anisotropy: vecmath.Fill[V](1),
		Tension:    1,
		DT:         0.5,
		UseGrid:    true,
	}
}

func (p Params[V]) Validate() error {
	check := func(ok bool, name string, v float64) error {
		if ok {
			return nil
		}
		return fmt.Errorf("%w: %s = %v", ErrParameterBounds, name, v)
	}
	for _, err := range []error{
		check(p.Attraction > 0, "attraction", p.Attraction),
		check(p.Repulsion > 0, "repulsion", p.Repulsion),
		check(p.Damping >= 0 && p.Damping <= 1, "damping", p.Damping),
		check(p.Noise >= 0 && p.Noise < 1, "noise", p.Noise),
		check(p.Rigidity >= 0 && p.Rigidity <= 1, "rigidity", p.Rigidity),
		check(p.Tension > 0, "tension", p.Tension),
		check(p.DT > 0, "dt", p.DT),
		check(p.TargetVolume >= 0, "target volume", p.TargetVolume),
		check(p.FinalTargetVolume >= 0, "final target volume", p.FinalTargetVolume),
	} {
		if err != nil {
			return err
		}
	}
	if !vecmath.Finite(p.Anisotropy) {
		return fmt.Errorf("%w: anisotropy %v", ErrParameterBounds, p.Anisotropy)
	}
	if p.Mode < RepulsionFixed || p.Mode > RepulsionMaxNeighbour {
		return fmt.Errorf("%w: repulsion mode %d", ErrParameterBounds, p.Mode)
	}
	return nil
}

// reach is the largest distance at which two points can still repel.
func (p Params[V]) reach() float64 {
	scale := 1.0
	if p.Mode != RepulsionFixed {
		scale = maxModeScale
	}
	return p.Attraction * p.Repulsion * scale / ((1 - p.Noise) * math.Min(p.Tension, 1))
}
