package boundary

import (
	"math"

	"github.com/san-kum/seals/internal/vecmath"
)

// Sphere is a ball (a disc in 2D) centred on the origin.
type Sphere[V vecmath.Vec[V]] struct {
	opts   Options
	radius float64
	dim    int
}

func NewSphere[V vecmath.Vec[V]](opts Options) *Sphere[V] {
	return &Sphere[V]{opts: opts, radius: opts.Radius, dim: vecmath.Dim[V]()}
}

func (s *Sphere[V]) Radius() float64 { return s.radius }

func (s *Sphere[V]) NeedsVolume() bool { return s.opts.TargetDensity > 0 }

// ball returns the volume of the ball of radius r (area in 2D).
func (s *Sphere[V]) ball(r float64) float64 {
	if s.dim == 2 {
		return math.Pi * r * r
	}
	return 4.0 / 3.0 * math.Pi * r * r * r
}

func (s *Sphere[V]) Update(volume float64) {
	switch {
	case s.opts.TargetDensity > 0:
		if volume/s.ball(s.radius) > s.opts.TargetDensity {
			// grow until the density drops to the target; never shrink
			unit := s.ball(1)
			r := math.Pow(volume/(s.opts.TargetDensity*unit), 1/float64(s.dim))
			s.radius = s.opts.capped(r)
		}
	case s.opts.GrowthRate > 1:
		s.radius = s.opts.capped(s.radius * s.opts.GrowthRate)
	}
}

func (s *Sphere[V]) Anchor(pos V, maxDisplacement float64) (V, V) {
	target := vecmath.Axis[V](0, -s.radius)
	if s.opts.Offset {
		return target, target.Sub(pos)
	}
	var zero V
	return vecmath.MoveTowards(pos, target, maxDisplacement), zero
}

func (s *Sphere[V]) Force(pos V) V {
	k, ok := softForce(pos.Len(), s.radius, s.opts.Extent)
	if !ok {
		var zero V
		return zero
	}
	return pos.Mul(k)
}

func (s *Sphere[V]) Hard(pos V) V {
	if vecmath.LenSqr(pos) > s.radius*s.radius {
		return vecmath.Normalize(pos).Mul(s.radius)
	}
	return pos
}

func (s *Sphere[V]) Record() Record {
	return Record{
		Kind:   KindSphere,
		Radius: float32(s.radius),
		Extent: float32(s.opts.Extent),
		Offset: s.opts.Offset,
	}
}
