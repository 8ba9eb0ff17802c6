package surface

import (
	"github.com/golang/geo/s2"
	"github.com/san-kum/seals/internal/vecmath"
)

// Point is one mass element of the surface. Points are never removed, so an
// index stays valid for the whole run.
type Point[V vecmath.Vec[V]] struct {
	Position     V
	Velocity     V
	Acceleration V
	// Noise is drawn once in [-1, 1) and perturbs the point's effective
	// distance to others.
	Noise float64
	// Flexibility scales integration; it starts at 1 and decays with rigidity.
	Flexibility float64
	Attached    bool
	// Spherical is the point's place on the unit sphere, used by the
	// Delaunay strategies only.
	Spherical s2.Point
}

func (s *Simulation[V]) newPoint(pos V) Point[V] {
	return Point[V]{
		Position:    pos,
		Noise:       s.rng.Signed(),
		Flexibility: 1,
	}
}

// push appends p and registers it in the grid. It returns the new index.
func (s *Simulation[V]) push(p Point[V]) int {
	s.points = append(s.points, p)
	i := len(s.points) - 1
	if s.grid != nil {
		s.grid.Add(s.cellPos(p.Position), i)
	}
	return i
}
