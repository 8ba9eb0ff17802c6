package surface

import "github.com/san-kum/seals/internal/vecmath"

// Growth decides where new points appear and how the topology changes.
//
// Init builds the starting shape: it pushes the initial points and sets the
// simulation topology. AddParticle must add exactly one point, leave the
// topology valid and register the point in the grid (push does both).
// Growth runs serially between updates.
type Growth[V vecmath.Vec[V]] interface {
	Name() string
	Init(s *Simulation[V]) error
	AddParticle(s *Simulation[V])
}
