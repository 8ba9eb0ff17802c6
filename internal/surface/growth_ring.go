package surface

import (
	"math"

	"github.com/san-kum/seals/internal/topology"
	"github.com/san-kum/seals/internal/vecmath"
)

// RingGrowth grows a closed curve by bisecting random edges.
type RingGrowth[V vecmath.Vec[V]] struct {
	// InitialPoints is the size of the starting regular polygon (at least 3).
	InitialPoints int
	// InitialNoise displaces the starting points by up to this fraction of
	// the rest length.
	InitialNoise float64
	AttachFirst  bool

	ring *topology.Ring
}

func (g *RingGrowth[V]) Name() string { return "edge" }

// Init places a regular polygon with sides of the rest length around the
// origin, counter-clockwise.
func (g *RingGrowth[V]) Init(s *Simulation[V]) error {
	n := max(g.InitialPoints, 3)
	radius := s.params.Attraction / (2 * math.Sin(math.Pi/float64(n)))
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pos := vecmath.Axis[V](0, radius*math.Cos(theta)).Add(vecmath.Axis[V](1, radius*math.Sin(theta)))
		if g.InitialNoise > 0 {
			jitter := vecmath.RandomUnit[V](s.rng).Mul(g.InitialNoise * s.params.Attraction * s.rng.Float64())
			pos = pos.Add(jitter)
		}
		s.push(s.newPoint(pos))
	}
	g.ring = topology.NewRing(n)
	s.topo = g.ring
	if g.AttachFirst && s.params.Boundary != nil {
		s.points[0].Attached = true
	}
	return nil
}

// AddParticle inserts a point halfway between a random point and its next
// neighbour.
func (g *RingGrowth[V]) AddParticle(s *Simulation[V]) {
	a := s.rng.IntN(len(s.points))
	b := g.ring.Next(a)
	pos := vecmath.Lerp(s.points[a].Position, s.points[b].Position, 0.5)
	g.ring.InsertAfter(a)
	s.push(s.newPoint(pos))
}
