package surface

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/seals/internal/topology"
	"github.com/san-kum/seals/internal/vecmath"
)

// EdgeGrowth grows a closed triangle mesh by bisecting random edges.
type EdgeGrowth struct {
	AttachFirst bool

	mesh *topology.Mesh
}

func (g *EdgeGrowth) Name() string { return "edge" }

func (g *EdgeGrowth) Init(s *Simulation[mgl64.Vec3]) error {
	g.mesh = initSphere(s, g.AttachFirst)
	return nil
}

// AddParticle picks a random point and one of its neighbours uniformly and
// splits the edge between them at its midpoint.
func (g *EdgeGrowth) AddParticle(s *Simulation[mgl64.Vec3]) {
	a := s.rng.IntN(len(s.points))
	nb := g.mesh.Neighbours(a)
	b := nb[s.rng.IntN(len(nb))]

	p := s.newPoint(vecmath.Lerp(s.points[a].Position, s.points[b].Position, 0.5))
	if mid, ok := sphereMidpoint(s.points[a].Spherical, s.points[b].Spherical); ok {
		p.Spherical = mid
	}
	g.mesh.SplitEdge(a, b)
	s.push(p)
}
