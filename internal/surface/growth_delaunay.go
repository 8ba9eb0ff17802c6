package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/san-kum/seals/internal/delaunay"
	"github.com/san-kum/seals/internal/topology"
	"github.com/san-kum/seals/internal/vecmath"
)

// anisoAttempts bounds the pair rejection loop of the anisotropic strategy.
// Past it the new point is placed at random.
const anisoAttempts = 10000

var errIsolated = errors.New("new point has no neighbours")

// DelaunayGrowth places each new point on the unit sphere of spherical
// coordinates and re-triangulates all points from scratch. The cost of every
// insertion is proportional to the number of points.
//
// With Aniso set, the new spherical coordinate is the midpoint of a
// neighbour pair chosen with probability |direction . Z|, which favours
// growth along the Z axis.
type DelaunayGrowth struct {
	Aniso       bool
	AttachFirst bool

	mesh    *topology.Mesh
	scratch []s2.Point
}

func (g *DelaunayGrowth) Name() string {
	if g.Aniso {
		return "delaunay-aniso"
	}
	return "delaunay"
}

func (g *DelaunayGrowth) Init(s *Simulation[mgl64.Vec3]) error {
	g.mesh = initSphere(s, g.AttachFirst)
	return nil
}

func (g *DelaunayGrowth) AddParticle(s *Simulation[mgl64.Vec3]) {
	var sp s2.Point
	if g.Aniso {
		sp = g.alignedMidpoint(s)
	} else {
		sp = randomSpherePoint(s.rng)
	}

	g.scratch = g.scratch[:0]
	for i := range s.points {
		g.scratch = append(g.scratch, s.points[i].Spherical)
	}
	g.scratch = append(g.scratch, sp)

	res, err := delaunay.Sphere(g.scratch)
	if err != nil {
		s.fail(g.Name()+" growth", err)
	}

	c := g.mesh.AddVertex()
	g.mesh.Reset(res.Triangles)
	nb := g.mesh.Neighbours(c)
	if len(nb) == 0 {
		s.fail(g.Name()+" growth", fmt.Errorf("%w: point %d at %v", errIsolated, c, sp))
	}

	var pos mgl64.Vec3
	for _, j := range nb {
		pos = pos.Add(s.points[j].Position)
	}
	p := s.newPoint(pos.Mul(1 / float64(len(nb))))
	p.Spherical = sp
	s.push(p)
}

// randomSpherePoint draws a direction from the cube [-0.5, 0.5)^3, rejecting
// the origin and the projection pole.
func randomSpherePoint(r *vecmath.RNG) s2.Point {
	for {
		v := r3.Vector{X: r.Float64() - 0.5, Y: r.Float64() - 0.5, Z: r.Float64() - 0.5}
		if v.Norm() == 0 {
			continue
		}
		v = v.Normalize()
		if v.Y == 1 {
			continue
		}
		return s2.Point{Vector: v}
	}
}

func (g *DelaunayGrowth) alignedMidpoint(s *Simulation[mgl64.Vec3]) s2.Point {
	for range anisoAttempts {
		a := s.rng.IntN(len(s.points))
		nb := g.mesh.Neighbours(a)
		if len(nb) == 0 {
			continue
		}
		b := nb[s.rng.IntN(len(nb))]
		dir := vecmath.Normalize(s.points[a].Position.Sub(s.points[b].Position))
		if s.rng.Float64() >= math.Abs(dir.Z()) {
			continue
		}
		if mid, ok := sphereMidpoint(s.points[a].Spherical, s.points[b].Spherical); ok && mid.Y != 1 {
			return mid
		}
	}
	return randomSpherePoint(s.rng)
}
