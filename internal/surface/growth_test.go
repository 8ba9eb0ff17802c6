package surface

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/seals/internal/topology"
)

func newTree(t *testing.T, g *TreeGrowth[mgl64.Vec2]) *Simulation[mgl64.Vec2] {
	t.Helper()
	s, err := New[mgl64.Vec2](DefaultParams[mgl64.Vec2](0.01), g, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// TestTreeBranchLength grows a tree and checks after every step whether the
// parent of the new leaf is still young, given the branch length it reached.
func TestTreeBranchLength(t *testing.T) {
	tests := []struct {
		name   string
		growth TreeGrowth[mgl64.Vec2]
		// the parent stays young exactly when the branch is shorter than this
		keepBelow int
	}{
		{
			name:      "short branches keep their tip",
			growth:    TreeGrowth[mgl64.Vec2]{AgeProbability: 1, MinBranchLength: 3, GrowthDistance: 0.5},
			keepBelow: 3,
		},
		{
			name:      "long branches retire their tip",
			growth:    TreeGrowth[mgl64.Vec2]{AgeProbability: 0, MaxBranchLength: 3, GrowthDistance: 0.5},
			keepBelow: 4,
		},
		{
			name:      "min wins over max",
			growth:    TreeGrowth[mgl64.Vec2]{AgeProbability: 0, MinBranchLength: 4, MaxBranchLength: 2, GrowthDistance: 0.5},
			keepBelow: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.growth
			s := newTree(t, &g)
			sawShort, sawLong := false, false
			for range 200 {
				g.AddParticle(s)
				c := s.Len() - 1
				nb := g.tree.Neighbours(c)
				if len(nb) != 1 {
					t.Fatalf("leaf %d has %d neighbours", c, len(nb))
				}
				parent, length := nb[0], g.branch[c]
				young := topology.Contains(g.young, parent)
				if want := length < tt.keepBelow; young != want {
					t.Fatalf("parent %d with branch length %d: young = %v, want %v", parent, length, young, want)
				}
				if !topology.Contains(g.young, c) {
					t.Fatalf("new leaf %d is not young", c)
				}
				if length < tt.keepBelow {
					sawShort = true
				} else {
					sawLong = true
				}
			}
			if !sawShort || !sawLong {
				t.Errorf("growth never covered both sides of the limit (short %v, long %v)", sawShort, sawLong)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestTreeDensitySamples(t *testing.T) {
	g := &TreeGrowth[mgl64.Vec2]{GrowthDistance: 0.5}
	s := newTree(t, g)
	for range 30 {
		g.AddParticle(s)
	}

	// crowd every point into one cell except a single young node
	lonely := g.young[len(g.young)/2]
	for i := range s.points {
		s.points[i].Position = mgl64.Vec2{}
	}
	s.points[lonely].Position = mgl64.Vec2{0.3, 0.3}
	s.rebuildGrid()

	g.DensitySamples = 500
	for range 20 {
		slot := g.pick(s)
		if slot < 0 {
			t.Fatal("pick found no young node")
		}
		if got := g.young[slot]; got != lonely {
			t.Fatalf("picked node %d (density %d), want %d (density %d)",
				got, s.density(s.points[got].Position), lonely, s.density(s.points[lonely].Position))
		}
	}
}

// TestDelaunayAnisoPrefersZ flattens the sphere so that only the edges of one
// vertex have a Z component. Every aligned midpoint must come from one of them.
func TestDelaunayAnisoPrefersZ(t *testing.T) {
	g := &DelaunayGrowth{Aniso: true}
	s, err := New[mgl64.Vec3](DefaultParams[mgl64.Vec3](0.025), g, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const raised = 4
	for i := range s.points {
		p := s.points[i].Position
		s.points[i].Position = mgl64.Vec3{p[0], p[1], 0}
	}
	s.points[raised].Position[2] = 0.05

	for range 50 {
		mid := g.alignedMidpoint(s)
		found := false
		for _, nb := range g.mesh.Neighbours(raised) {
			want, ok := sphereMidpoint(s.points[raised].Spherical, s.points[nb].Spherical)
			if ok && mid.Sub(want.Vector).Norm() < 1e-12 {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("midpoint %v is not on an edge of vertex %d", mid, raised)
		}
	}
}

// TestDelaunayAnisoBias weights edge selection by the Z component of the
// edge direction. On the starting icosahedron the edges split by aligned
// midpoints must be more Z aligned on average than the mesh edges.
func TestDelaunayAnisoBias(t *testing.T) {
	g := &DelaunayGrowth{Aniso: true}
	s, err := New[mgl64.Vec3](DefaultParams[mgl64.Vec3](0.025), g, 11)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	type edge struct {
		mid mgl64.Vec3
		z   float64
	}
	var edges []edge
	var meshZ float64
	for a, nb := range g.mesh.Adjacency() {
		for _, b := range nb {
			if b < a {
				continue
			}
			m, _ := sphereMidpoint(s.points[a].Spherical, s.points[b].Spherical)
			dir := s.points[a].Position.Sub(s.points[b].Position).Normalize()
			edges = append(edges, edge{mgl64.Vec3{m.X, m.Y, m.Z}, math.Abs(dir.Z())})
			meshZ += math.Abs(dir.Z())
		}
	}
	meshZ /= float64(len(edges))

	const n = 2000
	var splitZ float64
	for range n {
		p := g.alignedMidpoint(s)
		mid := mgl64.Vec3{p.X, p.Y, p.Z}
		found := false
		for _, e := range edges {
			if e.mid.ApproxEqualThreshold(mid, 1e-12) {
				splitZ += e.z
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("midpoint %v is not on a mesh edge", mid)
		}
	}
	splitZ /= n

	if splitZ < meshZ+0.1 {
		t.Errorf("mean |dir.z| of split edges = %.3f, want well above the mesh mean %.3f", splitZ, meshZ)
	}
}
