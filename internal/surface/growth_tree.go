package surface

import (
	"github.com/san-kum/seals/internal/topology"
	"github.com/san-kum/seals/internal/vecmath"
)

// TreeGrowth grows a branching graph from a set of young nodes.
type TreeGrowth[V vecmath.Vec[V]] struct {
	AttachFirst bool
	// AgeProbability is the chance that a node retires after sprouting.
	AgeProbability float64
	// GrowthDistance places new nodes this fraction of the rest length away
	// from their parent.
	GrowthDistance float64
	// A branch shorter than MinBranchLength never retires its tip; one
	// longer than MaxBranchLength (when positive) always does.
	MinBranchLength int
	MaxBranchLength int
	// After StopBranchingAfter progress (when positive) only young nodes
	// within MaxLeafDistance edges of a leaf may grow.
	StopBranchingAfter float64
	MaxLeafDistance    int
	// DensitySamples > 1 grows from the least crowded of that many sampled
	// candidates.
	DensitySamples int

	tree  *topology.Tree
	young []int
	// branch[i] counts the nodes of the unbranched run ending at i
	branch []int
}

func (g *TreeGrowth[V]) Name() string { return "tree" }

// Init starts from two connected nodes along the X axis.
func (g *TreeGrowth[V]) Init(s *Simulation[V]) error {
	var origin V
	s.push(s.newPoint(origin))
	s.push(s.newPoint(vecmath.Axis[V](0, s.params.Attraction)))
	g.tree = topology.NewTree()
	s.topo = g.tree
	g.branch = []int{1, 2}
	g.young = g.young[:0]
	if g.AttachFirst && s.params.Boundary != nil {
		s.points[0].Attached = true
	} else {
		g.young = append(g.young, 0)
	}
	g.young = append(g.young, 1)
	return nil
}

func (g *TreeGrowth[V]) AddParticle(s *Simulation[V]) {
	slot := g.pick(s)
	parent := len(s.points) - 1
	if slot >= 0 {
		parent = g.young[slot]
	}

	// a node that already had children starts a new branch
	length := 1
	if g.tree.IsLeaf(parent) {
		length = g.branch[parent] + 1
	}

	dir := vecmath.RandomUnit[V](s.rng).Mul(s.params.Attraction * g.GrowthDistance)
	pos := s.points[parent].Position.Add(dir)
	c := g.tree.AddLeaf(parent)
	s.push(s.newPoint(pos))
	g.branch = append(g.branch, length)
	g.young = append(g.young, c)

	if slot >= 0 && g.retire(s, length) {
		// swap with the last entry, which is c
		g.young[slot] = g.young[len(g.young)-1]
		g.young = g.young[:len(g.young)-1]
	}
}

// pick returns the slot in g.young of the node to grow from, or -1 when no
// young node qualifies.
func (g *TreeGrowth[V]) pick(s *Simulation[V]) int {
	slots := g.eligible(s)
	if len(slots) == 0 {
		return -1
	}
	if g.DensitySamples <= 1 || len(slots) == 1 {
		return slots[s.rng.IntN(len(slots))]
	}
	best, bestCount := -1, 0
	for range g.DensitySamples {
		slot := slots[s.rng.IntN(len(slots))]
		n := s.density(s.points[g.young[slot]].Position)
		if best < 0 || n < bestCount {
			best, bestCount = slot, n
		}
	}
	return best
}

func (g *TreeGrowth[V]) eligible(s *Simulation[V]) []int {
	slots := make([]int, 0, len(g.young))
	restrict := g.StopBranchingAfter > 0 && s.progress >= g.StopBranchingAfter
	for slot, i := range g.young {
		if restrict && g.tree.DistanceToLeaf(i, g.MaxLeafDistance) < 0 {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func (g *TreeGrowth[V]) retire(s *Simulation[V], length int) bool {
	switch {
	case length < g.MinBranchLength:
		return false
	case g.MaxBranchLength > 0 && length > g.MaxBranchLength:
		return true
	}
	return s.rng.Float64() < g.AgeProbability
}
