package surface

import (
	"fmt"
	"math"

	"github.com/san-kum/seals/internal/grid"
	"github.com/san-kum/seals/internal/topology"
	"github.com/san-kum/seals/internal/vecmath"
)

// sumChunk is the fixed chunk size of volume reductions.
const sumChunk = 1024

// maxPressureShift bounds how far pressure alone may move a point in one
// step, as a fraction of the rest length.
const maxPressureShift = 0.25

// Simulation owns the points of a growing surface and advances them in time.
// It is not safe for concurrent use; Update parallelises internally.
type Simulation[V vecmath.Vec[V]] struct {
	params Params[V]
	seed   int64
	rng    *vecmath.RNG
	growth Growth[V]

	points []Point[V]
	topo   topology.Topology
	grid   *grid.Grid[V]

	normals []V
	// orientation is the sign of the last signed volume; normals are flipped
	// with it so they point outward.
	orientation float64
	volume      float64
	target      float64

	step     int
	progress float64
}

// New validates params, seeds the RNG and lets growth build the initial
// shape.
func New[V vecmath.Vec[V]](params Params[V], growth Growth[V], seed int64) (*Simulation[V], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if growth == nil {
		return nil, fmt.Errorf("%w: nil growth", ErrUnknownStrategy)
	}

	s := &Simulation[V]{
		params:      params,
		seed:        seed,
		rng:         vecmath.NewRNG(seed),
		growth:      growth,
		orientation: 1,
	}
	if params.UseGrid {
		s.grid = grid.ForRadius[V](params.reach())
	}

	if err := growth.Init(s); err != nil {
		return nil, fmt.Errorf("init %s growth: %w", growth.Name(), err)
	}
	if s.topo == nil || s.topo.Len() != len(s.points) {
		return nil, fmt.Errorf("%w: %s growth left %d points without a matching topology",
			ErrInvariant, growth.Name(), len(s.points))
	}
	s.rebuildGrid()
	return s, nil
}

// Update advances the simulation by one time step.
func (s *Simulation[V]) Update() {
	b := s.params.Boundary
	if b != nil {
		s.anchor()
	}

	var pressure float64
	if s.params.Pressure != 0 || (b != nil && b.NeedsVolume()) {
		s.measure()
	}
	if s.params.Pressure != 0 {
		pressure = s.pressure()
		s.computeNormals()
	}

	n := len(s.points)
	adj := s.topo.Adjacency()
	ParallelFor(n, minChunk, func(start, end int) {
		var cells [27][]int
		for i := start; i < end; i++ {
			s.accumulate(i, adj, pressure, cells[:0])
		}
	})
	ParallelFor(n, minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			s.integrate(i)
		}
	})

	s.rebuildGrid()
	if b != nil {
		b.Update(s.volume)
	}
	s.step++
}

// AddParticle grows the surface by exactly one point.
func (s *Simulation[V]) AddParticle() {
	n := len(s.points)
	s.growth.AddParticle(s)
	if len(s.points) != n+1 || s.topo.Len() != n+1 {
		s.fail("add particle", fmt.Errorf("%s growth went from %d to %d points (topology %d)",
			s.growth.Name(), n, len(s.points), s.topo.Len()))
	}
}

// anchor moves attached points toward the boundary. A shift returned by the
// boundary drags every other point along.
func (s *Simulation[V]) anchor() {
	b := s.params.Boundary
	maxDisp := s.params.Attraction * s.params.DT
	shifted := false
	for i := range s.points {
		if !s.points[i].Attached {
			continue
		}
		moved, shift := b.Anchor(s.points[i].Position, maxDisp)
		s.points[i].Position = moved
		if vecmath.LenSqr(shift) == 0 {
			continue
		}
		shifted = true
		for j := range s.points {
			if j != i {
				s.points[j].Position = s.points[j].Position.Add(shift)
			}
		}
	}
	if shifted {
		s.rebuildGrid()
	}
}

// accumulate computes the acceleration of point i. It writes only to point i.
func (s *Simulation[V]) accumulate(i int, adj [][]int, pressure float64, cells [][]int) {
	p := &s.points[i]
	if p.Attached || p.Flexibility <= 0 {
		return
	}
	prm := &s.params

	var acc V
	if !prm.Overdamped {
		acc = p.Acceleration.Mul(prm.Damping * prm.Damping)
	}
	pos := p.Position
	if prm.Boundary != nil {
		acc = acc.Add(prm.Boundary.Force(pos))
	}
	if pressure != 0 {
		acc = acc.Add(s.normals[i].Mul(pressure))
	}

	nb := adj[i]
	r := prm.Attraction * prm.Repulsion * s.modeScale(pos, nb)
	k := (1 + p.Noise*prm.Noise) * prm.Tension
	k2 := k * k

	if s.grid != nil {
		for _, cell := range s.grid.Sample(s.cellPos(pos), cells) {
			for _, j := range cell {
				acc = s.repel(acc, i, j, pos, nb, k2, r)
			}
		}
	} else {
		for j := range s.points {
			acc = s.repel(acc, i, j, pos, nb, k2, r)
		}
	}

	for _, j := range nb {
		towards := s.points[j].Position.Sub(pos)
		d := towards.Len()
		acc = acc.Add(vecmath.Normalize(towards).Mul(d - prm.Attraction))
	}

	p.Acceleration = acc
}

// repel adds the push of a non-neighbour j closer than r. The force grows
// with the square of the penetration depth.
func (s *Simulation[V]) repel(acc V, i, j int, pos V, nb []int, k2, r float64) V {
	if i == j || topology.Contains(nb, j) {
		return acc
	}
	towards := s.points[j].Position.Sub(pos)
	d2 := vecmath.LenSqr(towards) * k2
	if d2 >= r*r {
		return acc
	}
	depth := r - math.Sqrt(d2)
	push := vecmath.Normalize(towards).Mul(-depth * depth / r)
	return acc.Add(vecmath.Hadamard(push, s.params.Anisotropy))
}

// modeScale scales the repulsion threshold of a point with neighbours nb.
func (s *Simulation[V]) modeScale(pos V, nb []int) float64 {
	if s.params.Mode == RepulsionFixed || len(nb) == 0 {
		return 1
	}
	var sum, longest float64
	for _, j := range nb {
		d := s.points[j].Position.Sub(pos).Len()
		sum += d
		longest = math.Max(longest, d)
	}
	ref := longest
	if s.params.Mode == RepulsionAdaptive {
		ref = sum / float64(len(nb))
	}
	return math.Min(math.Max(ref/s.params.Attraction, 1), maxModeScale)
}

func (s *Simulation[V]) integrate(i int) {
	p := &s.points[i]
	if p.Attached {
		return
	}
	prm := &s.params
	if prm.Overdamped {
		p.Velocity = p.Acceleration
	} else {
		p.Velocity = p.Velocity.Mul(prm.Damping).Add(p.Acceleration.Mul(prm.DT))
	}
	p.Position = p.Position.Add(p.Velocity.Mul(prm.DT * p.Flexibility))
	if prm.Boundary != nil {
		p.Position = prm.Boundary.Hard(p.Position)
	}
	if prm.Rigidity > 0 {
		p.Flexibility = math.Max(0, p.Flexibility*(1-prm.Rigidity))
	}
}

// cellPos is the position used for grid lookups. Points outside the grid
// cube are kept in its border cells.
func (s *Simulation[V]) cellPos(pos V) V {
	return grid.Clamp(pos)
}

func (s *Simulation[V]) rebuildGrid() {
	if s.grid == nil {
		return
	}
	s.grid.Clear()
	for i := range s.points {
		s.grid.Add(s.cellPos(s.points[i].Position), i)
	}
}

// density counts the points near pos, using the grid when there is one.
func (s *Simulation[V]) density(pos V) int {
	if s.grid != nil {
		return s.grid.Count(s.cellPos(pos))
	}
	r := s.params.reach()
	n := 0
	for i := range s.points {
		if vecmath.LenSqr(s.points[i].Position.Sub(pos)) < r*r {
			n++
		}
	}
	return n
}

// targetVolume returns the pressure target, measuring it on first use when
// none was configured.
func (s *Simulation[V]) targetVolume() float64 {
	if s.target == 0 {
		s.target = s.params.TargetVolume
		if s.target == 0 {
			s.target = s.volume
		}
	}
	if s.params.FinalTargetVolume > 0 {
		return s.target + (s.params.FinalTargetVolume-s.target)*s.progress
	}
	return s.target
}

// pressure is the normal force magnitude for the measured volume, clamped
// to a displacement of maxPressureShift rest lengths per step.
func (s *Simulation[V]) pressure() float64 {
	target := s.targetVolume()
	if target <= 0 {
		return 0
	}
	p := s.params.Pressure * (target - s.volume) / target
	limit := maxPressureShift * s.params.Attraction / s.params.DT
	return math.Max(-limit, math.Min(p, limit))
}

func (s *Simulation[V]) SetProgress(p float64) {
	s.progress = math.Min(math.Max(p, 0), 1)
}

func (s *Simulation[V]) Progress() float64 { return s.progress }

func (s *Simulation[V]) Points() []Point[V] { return s.points }

func (s *Simulation[V]) Topology() topology.Topology { return s.topo }

func (s *Simulation[V]) Params() Params[V] { return s.params }

func (s *Simulation[V]) Step() int { return s.step }

func (s *Simulation[V]) Len() int { return len(s.points) }

func (s *Simulation[V]) Dim() int { return vecmath.Dim[V]() }

func (s *Simulation[V]) Seed() int64 { return s.seed }

func (s *Simulation[V]) Strategy() string { return s.growth.Name() }

func (s *Simulation[V]) TypeHint() string { return s.topo.TypeHint(s.Dim()) }

// Volume measures the enclosed area (2D ring), volume (3D mesh) or total edge
// length (tree) of the current shape.
func (s *Simulation[V]) Volume() float64 {
	return math.Abs(s.signedVolume())
}

// Validate checks the topology and that every position is finite.
func (s *Simulation[V]) Validate() error {
	if s.topo.Len() != len(s.points) {
		return fmt.Errorf("%w: topology has %d points, simulation %d", ErrInvariant, s.topo.Len(), len(s.points))
	}
	if err := s.topo.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	for i := range s.points {
		if !vecmath.Finite(s.points[i].Position) {
			return fmt.Errorf("%w: point %d at %v", ErrInvariant, i, s.points[i].Position)
		}
	}
	return nil
}
