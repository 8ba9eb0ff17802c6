package metrics

import (
	"github.com/san-kum/seals/internal/surface"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EdgeUniformity is the mean coefficient of variation of edge lengths. Zero
// means every edge sits at the same length.
type EdgeUniformity struct {
	name    string
	samples []float64
}

func NewEdgeUniformity() *EdgeUniformity {
	return &EdgeUniformity{name: "edge_cv"}
}

func (e *EdgeUniformity) Name() string { return e.name }

func (e *EdgeUniformity) Observe(st surface.Stats) {
	if st.EdgeMean <= 0 {
		return
	}
	e.samples = append(e.samples, st.EdgeStd/st.EdgeMean)
}

func (e *EdgeUniformity) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return stat.Mean(e.samples, nil)
}

func (e *EdgeUniformity) Reset() {
	e.samples = e.samples[:0]
}

// Stability is the fraction of observations in which no edge was stretched
// past factor times the rest length.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(attraction, factor float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: attraction * factor,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st surface.Stats) {
	s.samples++
	if st.EdgeMax > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Extent is the largest distance from the origin reached by any point.
type Extent struct {
	name    string
	samples []float64
}

func NewExtent() *Extent {
	return &Extent{name: "extent"}
}

func (e *Extent) Name() string { return e.name }

func (e *Extent) Observe(st surface.Stats) {
	e.samples = append(e.samples, st.Extent)
}

func (e *Extent) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return floats.Max(e.samples)
}

func (e *Extent) Reset() { e.samples = e.samples[:0] }

// Flexibility is the mean flexibility at the latest observation.
type Flexibility struct {
	name string
	last float64
	seen bool
}

func NewFlexibility() *Flexibility {
	return &Flexibility{name: "flexibility"}
}

func (f *Flexibility) Name() string { return f.name }

func (f *Flexibility) Observe(st surface.Stats) {
	f.last = st.MeanFlexibility
	f.seen = true
}

func (f *Flexibility) Value() float64 {
	if !f.seen {
		return 1
	}
	return f.last
}

func (f *Flexibility) Reset() {
	f.last = 0
	f.seen = false
}
