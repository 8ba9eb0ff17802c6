package surface

import (
	"time"

	"github.com/san-kum/seals/internal/snapshot"
	"github.com/san-kum/seals/internal/topology"
	"github.com/san-kum/seals/internal/vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameMeta carries the run facts a simulation does not know itself.
type FrameMeta struct {
	Timestamp time.Time
	Hostname  string
	Elapsed   time.Duration
}

// Frame captures the current state as a snapshot frame.
func (s *Simulation[V]) Frame(meta FrameMeta) *snapshot.Frame {
	prm := s.params
	f := &snapshot.Frame{
		Header: snapshot.Header{
			Version:    snapshot.Version,
			Dim:        s.Dim(),
			TypeHint:   s.TypeHint(),
			Timestamp:  meta.Timestamp,
			Hostname:   meta.Hostname,
			Seed:       int32(s.seed),
			Steps:      int32(s.step),
			Attraction: prm.Attraction,
			Repulsion:  prm.Repulsion,
			Damping:    prm.Damping,
			Noise:      prm.Noise,
			DT:         prm.DT,
			Anisotropy: vecmath.ToSlice(prm.Anisotropy),
			Elapsed:    meta.Elapsed,
			Volume:     s.Volume(),
		},
		Positions: make([][]float64, len(s.points)),
	}
	if prm.Boundary != nil {
		rec := prm.Boundary.Record()
		f.Boundary = &rec
	}
	for i := range s.points {
		f.Positions[i] = vecmath.ToSlice(s.points[i].Position)
	}

	if m, ok := s.topo.(*topology.Mesh); ok && f.Mesh() {
		tris := m.Triangles()
		f.Triangles = make([][3]int32, len(tris))
		for k, t := range tris {
			f.Triangles[k] = [3]int32{int32(t[0]), int32(t[1]), int32(t[2])}
		}
		return f
	}

	adj := s.topo.Adjacency()
	f.Neighbours = make([][]int32, len(adj))
	for i, list := range adj {
		out := make([]int32, len(list))
		for k, j := range list {
			out[k] = int32(j)
		}
		f.Neighbours[i] = out
	}
	return f
}

// Stats summarises the current shape.
type Stats struct {
	Step     int
	Points   int
	Edges    int
	Volume   float64
	EdgeMean float64
	EdgeStd  float64
	EdgeMin  float64
	EdgeMax  float64
	// Extent is the largest distance of a point from the origin.
	Extent          float64
	MeanFlexibility float64
	Attached        int
}

func (s *Simulation[V]) Stats() Stats {
	st := Stats{
		Step:   s.step,
		Points: len(s.points),
		Volume: s.Volume(),
	}

	adj := s.topo.Adjacency()
	lengths := make([]float64, 0, len(s.points)*3)
	for i, list := range adj {
		for _, j := range list {
			if j > i {
				lengths = append(lengths, s.points[j].Position.Sub(s.points[i].Position).Len())
			}
		}
	}
	st.Edges = len(lengths)
	if len(lengths) > 0 {
		st.EdgeMean = stat.Mean(lengths, nil)
		if len(lengths) > 1 {
			st.EdgeStd = stat.StdDev(lengths, nil)
		}
		st.EdgeMin = floats.Min(lengths)
		st.EdgeMax = floats.Max(lengths)
	}

	flex := make([]float64, len(s.points))
	for i := range s.points {
		p := &s.points[i]
		flex[i] = p.Flexibility
		if p.Attached {
			st.Attached++
		}
		if l := p.Position.Len(); l > st.Extent {
			st.Extent = l
		}
	}
	if len(flex) > 0 {
		st.MeanFlexibility = stat.Mean(flex, nil)
	}
	return st
}
