// Package metrics summarises a run from the shape statistics it observes.
package metrics

import (
	"sort"

	"github.com/san-kum/seals/internal/surface"
)

// Metric folds a stream of observations into one number.
type Metric interface {
	Name() string
	Observe(st surface.Stats)
	Value() float64
	Reset()
}

// Set observes a group of metrics together.
type Set []Metric

func (s Set) Observe(st surface.Stats) {
	for _, m := range s {
		m.Observe(st)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Values returns every metric keyed by name.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the metric names in sorted order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, m := range s {
		names[i] = m.Name()
	}
	sort.Strings(names)
	return names
}

// Default returns the metrics recorded for every run. attraction is the rest
// length that edge statistics are measured against.
func Default(attraction float64) Set {
	return Set{
		NewEdgeUniformity(),
		NewStability(attraction, 3),
		NewGrowthRate(),
		NewVolumeRatio(),
		NewExtent(),
		NewFlexibility(),
	}
}
