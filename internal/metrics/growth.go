package metrics

import "github.com/san-kum/seals/internal/surface"

// GrowthRate is the number of points added per update step between the
// first and the latest observation.
type GrowthRate struct {
	name        string
	first, last surface.Stats
	samples     int
}

func NewGrowthRate() *GrowthRate {
	return &GrowthRate{name: "growth_rate"}
}

func (g *GrowthRate) Name() string { return g.name }

func (g *GrowthRate) Observe(st surface.Stats) {
	if g.samples == 0 {
		g.first = st
	}
	g.last = st
	g.samples++
}

func (g *GrowthRate) Value() float64 {
	steps := g.last.Step - g.first.Step
	if g.samples < 2 || steps <= 0 {
		return 0
	}
	return float64(g.last.Points-g.first.Points) / float64(steps)
}

func (g *GrowthRate) Reset() {
	g.first, g.last = surface.Stats{}, surface.Stats{}
	g.samples = 0
}

// VolumeRatio is the latest enclosed volume over the first one observed.
type VolumeRatio struct {
	name          string
	initial, last float64
	samples       int
}

func NewVolumeRatio() *VolumeRatio {
	return &VolumeRatio{name: "volume_ratio"}
}

func (v *VolumeRatio) Name() string { return v.name }

func (v *VolumeRatio) Observe(st surface.Stats) {
	if v.samples == 0 {
		v.initial = st.Volume
	}
	v.last = st.Volume
	v.samples++
}

func (v *VolumeRatio) Value() float64 {
	if v.samples == 0 || v.initial == 0 {
		return 0
	}
	return v.last / v.initial
}

func (v *VolumeRatio) Reset() {
	v.initial, v.last = 0, 0
	v.samples = 0
}
