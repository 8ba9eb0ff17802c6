package config

import "sort"

// Presets are named setups for common growth patterns. Each call
// returns a fresh config.
var Presets = map[string]func() *Config{
	// branching seal-skin pattern in a slowly filling disc
	"seals": func() *Config {
		c := DefaultConfig(2)
		c.Strategy = StrategyTree
		c.Iterations = 20000
		c.Params.RepulsionMode = RepulsionMaxNeighbour
		c.Tree.AttachFirst = true
		c.Tree.StopBranchingAfter = 169.0 / 249.0
		c.Tree.MaxLeafDistance = 2
		c.Boundary.Radius = 0.05
		c.Boundary.MaxRadius = 0.5
		c.Boundary.TargetDensity = 50
		return c
	},
	"ferro": func() *Config {
		c := DefaultConfig(2)
		c.Iterations = 120000
		c.GrowthInterval = 6
		c.MaxPoints = 500
		c.Params.Overdamped = true
		c.Params.Attraction = 0.004
		c.Params.Pressure = 0.001
		c.Params.Tension = 1.3
		return c
	},
	"granular": func() *Config {
		c := DefaultConfig(2)
		c.Iterations = 40000
		c.GrowthInterval = 2
		c.MaxPoints = 200
		c.Params.Overdamped = true
		c.Params.Attraction = 0.005
		c.Params.Repulsion = 1.8
		return c
	},
	"granular-v2": func() *Config {
		c := DefaultConfig(2)
		c.Iterations = 120000
		c.GrowthInterval = 5
		c.MaxPoints = 600
		c.Params.Overdamped = true
		c.Params.Attraction = 0.005
		c.Params.Repulsion = 1.8
		c.Params.Pressure = 0.00005
		c.Params.FinalTargetVolume = 0.01
		return c
	},
	"sphere": func() *Config {
		return DefaultConfig(3)
	},
	"sphere-aniso": func() *Config {
		c := DefaultConfig(3)
		c.Strategy = StrategyDelaunayAniso
		c.Params.Anisotropy = []float64{0.5, 0.5, 1}
		return c
	},
	"curve": func() *Config {
		c := DefaultConfig(2)
		c.Ring.InitialPoints = 12
		c.Ring.InitialNoise = 0.1
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
