package automation

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/experiment"
	"gopkg.in/yaml.v3"
)

// Scenario defines a batch of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep expands into one run per seed and sweep value
type ScenarioStep struct {
	Preset string `yaml:"preset"`
	// Config is a config file, relative to the scenario file.
	Config     string  `yaml:"config"`
	Seeds      []int64 `yaml:"seeds"`
	SeedCount  int     `yaml:"seed_count"`
	Iterations int     `yaml:"iterations"`
	MaxPoints  int     `yaml:"max_points"`
	Sweep      *Sweep  `yaml:"sweep"`
	SaveAs     string  `yaml:"save_as"`
}

// Sweep varies one parameter linearly from Min to Max.
type Sweep struct {
	Param string  `yaml:"param"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

// Values returns the parameter values of the sweep.
func (s *Sweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	vals := make([]float64, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	scenario.dir = filepath.Dir(path)
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Job is one fully resolved run of a scenario.
type Job struct {
	RunID  string
	Config *config.Config
	// Param and Value are set for sweep jobs.
	Param string
	Value float64
}

// Jobs expands the scenario into runs. stamp keeps run IDs of repeated
// batches apart.
func (sc *Scenario) Jobs(reg *experiment.Registry, stamp int64) ([]Job, error) {
	var jobs []Job
	for i, step := range sc.Steps {
		base, err := sc.baseConfig(reg, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Iterations > 0 {
			base.Iterations = step.Iterations
		}
		if step.MaxPoints > 0 {
			base.MaxPoints = step.MaxPoints
		}

		prefix := step.SaveAs
		if prefix == "" {
			name := sc.Name
			if name == "" {
				name = "batch"
			}
			prefix = fmt.Sprintf("%s%d", name, i+1)
		}

		seeds := step.Seeds
		if len(seeds) == 0 {
			n := step.SeedCount
			if n <= 0 {
				n = 1
			}
			for s := 1; s <= n; s++ {
				seeds = append(seeds, base.Seed+int64(s-1))
			}
		}

		values := []float64{0}
		if step.Sweep != nil {
			values = step.Sweep.Values()
		}

		for _, v := range values {
			for _, seed := range seeds {
				cfg := base.Clone()
				cfg.Seed = seed
				job := Job{Config: cfg, RunID: fmt.Sprintf("%s_%d_s%d", prefix, stamp, seed)}
				if step.Sweep != nil {
					if err := SetParam(cfg, step.Sweep.Param, v); err != nil {
						return nil, fmt.Errorf("step %d: %w", i+1, err)
					}
					job.Param, job.Value = step.Sweep.Param, v
					job.RunID += "_" + step.Sweep.Param + strconv.FormatFloat(v, 'g', 4, 64)
				}
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("step %d: %w", i+1, err)
				}
				jobs = append(jobs, job)
			}
		}
	}
	return jobs, nil
}

func (sc *Scenario) baseConfig(reg *experiment.Registry, step ScenarioStep) (*config.Config, error) {
	switch {
	case step.Preset != "" && step.Config != "":
		return nil, fmt.Errorf("preset and config are exclusive")
	case step.Preset != "":
		return reg.GetPreset(step.Preset)
	case step.Config != "":
		path := step.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(sc.dir, path)
		}
		return config.Load(path)
	}
	return nil, fmt.Errorf("step needs a preset or a config")
}

// SetParam sets one numeric simulation parameter by its yaml name.
func SetParam(cfg *config.Config, name string, v float64) error {
	p := &cfg.Params
	switch name {
	case "attraction":
		p.Attraction = v
	case "repulsion":
		p.Repulsion = v
	case "damping":
		p.Damping = v
	case "noise":
		p.Noise = v
	case "rigidity":
		p.Rigidity = v
	case "pressure":
		p.Pressure = v
	case "target_volume":
		p.TargetVolume = v
	case "final_target_volume":
		p.FinalTargetVolume = v
	case "tension":
		p.Tension = v
	case "dt":
		p.DT = v
	case "age_probability":
		cfg.Tree.AgeProbability = v
	case "growth_distance":
		cfg.Tree.GrowthDistance = v
	case "boundary_growth_rate":
		cfg.Boundary.GrowthRate = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return nil
}
