package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	tests := []struct {
		dim        int
		wantDim    int
		strategy   string
		attraction float64
		boundary   string
	}{
		{2, 2, StrategyEdge, 0.01, BoundarySphere},
		{3, 3, StrategyDelaunay, 0.025, BoundaryCylinder},
		{0, 2, StrategyEdge, 0.01, BoundarySphere},
	}

	for _, tt := range tests {
		cfg := DefaultConfig(tt.dim)
		if cfg.Dim != tt.wantDim {
			t.Errorf("dim %d: got dim %d", tt.dim, cfg.Dim)
		}
		if cfg.Strategy != tt.strategy {
			t.Errorf("dim %d: expected strategy %s, got %s", tt.dim, tt.strategy, cfg.Strategy)
		}
		if cfg.Params.Attraction != tt.attraction {
			t.Errorf("dim %d: expected attraction %v, got %v", tt.dim, tt.attraction, cfg.Params.Attraction)
		}
		if cfg.Boundary.Kind != tt.boundary {
			t.Errorf("dim %d: expected boundary %s, got %s", tt.dim, tt.boundary, cfg.Boundary.Kind)
		}
		if len(cfg.Params.Anisotropy) != cfg.Dim {
			t.Errorf("dim %d: anisotropy has %d components", tt.dim, len(cfg.Params.Anisotropy))
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("dim %d: default config invalid: %v", tt.dim, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"dim", func(c *Config) { c.Dim = 4 }},
		{"strategy", func(c *Config) { c.Strategy = "spiral" }},
		{"delaunay in 2d", func(c *Config) { c.Strategy = StrategyDelaunay }},
		{"attraction", func(c *Config) { c.Params.Attraction = 0 }},
		{"noise", func(c *Config) { c.Params.Noise = 1 }},
		{"damping", func(c *Config) { c.Params.Damping = 1.5 }},
		{"tension", func(c *Config) { c.Params.Tension = 0 }},
		{"dt", func(c *Config) { c.Params.DT = -1 }},
		{"anisotropy", func(c *Config) { c.Params.Anisotropy = []float64{1, 1, 1} }},
		{"repulsion mode", func(c *Config) { c.Params.RepulsionMode = "soft" }},
		{"ring points", func(c *Config) { c.Ring.InitialPoints = 2 }},
		{"age", func(c *Config) { c.Strategy = StrategyTree; c.Tree.AgeProbability = 2 }},
		{"branch lengths", func(c *Config) { c.Strategy = StrategyTree; c.Tree.MinBranchLength = 5; c.Tree.MaxBranchLength = 2 }},
		{"cylinder in 2d", func(c *Config) { c.Boundary.Kind = BoundaryCylinder }},
		{"boundary kind", func(c *Config) { c.Boundary.Kind = "cube" }},
		{"boundary radius", func(c *Config) { c.Boundary.Radius = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(2)
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidate_NoBoundary(t *testing.T) {
	cfg := DefaultConfig(3)
	cfg.Boundary = BoundaryConfig{Kind: BoundaryNone}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HasBoundary() {
		t.Error("expected no boundary")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("ferro")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.Params.Overdamped {
		t.Error("ferro should be overdamped")
	}
	if cfg.Params.Tension != 1.3 {
		t.Errorf("expected tension 1.3, got %v", cfg.Params.Tension)
	}

	// presets hand out fresh copies
	cfg.Params.Tension = 9
	if GetPreset("ferro").Params.Tension != 1.3 {
		t.Error("preset was modified through a returned config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")

	cfg := GetPreset("sphere-aniso")
	cfg.Seed = 42
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Seed != 42 || loaded.Strategy != StrategyDelaunayAniso {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Params.Anisotropy) != 3 || loaded.Params.Anisotropy[0] != 0.5 {
		t.Errorf("anisotropy = %v", loaded.Params.Anisotropy)
	}
}

func TestLoad_PartialUsesDimDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("dim: 3\nseed: 7\nparams:\n  use_grid: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Params.Attraction != 0.025 {
		t.Errorf("expected 3d attraction default, got %v", cfg.Params.Attraction)
	}
	if cfg.Params.UseGrid {
		t.Error("use_grid should be overridden to false")
	}
	if cfg.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Seed)
	}
}

func TestProgress(t *testing.T) {
	cfg := DefaultConfig(2)
	cfg.Iterations = 200
	tests := []struct {
		step int
		want float64
	}{
		{0, 0},
		{50, 0.25},
		{200, 1},
		{500, 1},
	}
	for _, tt := range tests {
		if got := cfg.Progress(tt.step); got != tt.want {
			t.Errorf("Progress(%d) = %v, want %v", tt.step, got, tt.want)
		}
	}
}
