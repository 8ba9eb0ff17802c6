package main

import (
	"strings"
	"testing"

	"github.com/san-kum/seals/internal/experiment"
)

func TestRunFlagUsage(t *testing.T) {
	root := newRootCommand()
	run, _, err := root.Find([]string{"run"})
	if err != nil {
		t.Fatalf("find run: %v", err)
	}

	tests := []struct {
		flag string
		want string
	}{
		{"attraction", "rest length"},
		{"repulsion", "multiple of the rest length"},
		{"rigidity", "flexibility"},
		{"pressure", "target volume"},
	}
	for _, tt := range tests {
		f := run.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("--%s not registered", tt.flag)
			continue
		}
		if !strings.Contains(f.Usage, tt.want) {
			t.Errorf("--%s usage = %q, want it to mention %q", tt.flag, f.Usage, tt.want)
		}
	}
}

func TestResolveConfigOverrides(t *testing.T) {
	root := newRootCommand()
	run, _, err := root.Find([]string{"run"})
	if err != nil {
		t.Fatalf("find run: %v", err)
	}
	if err := run.ParseFlags([]string{"--attraction", "0.02", "--rigidity", "0.001"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, title, err := resolveConfig(run, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Params.Attraction != 0.02 {
		t.Errorf("attraction = %v, want 0.02", cfg.Params.Attraction)
	}
	if cfg.Params.Rigidity != 0.001 {
		t.Errorf("rigidity = %v, want 0.001", cfg.Params.Rigidity)
	}
	if cfg.Params.Damping == 0 {
		t.Error("damping was overridden without --damping")
	}
	if title == "" {
		t.Error("empty title")
	}
}
