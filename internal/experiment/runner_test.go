package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/snapshot"
	"github.com/san-kum/seals/internal/storage"
	"github.com/san-kum/seals/internal/surface"
)

type recorder struct {
	steps  int
	frames []int32
}

func (r *recorder) OnStep(m surface.Model, st surface.Stats) { r.steps++ }
func (r *recorder) OnFrame(f *snapshot.Frame)                 { r.frames = append(r.frames, f.Steps) }

func smallConfig() *config.Config {
	cfg := config.DefaultConfig(2)
	cfg.Seed = 7
	cfg.Iterations = 30
	cfg.GrowthInterval = 5
	cfg.SnapshotEvery = 10
	cfg.MaxPoints = 100
	return cfg
}

func TestRunnerWritesRun(t *testing.T) {
	st := storage.New(t.TempDir())
	reg := NewRegistry()

	runner, err := reg.Prepare(smallConfig(), Options{Store: st, RunID: "r", Hostname: "lab"})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	rec := &recorder{}
	runner.Observers = append(runner.Observers, rec)

	res, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if err := runner.Output.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if res.Steps != 30 {
		t.Errorf("expected 30 steps, got %d", res.Steps)
	}
	// one point every 5 steps on top of the initial triangle
	if res.Points != 9 {
		t.Errorf("expected 9 points, got %d", res.Points)
	}
	if res.Frames != 4 {
		t.Errorf("expected 4 frames, got %d", res.Frames)
	}
	if rec.steps != 30 {
		t.Errorf("expected 30 observed steps, got %d", rec.steps)
	}
	want := []int32{0, 10, 20, 30}
	if len(rec.frames) != len(want) {
		t.Fatalf("expected frames at %v, got %v", want, rec.frames)
	}
	for i := range want {
		if rec.frames[i] != want[i] {
			t.Errorf("frame %d: expected step %d, got %d", i, want[i], rec.frames[i])
		}
	}
	if _, ok := res.Metrics["volume_ratio"]; !ok {
		t.Error("expected volume_ratio metric")
	}

	meta, err := st.Load("r")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Points != 9 || meta.Frames != 4 || meta.Hostname != "lab" || meta.Cancelled {
		t.Errorf("unexpected metadata %+v", meta)
	}

	rows, err := st.LoadTelemetry("r")
	if err != nil {
		t.Fatalf("telemetry failed: %v", err)
	}
	if len(rows) != 4 || rows[3].Step != 30 || rows[3].Points != 9 {
		t.Errorf("unexpected telemetry %+v", rows)
	}

	frames, err := storage.ReadSnapshots(st.SnapshotPath("r"))
	if err != nil {
		t.Fatalf("snapshots failed: %v", err)
	}
	if len(frames) != 4 || len(frames[3].Positions) != 9 || frames[3].Hostname != "lab" {
		t.Errorf("unexpected snapshots")
	}
}

func TestRunnerFinalFrameOffCadence(t *testing.T) {
	cfg := smallConfig()
	cfg.Iterations = 25

	runner, err := NewRegistry().Prepare(cfg, Options{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	rec := &recorder{}
	runner.Observers = []Observer{rec}

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := []int32{0, 10, 20, 25}
	if len(rec.frames) != len(want) || rec.frames[3] != 25 {
		t.Errorf("expected frames at %v, got %v", want, rec.frames)
	}
}

func TestRunnerRespectsMaxPoints(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxPoints = 5
	cfg.GrowthInterval = 1

	runner, err := NewRegistry().Prepare(cfg, Options{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	res, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Points != 5 {
		t.Errorf("expected growth to stop at 5 points, got %d", res.Points)
	}
}

func TestRunnerNoGrowth(t *testing.T) {
	cfg := smallConfig()
	cfg.GrowthInterval = 0
	cfg.SnapshotEvery = 0

	runner, err := NewRegistry().Prepare(cfg, Options{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	rec := &recorder{}
	runner.Observers = []Observer{rec}
	res, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Points != 3 {
		t.Errorf("expected 3 points, got %d", res.Points)
	}
	if len(rec.frames) != 2 {
		t.Errorf("expected first and last frame, got %v", rec.frames)
	}
}

func TestRunnerCancelled(t *testing.T) {
	st := storage.New(t.TempDir())
	runner, err := NewRegistry().Prepare(smallConfig(), Options{Store: st, RunID: "c"})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	defer runner.Output.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !res.Cancelled || res.Steps != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Frames != 1 {
		t.Errorf("expected only the initial frame, got %d", res.Frames)
	}

	meta, err := st.Load("c")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !meta.Cancelled {
		t.Error("expected metadata to mark the run cancelled")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	cfg, err := reg.GetPreset("seals")
	if err != nil {
		t.Fatalf("preset failed: %v", err)
	}
	if cfg.Validate() != nil {
		t.Error("expected a valid preset")
	}
	if _, err := reg.GetPreset("nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
	if len(reg.ListPresets()) == 0 {
		t.Error("expected presets")
	}
	if got := reg.ListStrategies(2); len(got) != 2 {
		t.Errorf("expected 2 strategies in 2D, got %v", got)
	}
	if len(reg.DefaultMetrics(cfg)) == 0 {
		t.Error("expected default metrics")
	}

	bad := smallConfig()
	bad.Params.Attraction = 0
	if _, err := reg.Prepare(bad, Options{}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
