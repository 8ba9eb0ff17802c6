package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/snapshot"
)

func ringFrame(steps int32) *snapshot.Frame {
	return &snapshot.Frame{
		Header: snapshot.Header{
			Version:    snapshot.Version,
			Dim:        2,
			TypeHint:   "s2",
			Timestamp:  time.Unix(1700000000, 0),
			Hostname:   "lab",
			Seed:       3,
			Steps:      steps,
			Attraction: 0.01,
			Repulsion:  2.1,
			Damping:    0.5,
			Noise:      0.25,
			DT:         0.5,
			Anisotropy: []float64{1, 1},
			Volume:     4.33e-5,
		},
		Positions:  [][]float64{{0, 0}, {0.01, 0}, {0.005, 0.0087}},
		Neighbours: [][]int32{{2, 1}, {0, 2}, {1, 0}},
	}
}

func TestStoreRunRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig(2)
	cfg.Seed = 3
	id := RunID(cfg, time.Unix(1700000000, 0))
	if id != "edge2d_s3_1700000000" {
		t.Errorf("unexpected run id %q", id)
	}

	run, err := st.Create(id, cfg, false)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := run.AppendTelemetry(Telemetry{Step: 0, Points: 3, Edges: 3, Volume: 1}); err != nil {
		t.Fatalf("telemetry failed: %v", err)
	}
	if err := run.AppendTelemetry(Telemetry{Step: 10, Points: 4, Edges: 4, Volume: 2}, Telemetry{Step: 20, Points: 5, Edges: 5, Volume: 3}); err != nil {
		t.Fatalf("telemetry failed: %v", err)
	}
	for _, steps := range []int32{0, 10} {
		if err := run.WriteFrame(ringFrame(steps)); err != nil {
			t.Fatalf("write frame failed: %v", err)
		}
	}
	if err := run.Finish(RunMetadata{Strategy: cfg.Strategy, Dim: 2, Seed: 3, Steps: 20, Points: 5, Metrics: map[string]float64{"volume": 3}}); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if err := run.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != id || meta.Frames != 2 || meta.Points != 5 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["volume"] != 3 {
		t.Errorf("expected volume metric 3, got %f", meta.Metrics["volume"])
	}

	rows, err := st.LoadTelemetry(id)
	if err != nil {
		t.Fatalf("load telemetry failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2].Step != 20 || rows[2].Volume != 3 {
		t.Errorf("unexpected last row %+v", rows[2])
	}

	frames, err := ReadSnapshots(st.SnapshotPath(id))
	if err != nil {
		t.Fatalf("read snapshots failed: %v", err)
	}
	if len(frames) != 2 || frames[1].Steps != 10 {
		t.Errorf("unexpected frames %d", len(frames))
	}

	back, err := st.LoadConfig(id)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if back.Seed != 3 || back.Strategy != cfg.Strategy {
		t.Errorf("config not restored: %+v", back)
	}
}

func TestStoreCreateRefusesFinishedRun(t *testing.T) {
	st := New(t.TempDir())
	cfg := config.DefaultConfig(2)

	run, err := st.Create("r1", cfg, false)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := run.Finish(RunMetadata{}); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	run.Close()

	if _, err := st.Create("r1", cfg, false); err == nil {
		t.Error("expected error for existing run")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	cfg := config.DefaultConfig(3)
	for i, id := range []string{"b", "a"} {
		run, err := st.Create(id, cfg, false)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		run.Finish(RunMetadata{Timestamp: time.Unix(int64(100+i), 0)})
		run.Close()
	}
	// unfinished runs have no metadata and are skipped
	if err := os.MkdirAll(st.Dir("c"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "b" || runs[1].ID != "a" {
		t.Errorf("expected runs ordered by time, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestReadTelemetryEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.csv")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadTelemetry(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
