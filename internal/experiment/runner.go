package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/metrics"
	"github.com/san-kum/seals/internal/snapshot"
	"github.com/san-kum/seals/internal/storage"
	"github.com/san-kum/seals/internal/surface"
)

// Observer is notified as a run advances. Calls happen on the runner's
// goroutine, so m may be read during the call but not kept, and must not
// block for long.
type Observer interface {
	OnStep(m surface.Model, st surface.Stats)
	OnFrame(f *snapshot.Frame)
}

// Runner drives one model for the iterations of its config.
type Runner struct {
	Model  surface.Model
	Config *config.Config
	// Output receives telemetry, frames and metadata. Nil runs keep nothing.
	Output    *storage.Run
	Logger    *slog.Logger
	Metrics   metrics.Set
	Observers []Observer
	Hostname  string
}

// Result summarises a finished or cancelled run.
type Result struct {
	Steps     int
	Points    int
	Volume    float64
	Elapsed   time.Duration
	Frames    int
	Cancelled bool
	Final     surface.Stats
	Metrics   map[string]float64
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("steps", r.Steps),
		slog.Int("points", r.Points),
		slog.Float64("volume", r.Volume),
		slog.Duration("elapsed", r.Elapsed),
		slog.Int("frames", r.Frames),
		slog.Bool("cancelled", r.Cancelled),
	)
}

// Run advances the model until the configured iterations are done or ctx is
// cancelled. A zero growth interval disables growth and a zero snapshot
// interval keeps only the first and the last frame.
//
// A cancelled run still writes a final frame and its metadata and returns
// ctx's error with the partial result. Invariant panics from the model are
// not recovered.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	log := r.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r.Metrics.Reset()

	start := time.Now()
	res := &Result{}

	log.Info("run started",
		"strategy", cfg.Strategy,
		"dim", cfg.Dim,
		"seed", cfg.Seed,
		"iterations", cfg.Iterations,
		"points", r.Model.Len())

	if err := r.snapshot(start, log); err != nil {
		return res, err
	}
	lastFrame := r.Model.Step()

	var runErr error
	step := 0
loop:
	for ; step < cfg.Iterations; step++ {
		select {
		case <-ctx.Done():
			res.Cancelled = true
			runErr = ctx.Err()
			break loop
		default:
		}

		r.Model.SetProgress(cfg.Progress(step))
		if cfg.GrowthInterval > 0 && step%cfg.GrowthInterval == 0 && r.Model.Len() < cfg.MaxPoints {
			r.Model.AddParticle()
		}
		r.Model.Update()

		if len(r.Metrics) > 0 || len(r.Observers) > 0 {
			st := r.Model.Stats()
			r.Metrics.Observe(st)
			for _, o := range r.Observers {
				o.OnStep(r.Model, st)
			}
		}

		if cfg.SnapshotEvery > 0 && (step+1)%cfg.SnapshotEvery == 0 {
			if err := r.snapshot(start, log); err != nil {
				return res, err
			}
			lastFrame = r.Model.Step()
		}
	}

	if lastFrame != r.Model.Step() {
		if err := r.snapshot(start, log); err != nil {
			return res, err
		}
	}

	final := r.Model.Stats()
	res.Steps = r.Model.Step()
	res.Points = final.Points
	res.Volume = final.Volume
	res.Elapsed = time.Since(start)
	res.Final = final
	res.Metrics = r.Metrics.Values()
	if r.Output != nil {
		res.Frames = r.Output.Frames()
		meta := storage.RunMetadata{
			Strategy:  cfg.Strategy,
			Dim:       cfg.Dim,
			Timestamp: start,
			Hostname:  r.Hostname,
			Seed:      cfg.Seed,
			Steps:     res.Steps,
			Points:    res.Points,
			Volume:    res.Volume,
			ElapsedMS: res.Elapsed.Milliseconds(),
			Cancelled: res.Cancelled,
			Metrics:   res.Metrics,
		}
		if err := r.Output.Finish(meta); err != nil {
			return res, err
		}
	}

	if res.Cancelled {
		log.Warn("run cancelled", "result", res)
	} else {
		log.Info("run finished", "result", res)
	}
	return res, runErr
}

// snapshot records the current state as a telemetry row and a frame and
// hands the frame to the observers.
func (r *Runner) snapshot(start time.Time, log *slog.Logger) error {
	elapsed := time.Since(start)
	st := r.Model.Stats()
	log.Info("snapshot",
		"step", st.Step,
		"points", st.Points,
		"volume", st.Volume,
		"elapsed", elapsed.Round(time.Millisecond))

	f := r.Model.Frame(surface.FrameMeta{
		Timestamp: time.Now(),
		Hostname:  r.Hostname,
		Elapsed:   elapsed,
	})
	if r.Output != nil {
		row := storage.Telemetry{
			Step:            st.Step,
			Points:          st.Points,
			Edges:           st.Edges,
			Volume:          st.Volume,
			EdgeMean:        st.EdgeMean,
			EdgeStd:         st.EdgeStd,
			Extent:          st.Extent,
			MeanFlexibility: st.MeanFlexibility,
			ElapsedMS:       elapsed.Milliseconds(),
		}
		if err := r.Output.AppendTelemetry(row); err != nil {
			return fmt.Errorf("step %d: %w", st.Step, err)
		}
		if err := r.Output.WriteFrame(f); err != nil {
			return fmt.Errorf("step %d: %w", st.Step, err)
		}
	}
	for _, o := range r.Observers {
		o.OnFrame(f)
	}
	return nil
}
