package experiment

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/metrics"
	"github.com/san-kum/seals/internal/storage"
	"github.com/san-kum/seals/internal/surface"
)

// Registry resolves names used on the command line and in scenarios.
type Registry struct {
	presets map[string]func() *config.Config
	metrics func(cfg *config.Config) metrics.Set
}

func NewRegistry() *Registry {
	return &Registry{
		presets: config.Presets,
		metrics: func(cfg *config.Config) metrics.Set {
			return metrics.Default(cfg.Params.Attraction)
		},
	}
}

// GetPreset returns a fresh copy of a named preset.
func (r *Registry) GetPreset(name string) (*config.Config, error) {
	fn, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListPresets() []string {
	return config.ListPresets()
}

// ListStrategies returns the growth strategies available in dim dimensions.
func (r *Registry) ListStrategies(dim int) []string {
	return surface.Strategies(dim)
}

func (r *Registry) DefaultMetrics(cfg *config.Config) metrics.Set {
	return r.metrics(cfg)
}

// Options controls how Prepare lays out a run.
type Options struct {
	// Store receives the run directory. Nil runs keep nothing.
	Store    *storage.Store
	RunID    string
	FrameDB  bool
	Logger   *slog.Logger
	Hostname string
}

// Prepare builds the model for cfg and, when a store is given, opens its run
// directory. The caller closes Runner.Output.
func (r *Registry) Prepare(cfg *config.Config, opts Options) (*Runner, error) {
	model, err := surface.Build(cfg)
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		Model:    model,
		Config:   cfg,
		Logger:   opts.Logger,
		Metrics:  r.DefaultMetrics(cfg),
		Hostname: opts.Hostname,
	}
	if opts.Store == nil {
		return runner, nil
	}

	if err := opts.Store.Init(); err != nil {
		return nil, err
	}
	id := opts.RunID
	if id == "" {
		id = storage.RunID(cfg, time.Now())
	}
	out, err := opts.Store.Create(id, cfg, opts.FrameDB)
	if err != nil {
		return nil, err
	}
	runner.Output = out
	if runner.Logger != nil {
		runner.Logger = runner.Logger.With("run", id)
	}
	return runner, nil
}
