package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/san-kum/seals/internal/experiment"
	"github.com/san-kum/seals/internal/storage"
)

// BatchOptions are shared by every run of a batch.
type BatchOptions struct {
	Store    *storage.Store
	FrameDB  bool
	Logger   *slog.Logger
	Hostname string
	// Workers runs that many jobs at once. Zero or one runs them in order.
	Workers int
}

// BatchResult pairs a job with the outcome of its run.
type BatchResult struct {
	Job    Job
	Result *experiment.Result
}

// RunScenario executes every job of a scenario. It stops at the first
// failing run and returns the results gathered so far.
func RunScenario(ctx context.Context, sc *Scenario, reg *experiment.Registry, opts BatchOptions) ([]BatchResult, error) {
	jobs, err := sc.Jobs(reg, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	return RunJobs(ctx, jobs, reg, opts)
}

// RunJobs executes jobs and returns their results in job order.
func RunJobs(ctx context.Context, jobs []Job, reg *experiment.Registry, opts BatchOptions) ([]BatchResult, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Workers > 1 {
		return runParallel(ctx, jobs, reg, opts)
	}

	results := make([]BatchResult, 0, len(jobs))
	for i, job := range jobs {
		opts.Logger.Info("batch run", "index", i+1, "of", len(jobs), "run", job.RunID)
		res, err := runJob(ctx, job, reg, opts)
		if res != nil {
			results = append(results, BatchResult{Job: job, Result: res})
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// runParallel fans jobs out over a fixed number of workers. The first
// failure cancels the jobs still running.
func runParallel(ctx context.Context, jobs []Job, reg *experiment.Registry, opts BatchOptions) ([]BatchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]*experiment.Result, len(jobs))
	errs := make([]error, len(jobs))
	next := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(opts.Workers, len(jobs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range next {
				opts.Logger.Info("batch run", "index", idx+1, "of", len(jobs), "run", jobs[idx].RunID)
				out[idx], errs[idx] = runJob(ctx, jobs[idx], reg, opts)
				if errs[idx] != nil {
					cancel()
				}
			}
		}()
	}
feed:
	for i := range jobs {
		select {
		case next <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(next)
	wg.Wait()

	results := make([]BatchResult, 0, len(jobs))
	for i, res := range out {
		if res != nil {
			results = append(results, BatchResult{Job: jobs[i], Result: res})
		}
	}
	// prefer the failure that cancelled the others
	var first error
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return results, err
		}
		if first == nil {
			first = err
		}
	}
	if first != nil {
		return results, first
	}
	return results, ctx.Err()
}

func runJob(ctx context.Context, job Job, reg *experiment.Registry, opts BatchOptions) (*experiment.Result, error) {
	runner, err := reg.Prepare(job.Config, experiment.Options{
		Store:    opts.Store,
		RunID:    job.RunID,
		FrameDB:  opts.FrameDB,
		Logger:   opts.Logger,
		Hostname: opts.Hostname,
	})
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", job.RunID, err)
	}

	res, err := runner.Run(ctx)
	if runner.Output != nil {
		if cerr := runner.Output.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return res, fmt.Errorf("run %s: %w", job.RunID, err)
	}
	return res, nil
}

// Best returns the result with the lowest value of metric, or the highest
// when maximize is set. ok is false when no result carries the metric.
func Best(results []BatchResult, metric string, maximize bool) (best BatchResult, ok bool) {
	bestVal := math.Inf(1)
	if maximize {
		bestVal = math.Inf(-1)
	}
	for _, r := range results {
		v, found := r.Result.Metrics[metric]
		if !found || math.IsNaN(v) {
			continue
		}
		if (!maximize && v < bestVal) || (maximize && v > bestVal) {
			bestVal = v
			best, ok = r, true
		}
	}
	return best, ok
}
