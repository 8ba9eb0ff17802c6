package surface

import (
	"runtime"
	"sync"
)

// minChunk is the smallest number of points handed to one worker.
const minChunk = 256

// ParallelFor executes fn over [0, n) split into contiguous chunks, one per
// worker, and waits for all of them.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelSum adds fn(i) over [0, n). The range is cut into chunks of a fixed
// size independent of the worker count and the partial sums are added in
// chunk order, so the result is the same on every machine.
func ParallelSum(n, chunk int, fn func(i int) float64) float64 {
	if n <= 0 {
		return 0
	}
	if chunk < 1 {
		chunk = 1
	}
	chunks := (n + chunk - 1) / chunk
	partial := make([]float64, chunks)
	ParallelFor(chunks, 1, func(start, end int) {
		for c := start; c < end; c++ {
			lo := c * chunk
			hi := min(lo+chunk, n)
			var sum float64
			for i := lo; i < hi; i++ {
				sum += fn(i)
			}
			partial[c] = sum
		}
	})
	var total float64
	for _, v := range partial {
		total += v
	}
	return total
}
