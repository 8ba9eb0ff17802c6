package viz

import (
	"sync"

	"github.com/san-kum/seals/internal/snapshot"
	"github.com/san-kum/seals/internal/surface"
)

const historyCapacity = 600

// Feed carries a run's progress from the runner goroutine to the live view.
// It keeps only the latest state, so a slow view never holds up the run.
type Feed struct {
	// FrameEvery is how often, in steps, the shape is captured for display.
	FrameEvery int

	mu      sync.Mutex
	stats   surface.Stats
	frame   *snapshot.Frame
	volumes []float64
	done    bool
	err     error
}

func NewFeed(frameEvery int) *Feed {
	if frameEvery <= 0 {
		frameEvery = 1
	}
	return &Feed{FrameEvery: frameEvery}
}

func (f *Feed) OnStep(m surface.Model, st surface.Stats) {
	var fr *snapshot.Frame
	if st.Step%f.FrameEvery == 0 {
		fr = m.Frame(surface.FrameMeta{})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = st
	f.volumes = append(f.volumes, st.Volume)
	if len(f.volumes) > historyCapacity {
		f.volumes = f.volumes[len(f.volumes)-historyCapacity:]
	}
	if fr != nil {
		f.frame = fr
	}
}

func (f *Feed) OnFrame(fr *snapshot.Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame = fr
}

// Finish marks the run as over.
func (f *Feed) Finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done = true
	f.err = err
}

// feedState is a copy of the feed safe to read without the lock.
type feedState struct {
	stats   surface.Stats
	frame   *snapshot.Frame
	volumes []float64
	done    bool
	err     error
}

func (f *Feed) state() feedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return feedState{
		stats:   f.stats,
		frame:   f.frame,
		volumes: append([]float64(nil), f.volumes...),
		done:    f.done,
		err:     f.err,
	}
}
