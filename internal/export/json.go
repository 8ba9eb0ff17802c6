package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/san-kum/seals/internal/boundary"
	"github.com/san-kum/seals/internal/snapshot"
)

// Frame is the JSON form of a snapshot frame.
type Frame struct {
	Dim        int              `json:"dim"`
	TypeHint   string           `json:"type"`
	Timestamp  time.Time        `json:"timestamp"`
	Hostname   string           `json:"hostname,omitempty"`
	Seed       int32            `json:"seed"`
	Steps      int32            `json:"steps"`
	Attraction float64          `json:"attraction"`
	Repulsion  float64          `json:"repulsion"`
	Damping    float64          `json:"damping"`
	Noise      float64          `json:"noise"`
	DT         float64          `json:"dt"`
	Anisotropy []float64        `json:"anisotropy"`
	ElapsedMS  int64            `json:"elapsed_ms"`
	Volume     float64          `json:"volume"`
	Boundary   *boundary.Record `json:"boundary,omitempty"`
	Positions  [][]float64      `json:"positions"`
	Triangles  [][3]int32       `json:"triangles,omitempty"`
	Neighbours [][]int32        `json:"neighbours,omitempty"`
}

func fromSnapshot(f *snapshot.Frame) Frame {
	return Frame{
		Dim:        f.Dim,
		TypeHint:   f.TypeHint,
		Timestamp:  f.Timestamp,
		Hostname:   f.Hostname,
		Seed:       f.Seed,
		Steps:      f.Steps,
		Attraction: f.Attraction,
		Repulsion:  f.Repulsion,
		Damping:    f.Damping,
		Noise:      f.Noise,
		DT:         f.DT,
		Anisotropy: f.Anisotropy,
		ElapsedMS:  f.Elapsed.Milliseconds(),
		Volume:     f.Volume,
		Boundary:   f.Boundary,
		Positions:  f.Positions,
		Triangles:  f.Triangles,
		Neighbours: f.Neighbours,
	}
}

// JSON writes frames as an indented JSON array.
func JSON(w io.Writer, frames ...*snapshot.Frame) error {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = fromSnapshot(f)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
