// Package boundary implements the walls that keep a growing surface in place.
//
// A boundary pushes points back with a soft force once they pass (1-extent)
// of its radius, clamps them hard at the radius, may grow over time and
// anchors points that are attached to the wall.
package boundary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/seals/internal/vecmath"
)

// ErrUnknownKind indicates a boundary record with an unknown type id.
var ErrUnknownKind = errors.New("boundary: unknown record kind")

// Boundary is consulted by the simulation core once per point and step.
type Boundary[V vecmath.Vec[V]] interface {
	// NeedsVolume reports whether Update uses the measured volume.
	NeedsVolume() bool
	// Update is called once per step after integration.
	Update(volume float64)
	// Anchor moves an attached point toward its place on the wall by at most
	// maxDisplacement. A non-zero shift must be applied to every other point.
	Anchor(pos V, maxDisplacement float64) (moved, shift V)
	Force(pos V) V
	Hard(pos V) V
	Record() Record
}

type Kind uint8

const (
	KindSphere   Kind = 0
	KindCylinder Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindCylinder:
		return "cylinder"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Record is the serialised state of a boundary.
type Record struct {
	Kind   Kind    `json:"kind"`
	Radius float32 `json:"radius"`
	Extent float32 `json:"extent"`
	Offset bool    `json:"offset,omitempty"`
}

// AppendBinary appends the tagged record: the kind byte, then radius and
// extent as float32, then the offset flag for spheres.
func (r Record) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, byte(r.Kind))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(r.Radius))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(r.Extent))
	switch r.Kind {
	case KindSphere:
		if r.Offset {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case KindCylinder:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, r.Kind)
	}
	return b, nil
}

// ReadRecord decodes a record written by AppendBinary.
func ReadRecord(r io.Reader) (Record, error) {
	var head struct {
		Kind   uint8
		Radius float32
		Extent float32
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return Record{}, fmt.Errorf("boundary record: %w", err)
	}
	rec := Record{Kind: Kind(head.Kind), Radius: head.Radius, Extent: head.Extent}
	switch rec.Kind {
	case KindSphere:
		var flag [1]byte
		if _, err := io.ReadFull(r, flag[:]); err != nil {
			return Record{}, fmt.Errorf("boundary record: %w", err)
		}
		rec.Offset = flag[0] != 0
	case KindCylinder:
	default:
		return Record{}, fmt.Errorf("%w: %d", ErrUnknownKind, head.Kind)
	}
	return rec, nil
}

// Options configure both boundary kinds.
type Options struct {
	Radius    float64
	MaxRadius float64
	// Extent is the depth, as a fraction of the radius, over which the soft
	// force acts. 0 makes the wall hard.
	Extent     float64
	GrowthRate float64
	// TargetDensity caps measure / ball volume; the radius grows to keep it.
	TargetDensity float64
	// Offset drags the whole body along with an attached first point instead
	// of moving only that point.
	Offset bool
}

func (o Options) capped(r float64) float64 {
	if o.MaxRadius > 0 && r > o.MaxRadius {
		return o.MaxRadius
	}
	return r
}

// softForce is the inward push for a point at distance l from the axis or centre.
func softForce(l, radius, extent float64) (float64, bool) {
	if l <= radius*(1-extent) {
		return 0, false
	}
	d := (1 - extent) - l/radius
	return -d * d * 0.5, true
}
