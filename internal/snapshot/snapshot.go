// Package snapshot reads and writes the binary frame format of a run.
//
// A file is a concatenation of frames. Each frame is little-endian:
//
//	"SEL" | version u8 | dim u8 | type hint \0 | unix time i64 | host \0 |
//	seed i32 | steps i32 | attraction, repulsion, damping, noise, dt f64 |
//	anisotropy dim*f64 | elapsed ms i32 | volume f64 |
//	boundary flag u8 [record] | point count i32 | payload | 0x00
//
// Mesh frames ("s3") carry every position followed by an i32 triangle count
// and 3*i32 indices per triangle. All other frames carry, per point, its
// position then an i32 neighbour count and the neighbour indices.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/san-kum/seals/internal/boundary"
)

const (
	Magic   = "SEL"
	Version = 1

	endMarker = 0x00
)

var (
	// ErrCorrupt indicates a frame that does not follow the format.
	ErrCorrupt = errors.New("snapshot: corrupt frame")

	// ErrVersion indicates a frame written by an unsupported format version.
	ErrVersion = errors.New("snapshot: unsupported version")
)

type Header struct {
	Version    uint8
	Dim        int
	TypeHint   string
	Timestamp  time.Time
	Hostname   string
	Seed       int32
	Steps      int32
	Attraction float64
	Repulsion  float64
	Damping    float64
	Noise      float64
	DT         float64
	Anisotropy []float64
	Elapsed    time.Duration
	Volume     float64
	Boundary   *boundary.Record
}

// Frame is one snapshot of a run.
type Frame struct {
	Header
	Positions  [][]float64
	Triangles  [][3]int32
	Neighbours [][]int32
}

// Mesh reports whether the frame carries a triangle payload.
func (f *Frame) Mesh() bool { return f.TypeHint == "s3" }

// Encoder appends frames to a stream.
type Encoder struct {
	w   io.Writer
	buf []byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes f as one complete frame. Nothing is written if f is invalid.
func (e *Encoder) Encode(f *Frame) error {
	b, err := f.AppendBinary(e.buf[:0])
	if err != nil {
		return err
	}
	e.buf = b
	if _, err := e.w.Write(b); err != nil {
		return fmt.Errorf("snapshot write: %w", err)
	}
	return nil
}

func appendString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}

func appendF64(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}

func appendI32(b []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(v))
}

// AppendBinary appends the encoded frame to b.
func (f *Frame) AppendBinary(b []byte) ([]byte, error) {
	if f.Dim != 2 && f.Dim != 3 {
		return nil, fmt.Errorf("%w: dimension %d", ErrCorrupt, f.Dim)
	}
	if len(f.Anisotropy) != f.Dim {
		return nil, fmt.Errorf("%w: anisotropy has %d components, want %d", ErrCorrupt, len(f.Anisotropy), f.Dim)
	}
	if !f.Mesh() && len(f.Neighbours) != len(f.Positions) {
		return nil, fmt.Errorf("%w: %d neighbour lists for %d points", ErrCorrupt, len(f.Neighbours), len(f.Positions))
	}

	b = append(b, Magic...)
	b = append(b, Version, byte(f.Dim))
	b = appendString(b, f.TypeHint)
	b = binary.LittleEndian.AppendUint64(b, uint64(f.Timestamp.Unix()))
	b = appendString(b, f.Hostname)
	b = appendI32(b, f.Seed)
	b = appendI32(b, f.Steps)
	for _, v := range []float64{f.Attraction, f.Repulsion, f.Damping, f.Noise, f.DT} {
		b = appendF64(b, v)
	}
	for _, v := range f.Anisotropy {
		b = appendF64(b, v)
	}
	b = appendI32(b, int32(f.Elapsed.Milliseconds()))
	b = appendF64(b, f.Volume)

	if f.Boundary != nil {
		b = append(b, 1)
		var err error
		if b, err = f.Boundary.AppendBinary(b); err != nil {
			return nil, err
		}
	} else {
		b = append(b, 0)
	}

	b = appendI32(b, int32(len(f.Positions)))
	appendPos := func(p []float64) {
		for k := 0; k < f.Dim; k++ {
			b = appendF64(b, p[k])
		}
	}
	if f.Mesh() {
		for _, p := range f.Positions {
			appendPos(p)
		}
		b = appendI32(b, int32(len(f.Triangles)))
		for _, t := range f.Triangles {
			b = appendI32(b, t[0])
			b = appendI32(b, t[1])
			b = appendI32(b, t[2])
		}
	} else {
		for i, p := range f.Positions {
			appendPos(p)
			b = appendI32(b, int32(len(f.Neighbours[i])))
			for _, n := range f.Neighbours[i] {
				b = appendI32(b, n)
			}
		}
	}
	return append(b, endMarker), nil
}

// Decoder reads consecutive frames from a stream.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next frame. It returns io.EOF when the stream ends
// cleanly between frames.
func (d *Decoder) Decode() (*Frame, error) {
	var magic [3]byte
	if _, err := io.ReadFull(d.r, magic[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if string(magic[:]) != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, magic[:])
	}

	f, err := d.frame()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		if errors.Is(err, ErrCorrupt) || errors.Is(err, ErrVersion) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return f, nil
}

func (d *Decoder) frame() (*Frame, error) {
	f := &Frame{}
	var err error
	u8 := func() uint8 {
		if err != nil {
			return 0
		}
		var c byte
		c, err = d.r.ReadByte()
		return c
	}
	i32 := func() int32 {
		var v int32
		if err == nil {
			err = binary.Read(d.r, binary.LittleEndian, &v)
		}
		return v
	}
	f64 := func() float64 {
		var v float64
		if err == nil {
			err = binary.Read(d.r, binary.LittleEndian, &v)
		}
		return v
	}
	str := func() string {
		if err != nil {
			return ""
		}
		var s string
		s, err = d.r.ReadString(0)
		if err != nil {
			return ""
		}
		return s[:len(s)-1]
	}

	f.Version = u8()
	if err == nil && f.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, f.Version)
	}
	f.Dim = int(u8())
	if err == nil && f.Dim != 2 && f.Dim != 3 {
		return nil, fmt.Errorf("%w: dimension %d", ErrCorrupt, f.Dim)
	}
	f.TypeHint = str()
	var ts int64
	if err == nil {
		err = binary.Read(d.r, binary.LittleEndian, &ts)
	}
	f.Timestamp = time.Unix(ts, 0)
	f.Hostname = str()
	f.Seed = i32()
	f.Steps = i32()
	f.Attraction, f.Repulsion, f.Damping, f.Noise, f.DT = f64(), f64(), f64(), f64(), f64()
	f.Anisotropy = make([]float64, f.Dim)
	for k := range f.Anisotropy {
		f.Anisotropy[k] = f64()
	}
	f.Elapsed = time.Duration(i32()) * time.Millisecond
	f.Volume = f64()
	if err != nil {
		return nil, err
	}

	if u8() == 1 && err == nil {
		rec, rerr := boundary.ReadRecord(d.r)
		if rerr != nil {
			return nil, rerr
		}
		f.Boundary = &rec
	}

	n := int(i32())
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative point count %d", ErrCorrupt, n)
	}

	pos := func() []float64 {
		p := make([]float64, f.Dim)
		for k := range p {
			p[k] = f64()
		}
		return p
	}
	f.Positions = make([][]float64, 0, n)
	if f.Mesh() {
		for i := 0; i < n && err == nil; i++ {
			f.Positions = append(f.Positions, pos())
		}
		nt := int(i32())
		for i := 0; i < nt && err == nil; i++ {
			f.Triangles = append(f.Triangles, [3]int32{i32(), i32(), i32()})
		}
	} else {
		f.Neighbours = make([][]int32, 0, n)
		for i := 0; i < n && err == nil; i++ {
			f.Positions = append(f.Positions, pos())
			cnt := int(i32())
			list := make([]int32, 0, max(cnt, 0))
			for k := 0; k < cnt && err == nil; k++ {
				list = append(list, i32())
			}
			f.Neighbours = append(f.Neighbours, list)
		}
	}

	end := u8()
	if err != nil {
		return nil, err
	}
	if end != endMarker {
		return nil, fmt.Errorf("%w: missing end marker", ErrCorrupt)
	}
	return f, nil
}

// ReadAll decodes every frame in r.
func ReadAll(r io.Reader) ([]*Frame, error) {
	d := NewDecoder(r)
	var frames []*Frame
	for {
		f, err := d.Decode()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}
