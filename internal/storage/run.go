package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/seals/internal/snapshot"
)

// Run is an open run directory. It is not safe for concurrent use.
type Run struct {
	ID string

	dir       string
	telemetry *os.File
	rows      int
	snapshots *SnapshotWriter
	db        *FrameDB
}

func (r *Run) Dir() string { return r.dir }

// Frames returns the number of frames written so far.
func (r *Run) Frames() int { return r.snapshots.Frames() }

// AppendTelemetry writes rows to telemetry.csv, with the header before the
// first row.
func (r *Run) AppendTelemetry(rows ...Telemetry) error {
	if len(rows) == 0 {
		return nil
	}
	var err error
	if r.rows == 0 {
		err = gocsv.Marshal(rows, r.telemetry)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, r.telemetry)
	}
	if err != nil {
		return fmt.Errorf("write telemetry: %w", err)
	}
	r.rows += len(rows)
	return nil
}

// WriteFrame appends f to the snapshot stream and, when enabled, the frame
// database.
func (r *Run) WriteFrame(f *snapshot.Frame) error {
	if err := r.snapshots.Write(f); err != nil {
		return err
	}
	if r.db != nil {
		if _, err := r.db.Append(f); err != nil {
			return err
		}
	}
	return nil
}

// Finish records meta as the run's metadata.json.
func (r *Run) Finish(meta RunMetadata) error {
	meta.ID = r.ID
	meta.Frames = r.Frames()

	f, err := os.Create(filepath.Join(r.dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Close flushes and closes every file of the run.
func (r *Run) Close() error {
	errs := []error{r.snapshots.Close(), r.telemetry.Close()}
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	return errors.Join(errs...)
}

// SnapshotWriter appends frames to a snapshot file.
type SnapshotWriter struct {
	f      *os.File
	w      *bufio.Writer
	enc    *snapshot.Encoder
	frames int
}

func NewSnapshotWriter(path string) (*SnapshotWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	return &SnapshotWriter{f: f, w: w, enc: snapshot.NewEncoder(w)}, nil
}

// Write encodes one frame and flushes it so a killed run keeps every
// complete frame.
func (s *SnapshotWriter) Write(f *snapshot.Frame) error {
	if err := s.enc.Encode(f); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	s.frames++
	return nil
}

func (s *SnapshotWriter) Frames() int { return s.frames }

func (s *SnapshotWriter) Close() error {
	err := s.w.Flush()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadSnapshots decodes every frame of a snapshot file.
func ReadSnapshots(path string) ([]*snapshot.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return snapshot.ReadAll(f)
}
