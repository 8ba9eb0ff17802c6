package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/seals/internal/config"
)

const (
	metadataFile  = "metadata.json"
	configFile    = "config.yaml"
	telemetryFile = "telemetry.csv"
	snapshotFile  = "snapshots.sel"
	frameDBFile   = "frames.db"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir returns the directory of a run.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// RunID names a run after its strategy, dimension, seed and start time.
func RunID(cfg *config.Config, at time.Time) string {
	return fmt.Sprintf("%s%dd_s%d_%d", cfg.Strategy, cfg.Dim, cfg.Seed, at.Unix())
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Strategy  string             `json:"strategy"`
	Dim       int                `json:"dim"`
	Timestamp time.Time          `json:"timestamp"`
	Hostname  string             `json:"hostname"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	Points    int                `json:"points"`
	Volume    float64            `json:"volume"`
	ElapsedMS int64              `json:"elapsed_ms"`
	Frames    int                `json:"frames"`
	Cancelled bool               `json:"cancelled,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Telemetry is one row of telemetry.csv.
type Telemetry struct {
	Step            int     `csv:"step"`
	Points          int     `csv:"points"`
	Edges           int     `csv:"edges"`
	Volume          float64 `csv:"volume"`
	EdgeMean        float64 `csv:"edge_mean"`
	EdgeStd         float64 `csv:"edge_std"`
	Extent          float64 `csv:"extent"`
	MeanFlexibility float64 `csv:"flexibility"`
	ElapsedMS       int64   `csv:"elapsed_ms"`
}

// Create makes a fresh run directory and stores cfg in it. The run fails if
// the directory already holds a run.
func (s *Store) Create(runID string, cfg *config.Config, withDB bool) (*Run, error) {
	dir := s.Dir(runID)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err == nil {
		return nil, fmt.Errorf("run %s already exists", runID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := config.Save(filepath.Join(dir, configFile), cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}

	r := &Run{ID: runID, dir: dir}
	var err error
	if r.telemetry, err = os.Create(filepath.Join(dir, telemetryFile)); err != nil {
		return nil, err
	}
	if r.snapshots, err = NewSnapshotWriter(filepath.Join(dir, snapshotFile)); err != nil {
		r.telemetry.Close()
		return nil, err
	}
	if withDB {
		if r.db, err = OpenFrameDB(filepath.Join(dir, frameDBFile)); err != nil {
			r.telemetry.Close()
			r.snapshots.Close()
			return nil, err
		}
	}
	return r, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig reads back the configuration a run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

func (s *Store) LoadTelemetry(runID string) ([]Telemetry, error) {
	return ReadTelemetry(filepath.Join(s.Dir(runID), telemetryFile))
}

// SnapshotPath returns the snapshot stream of a run.
func (s *Store) SnapshotPath(runID string) string {
	return filepath.Join(s.Dir(runID), snapshotFile)
}

// FrameDBPath returns the frame database of a run, which only exists for
// runs stored with one.
func (s *Store) FrameDBPath(runID string) string {
	return filepath.Join(s.Dir(runID), frameDBFile)
}

// ReadTelemetry parses a telemetry.csv file.
func ReadTelemetry(path string) ([]Telemetry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []Telemetry{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return rows, nil
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}
