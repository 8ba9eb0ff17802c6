package storage

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/seals/internal/snapshot"
)

// One row per point per frame. 2D frames store z as 0.
const schema = `
CREATE TABLE frames (
	frame   INTEGER PRIMARY KEY,
	step    INTEGER,
	points  INTEGER,
	volume  REAL,
	hint    TEXT);
CREATE TABLE points (
	frame   INTEGER,
	id      INTEGER,
	x       REAL,
	y       REAL,
	z       REAL,
	degree  INTEGER);
CREATE INDEX idx_points_frame ON points (frame, id);
`

const (
	insertFrame  = `INSERT INTO frames VALUES (?, ?, ?, ?, ?);`
	insertPoint  = `INSERT INTO points VALUES (?, ?, ?, ?, ?, ?);`
	queryFrame   = `SELECT x, y, z FROM points WHERE frame = ? ORDER BY id ASC;`
	countFrames  = `SELECT COUNT(*) FROM frames;`
	queryVolumes = `SELECT step, volume FROM frames ORDER BY frame ASC;`
)

// FrameDB mirrors snapshot frames into an sqlite database for ad hoc queries.
type FrameDB struct {
	db     *sql.DB
	frame  *sql.Stmt
	point  *sql.Stmt
	frames int
}

// OpenFrameDB creates a new database at path. It refuses to reuse an
// existing file.
func OpenFrameDB(path string) (*FrameDB, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("frame db %s exists", path)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	fdb := &FrameDB{db: db}
	if fdb.frame, err = db.Prepare(insertFrame); err != nil {
		db.Close()
		return nil, err
	}
	if fdb.point, err = db.Prepare(insertPoint); err != nil {
		db.Close()
		return nil, err
	}
	return fdb, nil
}

// ReadFrameDB opens an existing database for queries only.
func ReadFrameDB(path string) (*FrameDB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	fdb := &FrameDB{db: db}
	if fdb.frames, err = fdb.Count(); err != nil {
		db.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return fdb, nil
}

// Append stores f in one transaction and returns its frame number.
func (d *FrameDB) Append(f *snapshot.Frame) (int, error) {
	if d.frame == nil {
		return 0, fmt.Errorf("frame db is read only")
	}
	degree := degrees(f)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	id := d.frames
	if _, err := tx.Stmt(d.frame).Exec(id, f.Steps, len(f.Positions), f.Volume, f.TypeHint); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("insert frame %d: %w", id, err)
	}
	point := tx.Stmt(d.point)
	for i, p := range f.Positions {
		var z float64
		if len(p) > 2 {
			z = p[2]
		}
		if _, err := point.Exec(id, i, p[0], p[1], z, degree[i]); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("insert point %d of frame %d: %w", i, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	d.frames++
	return id, nil
}

// Positions returns the point positions of one frame, always 3 wide.
func (d *FrameDB) Positions(frame int) ([][3]float64, error) {
	rows, err := d.db.Query(queryFrame, frame)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][3]float64
	for rows.Next() {
		var p [3]float64
		if err := rows.Scan(&p[0], &p[1], &p[2]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of stored frames.
func (d *FrameDB) Count() (int, error) {
	var n int
	err := d.db.QueryRow(countFrames).Scan(&n)
	return n, err
}

// Volumes returns the step and volume of every stored frame in order.
func (d *FrameDB) Volumes() (steps []int, volumes []float64, err error) {
	rows, err := d.db.Query(queryVolumes)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s int
		var v float64
		if err := rows.Scan(&s, &v); err != nil {
			return nil, nil, err
		}
		steps = append(steps, s)
		volumes = append(volumes, v)
	}
	return steps, volumes, rows.Err()
}

func (d *FrameDB) Close() error {
	if d.frame != nil {
		d.frame.Close()
		d.point.Close()
	}
	return d.db.Close()
}

// degrees counts the neighbours of every point of f.
func degrees(f *snapshot.Frame) []int {
	deg := make([]int, len(f.Positions))
	if f.Mesh() {
		// a vertex of a closed mesh has as many triangles as neighbours
		for _, t := range f.Triangles {
			for k := 0; k < 3; k++ {
				deg[t[k]]++
			}
		}
		return deg
	}
	for i, nb := range f.Neighbours {
		deg[i] = len(nb)
	}
	return deg
}
