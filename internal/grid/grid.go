// Package grid provides a uniform voxel index over the cube [-0.5, 0.5)^D.
//
// The grid only stores point indices. It is cleared and refilled once per
// simulation step, so [Grid.Clear] keeps the capacity of every cell.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/seals/internal/vecmath"
)

// ErrOutOfBounds is the panic value (wrapped) of Add for positions outside the cube.
var ErrOutOfBounds = errors.New("grid: position outside [-0.5, 0.5)")

// Grid maps voxels of side 1/resolution to the point indices inside them.
type Grid[V vecmath.Vec[V]] struct {
	resolution int
	dim        int
	cells      [][]int
	// offsets of the 3^D neighbourhood, as per-axis deltas in {-1, 0, 1}
	offsets [][]int
}

// New creates a grid with ceil(1/cellSize) cells along each axis.
func New[V vecmath.Vec[V]](cellSize float64) *Grid[V] {
	return WithResolution[V](int(math.Ceil(1 / cellSize)))
}

// ForRadius creates the finest grid whose cells are at least radius wide, so
// that Sample covers every point closer than radius.
func ForRadius[V vecmath.Vec[V]](radius float64) *Grid[V] {
	return WithResolution[V](int(math.Floor(1 / radius)))
}

func WithResolution[V vecmath.Vec[V]](res int) *Grid[V] {
	if res < 1 {
		res = 1
	}
	dim := vecmath.Dim[V]()

	total := 1
	hood := 1
	for i := 0; i < dim; i++ {
		total *= res
		hood *= 3
	}

	cells := make([][]int, total)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	// base-3 digits of k give the offset along each axis
	offsets := make([][]int, hood)
	for k := range offsets {
		off := make([]int, dim)
		n := k
		for a := 0; a < dim; a++ {
			off[a] = n%3 - 1
			n /= 3
		}
		offsets[k] = off
	}

	return &Grid[V]{
		resolution: res,
		dim:        dim,
		cells:      cells,
		offsets:    offsets,
	}
}

func (g *Grid[V]) Resolution() int { return g.resolution }

// Neighbourhood returns the number of cells returned by Sample (3^D).
func (g *Grid[V]) Neighbourhood() int { return len(g.offsets) }

// Clear empties every cell while keeping its allocated capacity.
func (g *Grid[V]) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Add inserts index into the cell containing pos. It panics when pos lies
// outside the covered cube; callers clamp with [Clamp] first.
func (g *Grid[V]) Add(pos V, index int) {
	idx := g.cellIndex(pos)
	if idx < 0 {
		panic(fmt.Errorf("%w: %v", ErrOutOfBounds, pos))
	}
	g.cells[idx] = append(g.cells[idx], index)
}

// Sample fills out with the 3^D cells around pos, reusing its backing array.
// Cells outside the grid are nil. The returned slices alias grid storage and
// are only valid until the next Clear or Add.
func (g *Grid[V]) Sample(pos V, out [][]int) [][]int {
	out = out[:0]
	var coord [3]int
	for a := 0; a < g.dim; a++ {
		coord[a] = g.axisCoord(pos[a])
	}
	for _, off := range g.offsets {
		idx, stride := 0, 1
		for a := 0; a < g.dim; a++ {
			c := coord[a] + off[a]
			if c < 0 || c >= g.resolution {
				idx = -1
				break
			}
			idx += c * stride
			stride *= g.resolution
		}
		if idx < 0 {
			out = append(out, nil)
			continue
		}
		out = append(out, g.cells[idx])
	}
	return out
}

// Count returns how many indices are stored in the 3^D cells around pos.
func (g *Grid[V]) Count(pos V) int {
	var buf [27][]int
	n := 0
	for _, cell := range g.Sample(pos, buf[:0]) {
		n += len(cell)
	}
	return n
}

func (g *Grid[V]) axisCoord(x float64) int {
	return int(math.Floor((x + 0.5) * float64(g.resolution)))
}

func (g *Grid[V]) cellIndex(pos V) int {
	idx, stride := 0, 1
	for a := 0; a < g.dim; a++ {
		c := g.axisCoord(pos[a])
		if c < 0 || c >= g.resolution {
			return -1
		}
		idx += c * stride
		stride *= g.resolution
	}
	return idx
}

var upper = math.Nextafter(0.5, 0)

// Clamp moves pos into the cube covered by every grid.
func Clamp[V vecmath.Vec[V]](pos V) V {
	for a := 0; a < len(pos); a++ {
		switch {
		case pos[a] < -0.5:
			pos[a] = -0.5
		case pos[a] > upper:
			pos[a] = upper
		case math.IsNaN(pos[a]):
			pos[a] = 0
		}
	}
	return pos
}
