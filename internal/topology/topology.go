// Package topology holds the neighbour structures of a growing surface.
//
// Three variants share the [Topology] interface:
//
//   - [Ring]: closed curve, every point has a previous and a next neighbour
//   - [Mesh]: closed triangle mesh with a symmetric edge map
//   - [Tree]: acyclic connected graph grown from leaves
//
// Neighbour lists are kept sorted (ring lists are [prev, next]) so iteration
// order never depends on map ordering. The force loop reads [Topology.Adjacency]
// once per step and walks the slices directly.
package topology

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrAsymmetric indicates i lists j as a neighbour but j does not list i.
	ErrAsymmetric = errors.New("topology: asymmetric neighbour relation")

	// ErrIndexRange indicates a neighbour or triangle index outside the point set.
	ErrIndexRange = errors.New("topology: index out of range")

	// ErrMissingEdge indicates a triangle edge absent from the edge map.
	ErrMissingEdge = errors.New("topology: triangle edge missing from edge map")

	// ErrShape indicates a variant-specific structural violation.
	ErrShape = errors.New("topology: invalid structure")
)

// Topology answers neighbour queries for the simulation core.
type Topology interface {
	Len() int
	AreNeighbours(i, j int) bool
	Neighbours(i int) []int
	// Adjacency exposes the neighbour lists of every point. The slices are
	// owned by the topology and must not be modified by callers.
	Adjacency() [][]int
	TypeHint(dim int) string
	Validate() error
}

// Contains reports whether list holds v. Neighbour lists are short, so a
// linear scan beats a binary search.
func Contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func insertSorted(list []int, v int) []int {
	i, found := slices.BinarySearch(list, v)
	if found {
		return list
	}
	return slices.Insert(list, i, v)
}

func removeSorted(list []int, v int) []int {
	i, found := slices.BinarySearch(list, v)
	if !found {
		return list
	}
	return slices.Delete(list, i, i+1)
}

func checkSymmetric(adj [][]int) error {
	n := len(adj)
	for i, list := range adj {
		for _, j := range list {
			if j < 0 || j >= n {
				return fmt.Errorf("%w: point %d lists %d (n=%d)", ErrIndexRange, i, j, n)
			}
			if j == i {
				return fmt.Errorf("%w: point %d lists itself", ErrShape, i)
			}
			if !Contains(adj[j], i) {
				return fmt.Errorf("%w: %d -> %d", ErrAsymmetric, i, j)
			}
		}
	}
	return nil
}
