package topology

import (
	"fmt"
	"slices"
)

type edge struct{ a, b int }

func makeEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// Mesh is a closed triangle mesh with a symmetric edge map.
type Mesh struct {
	adj  [][]int
	tris [][3]int

	// edge -> ascending triangle ids, built on the first SplitEdge and
	// dropped by Reset. Only used for lookups.
	byEdge map[edge][]int
}

// NewMesh builds a mesh of n points from a triangle list.
func NewMesh(n int, tris [][3]int) *Mesh {
	m := &Mesh{adj: make([][]int, n)}
	m.Reset(tris)
	return m
}

func (m *Mesh) Len() int { return len(m.adj) }

func (m *Mesh) AreNeighbours(i, j int) bool { return Contains(m.adj[i], j) }

func (m *Mesh) Neighbours(i int) []int { return m.adj[i] }

func (m *Mesh) Adjacency() [][]int { return m.adj }

func (m *Mesh) Triangles() [][3]int { return m.tris }

func (m *Mesh) TypeHint(dim int) string { return fmt.Sprintf("s%d", dim) }

func (m *Mesh) Connect(a, b int) {
	m.adj[a] = insertSorted(m.adj[a], b)
	m.adj[b] = insertSorted(m.adj[b], a)
}

func (m *Mesh) Disconnect(a, b int) {
	m.adj[a] = removeSorted(m.adj[a], b)
	m.adj[b] = removeSorted(m.adj[b], a)
}

// AddVertex appends an unconnected point and returns its index.
func (m *Mesh) AddVertex() int {
	m.adj = append(m.adj, nil)
	return len(m.adj) - 1
}

// Reset replaces the triangle list and rebuilds the edge map from it. The
// point count is unchanged.
func (m *Mesh) Reset(tris [][3]int) {
	for i := range m.adj {
		m.adj[i] = m.adj[i][:0]
	}
	m.tris = tris
	m.byEdge = nil
	for _, t := range tris {
		m.Connect(t[0], t[1])
		m.Connect(t[1], t[2])
		m.Connect(t[2], t[0])
	}
}

// SplitEdge inserts a new point c on the edge (a, b): the edge is replaced by
// (a, c) and (c, b), and every triangle sharing (a, b) is split in two, in
// ascending triangle order. It returns c.
func (m *Mesh) SplitEdge(a, b int) int {
	if !m.AreNeighbours(a, b) {
		panic(fmt.Errorf("%w: split of non-edge (%d, %d)", ErrMissingEdge, a, b))
	}
	if m.byEdge == nil {
		m.buildIndex()
	}

	c := m.AddVertex()
	m.Disconnect(a, b)
	m.Connect(a, c)
	m.Connect(b, c)

	shared := slices.Clone(m.byEdge[makeEdge(a, b)])
	for _, i := range shared {
		d, e, f := m.tris[i][0], m.tris[i][1], m.tris[i][2]
		m.unindex(i)
		var added [3]int
		switch {
		case (d == a && e == b) || (d == b && e == a):
			m.tris[i][0] = c
			added = [3]int{d, c, f}
			m.Connect(c, f)
		case (e == a && f == b) || (e == b && f == a):
			m.tris[i][1] = c
			added = [3]int{d, e, c}
			m.Connect(c, d)
		default:
			m.tris[i][2] = c
			added = [3]int{f, c, e}
			m.Connect(c, e)
		}
		m.index(i)
		m.tris = append(m.tris, added)
		m.index(len(m.tris) - 1)
	}
	return c
}

func (m *Mesh) buildIndex() {
	m.byEdge = make(map[edge][]int, len(m.tris)*3/2)
	for i := range m.tris {
		m.index(i)
	}
}

func (m *Mesh) index(i int) {
	t := m.tris[i]
	for k := 0; k < 3; k++ {
		key := makeEdge(t[k], t[(k+1)%3])
		m.byEdge[key] = insertSorted(m.byEdge[key], i)
	}
}

func (m *Mesh) unindex(i int) {
	t := m.tris[i]
	for k := 0; k < 3; k++ {
		key := makeEdge(t[k], t[(k+1)%3])
		m.byEdge[key] = removeSorted(m.byEdge[key], i)
		if len(m.byEdge[key]) == 0 {
			delete(m.byEdge, key)
		}
	}
}

func (m *Mesh) Validate() error {
	if err := checkSymmetric(m.adj); err != nil {
		return err
	}
	for i, list := range m.adj {
		if !slices.IsSorted(list) {
			return fmt.Errorf("%w: neighbours of %d are not sorted", ErrShape, i)
		}
	}
	n := len(m.adj)
	for ti, t := range m.tris {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if a < 0 || a >= n || b < 0 || b >= n {
				return fmt.Errorf("%w: triangle %d %v (n=%d)", ErrIndexRange, ti, t, n)
			}
			if !m.AreNeighbours(a, b) {
				return fmt.Errorf("%w: triangle %d edge (%d, %d)", ErrMissingEdge, ti, a, b)
			}
		}
	}
	return nil
}
