package topology

import "fmt"

// Ring is a closed curve: adj[i] is always [prev, next].
type Ring struct {
	adj [][]int
}

// NewRing connects points 0..n-1 into a cycle.
func NewRing(n int) *Ring {
	adj := make([][]int, n)
	for i := range adj {
		adj[i] = []int{(i + n - 1) % n, (i + 1) % n}
	}
	return &Ring{adj: adj}
}

func (r *Ring) Len() int { return len(r.adj) }

func (r *Ring) Prev(i int) int { return r.adj[i][0] }

func (r *Ring) Next(i int) int { return r.adj[i][1] }

func (r *Ring) AreNeighbours(i, j int) bool {
	return r.adj[i][0] == j || r.adj[i][1] == j
}

func (r *Ring) Neighbours(i int) []int { return r.adj[i] }

func (r *Ring) Adjacency() [][]int { return r.adj }

func (r *Ring) TypeHint(dim int) string { return fmt.Sprintf("s%d", dim) }

// InsertAfter splits the edge between a and its next neighbour and returns
// the index of the new point.
func (r *Ring) InsertAfter(a int) int {
	b := r.adj[a][1]
	c := len(r.adj)
	r.adj = append(r.adj, []int{a, b})
	r.adj[a][1] = c
	r.adj[b][0] = c
	return c
}

func (r *Ring) Validate() error {
	for i, list := range r.adj {
		if len(list) != 2 {
			return fmt.Errorf("%w: ring point %d has %d neighbours", ErrShape, i, len(list))
		}
	}
	if err := checkSymmetric(r.adj); err != nil {
		return err
	}
	for i := range r.adj {
		if r.Prev(r.Next(i)) != i {
			return fmt.Errorf("%w: prev(next(%d)) != %d", ErrShape, i, i)
		}
	}
	// a single cycle visits every point
	seen, i := 0, 0
	for {
		seen++
		i = r.Next(i)
		if i == 0 || seen > len(r.adj) {
			break
		}
	}
	if seen != len(r.adj) {
		return fmt.Errorf("%w: ring splits into several cycles", ErrShape)
	}
	return nil
}
