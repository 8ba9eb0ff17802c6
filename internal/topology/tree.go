package topology

import "fmt"

// Tree is an acyclic connected neighbour graph. Points are only ever added as
// leaves, which keeps it a tree by construction.
type Tree struct {
	adj [][]int
}

// NewTree returns the two-point tree 0 - 1.
func NewTree() *Tree {
	return &Tree{adj: [][]int{{1}, {0}}}
}

func (t *Tree) Len() int { return len(t.adj) }

func (t *Tree) AreNeighbours(i, j int) bool { return Contains(t.adj[i], j) }

func (t *Tree) Neighbours(i int) []int { return t.adj[i] }

func (t *Tree) Adjacency() [][]int { return t.adj }

func (t *Tree) TypeHint(dim int) string { return fmt.Sprintf("t%d", dim) }

func (t *Tree) Degree(i int) int { return len(t.adj[i]) }

func (t *Tree) IsLeaf(i int) bool { return len(t.adj[i]) <= 1 }

// AddLeaf attaches a new point to parent and returns its index.
func (t *Tree) AddLeaf(parent int) int {
	c := len(t.adj)
	t.adj[parent] = insertSorted(t.adj[parent], c)
	t.adj = append(t.adj, []int{parent})
	return c
}

// DistanceToLeaf returns the number of edges between i and the closest leaf,
// or -1 if no leaf lies within limit edges.
func (t *Tree) DistanceToLeaf(i, limit int) int {
	if t.IsLeaf(i) {
		return 0
	}
	visited := map[int]bool{i: true}
	frontier := []int{i}
	for depth := 1; depth <= limit; depth++ {
		var next []int
		for _, p := range frontier {
			for _, q := range t.adj[p] {
				if visited[q] {
					continue
				}
				if t.IsLeaf(q) {
					return depth
				}
				visited[q] = true
				next = append(next, q)
			}
		}
		frontier = next
	}
	return -1
}

func (t *Tree) Validate() error {
	if err := checkSymmetric(t.adj); err != nil {
		return err
	}
	edges := 0
	for _, list := range t.adj {
		edges += len(list)
	}
	if edges/2 != len(t.adj)-1 {
		return fmt.Errorf("%w: %d edges for %d points", ErrShape, edges/2, len(t.adj))
	}
	seen := make([]bool, len(t.adj))
	stack := []int{0}
	seen[0] = true
	count := 1
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, q := range t.adj[p] {
			if !seen[q] {
				seen[q] = true
				count++
				stack = append(stack, q)
			}
		}
	}
	if count != len(t.adj) {
		return fmt.Errorf("%w: tree is disconnected (%d of %d reachable)", ErrShape, count, len(t.adj))
	}
	return nil
}
