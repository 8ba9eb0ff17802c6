package delaunay

import (
	"errors"
	"fmt"
	"slices"

	"github.com/golang/geo/s2"
)

// ErrTooFewPoints indicates fewer than two sphere points.
var ErrTooFewPoints = errors.New("delaunay: at least 2 points required")

// Result is a closed triangulation of sphere points.
type Result struct {
	Triangles [][3]int
	// Edges is the symmetric adjacency derived from Triangles, sorted per point.
	Edges [][]int
	// Fan counts the projected hull edges closed with the pole.
	Fan int
}

// OpenEdges counts edges used by exactly one triangle. A closed sphere
// triangulation has none.
func (r *Result) OpenEdges() int {
	type edge struct{ a, b int }
	uses := make(map[edge]int, len(r.Triangles)*3/2)
	for _, t := range r.Triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			uses[edge{a, b}]++
		}
	}
	open := 0
	for _, n := range uses {
		if n == 1 {
			open++
		}
	}
	return open
}

// Project maps a unit-sphere point onto the plane y = 0 from the north pole
// (0, 1, 0).
func Project(p s2.Point) (float64, float64) {
	d := 1 - p.Y
	return p.X / d, p.Z / d
}

// Sphere triangulates points on the unit sphere. points[0] is the projection
// pole: it is left out of the planar triangulation and connected afterwards to
// every hull edge of the projection.
func Sphere(points []s2.Point) (*Result, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}

	coords := make([]float64, 0, 2*(len(points)-1))
	for _, p := range points[1:] {
		x, y := Project(p)
		coords = append(coords, x, y)
	}

	tri, err := Triangulate(coords)
	if err != nil {
		return nil, fmt.Errorf("spherical triangulation of %d points: %w", len(points), err)
	}

	res := &Result{Triangles: make([][3]int, 0, len(tri.Triangles)/3+len(tri.Hull))}
	for i := 0; i+2 < len(tri.Triangles); i += 3 {
		res.Triangles = append(res.Triangles, [3]int{
			tri.Triangles[i] + 1,
			tri.Triangles[i+1] + 1,
			tri.Triangles[i+2] + 1,
		})
	}

	// close the hole around the pole; the fan triangle walks each hull edge
	// in the opposite direction to its inner triangle
	for e, h := range tri.Halfedges {
		if h != none {
			continue
		}
		a := tri.Triangles[e] + 1
		b := tri.Triangles[e-e%3+(e+1)%3] + 1
		res.Triangles = append(res.Triangles, [3]int{b, a, 0})
		res.Fan++
	}

	res.Edges = Edges(len(points), res.Triangles)
	return res, nil
}

// Edges builds the sorted symmetric adjacency of n points from a triangle list.
func Edges(n int, tris [][3]int) [][]int {
	edges := make([][]int, n)
	connect := func(a, b int) {
		if i, found := slices.BinarySearch(edges[a], b); !found {
			edges[a] = slices.Insert(edges[a], i, b)
		}
		if i, found := slices.BinarySearch(edges[b], a); !found {
			edges[b] = slices.Insert(edges[b], i, a)
		}
	}
	for _, t := range tris {
		connect(t[0], t[1])
		connect(t[1], t[2])
		connect(t[2], t[0])
	}
	return edges
}
