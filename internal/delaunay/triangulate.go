package delaunay

import (
	"errors"
	"math"
	"slices"
)

// ErrNotTriangulation indicates a degenerate input (coincident or collinear points).
var ErrNotTriangulation = errors.New("delaunay: not triangulation")

const (
	epsilon = 0x1p-52
	none    = -1
)

// Triangulation is a planar Delaunay triangulation in halfedge form.
// Triangle t uses Triangles[3t:3t+3]; Halfedges[e] is the opposite halfedge
// of e in the adjacent triangle, or -1 on the convex hull.
type Triangulation struct {
	Triangles []int
	Halfedges []int
	// Hull lists the convex hull vertices in order.
	Hull []int

	coords []float64

	hullPrev  []int
	hullNext  []int
	hullTri   []int
	hullStart int

	hash     []int
	cx, cy   float64
	edgeFlip []int
}

// Triangulate builds the Delaunay triangulation of the points in coords.
func Triangulate(coords []float64) (*Triangulation, error) {
	n := len(coords) / 2
	if n < 3 {
		return nil, ErrNotTriangulation
	}
	t := &Triangulation{coords: coords}
	if err := t.build(n); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Triangulation) x(i int) float64 { return t.coords[2*i] }
func (t *Triangulation) y(i int) float64 { return t.coords[2*i+1] }

func (t *Triangulation) build(n int) error {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		x, y := t.x(i), t.y(i)
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
		ids[i] = i
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	// seed point closest to the bbox centre
	i0, i1, i2 := none, none, none
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		if d := dist(cx, cy, t.x(i), t.y(i)); d < best {
			i0, best = i, d
		}
	}
	i0x, i0y := t.x(i0), t.y(i0)

	// closest point to the seed
	best = math.Inf(1)
	for i := 0; i < n; i++ {
		if i == i0 {
			continue
		}
		if d := dist(i0x, i0y, t.x(i), t.y(i)); d < best && d > 0 {
			i1, best = i, d
		}
	}
	if i1 == none {
		return ErrNotTriangulation
	}
	i1x, i1y := t.x(i1), t.y(i1)

	// third point forming the smallest circumcircle
	minRadius := math.Inf(1)
	for i := 0; i < n; i++ {
		if i == i0 || i == i1 {
			continue
		}
		if r := circumradius(i0x, i0y, i1x, i1y, t.x(i), t.y(i)); r < minRadius {
			i2, minRadius = i, r
		}
	}
	if math.IsInf(minRadius, 1) {
		return ErrNotTriangulation
	}
	i2x, i2y := t.x(i2), t.y(i2)

	if orient(i0x, i0y, i1x, i1y, i2x, i2y) {
		i1, i2 = i2, i1
		i1x, i2x = i2x, i1x
		i1y, i2y = i2y, i1y
	}
	t.cx, t.cy = circumcenter(i0x, i0y, i1x, i1y, i2x, i2y)

	dists := make([]float64, n)
	for i := range dists {
		dists[i] = dist(t.x(i), t.y(i), t.cx, t.cy)
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		switch {
		case dists[a] < dists[b]:
			return -1
		case dists[a] > dists[b]:
			return 1
		case t.x(a) != t.x(b):
			if t.x(a) < t.x(b) {
				return -1
			}
			return 1
		case t.y(a) < t.y(b):
			return -1
		case t.y(a) > t.y(b):
			return 1
		}
		return 0
	})

	hashSize := int(math.Ceil(math.Sqrt(float64(n))))
	t.hash = make([]int, hashSize)
	for i := range t.hash {
		t.hash[i] = none
	}

	t.hullPrev = make([]int, n)
	t.hullNext = make([]int, n)
	t.hullTri = make([]int, n)
	t.hullStart = i0

	t.hullNext[i0], t.hullPrev[i2] = i1, i1
	t.hullNext[i1], t.hullPrev[i0] = i2, i2
	t.hullNext[i2], t.hullPrev[i1] = i0, i0
	t.hullTri[i0], t.hullTri[i1], t.hullTri[i2] = 0, 1, 2

	t.hash[t.hashKey(i0x, i0y)] = i0
	t.hash[t.hashKey(i1x, i1y)] = i1
	t.hash[t.hashKey(i2x, i2y)] = i2

	maxTriangles := 2*n - 5
	if maxTriangles < 1 {
		maxTriangles = 1
	}
	t.Triangles = make([]int, 0, maxTriangles*3)
	t.Halfedges = make([]int, 0, maxTriangles*3)
	t.addTriangle(i0, i1, i2, none, none, none)

	xp, yp := math.NaN(), math.NaN()
	for k, i := range ids {
		x, y := t.x(i), t.y(i)

		// near-duplicates
		if k > 0 && equalPts(x, y, xp, yp) {
			continue
		}
		xp, yp = x, y
		if equalPts(x, y, i0x, i0y) || equalPts(x, y, i1x, i1y) || equalPts(x, y, i2x, i2y) {
			continue
		}

		// visible hull edge via the angle hash
		start := 0
		key := t.hashKey(x, y)
		for j := 0; j < hashSize; j++ {
			start = t.hash[(key+j)%hashSize]
			if start != none && start != t.hullNext[start] {
				break
			}
		}
		start = t.hullPrev[start]
		e := start
		for {
			q := t.hullNext[e]
			if orient(x, y, t.x(e), t.y(e), t.x(q), t.y(q)) {
				break
			}
			e = q
			if e == start {
				e = none
				break
			}
		}
		if e == none {
			continue
		}

		tri := t.addTriangle(e, i, t.hullNext[e], none, none, t.hullTri[e])
		t.hullTri[i] = t.legalize(tri + 2)
		t.hullTri[e] = tri

		// walk forward through the hull
		next := t.hullNext[e]
		for {
			q := t.hullNext[next]
			if !orient(x, y, t.x(next), t.y(next), t.x(q), t.y(q)) {
				break
			}
			tri = t.addTriangle(next, i, q, t.hullTri[i], none, t.hullTri[next])
			t.hullTri[i] = t.legalize(tri + 2)
			t.hullNext[next] = next // removed
			next = q
		}

		// walk backward from the other side
		if e == start {
			for {
				q := t.hullPrev[e]
				if !orient(x, y, t.x(q), t.y(q), t.x(e), t.y(e)) {
					break
				}
				tri = t.addTriangle(q, i, e, none, t.hullTri[e], t.hullTri[q])
				t.legalize(tri + 2)
				t.hullTri[q] = tri
				t.hullNext[e] = e // removed
				e = q
			}
		}

		t.hullPrev[i] = e
		t.hullStart = e
		t.hullPrev[next] = i
		t.hullNext[e] = i
		t.hullNext[i] = next

		t.hash[t.hashKey(x, y)] = i
		t.hash[t.hashKey(t.x(e), t.y(e))] = e
	}

	e := t.hullStart
	for {
		t.Hull = append(t.Hull, e)
		e = t.hullNext[e]
		if e == t.hullStart {
			break
		}
	}
	return nil
}

func (t *Triangulation) hashKey(x, y float64) int {
	size := len(t.hash)
	a := pseudoAngle(x-t.cx, y-t.cy)
	if math.IsNaN(a) {
		return 0
	}
	return int(math.Floor(a*float64(size))) % size
}

func (t *Triangulation) addTriangle(i0, i1, i2, a, b, c int) int {
	tri := len(t.Triangles)
	t.Triangles = append(t.Triangles, i0, i1, i2)
	t.link(tri, a)
	t.link(tri+1, b)
	t.link(tri+2, c)
	return tri
}

func (t *Triangulation) link(a, b int) {
	if a == len(t.Halfedges) {
		t.Halfedges = append(t.Halfedges, b)
	} else {
		t.Halfedges[a] = b
	}
	if b == none {
		return
	}
	if b == len(t.Halfedges) {
		t.Halfedges = append(t.Halfedges, a)
	} else {
		t.Halfedges[b] = a
	}
}

// legalize flips edges until the triangles around halfedge a satisfy the
// Delaunay condition. An explicit stack replaces recursion.
func (t *Triangulation) legalize(a int) int {
	stack := t.edgeFlip[:0]
	var ar int
	for {
		b := t.Halfedges[a]
		a0 := a - a%3
		ar = a0 + (a+2)%3

		if b == none {
			if len(stack) == 0 {
				break
			}
			a = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		b0 := b - b%3
		al := a0 + (a+1)%3
		bl := b0 + (b+2)%3

		p0 := t.Triangles[ar]
		pr := t.Triangles[a]
		pl := t.Triangles[al]
		p1 := t.Triangles[bl]

		illegal := inCircle(
			t.x(p0), t.y(p0),
			t.x(pr), t.y(pr),
			t.x(pl), t.y(pl),
			t.x(p1), t.y(p1))

		if !illegal {
			if len(stack) == 0 {
				break
			}
			a = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		t.Triangles[a] = p1
		t.Triangles[b] = p0

		hbl := t.Halfedges[bl]
		// flipped edge on the hull: fix the hull triangle reference
		if hbl == none {
			e := t.hullStart
			for {
				if t.hullTri[e] == bl {
					t.hullTri[e] = a
					break
				}
				e = t.hullPrev[e]
				if e == t.hullStart {
					break
				}
			}
		}
		t.link(a, hbl)
		t.link(b, t.Halfedges[ar])
		t.link(ar, bl)

		stack = append(stack, b0+(b+1)%3)
	}
	t.edgeFlip = stack
	return ar
}

func dist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}

// circumradius returns the squared circumradius, or +Inf for a degenerate triangle.
func circumradius(ax, ay, bx, by, cx, cy float64) float64 {
	dx, dy := bx-ax, by-ay
	ex, ey := cx-ax, cy-ay
	bl := dx*dx + dy*dy
	cl := ex*ex + ey*ey
	d := dx*ey - dy*ex
	if bl == 0 || cl == 0 || d == 0 {
		return math.Inf(1)
	}
	x := (ey*bl - dy*cl) * 0.5 / d
	y := (dx*cl - ex*bl) * 0.5 / d
	return x*x + y*y
}

func circumcenter(ax, ay, bx, by, cx, cy float64) (float64, float64) {
	dx, dy := bx-ax, by-ay
	ex, ey := cx-ax, cy-ay
	bl := dx*dx + dy*dy
	cl := ex*ex + ey*ey
	d := dx*ey - dy*ex
	return ax + (ey*bl-dy*cl)*0.5/d, ay + (dx*cl-ex*bl)*0.5/d
}

func orient(px, py, qx, qy, rx, ry float64) bool {
	return (qy-py)*(rx-qx)-(qx-px)*(ry-qy) < 0
}

func inCircle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	dx, dy := ax-px, ay-py
	ex, ey := bx-px, by-py
	fx, fy := cx-px, cy-py
	ap := dx*dx + dy*dy
	bp := ex*ex + ey*ey
	cp := fx*fx + fy*fy
	return dx*(ey*cp-bp*fy)-dy*(ex*cp-bp*fx)+ap*(ex*fy-ey*fx) < 0
}

func equalPts(x1, y1, x2, y2 float64) bool {
	return math.Abs(x1-x2) <= epsilon && math.Abs(y1-y2) <= epsilon
}

// pseudoAngle increases monotonically with the angle of (dx, dy), in [0, 1).
func pseudoAngle(dx, dy float64) float64 {
	p := dx / (math.Abs(dx) + math.Abs(dy))
	if dy > 0 {
		return (3 - p) / 4
	}
	return (1 + p) / 4
}
