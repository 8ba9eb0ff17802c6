package delaunay_test

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/markus-wa/quickhull-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seals/internal/delaunay"
)

func key(t [3]int) [3]int {
	s := t[:]
	s = slices.Clone(s)
	slices.Sort(s)
	return [3]int{s[0], s[1], s[2]}
}

func faceSet(tris [][3]int) map[[3]int]bool {
	set := make(map[[3]int]bool, len(tris))
	for _, t := range tris {
		set[key(t)] = true
	}
	return set
}

// icosahedron with vertex 0 on the north pole (0, 1, 0) and vertex 1 on the
// south pole; 2..6 form the upper ring, 7..11 the lower ring.
func icosahedron() ([]s2.Point, [][3]int) {
	pts := []s2.Point{
		s2.PointFromCoords(0, 1, 0),
		s2.PointFromCoords(0, -1, 0),
	}
	h := 1 / math.Sqrt(5)
	r := 2 / math.Sqrt(5)
	for k := 0; k < 5; k++ {
		a := 2 * math.Pi * float64(k) / 5
		pts = append(pts, s2.PointFromCoords(r*math.Cos(a), h, r*math.Sin(a)))
	}
	for k := 0; k < 5; k++ {
		a := 2*math.Pi*float64(k)/5 + math.Pi/5
		pts = append(pts, s2.PointFromCoords(r*math.Cos(a), -h, r*math.Sin(a)))
	}

	var faces [][3]int
	for k := 0; k < 5; k++ {
		u0, u1 := 2+k, 2+(k+1)%5
		l0, l1 := 7+k, 7+(k+1)%5
		faces = append(faces,
			[3]int{0, u0, u1},
			[3]int{u0, u1, l0},
			[3]int{l0, l1, u1},
			[3]int{1, l0, l1},
		)
	}
	return pts, faces
}

func randomSphere(n int, seed uint64) []s2.Point {
	rng := rand.New(rand.NewPCG(seed, 1))
	pts := []s2.Point{s2.PointFromCoords(0, 1, 0)}
	for len(pts) < n {
		v := r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if v.Norm() < 1e-9 {
			continue
		}
		pts = append(pts, s2.Point{Vector: v.Normalize()})
	}
	return pts
}

var _ = Describe("Sphere", func() {
	It("reproduces the 20 faces of an icosahedron", func() {
		pts, faces := icosahedron()
		res, err := delaunay.Sphere(pts)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Triangles).To(HaveLen(20))
		Expect(faceSet(res.Triangles)).To(Equal(faceSet(faces)))
		Expect(res.Fan).To(Equal(5))
		Expect(res.OpenEdges()).To(BeZero())

		for i := range pts {
			Expect(res.Edges[i]).To(HaveLen(5), "vertex %d", i)
		}
	})

	It("matches the convex hull of random sphere points", func() {
		for _, n := range []int{8, 50, 300} {
			pts := randomSphere(n, uint64(n))
			res, err := delaunay.Sphere(pts)
			Expect(err).NotTo(HaveOccurred())

			vs := make([]r3.Vector, len(pts))
			for i, p := range pts {
				vs[i] = p.Vector
			}
			hull := new(quickhull.QuickHull).ConvexHull(vs, true, true, 1e-12)
			var want [][3]int
			for i := 0; i+2 < len(hull.Indices); i += 3 {
				want = append(want, [3]int{hull.Indices[i], hull.Indices[i+1], hull.Indices[i+2]})
			}

			Expect(res.Triangles).To(HaveLen(2*n-4), "n=%d", n)
			Expect(faceSet(res.Triangles)).To(Equal(faceSet(want)), "n=%d", n)
			Expect(res.OpenEdges()).To(BeZero())
		}
	})

	It("keeps the edge map symmetric and consistent with the triangles", func() {
		pts := randomSphere(120, 9)
		res, err := delaunay.Sphere(pts)
		Expect(err).NotTo(HaveOccurred())

		for i, list := range res.Edges {
			Expect(slices.IsSorted(list)).To(BeTrue())
			for _, j := range list {
				Expect(res.Edges[j]).To(ContainElement(i))
			}
		}
		for _, t := range res.Triangles {
			for k := 0; k < 3; k++ {
				Expect(res.Edges[t[k]]).To(ContainElement(t[(k+1)%3]))
			}
		}
	})

	It("rejects a single point", func() {
		_, err := delaunay.Sphere(randomSphere(1, 1))
		Expect(err).To(MatchError(delaunay.ErrTooFewPoints))
	})

	It("fails on degenerate projections", func() {
		// pole plus three points on one great circle through the pole project onto a line
		pts := []s2.Point{
			s2.PointFromCoords(0, 1, 0),
			s2.PointFromCoords(1, 0, 0),
			s2.PointFromCoords(-1, 0, 0),
			s2.PointFromCoords(0, -1, 0),
		}
		_, err := delaunay.Sphere(pts)
		Expect(err).To(MatchError(delaunay.ErrNotTriangulation))
	})
})
