package delaunay_test

import (
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seals/internal/delaunay"
)

func inCircumcircle(c []float64, a, b, d, p int) bool {
	ax, ay := c[2*a]-c[2*p], c[2*a+1]-c[2*p+1]
	bx, by := c[2*b]-c[2*p], c[2*b+1]-c[2*p+1]
	dx, dy := c[2*d]-c[2*p], c[2*d+1]-c[2*p+1]
	det := (ax*ax+ay*ay)*(bx*dy-dx*by) -
		(bx*bx+by*by)*(ax*dy-dx*ay) +
		(dx*dx+dy*dy)*(ax*by-bx*ay)
	orient := (bx-ax)*(dy-ay) - (by-ay)*(dx-ax)
	if orient < 0 {
		det = -det
	}
	return det > 1e-9
}

var _ = Describe("Triangulate", func() {
	It("triangulates three points into one triangle", func() {
		t, err := delaunay.Triangulate([]float64{0, 0, 1, 0, 0, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Triangles).To(HaveLen(3))
		Expect(t.Triangles).To(ConsistOf(0, 1, 2))
		Expect(t.Hull).To(HaveLen(3))
	})

	It("fails on collinear and coincident input", func() {
		_, err := delaunay.Triangulate([]float64{0, 0, 1, 1, 2, 2, 3, 3})
		Expect(err).To(MatchError(delaunay.ErrNotTriangulation))

		_, err = delaunay.Triangulate([]float64{1, 1, 1, 1, 1, 1})
		Expect(err).To(MatchError(delaunay.ErrNotTriangulation))

		_, err = delaunay.Triangulate([]float64{0, 0, 1, 1})
		Expect(err).To(MatchError(delaunay.ErrNotTriangulation))
	})

	It("skips exact duplicates", func() {
		t, err := delaunay.Triangulate([]float64{0, 0, 1, 0, 0, 1, 1, 0, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Triangles).To(HaveLen(6))
	})

	It("produces empty circumcircles for random points", func() {
		rng := rand.New(rand.NewPCG(42, 42))
		n := 400
		coords := make([]float64, 2*n)
		for i := range coords {
			coords[i] = rng.Float64()*2 - 1
		}

		t, err := delaunay.Triangulate(coords)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(t.Triangles) / 3).To(Equal(2*n - 2 - len(t.Hull)))

		for e, h := range t.Halfedges {
			if h != -1 {
				Expect(t.Halfedges[h]).To(Equal(e))
			}
		}

		for i := 0; i < len(t.Triangles); i += 3 {
			a, b, c := t.Triangles[i], t.Triangles[i+1], t.Triangles[i+2]
			for p := 0; p < n; p++ {
				if p == a || p == b || p == c {
					continue
				}
				Expect(inCircumcircle(coords, a, b, c, p)).To(BeFalse(), "point %d inside triangle %d", p, i/3)
			}
		}
	})

	DescribeTable("keeps hull edges linked after flips on the hull",
		func(coords []float64) {
			n := len(coords) / 2
			t, err := delaunay.Triangulate(coords)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(t.Triangles) / 3).To(Equal(2*n - 2 - len(t.Hull)))

			onHull := make(map[[2]int]bool, len(t.Hull))
			for i, v := range t.Hull {
				onHull[[2]int{v, t.Hull[(i+1)%len(t.Hull)]}] = true
			}
			open := 0
			for e, h := range t.Halfedges {
				if h != -1 {
					Expect(t.Halfedges[h]).To(Equal(e))
					continue
				}
				open++
				a, b := t.Triangles[e], t.Triangles[e-e%3+(e+1)%3]
				Expect(onHull[[2]int{a, b}] || onHull[[2]int{b, a}]).To(BeTrue(), "open edge %d-%d is not on the hull", a, b)
			}
			Expect(open).To(Equal(len(t.Hull)))
		},
		Entry("jittered grid", func() []float64 {
			rng := rand.New(rand.NewPCG(3, 3))
			var c []float64
			for i := range 12 {
				for j := range 12 {
					c = append(c, float64(i)+rng.Float64()*1e-6, float64(j)+rng.Float64()*1e-6)
				}
			}
			return c
		}()),
		Entry("circle around its centre", func() []float64 {
			c := []float64{0, 0}
			for k := range 60 {
				a := 2 * math.Pi * float64(k) / 60
				c = append(c, math.Cos(a), math.Sin(a))
			}
			return c
		}()),
		Entry("thin band", func() []float64 {
			rng := rand.New(rand.NewPCG(7, 7))
			c := make([]float64, 0, 600)
			for range 300 {
				c = append(c, rng.Float64()*10, rng.Float64()*0.01)
			}
			return c
		}()),
	)
})
