package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/seals/internal/boundary"
	"github.com/san-kum/seals/internal/snapshot"
)

// Edges returns every edge of a frame once, as index pairs i < j.
func Edges(f *snapshot.Frame) [][2]int {
	var out [][2]int
	if f.Mesh() {
		seen := make(map[[2]int]bool, len(f.Triangles)*3/2)
		for _, t := range f.Triangles {
			for k := 0; k < 3; k++ {
				a, b := int(t[k]), int(t[(k+1)%3])
				if a > b {
					a, b = b, a
				}
				e := [2]int{a, b}
				if !seen[e] {
					seen[e] = true
					out = append(out, e)
				}
			}
		}
		return out
	}
	for i, nb := range f.Neighbours {
		for _, j := range nb {
			if int(j) > i {
				out = append(out, [2]int{i, int(j)})
			}
		}
	}
	return out
}

func position(p []float64) mgl64.Vec3 {
	var v mgl64.Vec3
	copy(v[:], p)
	return v
}

// Bounds returns the centre and radius of the smallest axis-aligned box
// around the frame's points, including a spherical boundary.
func Bounds(f *snapshot.Frame) (mgl64.Vec3, float64) {
	if len(f.Positions) == 0 {
		return mgl64.Vec3{}, 1
	}
	lo := position(f.Positions[0])
	hi := lo
	for _, p := range f.Positions[1:] {
		v := position(p)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	if b := f.Boundary; b != nil && b.Kind == boundary.KindSphere {
		r := float64(b.Radius)
		for k := 0; k < f.Dim; k++ {
			lo[k] = math.Min(lo[k], -r)
			hi[k] = math.Max(hi[k], r)
		}
	}
	centre := lo.Add(hi).Mul(0.5)
	return centre, hi.Sub(lo).Len() / 2
}

// DrawFrame renders a frame's edges onto c. 2D frames ignore the camera's
// rotation.
func DrawFrame(c *Canvas, f *snapshot.Frame, cam *Camera) {
	w, h := c.Dots()
	centre, radius := Bounds(f)
	view := cam
	if f.Dim < 3 {
		view = &Camera{Zoom: cam.Zoom}
	}
	v := view.NewView(centre, radius, w, h)

	pix := make([][2]int, len(f.Positions))
	vis := make([]bool, len(f.Positions))
	for i, p := range f.Positions {
		x, y, _, ok := v.Project(position(p))
		pix[i] = [2]int{x, y}
		vis[i] = ok
	}

	for _, e := range Edges(f) {
		a, b := e[0], e[1]
		if vis[a] && vis[b] {
			c.DrawLine(pix[a][0], pix[a][1], pix[b][0], pix[b][1])
		}
	}
	for i, p := range pix {
		if vis[i] {
			c.Set(p[0], p[1])
		}
	}

	if b := f.Boundary; b != nil && b.Kind == boundary.KindSphere && f.Dim == 2 {
		x, y, _, _ := v.Project(mgl64.Vec3{})
		c.DrawCircle(x, y, v.Pixels(float64(b.Radius)))
	}
}
