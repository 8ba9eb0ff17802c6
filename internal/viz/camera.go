package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera rotates and zooms a view of a shape centred on the origin.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
	// Distance is the eye distance in units of the shape radius. Zero gives
	// an orthographic view.
	Distance float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, Distance: 4}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) Reset() {
	c.RotX, c.RotY, c.RotZ = 0, 0, 0
	c.Zoom = 1
}

// Rotation returns the camera's rotation matrix, applied X then Y then Z.
func (c *Camera) Rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

// View maps world positions to canvas pixels for one frame.
type View struct {
	rot    mgl64.Mat3
	centre mgl64.Vec3
	radius float64
	dist   float64
	scale  float64
	cx, cy int
}

// NewView fits points of the given centre and radius into a w x h pixel
// canvas.
func (c *Camera) NewView(centre mgl64.Vec3, radius float64, w, h int) View {
	if radius <= 0 {
		radius = 1
	}
	half := math.Min(float64(w), float64(h)) / 2
	return View{
		rot:    c.Rotation(),
		centre: centre,
		radius: radius,
		dist:   c.Distance * radius,
		scale:  0.9 * half / radius * c.Zoom,
		cx:     w / 2,
		cy:     h / 2,
	}
}

// Project returns the pixel of p and its depth, larger being closer to the
// eye. ok is false for points behind the eye.
func (v View) Project(p mgl64.Vec3) (x, y int, depth float64, ok bool) {
	r := v.rot.Mul3x1(p.Sub(v.centre))
	k := 1.0
	if v.dist > 0 {
		if r.Z() >= v.dist {
			return 0, 0, 0, false
		}
		k = v.dist / (v.dist - r.Z())
	}
	x = int(math.Round(r.X()*k*v.scale)) + v.cx
	y = int(math.Round(-r.Y()*k*v.scale)) + v.cy
	return x, y, r.Z(), true
}

// Pixels converts a world length at the centre to pixels.
func (v View) Pixels(l float64) int {
	return int(math.Round(l * v.scale))
}
