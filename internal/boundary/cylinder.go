package boundary

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/seals/internal/vecmath"
)

// Cylinder is an infinite cylinder along Z; it only constrains X and Y.
type Cylinder struct {
	opts   Options
	radius float64
}

func NewCylinder(opts Options) *Cylinder {
	return &Cylinder{opts: opts, radius: opts.Radius}
}

func (c *Cylinder) Radius() float64 { return c.radius }

// NeedsVolume is always false: cylinders only grow at a fixed rate.
func (c *Cylinder) NeedsVolume() bool { return false }

func (c *Cylinder) Update(float64) {
	if c.opts.GrowthRate > 1 {
		c.radius = c.opts.capped(c.radius * c.opts.GrowthRate)
	}
}

func (c *Cylinder) Anchor(pos mgl64.Vec3, maxDisplacement float64) (mgl64.Vec3, mgl64.Vec3) {
	xy := vecmath.Normalize(pos.Vec2()).Mul(c.radius)
	target := mgl64.Vec3{xy[0], xy[1], pos[2]}
	return vecmath.MoveTowards(pos, target, maxDisplacement), mgl64.Vec3{}
}

func (c *Cylinder) Force(pos mgl64.Vec3) mgl64.Vec3 {
	xy := pos.Vec2()
	k, ok := softForce(xy.Len(), c.radius, c.opts.Extent)
	if !ok {
		return mgl64.Vec3{}
	}
	f := xy.Mul(k)
	return mgl64.Vec3{f[0], f[1], 0}
}

func (c *Cylinder) Hard(pos mgl64.Vec3) mgl64.Vec3 {
	xy := pos.Vec2()
	if vecmath.LenSqr(xy) > c.radius*c.radius {
		xy = vecmath.Normalize(xy).Mul(c.radius)
		return mgl64.Vec3{xy[0], xy[1], pos[2]}
	}
	return pos
}

func (c *Cylinder) Record() Record {
	return Record{Kind: KindCylinder, Radius: float32(c.radius), Extent: float32(c.opts.Extent)}
}
