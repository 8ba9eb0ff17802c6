// Package vecmath adapts mgl64 vectors for code that is generic over the
// dimension of the simulated space.
//
// [Vec] is satisfied by exactly [mgl64.Vec2] and [mgl64.Vec3], so generic
// functions are instantiated once per dimension and index components directly.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec is the constraint for position-like vectors.
type Vec[V any] interface {
	mgl64.Vec2 | mgl64.Vec3
	Add(V) V
	Sub(V) V
	Mul(float64) V
	Dot(V) float64
	Len() float64
}

// Dim returns the number of components of V.
func Dim[V Vec[V]]() int {
	var v V
	return len(v)
}

func LenSqr[V Vec[V]](v V) float64 {
	return v.Dot(v)
}

// Normalize returns v scaled to unit length, or the zero vector when v has
// no length.
func Normalize[V Vec[V]](v V) V {
	l := v.Len()
	if l == 0 {
		var zero V
		return zero
	}
	return v.Mul(1 / l)
}

// Hadamard returns the component-wise product of a and b.
func Hadamard[V Vec[V]](a, b V) V {
	for i := 0; i < len(a); i++ {
		a[i] *= b[i]
	}
	return a
}

// Axis returns the vector with component i set to x and all others zero.
func Axis[V Vec[V]](i int, x float64) V {
	var v V
	v[i] = x
	return v
}

// Fill returns a vector with every component set to x.
func Fill[V Vec[V]](x float64) V {
	var v V
	for i := 0; i < len(v); i++ {
		v[i] = x
	}
	return v
}

// MoveTowards moves p at most maxDist in the direction of target.
func MoveTowards[V Vec[V]](p, target V, maxDist float64) V {
	d := target.Sub(p)
	l := d.Len()
	if l <= maxDist || l == 0 {
		return target
	}
	return p.Add(d.Mul(maxDist / l))
}

// Lerp interpolates between a and b.
func Lerp[V Vec[V]](a, b V, t float64) V {
	return a.Add(b.Sub(a).Mul(t))
}

// Finite reports whether every component is a finite number.
func Finite[V Vec[V]](v V) bool {
	for i := 0; i < len(v); i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}

func ToSlice[V Vec[V]](v V) []float64 {
	out := make([]float64, len(v))
	for i := range out {
		out[i] = v[i]
	}
	return out
}

// FromSlice copies up to Dim[V]() components from s.
func FromSlice[V Vec[V]](s []float64) V {
	var v V
	for i := 0; i < len(v) && i < len(s); i++ {
		v[i] = s[i]
	}
	return v
}
