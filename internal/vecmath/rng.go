package vecmath

import "math/rand/v2"

// RNG is a deterministic random source. Every random decision of a run goes
// through one RNG seeded from the run seed.
type RNG struct {
	r *rand.Rand
}

func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns a number in [0, 1).
func (r *RNG) Float64() float64 {
	return r.r.Float64()
}

// Signed returns a number in [-1, 1).
func (r *RNG) Signed() float64 {
	return r.r.Float64()*2 - 1
}

// IntN returns a number in [0, n). n must be positive.
func (r *RNG) IntN(n int) int {
	return r.r.IntN(n)
}

// RandomUnit returns a uniformly distributed unit vector.
func RandomUnit[V Vec[V]](r *RNG) V {
	for {
		var v V
		for i := 0; i < len(v); i++ {
			v[i] = r.r.NormFloat64()
		}
		if l := v.Len(); l > 1e-12 {
			return v.Mul(1 / l)
		}
	}
}
