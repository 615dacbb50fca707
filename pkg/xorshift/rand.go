// Package xorshift implements the 32-bit xorshift generator
// (Marsaglia, shifts 13/17/5). Deterministic for a fixed seed, which
// makes fan-out computations over generated data exactly reproducible.
package xorshift

// Rand is a xorshift32 stream. Not safe for concurrent use; derive
// one stream per goroutine or snapshot the values up front.
type Rand struct {
	state uint32
}

// NewRand returns a generator seeded with seed. A zero seed is a fixed
// point of xorshift and is remapped to 1.
func NewRand(seed uint32) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{state: seed}
}

// Next returns the next value in the stream.
func (r *Rand) Next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// NextFloat returns the next value converted to float64. The integer
// stream converts exactly, so results derived from it are bit-stable.
func (r *Rand) NextFloat() float64 {
	return float64(r.Next())
}
