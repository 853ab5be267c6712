// Package seeded implements the deterministic random streams that fix
// shuffles, deals and spawns for a session seed. Two generator families are
// supported because sessions persist two seed encodings: numeric seeds drive
// the linear-congruential stream, textual seeds go through a mixing hash into
// the expanded stream.
//
// Both families are pure value objects. Two instances built from the same
// seed emit identical sequences forever, and copying the struct resumes the
// stream exactly.
package seeded

// Linear-congruential constants: state' = (a*state + c) mod 2^32. These match
// the production generator, so recorded sessions replay bit-for-bit.
const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
)

const two32 = 1 << 32

// LCG is a restartable linear-congruential stream over a 32-bit state.
type LCG struct {
	seed  uint32
	state uint32
}

// NewLCG returns a stream positioned before its first output.
func NewLCG(seed uint32) *LCG {
	return &LCG{seed: seed, state: seed}
}

// ResumeLCG rebuilds a stream from persisted state. Seed is kept so Reset and
// Nth still refer to the original origin.
func ResumeLCG(seed, state uint32) *LCG {
	return &LCG{seed: seed, state: state}
}

// Next advances one step and returns the output in [0,1).
func (g *LCG) Next() float64 {
	g.state = lcgMultiplier*g.state + lcgIncrement
	return float64(g.state) / two32
}

// Nth returns the n-th output (1-based) directly, without iterating and
// without moving the stream. The affine step x -> a*x + c is raised to the
// n-th power by binary exponentiation, which is the closed form
// x_n = (a^n*seed + c*(a^n-1)/(a-1)) mod 2^32 evaluated in modular arithmetic.
func (g *LCG) Nth(n uint64) float64 {
	mul, add := affinePower(n)
	return float64(mul*g.seed+add) / two32
}

// Reset restores the stream so the next output equals the first output after
// construction.
func (g *LCG) Reset() {
	g.state = g.seed
}

// State exposes the internal state for persistence; feed it back through
// ResumeLCG to continue the stream.
func (g *LCG) State() (seed, state uint32) {
	return g.seed, g.state
}

// affinePower composes x -> a*x + c with itself n times. Composition of
// (m1,b1) after (m2,b2) is (m1*m2, m1*b2 + b1); uint32 wraparound is the
// mod 2^32 reduction.
func affinePower(n uint64) (mul, add uint32) {
	mul, add = 1, 0
	bm, bb := lcgMultiplier, lcgIncrement
	for n > 0 {
		if n&1 == 1 {
			mul, add = bm*mul, bm*add+bb
		}
		bm, bb = bm*bm, bm*bb+bb
		n >>= 1
	}
	return mul, add
}
