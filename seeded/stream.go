package seeded

import "strconv"

// HashSeed reduces a textual seed to a 32-bit integer. The mix is
// order-dependent: every character perturbs the running state through a
// multiply-rotate step, then the state is finalized with two multiply-xor
// passes. Matches the production hash, so on-record string seeds replay.
func HashSeed(seed string) uint32 {
	h := uint32(1779033703) ^ uint32(len(seed))
	for i := 0; i < len(seed); i++ {
		h = (h ^ uint32(seed[i])) * 3432918353
		h = h<<13 | h>>19
	}
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	return h ^ h>>16
}

// Stream is the hash-expanded generator: a 32-bit state perturbed through
// multiply-xor-shift steps on every call.
type Stream struct {
	seed  uint32
	state uint32
}

// NewStream builds a stream from a numeric seed.
func NewStream(seed uint32) *Stream {
	return &Stream{seed: seed, state: seed}
}

// NewStringStream hashes a textual seed and feeds the result to the stream.
func NewStringStream(seed string) *Stream {
	return NewStream(HashSeed(seed))
}

// New picks the right path for an on-record seed: numeric encodings skip the
// hashing step, anything else is treated as text.
func New(seed string) *Stream {
	if n, err := strconv.ParseUint(seed, 10, 32); err == nil {
		return NewStream(uint32(n))
	}
	return NewStringStream(seed)
}

// ResumeStream rebuilds a stream from persisted state.
func ResumeStream(seed, state uint32) *Stream {
	return &Stream{seed: seed, state: state}
}

// Next returns the next value in [0,1).
func (s *Stream) Next() float64 {
	s.state += 0x6d2b79f5
	t := s.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / two32
}

// Intn returns a draw in [0,n). n must be positive.
func (s *Stream) Intn(n int) int {
	return int(s.Next() * float64(n))
}

// Perm returns a deterministic permutation of [0,n) consuming n-1 draws
// (Fisher-Yates, fixed order — the documented shuffle for deals).
func (s *Stream) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Reset restores the stream to emit the same first value as construction.
func (s *Stream) Reset() {
	s.state = s.seed
}

// State exposes the internal state for persistence.
func (s *Stream) State() (seed, state uint32) {
	return s.seed, s.state
}
