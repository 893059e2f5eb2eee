package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// Stream produces a deterministic byte sequence from a challenge seed and a
// stream label. Bytes are drawn from successive HMAC-SHA256 rounds keyed by
// the seed, so distinct labels ("mask", "noise", ...) yield independent
// streams from the same seed.
type Stream struct {
	seed   string
	label  string
	round  int
	cursor int
	buffer [32]byte
}

// NewStream creates a stream for the given seed and label.
func NewStream(seed, label string) *Stream {
	return &Stream{seed: seed, label: label}
}

// Next returns the next byte from the stream.
func (s *Stream) Next() byte {
	if s.cursor == 0 {
		s.generateRound()
	}
	b := s.buffer[s.cursor]
	s.cursor++
	if s.cursor >= 32 {
		s.round++
		s.cursor = 0
	}
	return b
}

func (s *Stream) generateRound() {
	h := hmac.New(sha256.New, []byte(s.seed))
	fmt.Fprintf(h, "%s:%d", s.label, s.round)
	copy(s.buffer[:], h.Sum(nil))
}

// Float returns the next value in [0, 1), built from 4 bytes for precision.
func (s *Stream) Float() float64 {
	b0 := s.Next()
	b1 := s.Next()
	b2 := s.Next()
	b3 := s.Next()

	return float64(b0)/256.0 +
		float64(b1)/(256.0*256.0) +
		float64(b2)/(256.0*256.0*256.0) +
		float64(b3)/(256.0*256.0*256.0*256.0)
}

// Intn returns a value in [0, n). Panics if n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		panic("engine: Intn called with non-positive n")
	}
	v := int(s.Float() * float64(n))
	if v == n { // guard against rounding at the top of the range
		v = n - 1
	}
	return v
}

// IntBetween returns a value in [lo, hi] inclusive.
func (s *Stream) IntBetween(lo, hi int) int {
	return lo + s.Intn(hi-lo+1)
}

// Floats generates count floats for the given seed and label.
func Floats(seed, label string, count int) []float64 {
	s := NewStream(seed, label)
	out := make([]float64, count)
	for i := range out {
		out[i] = s.Float()
	}
	return out
}
