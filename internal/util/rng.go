package util

import "math/rand"

// Roller is the slice of *rand.Rand the battle core rolls against.
type Roller interface {
	Float64() float64
}

func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// Stream is a seeded roller that counts its draws, so the same position in
// the sequence can be reached again with Resume.
type Stream struct {
	seed  int64
	rolls int64
	r     *rand.Rand
}

func NewStream(seed int64) *Stream {
	return &Stream{seed: seed, r: New(seed)}
}

// Resume rebuilds the stream for seed with rolls draws already taken.
func Resume(seed, rolls int64) *Stream {
	s := NewStream(seed)
	for s.rolls < rolls {
		s.Float64()
	}
	return s
}

func (s *Stream) Float64() float64 {
	s.rolls++
	return s.r.Float64()
}

// Position returns the seed and the number of draws taken so far.
func (s *Stream) Position() (seed, rolls int64) { return s.seed, s.rolls }

// Fixed replays the given rolls in order and then repeats the last one.
// With no rolls it always returns 0.99, which fails every probability check
// below 0.99.
type Fixed struct {
	Rolls []float64
	next  int
}

func (f *Fixed) Float64() float64 {
	if len(f.Rolls) == 0 {
		return 0.99
	}
	if f.next >= len(f.Rolls) {
		return f.Rolls[len(f.Rolls)-1]
	}
	v := f.Rolls[f.next]
	f.next++
	return v
}
