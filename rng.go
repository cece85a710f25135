package topogen

import (
	"math/rand/v2"

	"github.com/iti/rngstream"
)

// Source is the random number generator every random choice in the package is drawn from.
// *rngstream.RngStream satisfies it.
type Source interface {
	// RandU01 returns a sample uniformly distributed on (0,1)
	RandU01() float64

	// RandInt returns a sample uniformly distributed on [lo,hi], inclusive
	RandInt(lo, hi int) int
}

// NewStreamSource returns an rngstream stream with the given name
func NewStreamSource(name string) Source {
	return rngstream.New(name)
}

// seededSource is a Source whose whole sequence is fixed by one seed,
// independent of any other stream created in the process
type seededSource struct {
	rng *rand.Rand
}

// NewSeededSource returns a reproducible Source
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (ss *seededSource) RandU01() float64 {
	// Float64 is on [0,1); nudge 0 away so the interval matches rngstream
	for {
		u := ss.rng.Float64()
		if u > 0.0 {
			return u
		}
	}
}

func (ss *seededSource) RandInt(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + ss.rng.IntN(hi-lo+1)
}
