package digitbinindex

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mathext/prng"
)

// Source is the raw entropy behind an index. Anything that produces uniform
// uint64s works; tests inject a seeded generator for reproducible runs.
type Source interface {
	Uint64() uint64
}

func newDefaultSource() Source {
	// Sampling only has to be fair, not unpredictable, so a seeded Mersenne
	// Twister is plenty.
	src := prng.NewMT19937()
	src.Seed(uint64(time.Now().UnixNano()))
	return src
}

// rng narrows a Source to the two draws selection needs. It holds no lock:
// the index assumes a single sequential owner.
type rng struct {
	src Source
}

// uint64n returns a uniform value in [0, n) for n > 0. Rejection keeps the
// modulo unbiased.
func (r *rng) uint64n(n uint64) uint64 {
	if n&(n-1) == 0 {
		// n is a power of two, masking is enough.
		return r.src.Uint64() & (n - 1)
	}
	limit := uint64(math.MaxUint64) - uint64(math.MaxUint64)%n
	v := r.src.Uint64()
	for v >= limit {
		v = r.src.Uint64()
	}
	return v % n
}

func (r *rng) intn(n int) int {
	return int(r.uint64n(uint64(n)))
}
