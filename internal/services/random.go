package services

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"time"
)

// Randomizer is the source of randomness used by the selection and grouping
// engines.
type Randomizer interface {
	// IntN returns a uniform int in [0, n). n must be > 0.
	IntN(n int) int
	// Shuffle pseudo-randomizes the order of n elements using swap.
	Shuffle(n int, swap func(i, j int))
}

// lockedRand is a PCG generator shared by concurrent requests.
// *rand.Rand is not safe for concurrent use, hence the mutex.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomizer returns a Randomizer seeded with seed. A zero seed means
// "seed from the environment".
func NewRandomizer(seed uint64) Randomizer {
	hi, lo := seed, seed^0x9e3779b97f4a7c15
	if seed == 0 {
		hi, lo = environmentSeed()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(hi, lo))}
}

func environmentSeed() (uint64, uint64) {
	var buf [16]byte
	if _, err := crand.Read(buf[:]); err != nil {
		now := uint64(time.Now().UnixNano())
		return now, now >> 1
	}
	return binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:])
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
