package noose

import "math/rand"

// gameRand wraps math/rand.Rand so every State owns an independent,
// seed-derived stream. Games run concurrently in the benchmark runner, so
// randomness must never be shared package-level state the way a
// single-process bot arena can get away with.
type gameRand struct {
	r *rand.Rand
}

func newGameRand(seed int64) *gameRand {
	return &gameRand{r: rand.New(rand.NewSource(seed))}
}

func (g *gameRand) Int63() int64 {
	return g.r.Int63()
}

func (g *gameRand) Intn(n int) int {
	return g.r.Intn(n)
}

// combatSwing draws the random component of a combat roll, an integer in
// [-2, 2] inclusive.
func (g *gameRand) combatSwing() int {
	return g.r.Intn(5) - 2
}

func (g *gameRand) Float64() float64 {
	return g.r.Float64()
}

// chance reports true with probability p, 0 <= p <= 1.
func (g *gameRand) chance(p float64) bool {
	return g.r.Float64() < p
}

func (g *gameRand) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}

// Shuffled returns a random permutation of [0, n).
func (g *gameRand) Shuffled(n int) []int {
	return g.r.Perm(n)
}
