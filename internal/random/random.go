package random

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness used by the reward catalog and award engine.
type Source interface {
	// Intn returns a value in [0, n). n must be positive.
	Intn(n int) int
	// WeightedIndex returns i with probability weights[i]/sum(weights).
	// It returns -1 when no weight is positive.
	WeightedIndex(weights []int) int
}

type Rand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSeeded(seed uint64) *Rand {
	return &Rand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

func (r *Rand) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}

	r.mu.Lock()
	roll := r.rnd.IntN(total)
	r.mu.Unlock()

	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}
