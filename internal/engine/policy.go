package engine

import (
	"math/rand/v2"
	"time"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

// DefaultFillProbability is the per-order chance of resolving in one sweep.
const DefaultFillProbability = 0.5

// FillPolicy decides whether a pending order resolves during a settlement
// sweep. It is called synchronously from the simulator loop, once per
// pending order per sweep, so implementations need no locking.
type FillPolicy interface {
	ShouldFill(o domain.Order) bool
}

// RandomFillPolicy fills each pending order with a fixed independent
// probability per sweep. Draws are independent across orders and across
// sweeps; an unfilled order is simply re-evaluated next sweep.
type RandomFillPolicy struct {
	prob float64
	rng  *rand.Rand
}

// NewRandomFillPolicy creates a policy with the given probability and seed.
// Probabilities outside (0, 1] fall back to DefaultFillProbability; a zero
// seed draws one from entropy so restarts never repeat fill timing.
func NewRandomFillPolicy(prob float64, seed uint64) *RandomFillPolicy {
	if prob <= 0 || prob > 1 {
		prob = DefaultFillProbability
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) ^ rand.Uint64()
	}
	return &RandomFillPolicy{
		prob: prob,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// ShouldFill draws once per evaluated order.
func (p *RandomFillPolicy) ShouldFill(domain.Order) bool {
	return p.rng.Float64() < p.prob
}
