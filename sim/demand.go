package sim

import (
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DemandSource supplies a seller's stochastic per-tick market demand.
// The statistic generator behind it is an external concern; the core only
// requires that Sample is deterministic for a fixed seed and that Reset
// rewinds the stream to its initial state so episodes replay exactly.
type DemandSource interface {
	Sample(tick int64) int64
	Reset()
}

// PoissonDemand draws demand from a Poisson distribution with rate gamma.
// The zero rate is valid and always samples zero.
type PoissonDemand struct {
	gamma float64
	seed  uint64
	dist  distuv.Poisson
}

// NewPoissonDemand creates a demand source with the given rate and seed.
func NewPoissonDemand(gamma float64, seed int64) *PoissonDemand {
	p := &PoissonDemand{gamma: gamma, seed: uint64(seed)}
	p.Reset()
	return p
}

// Sample returns the demand for one tick.
func (p *PoissonDemand) Sample(tick int64) int64 {
	if p.gamma <= 0 {
		return 0
	}
	return int64(p.dist.Rand())
}

// Reset rewinds the stream so the next episode sees the same draws.
func (p *PoissonDemand) Reset() {
	if p.gamma <= 0 {
		return
	}
	p.dist = distuv.Poisson{Lambda: p.gamma, Src: xrand.NewSource(p.seed)}
}
