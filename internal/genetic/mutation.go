package genetic

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrInvalidParameter = errors.New("parameter out of range")

// MutationMethod perturbs a child genome in place. Implementations must not
// change the genome's length.
type MutationMethod interface {
	Mutate(rng *rand.Rand, genome *Genome)
}

// GaussianMutation perturbs each gene with probability chance by a signed
// fraction of coefficient. Per gene, in order: one sign draw, one chance
// draw, and a magnitude draw only when the chance draw triggers. A chance of
// zero leaves the genome untouched while still consuming the sign and chance
// draws.
type GaussianMutation struct {
	chance      float64
	coefficient float64
}

func NewGaussianMutation(chance, coefficient float64) (*GaussianMutation, error) {
	if chance < 0 || chance > 1 {
		return nil, fmt.Errorf("%w: mutation chance %v outside [0,1]", ErrInvalidParameter, chance)
	}
	if coefficient < 0 {
		return nil, fmt.Errorf("%w: mutation coefficient %v below zero", ErrInvalidParameter, coefficient)
	}
	return &GaussianMutation{chance: chance, coefficient: coefficient}, nil
}

func (m *GaussianMutation) Chance() float64 {
	return m.chance
}

func (m *GaussianMutation) Coefficient() float64 {
	return m.coefficient
}

func (m *GaussianMutation) Mutate(rng *rand.Rand, genome *Genome) {
	for i := 0; i < genome.Len(); i++ {
		sign := 1.0
		if rng.Float64() < 0.5 {
			sign = -1.0
		}
		if rng.Float64() < m.chance {
			genome.Set(i, genome.At(i)+sign*m.coefficient*rng.Float64())
		}
	}
}
