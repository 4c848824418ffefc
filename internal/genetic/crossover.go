package genetic

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrLengthMismatch = errors.New("parent genome lengths differ")

// CrossoverMethod combines two parent genomes into a child genome of the
// same length.
type CrossoverMethod interface {
	Crossover(rng *rand.Rand, parentA, parentB *Genome) (*Genome, error)
}

// UniformCrossover flips one fair coin per gene: heads takes the allele from
// parent A, tails from parent B. Consumes exactly one draw per gene.
type UniformCrossover struct{}

func (UniformCrossover) Crossover(rng *rand.Rand, parentA, parentB *Genome) (*Genome, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if parentA == nil || parentB == nil {
		return nil, errors.New("both parents are required")
	}
	if parentA.Len() != parentB.Len() {
		return nil, fmt.Errorf("%w: got=%d want=%d", ErrLengthMismatch, parentB.Len(), parentA.Len())
	}

	genes := make([]float64, parentA.Len())
	for i := range genes {
		if rng.Float64() < 0.5 {
			genes[i] = parentA.At(i)
		} else {
			genes[i] = parentB.At(i)
		}
	}
	return &Genome{genes: genes}, nil
}
