package genetic

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	ErrEmptyPopulation   = errors.New("empty population")
	ErrDegenerateWeights = errors.New("no individual has positive fitness")
	ErrNegativeFitness   = errors.New("fitness below zero")
)

// SelectionMethod picks one parent from a population. Implementations must
// consume randomness in a fixed, documented order so runs stay reproducible.
type SelectionMethod interface {
	Select(rng *rand.Rand, population []Individual) (Individual, error)
}

// RouletteWheelSelection picks parents with probability proportional to
// fitness. Zero-fitness individuals are never picked. Consumes exactly one
// uniform draw per call.
type RouletteWheelSelection struct{}

func (RouletteWheelSelection) Select(rng *rand.Rand, population []Individual) (Individual, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}

	total := 0.0
	for i, individual := range population {
		fitness := individual.Fitness()
		if fitness < 0 {
			return nil, fmt.Errorf("%w: individual %d has fitness %v", ErrNegativeFitness, i, fitness)
		}
		total += fitness
	}
	if total <= 0 {
		return nil, ErrDegenerateWeights
	}

	spin := rng.Float64() * total
	acc := 0.0
	for _, individual := range population {
		acc += individual.Fitness()
		if spin < acc {
			return individual, nil
		}
	}

	// Summation slop can leave spin at the far edge; that edge belongs to
	// the last individual with positive fitness.
	for i := len(population) - 1; i >= 0; i-- {
		if population[i].Fitness() > 0 {
			return population[i], nil
		}
	}
	return nil, ErrDegenerateWeights
}
