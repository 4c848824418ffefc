// Package genetic implements generational evolution over fixed-length
// float64 genomes: fitness-proportionate selection, uniform crossover and
// chance-gated mutation, with every random decision drawn from an explicit
// source in a fixed order.
package genetic

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Individual is one member of an evolving population: a fitness score plus
// the genome that produced it.
type Individual interface {
	Fitness() float64
	Genome() *Genome
}

// Statistics summarizes the fitness of the population handed to Evolve,
// captured before replacement.
type Statistics struct {
	MinFitness  float64
	MaxFitness  float64
	MeanFitness float64
}

func summarize(population []Individual) Statistics {
	fitnesses := make([]float64, len(population))
	for i, individual := range population {
		fitnesses[i] = individual.Fitness()
	}
	return Statistics{
		MinFitness:  floats.Min(fitnesses),
		MaxFitness:  floats.Max(fitnesses),
		MeanFitness: stat.Mean(fitnesses, nil),
	}
}

// Engine runs generational replacement: the selection, crossover and
// mutation strategies produce exactly one offspring per slot in the outgoing
// population. create materializes a domain individual from a child genome.
type Engine[I Individual] struct {
	selection SelectionMethod
	crossover CrossoverMethod
	mutation  MutationMethod
	create    func(*Genome) I
}

func NewEngine[I Individual](selection SelectionMethod, crossover CrossoverMethod, mutation MutationMethod, create func(*Genome) I) (*Engine[I], error) {
	if selection == nil {
		return nil, errors.New("selection method is required")
	}
	if crossover == nil {
		return nil, errors.New("crossover method is required")
	}
	if mutation == nil {
		return nil, errors.New("mutation method is required")
	}
	if create == nil {
		return nil, errors.New("create function is required")
	}
	return &Engine[I]{
		selection: selection,
		crossover: crossover,
		mutation:  mutation,
		create:    create,
	}, nil
}

// Evolve produces the next generation. The returned population always has
// the same size as the input, and Statistics describe the input population.
// Randomness is consumed in a fixed order per offspring: one draw for parent
// A, one for parent B, one crossover draw per gene, then the mutation draws.
// Identically seeded runs therefore produce identical populations. The same
// individual may be picked as both parents. Any strategy error aborts the
// whole call.
func (e *Engine[I]) Evolve(rng *rand.Rand, population []I) ([]I, Statistics, error) {
	if rng == nil {
		return nil, Statistics{}, errors.New("random source is required")
	}
	if len(population) == 0 {
		return nil, Statistics{}, ErrEmptyPopulation
	}

	pool := make([]Individual, len(population))
	for i, individual := range population {
		pool[i] = individual
	}
	stats := summarize(pool)

	next := make([]I, 0, len(population))
	for i := range population {
		parentA, err := e.selection.Select(rng, pool)
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("select parent a for offspring %d: %w", i, err)
		}
		parentB, err := e.selection.Select(rng, pool)
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("select parent b for offspring %d: %w", i, err)
		}
		child, err := e.crossover.Crossover(rng, parentA.Genome(), parentB.Genome())
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("cross offspring %d: %w", i, err)
		}
		e.mutation.Mutate(rng, child)
		next = append(next, e.create(child))
	}
	return next, stats, nil
}
