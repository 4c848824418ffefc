package sim

import (
	"math/rand/v2"

	"aviary/internal/genetic"
)

// AnimalIndividual carries an animal through one evolution pass: satiation
// becomes fitness, the brain becomes the genome.
type AnimalIndividual struct {
	fitness float64
	genome  *genetic.Genome
}

// NewAnimalIndividual is the engine's create hook. Offspring start with zero
// fitness; they earn it in the next generation.
func NewAnimalIndividual(genome *genetic.Genome) *AnimalIndividual {
	return &AnimalIndividual{genome: genome}
}

func animalToIndividual(a *Animal) *AnimalIndividual {
	return &AnimalIndividual{
		fitness: float64(a.satiation),
		genome:  a.brain.ToGenome(),
	}
}

func (ai *AnimalIndividual) Fitness() float64 {
	return ai.fitness
}

func (ai *AnimalIndividual) Genome() *genetic.Genome {
	return ai.genome
}

func (ai *AnimalIndividual) intoAnimal(rng *rand.Rand, params Params) (*Animal, error) {
	return animalFromGenome(ai.genome, rng, params)
}
