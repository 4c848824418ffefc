// Package sim steps a population of foraging animals through a toroidal
// unit-square world and evolves their brains at fixed generation
// boundaries. The package is single threaded: the caller owns stepping, and
// every random decision comes from the rng argument, so identically seeded
// simulations stay identical forever.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"aviary/internal/genetic"
)

// Champion is the best individual observed at any generation boundary.
type Champion struct {
	Genome     *genetic.Genome
	Fitness    float64
	Generation int
}

// Simulation owns one world and the genetic engine that evolves it.
type Simulation struct {
	params     Params
	world      *World
	engine     *genetic.Engine[*AnimalIndividual]
	age        int
	generation int
	champion   *Champion
}

// Random builds a simulation with a freshly placed population.
func Random(rng *rand.Rand, params Params) (*Simulation, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("validate params: %w", err)
	}

	mutation, err := genetic.NewGaussianMutation(params.MutationChance, params.MutationCoeff)
	if err != nil {
		return nil, fmt.Errorf("build mutation: %w", err)
	}
	engine, err := genetic.NewEngine(
		genetic.RouletteWheelSelection{},
		genetic.UniformCrossover{},
		mutation,
		NewAnimalIndividual,
	)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	world, err := randomWorld(rng, params)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}

	return &Simulation{params: params, world: world, engine: engine}, nil
}

// World exposes the live world. Callers must not mutate it; use Snapshot for
// transferable state.
func (s *Simulation) World() *World {
	return s.world
}

func (s *Simulation) Params() Params {
	return s.params
}

// Age reports steps taken since the last generation boundary.
func (s *Simulation) Age() int {
	return s.age
}

// Generation reports how many evolution passes have completed.
func (s *Simulation) Generation() int {
	return s.generation
}

// Champion reports the best individual seen at any generation boundary so
// far, or nil before the first boundary.
func (s *Simulation) Champion() *Champion {
	return s.champion
}

// Step advances the world by one tick: collisions, then brains, then
// movement. Stepping past the generation boundary evolves the population
// and returns its statistics; every other step returns nil.
func (s *Simulation) Step(rng *rand.Rand) (*genetic.Statistics, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	s.processCollisions(rng)
	if err := s.processBrains(); err != nil {
		return nil, err
	}
	s.processMovement()

	s.age++
	if s.age > s.params.GenerationLength {
		return s.evolve(rng)
	}
	return nil, nil
}

// Train steps until the next generation boundary and returns its
// statistics.
func (s *Simulation) Train(rng *rand.Rand) (genetic.Statistics, error) {
	for {
		stats, err := s.Step(rng)
		if err != nil {
			return genetic.Statistics{}, err
		}
		if stats != nil {
			return *stats, nil
		}
	}
}

// processCollisions feeds animals and respawns eaten food, iterating both
// collections in natural order so the draw sequence is stable.
func (s *Simulation) processCollisions(rng *rand.Rand) {
	for _, animal := range s.world.animals {
		for _, food := range s.world.foods {
			if animal.position.distanceTo(food.position) <= s.params.InteractionRadius {
				animal.satiation++
				food.position = randomPoint(rng)
			}
		}
	}
}

func (s *Simulation) processBrains() error {
	for _, animal := range s.world.animals {
		vision := animal.eye.ProcessVision(animal.position, animal.heading, s.world.foods)
		response, err := animal.brain.propagate(vision)
		if err != nil {
			return fmt.Errorf("animal brain: %w", err)
		}

		speedDelta := clamp(response[0], -s.params.SpeedAccel, s.params.SpeedAccel)
		rotationDelta := clamp(response[1], -s.params.RotationAccel, s.params.RotationAccel)

		animal.speed = clamp(animal.speed+speedDelta, s.params.SpeedMin, s.params.SpeedMax)
		animal.heading = normalizeAngle(animal.heading + rotationDelta)
	}
	return nil
}

func (s *Simulation) processMovement() {
	for _, animal := range s.world.animals {
		animal.position.X = wrap01(animal.position.X - math.Sin(animal.heading)*animal.speed)
		animal.position.Y = wrap01(animal.position.Y + math.Cos(animal.heading)*animal.speed)
	}
}

// evolve replaces the population with its offspring and respawns every
// food. Statistics describe the generation that just ended.
func (s *Simulation) evolve(rng *rand.Rand) (*genetic.Statistics, error) {
	s.age = 0

	current := make([]*AnimalIndividual, len(s.world.animals))
	for i, animal := range s.world.animals {
		current[i] = animalToIndividual(animal)
	}

	for _, individual := range current {
		if s.champion == nil || individual.fitness > s.champion.Fitness {
			s.champion = &Champion{
				Genome:     individual.genome,
				Fitness:    individual.fitness,
				Generation: s.generation,
			}
		}
	}

	evolved, stats, err := s.engine.Evolve(rng, current)
	if err != nil {
		return nil, fmt.Errorf("evolve generation %d: %w", s.generation, err)
	}

	animals := make([]*Animal, len(evolved))
	for i, individual := range evolved {
		animal, err := individual.intoAnimal(rng, s.params)
		if err != nil {
			return nil, fmt.Errorf("rebuild animal %d: %w", i, err)
		}
		animals[i] = animal
	}
	s.world.animals = animals

	for _, food := range s.world.foods {
		food.position = randomPoint(rng)
	}

	s.generation++
	return &stats, nil
}

// CloneBest replaces the population with fresh animals sharing the
// highest-satiation genome and respawns every food. When nothing has eaten
// yet the template is a fresh random brain.
func (s *Simulation) CloneBest(rng *rand.Rand) error {
	if rng == nil {
		return errors.New("random source is required")
	}
	if len(s.world.animals) < 2 {
		return fmt.Errorf("clone best needs at least two animals, got=%d", len(s.world.animals))
	}

	template, err := randomAnimal(rng, s.params)
	if err != nil {
		return fmt.Errorf("build template brain: %w", err)
	}
	topGenome := template.brain.ToGenome()
	topSatiation := 0
	for _, animal := range s.world.animals {
		if animal.satiation > topSatiation {
			topGenome = animal.brain.ToGenome()
			topSatiation = animal.satiation
		}
	}

	animals := make([]*Animal, s.params.Animals)
	for i := range animals {
		animal, err := animalFromGenome(topGenome, rng, s.params)
		if err != nil {
			return fmt.Errorf("clone animal %d: %w", i, err)
		}
		animals[i] = animal
	}
	s.world.animals = animals

	for _, food := range s.world.foods {
		food.position = randomPoint(rng)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeAngle folds an angle into (-pi, pi].
func normalizeAngle(a float64) float64 {
	return math.Atan2(math.Sin(a), math.Cos(a))
}
