package sim

import (
	"math"
	"math/rand/v2"

	"aviary/internal/genetic"
)

// Animal is one foraging agent: a pose, a speed, an eye, a brain and the
// count of foods eaten this generation.
type Animal struct {
	position  Vec2
	heading   float64
	speed     float64
	eye       Eye
	brain     *Brain
	satiation int
}

func randomAnimal(rng *rand.Rand, params Params) (*Animal, error) {
	eye := NewEye(params)
	brain, err := randomBrain(rng, eye)
	if err != nil {
		return nil, err
	}
	return newAnimal(rng, params, eye, brain), nil
}

// animalFromGenome rebuilds an animal around an evolved genome. The brain is
// decoded first, then the placement draws follow in the same order as
// randomAnimal.
func animalFromGenome(genome *genetic.Genome, rng *rand.Rand, params Params) (*Animal, error) {
	eye := NewEye(params)
	brain, err := brainFromGenome(genome, eye)
	if err != nil {
		return nil, err
	}
	return newAnimal(rng, params, eye, brain), nil
}

// newAnimal consumes two position draws and one heading draw.
func newAnimal(rng *rand.Rand, params Params, eye Eye, brain *Brain) *Animal {
	return &Animal{
		position: randomPoint(rng),
		heading:  rng.Float64() * 2 * math.Pi,
		speed:    params.InitialSpeed,
		eye:      eye,
		brain:    brain,
	}
}

func (a *Animal) Position() Vec2 {
	return a.position
}

func (a *Animal) Heading() float64 {
	return a.heading
}

func (a *Animal) Speed() float64 {
	return a.speed
}

func (a *Animal) Satiation() int {
	return a.satiation
}
