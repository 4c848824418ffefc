package sim

import (
	"fmt"
	"math/rand/v2"

	"aviary/internal/genetic"
	"aviary/internal/neural"
)

// Brain maps a vision reading to a speed adjustment and a rotation
// adjustment. Its shape is fixed by the eye: one input per cell, a hidden
// layer twice that wide, two outputs.
type Brain struct {
	network *neural.Network
}

func brainTopology(eye Eye) []neural.LayerTopology {
	return []neural.LayerTopology{
		{Neurons: eye.cells},
		{Neurons: 2 * eye.cells},
		{Neurons: 2},
	}
}

func randomBrain(rng *rand.Rand, eye Eye) (*Brain, error) {
	network, err := neural.Random(rng, brainTopology(eye))
	if err != nil {
		return nil, fmt.Errorf("build random brain: %w", err)
	}
	return &Brain{network: network}, nil
}

func brainFromGenome(genome *genetic.Genome, eye Eye) (*Brain, error) {
	network, err := neural.FromWeights(brainTopology(eye), genome.Genes())
	if err != nil {
		return nil, fmt.Errorf("decode brain genome: %w", err)
	}
	return &Brain{network: network}, nil
}

// ToGenome flattens the brain's parameters into a genome.
func (b *Brain) ToGenome() *genetic.Genome {
	return genetic.NewGenome(b.network.Weights())
}

func (b *Brain) propagate(vision []float64) ([]float64, error) {
	return b.network.Propagate(vision)
}
