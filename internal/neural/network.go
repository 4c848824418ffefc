// Package neural implements the dense feed-forward networks that drive
// agent decisions. Parameters flatten to and from a single []float64 so a
// network can live inside a genome.
package neural

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrShapeMismatch = errors.New("weight count does not match topology")

// LayerTopology declares the width of one layer.
type LayerTopology struct {
	Neurons int
}

type neuron struct {
	bias    float64
	weights []float64
}

type layer struct {
	neurons []neuron
}

// Network is a fully connected feed-forward network with ReLU activation on
// every layer.
type Network struct {
	topology []LayerTopology
	layers   []layer
}

func validateTopology(topology []LayerTopology) error {
	if len(topology) < 2 {
		return fmt.Errorf("topology needs at least two layers, got=%d", len(topology))
	}
	for i, lt := range topology {
		if lt.Neurons < 1 {
			return fmt.Errorf("layer %d needs at least one neuron, got=%d", i, lt.Neurons)
		}
	}
	return nil
}

func cloneTopology(topology []LayerTopology) []LayerTopology {
	return append([]LayerTopology(nil), topology...)
}

// WeightCount reports how many parameters (biases included) a network of the
// given topology carries.
func WeightCount(topology []LayerTopology) int {
	count := 0
	for i := 1; i < len(topology); i++ {
		count += topology[i].Neurons * (1 + topology[i-1].Neurons)
	}
	return count
}

// Random builds a network with biases and weights drawn uniformly from
// [-1, 1), one draw per parameter, in the same order Weights reports them.
func Random(rng *rand.Rand, topology []LayerTopology) (*Network, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if err := validateTopology(topology); err != nil {
		return nil, err
	}

	layers := make([]layer, 0, len(topology)-1)
	for i := 1; i < len(topology); i++ {
		in, out := topology[i-1].Neurons, topology[i].Neurons
		neurons := make([]neuron, out)
		for j := range neurons {
			neurons[j].bias = rng.Float64()*2 - 1
			neurons[j].weights = make([]float64, in)
			for k := range neurons[j].weights {
				neurons[j].weights[k] = rng.Float64()*2 - 1
			}
		}
		layers = append(layers, layer{neurons: neurons})
	}
	return &Network{topology: cloneTopology(topology), layers: layers}, nil
}

// FromWeights rebuilds a network from a flat parameter slice, consuming
// values in Weights order. The count must match the topology exactly.
func FromWeights(topology []LayerTopology, weights []float64) (*Network, error) {
	if err := validateTopology(topology); err != nil {
		return nil, err
	}
	if want := WeightCount(topology); len(weights) != want {
		return nil, fmt.Errorf("%w: got=%d want=%d", ErrShapeMismatch, len(weights), want)
	}

	idx := 0
	layers := make([]layer, 0, len(topology)-1)
	for i := 1; i < len(topology); i++ {
		in, out := topology[i-1].Neurons, topology[i].Neurons
		neurons := make([]neuron, out)
		for j := range neurons {
			neurons[j].bias = weights[idx]
			idx++
			neurons[j].weights = make([]float64, in)
			for k := range neurons[j].weights {
				neurons[j].weights[k] = weights[idx]
				idx++
			}
		}
		layers = append(layers, layer{neurons: neurons})
	}
	return &Network{topology: cloneTopology(topology), layers: layers}, nil
}

// Weights flattens the parameters: per layer, per neuron, bias first, then
// the incoming weights.
func (n *Network) Weights() []float64 {
	out := make([]float64, 0, WeightCount(n.topology))
	for _, l := range n.layers {
		for _, nr := range l.neurons {
			out = append(out, nr.bias)
			out = append(out, nr.weights...)
		}
	}
	return out
}

// Topology returns a copy of the layer widths.
func (n *Network) Topology() []LayerTopology {
	return cloneTopology(n.topology)
}

// Propagate runs one forward pass.
func (n *Network) Propagate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.topology[0].Neurons {
		return nil, fmt.Errorf("input size mismatch: got=%d want=%d", len(inputs), n.topology[0].Neurons)
	}

	current := inputs
	for _, l := range n.layers {
		next := make([]float64, len(l.neurons))
		for j, nr := range l.neurons {
			sum := nr.bias
			for k, w := range nr.weights {
				sum += w * current[k]
			}
			if sum < 0 {
				sum = 0
			}
			next[j] = sum
		}
		current = next
	}
	return current, nil
}
