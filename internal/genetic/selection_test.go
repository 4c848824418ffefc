package genetic

import (
	"errors"
	"reflect"
	"testing"
)

func TestRouletteWheelDistribution(t *testing.T) {
	histogram := func() map[int]int {
		rng := newTestRand()
		population := []Individual{
			&staticIndividual{fitness: 2},
			&staticIndividual{fitness: 1},
			&staticIndividual{fitness: 4},
			&staticIndividual{fitness: 3},
		}
		counts := make(map[int]int)
		for i := 0; i < 1000; i++ {
			picked, err := RouletteWheelSelection{}.Select(rng, population)
			if err != nil {
				t.Fatalf("select %d: %v", i, err)
			}
			counts[int(picked.Fitness())]++
		}
		return counts
	}

	counts := histogram()

	// Expected frequency is fitness/10 per draw; bounds are wide enough to
	// never flake while still catching a broken wheel.
	bounds := map[int][2]int{
		1: {52, 148},
		2: {137, 263},
		3: {228, 372},
		4: {323, 477},
	}
	for fitness, bound := range bounds {
		got := counts[fitness]
		if got < bound[0] || got > bound[1] {
			t.Fatalf("fitness %d selected %d times, expected within [%d, %d]", fitness, got, bound[0], bound[1])
		}
	}
	if !(counts[4] > counts[3] && counts[3] > counts[2] && counts[2] > counts[1]) {
		t.Fatalf("selection frequency does not follow fitness order: %v", counts)
	}

	again := histogram()
	if !reflect.DeepEqual(counts, again) {
		t.Fatalf("identically seeded histograms differ: %v vs %v", counts, again)
	}
}

func TestRouletteWheelSkipsZeroFitness(t *testing.T) {
	rng := newTestRand()
	population := []Individual{
		&staticIndividual{fitness: 0},
		&staticIndividual{fitness: 5},
		&staticIndividual{fitness: 0},
	}

	for i := 0; i < 200; i++ {
		picked, err := RouletteWheelSelection{}.Select(rng, population)
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if picked != population[1] {
			t.Fatalf("draw %d picked a zero-fitness individual", i)
		}
	}
}

func TestRouletteWheelEmptyPopulation(t *testing.T) {
	_, err := RouletteWheelSelection{}.Select(newTestRand(), nil)
	if !errors.Is(err, ErrEmptyPopulation) {
		t.Fatalf("expected empty population error, got %v", err)
	}
}

func TestRouletteWheelDegenerateWeights(t *testing.T) {
	population := []Individual{
		&staticIndividual{fitness: 0},
		&staticIndividual{fitness: 0},
	}

	_, err := RouletteWheelSelection{}.Select(newTestRand(), population)
	if !errors.Is(err, ErrDegenerateWeights) {
		t.Fatalf("expected degenerate weights error, got %v", err)
	}
}

func TestRouletteWheelNegativeFitness(t *testing.T) {
	population := []Individual{
		&staticIndividual{fitness: -1},
		&staticIndividual{fitness: 3},
	}

	_, err := RouletteWheelSelection{}.Select(newTestRand(), population)
	if !errors.Is(err, ErrNegativeFitness) {
		t.Fatalf("expected negative fitness error, got %v", err)
	}
}

func TestRouletteWheelNilRand(t *testing.T) {
	population := []Individual{&staticIndividual{fitness: 1}}

	if _, err := (RouletteWheelSelection{}).Select(nil, population); err == nil {
		t.Fatal("expected error for nil random source")
	}
}
