package sim

import (
	"math"
	"math/rand/v2"
)

// Vec2 is a position in the unit square.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) distanceTo(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// wrap01 folds v onto the torus, into [0, 1).
func wrap01(v float64) float64 {
	return v - math.Floor(v)
}

func randomPoint(rng *rand.Rand) Vec2 {
	return Vec2{X: rng.Float64(), Y: rng.Float64()}
}

// Food is a stationary resource. Eating it moves it to a fresh random spot.
type Food struct {
	position Vec2
}

func (f *Food) Position() Vec2 {
	return f.position
}

// World holds every animal and food. Slice order is the iteration order for
// collisions, vision and evolution, which keeps runs reproducible.
type World struct {
	animals []*Animal
	foods   []*Food
}

// randomWorld places animals first, foods second, so the draw sequence is
// stable for a given seed.
func randomWorld(rng *rand.Rand, params Params) (*World, error) {
	animals := make([]*Animal, params.Animals)
	for i := range animals {
		animal, err := randomAnimal(rng, params)
		if err != nil {
			return nil, err
		}
		animals[i] = animal
	}

	foods := make([]*Food, params.Foods)
	for i := range foods {
		foods[i] = &Food{position: randomPoint(rng)}
	}
	return &World{animals: animals, foods: foods}, nil
}

// Animals returns the live animal list. Callers must treat it as read-only;
// Snapshot produces transferable state.
func (w *World) Animals() []*Animal {
	return w.animals
}

func (w *World) Foods() []*Food {
	return w.foods
}

// WorldSnapshot is a flat, JSON-friendly view of one world state.
type WorldSnapshot struct {
	Animals []AnimalState `json:"animals"`
	Foods   []FoodState   `json:"foods"`
}

type AnimalState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
	Satiation int     `json:"satiation"`
}

type FoodState struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (w *World) Snapshot() WorldSnapshot {
	snap := WorldSnapshot{
		Animals: make([]AnimalState, len(w.animals)),
		Foods:   make([]FoodState, len(w.foods)),
	}
	for i, a := range w.animals {
		snap.Animals[i] = AnimalState{
			X:         a.position.X,
			Y:         a.position.Y,
			Heading:   a.heading,
			Speed:     a.speed,
			Satiation: a.satiation,
		}
	}
	for i, f := range w.foods {
		snap.Foods[i] = FoodState{X: f.position.X, Y: f.position.Y}
	}
	return snap
}
