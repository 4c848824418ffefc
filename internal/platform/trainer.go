// Package platform orchestrates training runs: it owns the deterministic
// random source, drives the simulation across generations and persists the
// resulting artifacts.
package platform

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"aviary/internal/model"
	"aviary/internal/sim"
	"aviary/internal/storage"
)

// TrainConfig describes one training run. A zero Seed selects the all-zero
// generator state, which is the reference stream for regression comparisons.
type TrainConfig struct {
	RunID       string
	Seed        int64
	Generations int
	Params      sim.Params
}

// TrainResult reports what a completed run produced and persisted.
type TrainResult struct {
	Run      model.RunRecord
	History  []model.GenerationStats
	Champion model.ChampionRecord
}

type Trainer struct {
	store storage.Store
}

func NewTrainer(store storage.Store) (*Trainer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &Trainer{store: store}, nil
}

// SeededRand builds the deterministic generator every run threads through
// the simulation. The seed occupies the first eight key bytes; the rest
// stay zero so seed 0 reproduces the reference stream.
func SeededRand(seed int64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	return rand.New(rand.NewChaCha8(key))
}

// Run executes cfg.Generations full generations and persists the run
// summary, the per-generation statistics and the final champion. The
// context is only consulted between generations; a single generation is
// never interrupted mid-step.
func (t *Trainer) Run(ctx context.Context, cfg TrainConfig) (TrainResult, error) {
	if cfg.Generations <= 0 {
		return TrainResult{}, fmt.Errorf("generations must be positive, got %d", cfg.Generations)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	rng := SeededRand(cfg.Seed)
	simulation, err := sim.Random(rng, cfg.Params)
	if err != nil {
		return TrainResult{}, fmt.Errorf("build simulation: %w", err)
	}

	history := make([]model.GenerationStats, 0, cfg.Generations)
	for g := 0; g < cfg.Generations; g++ {
		if err := ctx.Err(); err != nil {
			return TrainResult{}, fmt.Errorf("training interrupted at generation %d: %w", g, err)
		}
		stats, err := simulation.Train(rng)
		if err != nil {
			return TrainResult{}, fmt.Errorf("train generation %d: %w", g, err)
		}
		history = append(history, model.GenerationStats{
			Generation:  g,
			MinFitness:  stats.MinFitness,
			MaxFitness:  stats.MaxFitness,
			MeanFitness: stats.MeanFitness,
		})
	}

	best := simulation.Champion()
	if best == nil {
		return TrainResult{}, fmt.Errorf("run %s finished without a champion", runID)
	}
	champion := model.ChampionRecord{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           runID,
		Generation:      best.Generation,
		Fitness:         best.Fitness,
		Genes:           best.Genome.Genes(),
	}

	run := model.RunRecord{
		VersionedRecord:  storage.CurrentVersion(),
		ID:               runID,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339),
		Seed:             cfg.Seed,
		Generations:      cfg.Generations,
		PopulationSize:   cfg.Params.Animals,
		FoodCount:        cfg.Params.Foods,
		GenerationLength: cfg.Params.GenerationLength,
		MutationChance:   cfg.Params.MutationChance,
		MutationCoeff:    cfg.Params.MutationCoeff,
		FinalBestFitness: best.Fitness,
	}

	if err := t.store.SaveRun(ctx, run); err != nil {
		return TrainResult{}, fmt.Errorf("save run %s: %w", runID, err)
	}
	if err := t.store.SaveFitnessHistory(ctx, runID, history); err != nil {
		return TrainResult{}, fmt.Errorf("save history %s: %w", runID, err)
	}
	if err := t.store.SaveChampion(ctx, champion); err != nil {
		return TrainResult{}, fmt.Errorf("save champion %s: %w", runID, err)
	}

	return TrainResult{Run: run, History: history, Champion: champion}, nil
}
