package storage

import (
	"context"

	"aviary/internal/model"
)

// Store defines persistence operations for run summaries, generation
// statistics and champion genomes.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []model.GenerationStats) error
	GetFitnessHistory(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
	SaveChampion(ctx context.Context, champion model.ChampionRecord) error
	GetChampion(ctx context.Context, runID string) (model.ChampionRecord, bool, error)
}
