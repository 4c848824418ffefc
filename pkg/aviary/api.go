// Package aviary is the public entry point for foraging evolution
// experiments. A Client wires a store, the trainer, and on-disk run
// artifacts behind one API.
package aviary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"aviary/internal/model"
	"aviary/internal/platform"
	"aviary/internal/sim"
	"aviary/internal/stats"
	"aviary/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultSQLitePath   = "aviary.db"
)

type Options struct {
	StoreKind    string
	SQLitePath   string
	ArtifactsDir string
}

type Client struct {
	store       storage.Store
	trainer     *platform.Trainer
	initialized bool

	artifactsDir string
}

type TrainRequest struct {
	RunID       string
	Seed        int64
	Generations int
	Params      sim.Params
}

type TrainSummary struct {
	RunID            string
	ArtifactsDir     string
	History          []model.GenerationStats
	FinalBestFitness float64
}

type RunsRequest struct {
	Limit int
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ChampionRequest struct {
	RunID  string
	Latest bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	sqlitePath := opts.SQLitePath
	if sqlitePath == "" {
		sqlitePath = defaultSQLitePath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, sqlitePath)
	if err != nil {
		return nil, err
	}
	trainer, err := platform.NewTrainer(store)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		trainer:      trainer,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureInit(ctx)
}

// Reset drops every persisted run from the store.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	return storage.ResetIfSupported(ctx, c.store)
}

// Train evolves a fresh population and persists the run record, its
// per-generation history, and the final champion, then writes the run
// artifacts to disk.
func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	if req.Generations <= 0 {
		req.Generations = 10
	}
	if req.Params == (sim.Params{}) {
		req.Params = sim.DefaultParams()
	}
	if err := c.ensureInit(ctx); err != nil {
		return TrainSummary{}, err
	}

	result, err := c.trainer.Run(ctx, platform.TrainConfig{
		RunID:       req.RunID,
		Seed:        req.Seed,
		Generations: req.Generations,
		Params:      req.Params,
	})
	if err != nil {
		return TrainSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Run:      result.Run,
		History:  result.History,
		Champion: result.Champion,
	})
	if err != nil {
		return TrainSummary{}, err
	}

	return TrainSummary{
		RunID:            result.Run.ID,
		ArtifactsDir:     filepath.Clean(runDir),
		History:          append([]model.GenerationStats(nil), result.History...),
		FinalBestFitness: result.Run.FinalBestFitness,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	return runs, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]model.GenerationStats, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}

	runID := req.RunID
	if req.Latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = runs[0].ID
	}
	if runID == "" {
		return nil, errors.New("fitness history requires run id or latest")
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	out := make([]model.GenerationStats, len(history))
	copy(out, history)
	return out, nil
}

func (c *Client) Champion(ctx context.Context, req ChampionRequest) (model.ChampionRecord, error) {
	if req.RunID != "" && req.Latest {
		return model.ChampionRecord{}, errors.New("use either run id or latest")
	}
	if err := c.ensureInit(ctx); err != nil {
		return model.ChampionRecord{}, err
	}

	runID := req.RunID
	if req.Latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return model.ChampionRecord{}, err
		}
		if len(runs) == 0 {
			return model.ChampionRecord{}, errors.New("no runs available")
		}
		runID = runs[0].ID
	}
	if runID == "" {
		return model.ChampionRecord{}, errors.New("champion requires run id or latest")
	}

	champion, ok, err := c.store.GetChampion(ctx, runID)
	if err != nil {
		return model.ChampionRecord{}, err
	}
	if !ok {
		return model.ChampionRecord{}, fmt.Errorf("champion not found for run id: %s", runID)
	}
	return champion, nil
}

// RunArtifacts reads a run's artifacts back from the artifacts directory.
func (c *Client) RunArtifacts(_ context.Context, runID string) (stats.RunArtifacts, error) {
	if runID == "" {
		return stats.RunArtifacts{}, errors.New("run artifacts requires run id")
	}
	artifacts, ok, err := stats.ReadRunSummary(c.artifactsDir, runID)
	if err != nil {
		return stats.RunArtifacts{}, err
	}
	if !ok {
		return stats.RunArtifacts{}, fmt.Errorf("artifacts not found for run id: %s", runID)
	}
	return artifacts, nil
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}
