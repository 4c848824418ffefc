package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"aviary/internal/config"
	"aviary/internal/model"
	"aviary/internal/platform"
	"aviary/internal/viewer"
	aviaryapi "aviary/pkg/aviary"
)

const defaultConfigFile = "aviary.yaml"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "champion":
		return runChampion(ctx, args[1:])
	case "artifacts":
		return runArtifacts(ctx, args[1:])
	case "watch":
		return runWatch(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigFile, "config file to write")
	force := fs.Bool("force", false, "overwrite an existing config file")
	storeKind := fs.String("store", "", "store backend: memory|sqlite (default from config)")
	dbPath := fs.String("db-path", "", "sqlite database path (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Default()
	if err != nil {
		return err
	}
	if _, err := os.Stat(*configPath); err == nil && !*force {
		return fmt.Errorf("config file already exists: %s", *configPath)
	}
	if err := cfg.WriteYAML(*configPath); err != nil {
		return err
	}

	opts := storageOptions(cfg, *storeKind, *dbPath, "")
	client, err := aviaryapi.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized config=%s store=%s\n", *configPath, opts.StoreKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional config file")
	storeKind := fs.String("store", "", "store backend: memory|sqlite (default from config)")
	dbPath := fs.String("db-path", "", "sqlite database path (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	opts := storageOptions(cfg, *storeKind, *dbPath, "")
	client, err := aviaryapi.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", opts.StoreKind)
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional config file")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	seed := fs.Int64("seed", 0, "rng seed")
	generations := fs.Int("gens", 0, "generation count")
	animals := fs.Int("animals", 0, "population size")
	foods := fs.Int("foods", 0, "food count")
	generationLength := fs.Int("generation-length", 0, "steps per generation")
	storeKind := fs.String("store", "", "store backend: memory|sqlite (default from config)")
	dbPath := fs.String("db-path", "", "sqlite database path (default from config)")
	artifactsDir := fs.String("artifacts", "", "artifacts directory (default from config)")
	jsonOut := fs.Bool("json", false, "emit run summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if setFlags["seed"] {
		cfg.Run.Seed = *seed
	}
	if setFlags["gens"] {
		cfg.Run.Generations = *generations
	}
	if setFlags["animals"] {
		cfg.World.Animals = *animals
	}
	if setFlags["foods"] {
		cfg.World.Foods = *foods
	}
	if setFlags["generation-length"] {
		cfg.World.GenerationLength = *generationLength
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := aviaryapi.New(storageOptions(cfg, *storeKind, *dbPath, *artifactsDir))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Train(ctx, aviaryapi.TrainRequest{
		RunID:       *runID,
		Seed:        cfg.Run.Seed,
		Generations: cfg.Run.Generations,
		Params:      cfg.SimParams(),
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID            string                  `json:"run_id"`
			ArtifactsDir     string                  `json:"artifacts_dir"`
			History          []model.GenerationStats `json:"history"`
			FinalBestFitness float64                 `json:"final_best_fitness"`
		}{
			RunID:            summary.RunID,
			ArtifactsDir:     summary.ArtifactsDir,
			History:          summary.History,
			FinalBestFitness: summary.FinalBestFitness,
		})
	}

	fmt.Printf("run completed run_id=%s generations=%d seed=%d\n", summary.RunID, cfg.Run.Generations, cfg.Run.Seed)
	for _, gen := range summary.History {
		fmt.Printf("generation=%d min_fitness=%.6f mean_fitness=%.6f max_fitness=%.6f\n",
			gen.Generation, gen.MinFitness, gen.MeanFitness, gen.MaxFitness)
	}
	fmt.Printf("final_best_fitness=%.6f\n", summary.FinalBestFitness)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional config file")
	limit := fs.Int("limit", 20, "max runs to list")
	storeKind := fs.String("store", "", "store backend: memory|sqlite (default from config)")
	dbPath := fs.String("db-path", "", "sqlite database path (default from config)")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	client, err := aviaryapi.New(storageOptions(cfg, *storeKind, *dbPath, ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, aviaryapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, e := range runs {
		created := e.CreatedAtUTC
		if ts, err := time.Parse(time.RFC3339, e.CreatedAtUTC); err == nil {
			created = fmt.Sprintf("%s (%s)", e.CreatedAtUTC, humanize.Time(ts))
		}
		fmt.Printf("run_id=%s created_at=%s seed=%d pop=%d gens=%d final_best_fitness=%.6f\n",
			e.ID, created, e.Seed, e.PopulationSize, e.Generations, e.FinalBestFitness)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional config file")
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show fitness history for the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	storeKind := fs.String("store", "", "store backend: memory|sqlite (default from config)")
	dbPath := fs.String("db-path", "", "sqlite database path (default from config)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("fitness requires --run-id or --latest")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	client, err := aviaryapi.New(storageOptions(cfg, *storeKind, *dbPath, ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, aviaryapi.FitnessHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for _, gen := range history {
		fmt.Printf("generation=%d min_fitness=%.6f mean_fitness=%.6f max_fitness=%.6f\n",
			gen.Generation, gen.MinFitness, gen.MeanFitness, gen.MaxFitness)
	}
	return nil
}

func runChampion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("champion", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional config file")
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show champion for the most recent run")
	storeKind := fs.String("store", "", "store backend: memory|sqlite (default from config)")
	dbPath := fs.String("db-path", "", "sqlite database path (default from config)")
	jsonOut := fs.Bool("json", false, "emit champion record as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("champion requires --run-id or --latest")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	client, err := aviaryapi.New(storageOptions(cfg, *storeKind, *dbPath, ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	champion, err := client.Champion(ctx, aviaryapi.ChampionRequest{
		RunID:  *runID,
		Latest: *latest,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(champion)
	}

	fmt.Printf("run_id=%s generation=%d fitness=%.6f genes=%d\n",
		champion.RunID, champion.Generation, champion.Fitness, len(champion.Genes))
	return nil
}

func runArtifacts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("artifacts", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional config file")
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show artifacts for the most recent run")
	storeKind := fs.String("store", "", "store backend: memory|sqlite (default from config)")
	dbPath := fs.String("db-path", "", "sqlite database path (default from config)")
	artifactsDir := fs.String("artifacts", "", "artifacts directory (default from config)")
	jsonOut := fs.Bool("json", false, "emit run artifacts as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("artifacts requires --run-id or --latest")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	opts := storageOptions(cfg, *storeKind, *dbPath, *artifactsDir)
	client, err := aviaryapi.New(opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	id := *runID
	if *latest {
		runs, err := client.Runs(ctx, aviaryapi.RunsRequest{Limit: 1})
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return errors.New("no runs available")
		}
		id = runs[0].ID
	}

	artifacts, err := client.RunArtifacts(ctx, id)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(artifacts)
	}

	fmt.Printf("run_id=%s generations=%d final_best_fitness=%.6f\n",
		artifacts.Run.ID, artifacts.Run.Generations, artifacts.Run.FinalBestFitness)

	runDir := filepath.Join(opts.ArtifactsDir, id)
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		fmt.Printf("artifact=%s size=%s\n", entry.Name(), humanize.Bytes(uint64(info.Size())))
	}
	return nil
}

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional config file")
	addr := fs.String("addr", "", "viewer listen address (default from config)")
	seed := fs.Int64("seed", 0, "rng seed")
	stepsPerSecond := fs.Int("sps", 0, "simulation steps per second (default from config)")
	maxRestarts := fs.Int("max-restarts", 0, "give up after N viewer crashes (0 restarts forever)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Viewer.Addr = *addr
	}
	if setFlags["seed"] {
		cfg.Run.Seed = *seed
	}
	if *stepsPerSecond > 0 {
		cfg.Viewer.StepsPerSecond = *stepsPerSecond
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	server, err := viewer.NewServer(viewer.Config{
		Addr:           cfg.Viewer.Addr,
		Seed:           cfg.Run.Seed,
		StepsPerSecond: cfg.Viewer.StepsPerSecond,
		Params:         cfg.SimParams(),
	})
	if err != nil {
		return err
	}

	notifyCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisor := platform.NewSupervisor(platform.SupervisorPolicy{
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		MaxRestarts:    *maxRestarts,
	})
	if err := supervisor.Start("viewer", server.Run); err != nil {
		return err
	}
	fmt.Printf("watching viewer addr=%s steps_per_second=%d seed=%d\n",
		cfg.Viewer.Addr, cfg.Viewer.StepsPerSecond, cfg.Run.Seed)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-notifyCtx.Done():
			supervisor.StopAll()
			fmt.Println("viewer stopped")
			return nil
		case <-ticker.C:
			if len(supervisor.Tasks()) == 0 {
				return errors.New("viewer task gave up after repeated crashes")
			}
		}
	}
}

func storageOptions(cfg *config.Config, storeKind, dbPath, artifactsDir string) aviaryapi.Options {
	opts := aviaryapi.Options{
		StoreKind:    cfg.Storage.Backend,
		SQLitePath:   cfg.Storage.SQLitePath,
		ArtifactsDir: cfg.Storage.ArtifactsDir,
	}
	if storeKind != "" {
		opts.StoreKind = storeKind
	}
	if dbPath != "" {
		opts.SQLitePath = dbPath
	}
	if artifactsDir != "" {
		opts.ArtifactsDir = artifactsDir
	}
	return opts
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: aviaryctl <init|reset|train|runs|fitness|champion|artifacts|watch> [flags]", msg)
}
