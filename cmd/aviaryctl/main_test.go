package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aviary/internal/model"
)

// feeding config: the interaction radius covers the whole torus, so every
// animal eats every food on each of the four steps per generation.
const feedingConfigYAML = `run:
  seed: 0
  generations: 2

world:
  animals: 4
  foods: 3
  generation_length: 3
  interaction_radius: 1.5

eye:
  cells: 3
`

func chdirTemp(t *testing.T) string {
	t.Helper()
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	workdir := t.TempDir()
	if err := os.Chdir(workdir); err != nil {
		t.Fatalf("chdir tempdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origWD)
	})
	return workdir
}

func writeFeedingConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "test_config.yaml")
	if err := os.WriteFile(path, []byte(feedingConfigYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func captureStdout(fn func() error) (string, error) {
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		_ = r.Close()
		return "", err
	}
	_ = r.Close()
	return buf.String(), runErr
}

func TestRunRejectsMissingAndUnknownCommands(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error for missing command, got %v", err)
	}

	err = run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: bogus") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestInitCommandWritesConfig(t *testing.T) {
	chdirTemp(t)

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"init"})
	})
	if err != nil {
		t.Fatalf("init command: %v", err)
	}
	if !strings.Contains(out, "initialized config=aviary.yaml store=memory") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat("aviary.yaml"); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if err := run(context.Background(), []string{"init"}); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
	if _, err := captureStdout(func() error {
		return run(context.Background(), []string{"init", "--force"})
	}); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestTrainCommandWritesArtifacts(t *testing.T) {
	workdir := chdirTemp(t)
	configPath := writeFeedingConfig(t, workdir)

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"train",
			"--config", configPath,
			"--run-id", "cli-run",
		})
	})
	if err != nil {
		t.Fatalf("train command: %v", err)
	}
	for _, want := range []string{
		"run completed run_id=cli-run generations=2 seed=0",
		"generation=0 min_fitness=12.000000 mean_fitness=12.000000 max_fitness=12.000000",
		"final_best_fitness=12.000000",
		"artifacts_dir=" + filepath.Join("artifacts", "cli-run"),
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("train output missing %q:\n%s", want, out)
		}
	}

	for _, file := range []string{"stats.json", "fitness.csv", "fitness.png"} {
		path := filepath.Join("artifacts", "cli-run", file)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected artifact %s: %v", path, err)
		}
	}
}

func TestTrainCommandJSONOutput(t *testing.T) {
	workdir := chdirTemp(t)
	configPath := writeFeedingConfig(t, workdir)

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"train",
			"--config", configPath,
			"--run-id", "cli-json-run",
			"--json",
		})
	})
	if err != nil {
		t.Fatalf("train command: %v", err)
	}

	var summary struct {
		RunID            string                  `json:"run_id"`
		ArtifactsDir     string                  `json:"artifacts_dir"`
		History          []model.GenerationStats `json:"history"`
		FinalBestFitness float64                 `json:"final_best_fitness"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode train output: %v\n%s", err, out)
	}
	if summary.RunID != "cli-json-run" {
		t.Fatalf("run id = %q, want cli-json-run", summary.RunID)
	}
	if len(summary.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(summary.History))
	}
	if summary.FinalBestFitness != 12 {
		t.Fatalf("final best fitness = %f, want 12", summary.FinalBestFitness)
	}
}

func TestTrainCommandFlagOverridesConfig(t *testing.T) {
	workdir := chdirTemp(t)
	configPath := writeFeedingConfig(t, workdir)

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"train",
			"--config", configPath,
			"--run-id", "cli-override-run",
			"--gens", "3",
			"--seed", "5",
		})
	})
	if err != nil {
		t.Fatalf("train command: %v", err)
	}
	if !strings.Contains(out, "run completed run_id=cli-override-run generations=3 seed=5") {
		t.Fatalf("expected flag overrides in output:\n%s", out)
	}
	if !strings.Contains(out, "generation=2 min_fitness=12.000000") {
		t.Fatalf("expected third generation line:\n%s", out)
	}
}

func TestTrainCommandRejectsBadOverrides(t *testing.T) {
	workdir := chdirTemp(t)
	configPath := writeFeedingConfig(t, workdir)

	if err := run(context.Background(), []string{
		"train", "--config", configPath, "--gens", "0",
	}); err == nil {
		t.Fatal("expected error for zero generations")
	}
	if err := run(context.Background(), []string{
		"train", "--config", configPath, "--animals", "0",
	}); err == nil {
		t.Fatal("expected error for empty population")
	}
}

func TestFitnessCommandValidatesSelectors(t *testing.T) {
	chdirTemp(t)

	err := run(context.Background(), []string{"fitness"})
	if err == nil || !strings.Contains(err.Error(), "requires --run-id or --latest") {
		t.Fatalf("expected selector error, got %v", err)
	}

	err = run(context.Background(), []string{"fitness", "--run-id", "x", "--latest"})
	if err == nil || !strings.Contains(err.Error(), "not both") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestArtifactsCommandLatestWithEmptyStore(t *testing.T) {
	chdirTemp(t)

	err := run(context.Background(), []string{"artifacts", "--latest"})
	if err == nil || !strings.Contains(err.Error(), "no runs available") {
		t.Fatalf("expected no runs error, got %v", err)
	}
}
