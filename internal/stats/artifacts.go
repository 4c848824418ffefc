// Package stats renders training runs into on-disk artifacts: a JSON
// summary, a CSV fitness series and a PNG plot of the fitness envelope.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"aviary/internal/model"
)

const (
	summaryFile = "stats.json"
	seriesFile  = "fitness.csv"
	plotFile    = "fitness.png"
)

// RunArtifacts bundles everything WriteRunArtifacts renders for one run.
type RunArtifacts struct {
	Run      model.RunRecord         `json:"run"`
	History  []model.GenerationStats `json:"history"`
	Champion model.ChampionRecord    `json:"champion"`
}

// WriteRunArtifacts writes the summary, fitness series and fitness plot
// under baseDir/<run id>/ and returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, summaryFile), artifacts); err != nil {
		return "", err
	}
	if err := writeFitnessSeries(filepath.Join(runDir, seriesFile), artifacts.History); err != nil {
		return "", err
	}
	if err := writeFitnessPlot(filepath.Join(runDir, plotFile), artifacts.History); err != nil {
		return "", err
	}

	return runDir, nil
}

// ReadRunSummary loads a previously written stats.json.
func ReadRunSummary(baseDir, runID string) (RunArtifacts, bool, error) {
	path := filepath.Join(baseDir, runID, summaryFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunArtifacts{}, false, nil
		}
		return RunArtifacts{}, false, err
	}

	var artifacts RunArtifacts
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return RunArtifacts{}, false, err
	}
	return artifacts, true, nil
}

func writeFitnessSeries(path string, history []model.GenerationStats) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "min_fitness", "mean_fitness", "max_fitness"}); err != nil {
		return err
	}
	for _, stats := range history {
		if err := writer.Write([]string{
			strconv.Itoa(stats.Generation),
			strconv.FormatFloat(stats.MinFitness, 'f', -1, 64),
			strconv.FormatFloat(stats.MeanFitness, 'f', -1, 64),
			strconv.FormatFloat(stats.MaxFitness, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeFitnessPlot(path string, history []model.GenerationStats) error {
	p := plot.New()
	p.Title.Text = "Fitness by generation"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	minPts := make(plotter.XYs, len(history))
	meanPts := make(plotter.XYs, len(history))
	maxPts := make(plotter.XYs, len(history))
	for i, stats := range history {
		x := float64(stats.Generation)
		minPts[i] = plotter.XY{X: x, Y: stats.MinFitness}
		meanPts[i] = plotter.XY{X: x, Y: stats.MeanFitness}
		maxPts[i] = plotter.XY{X: x, Y: stats.MaxFitness}
	}

	minLine, err := plotter.NewLine(minPts)
	if err != nil {
		return err
	}
	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return err
	}
	maxLine, err := plotter.NewLine(maxPts)
	if err != nil {
		return err
	}
	minLine.Color = color.RGBA{R: 0xd6, G: 0x5d, B: 0x5d, A: 0xff}
	meanLine.Color = color.RGBA{R: 0x5d, G: 0x79, B: 0xd6, A: 0xff}
	maxLine.Color = color.RGBA{R: 0x4c, G: 0xa6, B: 0x4c, A: 0xff}

	p.Add(minLine, meanLine, maxLine)
	p.Legend.Add("min", minLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Add("max", maxLine)
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
