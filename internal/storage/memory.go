package storage

import (
	"context"
	"sort"
	"sync"

	"aviary/internal/model"
)

type MemoryStore struct {
	mu        sync.RWMutex
	runs      map[string]model.RunRecord
	history   map[string][]model.GenerationStats
	champions map[string]model.ChampionRecord
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.allocate()
	return s
}

func (s *MemoryStore) allocate() {
	s.runs = make(map[string]model.RunRecord)
	s.history = make(map[string][]model.GenerationStats)
	s.champions = make(map[string]model.ChampionRecord)
}

func (s *MemoryStore) Init(_ context.Context) error {
	return nil
}

// Reset drops every persisted record.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allocate()
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns runs newest first; ties break on run ID.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []model.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationStats, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]model.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationStats, len(history))
	copy(copied, history)
	return copied, true, nil
}

func (s *MemoryStore) SaveChampion(_ context.Context, champion model.ChampionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	champion.Genes = append([]float64(nil), champion.Genes...)
	s.champions[champion.RunID] = champion
	return nil
}

func (s *MemoryStore) GetChampion(_ context.Context, runID string) (model.ChampionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	champion, ok := s.champions[runID]
	if !ok {
		return model.ChampionRecord{}, false, nil
	}
	champion.Genes = append([]float64(nil), champion.Genes...)
	return champion, true, nil
}
