package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one completed training run.
type RunRecord struct {
	VersionedRecord
	ID               string  `json:"id"`
	CreatedAtUTC     string  `json:"created_at_utc"`
	Seed             int64   `json:"seed"`
	Generations      int     `json:"generations"`
	PopulationSize   int     `json:"population_size"`
	FoodCount        int     `json:"food_count"`
	GenerationLength int     `json:"generation_length"`
	MutationChance   float64 `json:"mutation_chance"`
	MutationCoeff    float64 `json:"mutation_coeff"`
	FinalBestFitness float64 `json:"final_best_fitness"`
}

// GenerationStats records the fitness summary emitted at one generation
// boundary.
type GenerationStats struct {
	Generation  int     `json:"generation"`
	MinFitness  float64 `json:"min_fitness"`
	MaxFitness  float64 `json:"max_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
}

// ChampionRecord holds the best genome observed across a whole run. Only
// the final champion is persisted; intermediate populations stay in memory.
type ChampionRecord struct {
	VersionedRecord
	RunID      string    `json:"run_id"`
	Generation int       `json:"generation"`
	Fitness    float64   `json:"fitness"`
	Genes      []float64 `json:"genes"`
}
