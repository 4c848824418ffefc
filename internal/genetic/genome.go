package genetic

import "gonum.org/v1/gonum/floats"

// Genome is a fixed-length sequence of float64 genes. Length is set at
// construction and never changes; gene values change only through Set,
// which is what mutation methods use.
type Genome struct {
	genes []float64
}

// NewGenome copies genes into a fresh genome.
func NewGenome(genes []float64) *Genome {
	copied := make([]float64, len(genes))
	copy(copied, genes)
	return &Genome{genes: copied}
}

func (g *Genome) Len() int {
	return len(g.genes)
}

func (g *Genome) At(i int) float64 {
	return g.genes[i]
}

func (g *Genome) Set(i int, v float64) {
	g.genes[i] = v
}

// Genes returns a copy of the gene values.
func (g *Genome) Genes() []float64 {
	copied := make([]float64, len(g.genes))
	copy(copied, g.genes)
	return copied
}

func (g *Genome) Clone() *Genome {
	return NewGenome(g.genes)
}

// ApproxEqual reports whether both genomes have the same length and every
// gene pair is equal within tol.
func (g *Genome) ApproxEqual(other *Genome, tol float64) bool {
	if other == nil || len(g.genes) != len(other.genes) {
		return false
	}
	if len(g.genes) == 0 {
		return true
	}
	return floats.EqualApprox(g.genes, other.genes, tol)
}
