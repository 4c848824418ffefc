package genetic

import "testing"

func TestNewGenomeCopiesInput(t *testing.T) {
	source := []float64{1, 2, 3}
	genome := NewGenome(source)
	source[0] = 99

	if genome.At(0) != 1 {
		t.Fatalf("genome aliased its input: got=%v want=1", genome.At(0))
	}
	if genome.Len() != 3 {
		t.Fatalf("unexpected length: got=%d want=3", genome.Len())
	}
}

func TestGenesReturnsCopy(t *testing.T) {
	genome := NewGenome([]float64{1, 2, 3})
	genes := genome.Genes()
	genes[1] = 99

	if genome.At(1) != 2 {
		t.Fatalf("Genes leaked internal storage: got=%v want=2", genome.At(1))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	genome := NewGenome([]float64{1, 2, 3})
	clone := genome.Clone()
	clone.Set(0, 99)

	if genome.At(0) != 1 {
		t.Fatalf("clone shares storage with original: got=%v want=1", genome.At(0))
	}
	if clone.At(0) != 99 {
		t.Fatalf("clone did not take the write: got=%v want=99", clone.At(0))
	}
}

func TestApproxEqual(t *testing.T) {
	base := NewGenome([]float64{1, 2})

	if !base.ApproxEqual(NewGenome([]float64{1.001, 2.001}), 0.01) {
		t.Fatal("expected genomes within tolerance to compare equal")
	}
	if base.ApproxEqual(NewGenome([]float64{1.1, 2}), 0.01) {
		t.Fatal("expected genomes beyond tolerance to compare unequal")
	}
	if base.ApproxEqual(NewGenome([]float64{1, 2, 3}), 0.01) {
		t.Fatal("expected genomes of different lengths to compare unequal")
	}
	if base.ApproxEqual(nil, 0.01) {
		t.Fatal("expected nil comparison to be false")
	}
	if !NewGenome(nil).ApproxEqual(NewGenome(nil), 0.01) {
		t.Fatal("expected empty genomes to compare equal")
	}
}
