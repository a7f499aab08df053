package domain

import (
	"math"
	"testing"
)

func TestCosine_SelfSimilarityIsMaximal(t *testing.T) {
	vecs := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 0.2, 1.5},
		{0.001, 0.002, 0.003},
	}

	for _, v := range vecs {
		got := Cosine(v, v)
		if math.Abs(got-1.0) > 1e-9 {
			t.Errorf("Cosine(v, v) = %v, want 1.0", got)
		}
	}
}

func TestCosine_Symmetry(t *testing.T) {
	a := []float32{0.5, -1.2, 3.3, 0.0}
	b := []float32{-0.7, 2.1, 0.4, 1.1}

	if Cosine(a, b) != Cosine(b, a) {
		t.Errorf("Cosine(a, b) = %v, Cosine(b, a) = %v", Cosine(a, b), Cosine(b, a))
	}
}

func TestCosine_OrthogonalVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	if got := Cosine(a, b); got != 0 {
		t.Errorf("Cosine(orthogonal) = %v, want 0", got)
	}
}

func TestCosine_OppositeVectors(t *testing.T) {
	a := []float32{1, 1}
	b := []float32{-1, -1}

	if got := Cosine(a, b); math.Abs(got+1.0) > 1e-9 {
		t.Errorf("Cosine(opposite) = %v, want -1.0", got)
	}
}

func TestCosine_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"empty vectors", nil, nil},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}},
		{"zero vector", []float32{0, 0}, []float32{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); got != 0 {
				t.Errorf("Cosine = %v, want 0", got)
			}
		})
	}
}

func TestCosine_ScaleInvariance(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}

	if got := Cosine(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Cosine(v, 2v) = %v, want 1.0", got)
	}
}
