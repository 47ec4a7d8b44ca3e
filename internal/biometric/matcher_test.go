package biometric

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}); !almostEqual(got, 1) {
		t.Fatalf("identical vectors: expected 1, got %f", got)
	}
	if got := CosineSimilarity([]float64{1, 0}, []float64{0, 1}); !almostEqual(got, 0) {
		t.Fatalf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := CosineSimilarity([]float64{1, 0}, []float64{-1, 0}); !almostEqual(got, -1) {
		t.Fatalf("opposite vectors: expected -1, got %f", got)
	}
	if got := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}); got != -1 {
		t.Fatalf("dimension mismatch: expected -1, got %f", got)
	}
	if got := CosineSimilarity([]float64{0, 0}, []float64{1, 2}); got != -1 {
		t.Fatalf("zero vector: expected -1, got %f", got)
	}
	if got := CosineSimilarity(nil, []float64{1}); got != -1 {
		t.Fatalf("empty vector: expected -1, got %f", got)
	}
}

func TestEuclideanDistance(t *testing.T) {
	if got := EuclideanDistance([]float64{0, 0}, []float64{3, 4}); !almostEqual(got, 5) {
		t.Fatalf("expected 5, got %f", got)
	}
	if got := EuclideanDistance([]float64{1, 2}, []float64{1, 2}); !almostEqual(got, 0) {
		t.Fatalf("identical vectors: expected 0, got %f", got)
	}
	if got := EuclideanDistance([]float64{1}, []float64{1, 2}); !math.IsInf(got, 1) {
		t.Fatalf("dimension mismatch: expected +Inf, got %f", got)
	}
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher(0, 0) // defaults

	probe := []float64{0.6, 0.8}

	res := m.Match(probe, [][]float64{{0.6, 0.8}})
	if !res.IsMatch {
		t.Fatalf("identical template should match: %+v", res)
	}
	if !almostEqual(res.Similarity, 1) || !almostEqual(res.Distance, 0) {
		t.Fatalf("unexpected scores: %+v", res)
	}

	res = m.Match(probe, [][]float64{{-0.8, 0.6}})
	if res.IsMatch {
		t.Fatalf("orthogonal template should not match: %+v", res)
	}
}

func TestMatcher_BothThresholdsRequired(t *testing.T) {
	m := NewMatcher(0, 0)

	// Same direction, very different magnitude: similarity passes, distance fails.
	res := m.Match([]float64{1, 2, 3}, [][]float64{{2, 4, 6}})
	if !almostEqual(res.Similarity, 1) {
		t.Fatalf("expected similarity 1, got %f", res.Similarity)
	}
	if res.Distance <= DefaultDistanceThreshold {
		t.Fatalf("test vectors too close: distance %f", res.Distance)
	}
	if res.IsMatch {
		t.Fatalf("similarity alone must not produce a match: %+v", res)
	}
}

func TestMatcher_PicksBestByCosine(t *testing.T) {
	m := NewMatcher(0, 0)

	probe := []float64{1, 0}
	far := []float64{0, 1}
	near := []float64{0.9, 0.1}

	res := m.Match(probe, [][]float64{far, near})
	if !res.IsMatch {
		t.Fatalf("expected match against nearest template: %+v", res)
	}
	// Distance must belong to the cosine winner, not the global minimum.
	if want := EuclideanDistance(probe, near); !almostEqual(res.Distance, want) {
		t.Fatalf("expected distance %f from winning template, got %f", want, res.Distance)
	}
}

func TestMatcher_NoTemplates(t *testing.T) {
	m := NewMatcher(0, 0)
	res := m.Match([]float64{1, 0}, nil)
	if res.IsMatch {
		t.Fatalf("empty gallery must not match: %+v", res)
	}
	if res.Similarity != -1 || !math.IsInf(res.Distance, 1) {
		t.Fatalf("unexpected degenerate scores: %+v", res)
	}
}

func TestMatcher_TunableThresholds(t *testing.T) {
	strict := NewMatcher(0.999, 0.05)
	res := strict.Match([]float64{1, 0}, [][]float64{{0.9, 0.1}})
	if res.IsMatch {
		t.Fatalf("strict thresholds should reject: %+v", res)
	}

	lax := NewMatcher(0.5, 1.5)
	res = lax.Match([]float64{1, 0}, [][]float64{{0.9, 0.1}})
	if !res.IsMatch {
		t.Fatalf("lax thresholds should accept: %+v", res)
	}
}
