// Package biometric compares a presented face embedding against enrolled
// templates. Matching is a pure function; no state is kept between calls.
package biometric

import "math"

const (
	// DefaultCosineThreshold is the minimum cosine similarity for a match.
	DefaultCosineThreshold = 0.55
	// DefaultDistanceThreshold is the maximum Euclidean distance for a match.
	DefaultDistanceThreshold = 0.60
)

// Result carries the scores of the best candidate template.
type Result struct {
	Similarity float64
	Distance   float64
	IsMatch    bool
}

// Matcher evaluates probes against templates using tunable thresholds.
type Matcher struct {
	cosThreshold  float64
	distThreshold float64
}

// NewMatcher builds a matcher. Non-positive thresholds fall back to defaults.
func NewMatcher(cosThreshold, distThreshold float64) Matcher {
	if cosThreshold <= 0 {
		cosThreshold = DefaultCosineThreshold
	}
	if distThreshold <= 0 {
		distThreshold = DefaultDistanceThreshold
	}
	return Matcher{cosThreshold: cosThreshold, distThreshold: distThreshold}
}

// Match scores the probe against every template, picks the template with the
// highest cosine similarity and reports its paired distance. Both thresholds
// must hold for a match; passing only one is a rejection.
func (m Matcher) Match(probe []float64, templates [][]float64) Result {
	best := Result{Similarity: -1, Distance: math.Inf(1)}
	for _, tpl := range templates {
		sim := CosineSimilarity(probe, tpl)
		if sim > best.Similarity {
			best.Similarity = sim
			best.Distance = EuclideanDistance(probe, tpl)
		}
	}
	best.IsMatch = best.Similarity >= m.cosThreshold && best.Distance <= m.distThreshold
	return best
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|). Degenerate input (zero-length
// vector, zero magnitude or mismatched dimensions) scores -1 so it can never
// win against any real template.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EuclideanDistance returns |a-b|, or +Inf on mismatched dimensions.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
