// Package distance implements the vector distance kernels shared by
// every index type: squared L2, negated inner product, and cosine
// distance. All three return a float32 where smaller means closer, so
// callers can feed any metric into the same bounded top-k queue
// without per-metric comparator logic.
package distance

import (
	"fmt"
	"math"
)

// Metric identifies which kernel an index should use.
type Metric int

const (
	L2 Metric = iota
	InnerProduct
	Cosine
)

func (m Metric) String() string {
	switch m {
	case L2:
		return "l2"
	case InnerProduct:
		return "inner_product"
	case Cosine:
		return "cosine"
	default:
		return "unknown"
	}
}

// Func computes the distance between two equal-length vectors.
type Func func(a, b []float32) float32

// For returns the kernel for m, or an error if m is not recognized.
func For(m Metric) (Func, error) {
	switch m {
	case L2:
		return L2Squared, nil
	case InnerProduct:
		return NegatedDot, nil
	case Cosine:
		return CosineDistance, nil
	default:
		return nil, fmt.Errorf("distance: unsupported metric %v", m)
	}
}

// L2Squared returns the squared Euclidean distance. No sqrt: ranking
// order is identical with or without it, and skipping it avoids a
// transcendental call per comparison in the hot path.
func L2Squared(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("distance: vector dimensions must match")
	}
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// Dot returns the raw (unnegated) dot product, the pre-ranking-convention
// kernel; most callers want NegatedDot instead.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("distance: vector dimensions must match")
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// NegatedDot returns -Dot(a, b), so that smaller is closer, matching
// the convention used by L2Squared and CosineDistance.
func NegatedDot(a, b []float32) float32 {
	return -Dot(a, b)
}

// CosineDistance returns 1 - cosine_similarity(a, b). A zero vector on
// either side yields NaN (0/0 in the similarity computation), which
// callers must be prepared to handle explicitly rather than treat as a
// sentinel distance value.
func CosineDistance(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("distance: vector dimensions must match")
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	denom := float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))
	return 1.0 - dot/denom
}
