// Package distance provides public API for vector distance calculations.
// Kernels are SIMD-optimized via vek (AVX2 on x86-64, fallback elsewhere).
package distance

import (
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricCosine
	MetricDot
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "euclidean"
	case MetricCosine:
		return "cosine"
	case MetricDot:
		return "dot"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseMetric converts a metric name into a Metric. Names round-trip
// with String; "l2" is accepted as an alias for "euclidean".
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "cosine":
		return MetricCosine, nil
	case "dot":
		return MetricDot, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}

// Func is a function type for distance calculation.
// Assumes vectors are the same length (caller's responsibility).
type Func func(a, b []float32) float32

// Euclidean calculates the L2 distance between two vectors.
// Uses SIMD acceleration when available.
func Euclidean(a, b []float32) float32 {
	return vek32.Distance(a, b)
}

// Cosine calculates the cosine distance between two vectors,
// defined as 1 - cosine similarity. The result lies in [0, 2].
// Zero-norm inputs are undefined and must be rejected by the caller.
func Cosine(a, b []float32) float32 {
	return 1 - vek32.CosineSimilarity(a, b)
}

// NegDot calculates the negated dot product of two vectors, so that
// larger dot products sort as smaller distances.
func NegDot(a, b []float32) float32 {
	return -vek32.Dot(a, b)
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricCosine:
		return Cosine, nil
	case MetricDot:
		return NegDot, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Validate checks that v is usable under metric m: every component must
// be finite, and cosine rejects zero vectors (their angle is undefined).
func Validate(m Metric, v []float32) error {
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("component %d is not finite", i)
		}
	}
	if m == MetricCosine && vek32.Norm(v) == 0 {
		return fmt.Errorf("zero vector is undefined under cosine")
	}
	return nil
}
