// Package distance provides vector distance calculations with SIMD acceleration.
//
// Every metric returns a score where smaller means closer, so results from
// different metrics order the same way:
//
//   - MetricEuclidean: L2 distance (default)
//   - MetricCosine: cosine distance, 1 - cosine similarity
//   - MetricDot: negated dot product
//
// # Usage
//
//	f, _ := distance.Provider(distance.MetricEuclidean)
//	d := f(a, b)
package distance
