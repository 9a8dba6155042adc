package vecdex

import (
	"github.com/aifocal/vecdex/distance"
	"github.com/aifocal/vecdex/index/flat"
	"github.com/aifocal/vecdex/index/hnsw"
)

// FlatThreshold is the expected-size cutoff used by the Auto builder.
// At or below it a flat index wins: exhaustive scans at that scale are
// fast and exact. Above it Build picks HNSW.
const FlatThreshold = 10000

// =============================================================================
// HNSW Builder (Immutable)
// =============================================================================

// HNSW creates a new HNSW index builder with the specified dimension.
// HNSW provides fast approximate nearest neighbor search in memory.
//
// The builder is immutable: each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	db, err := vecdex.HNSW(128).
//	    Cosine().
//	    M(32).
//	    EFConstruction(400).
//	    Build()
func HNSW(dimension int) HNSWBuilder {
	return HNSWBuilder{
		dimension:      dimension,
		metric:         distance.MetricEuclidean,
		m:              hnsw.DefaultM,
		efConstruction: hnsw.DefaultEFConstruction,
		efSearch:       hnsw.DefaultEFSearch,
	}
}

// HNSWBuilder is an immutable fluent builder for HNSW-backed Vecdex instances.
type HNSWBuilder struct {
	dimension      int
	metric         distance.Metric
	m              int
	efConstruction int
	efSearch       int
	randomSeed     *int64
	logger         *Logger
	metrics        MetricsCollector
}

// Euclidean sets the distance metric to Euclidean (L2) distance.
// This is the default.
func (b HNSWBuilder) Euclidean() HNSWBuilder {
	b.metric = distance.MetricEuclidean
	return b
}

// Cosine sets the distance metric to cosine distance (1 - cosine similarity).
func (b HNSWBuilder) Cosine() HNSWBuilder {
	b.metric = distance.MetricCosine
	return b
}

// DotProduct sets the distance metric to negated dot product, so larger
// dot products rank closer.
func (b HNSWBuilder) DotProduct() HNSWBuilder {
	b.metric = distance.MetricDot
	return b
}

// M sets the number of bidirectional links per node and layer.
// Higher values improve recall but increase memory usage and build time.
// Default: 16. Recommended range: 8-64.
func (b HNSWBuilder) M(m int) HNSWBuilder {
	b.m = m
	return b
}

// EFConstruction sets the candidate list size used while building the graph.
// Higher values improve graph quality but slow down inserts.
// Default: 200. Recommended range: 100-500.
//
// Note: this is different from search-time EF, which defaults to
// EFSearch and can be overridden per query with WithEF.
func (b HNSWBuilder) EFConstruction(ef int) HNSWBuilder {
	b.efConstruction = ef
	return b
}

// EFSearch sets the default candidate list size during search.
// Individual queries may override it with WithEF.
// Default: 50. Recommended range: k to a few hundred.
func (b HNSWBuilder) EFSearch(ef int) HNSWBuilder {
	b.efSearch = ef
	return b
}

// RandomSeed sets the seed for deterministic index construction.
// If not set, a time-based seed is used.
func (b HNSWBuilder) RandomSeed(seed int64) HNSWBuilder {
	b.randomSeed = &seed
	return b
}

// Logger sets the structured logger for operation tracing.
func (b HNSWBuilder) Logger(l *Logger) HNSWBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b HNSWBuilder) Metrics(mc MetricsCollector) HNSWBuilder {
	b.metrics = mc
	return b
}

// Build creates the HNSW-backed Vecdex instance.
func (b HNSWBuilder) Build() (*Vecdex, error) {
	engine, err := hnsw.New(func(o *hnsw.Options) {
		o.Dimension = b.dimension
		o.Metric = b.metric
		o.M = b.m
		o.EFConstruction = b.efConstruction
		o.EFSearch = b.efSearch
		o.RandomSeed = b.randomSeed
	})
	if err != nil {
		return nil, translateError(err)
	}

	return newVecdex(engine, facadeOptions(b.logger, b.metrics)...), nil
}

// MustBuild creates the Vecdex instance, panicking on error.
func (b HNSWBuilder) MustBuild() *Vecdex {
	db, err := b.Build()
	if err != nil {
		panic(err)
	}
	return db
}

// =============================================================================
// Flat Builder (Immutable)
// =============================================================================

// Flat creates a new flat index builder with the specified dimension.
// Flat provides exact nearest neighbor search by exhaustive comparison.
//
// The builder is immutable: each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	db, err := vecdex.Flat(128).
//	    Cosine().
//	    Build()
func Flat(dimension int) FlatBuilder {
	return FlatBuilder{
		dimension: dimension,
		metric:    distance.MetricEuclidean,
	}
}

// FlatBuilder is an immutable fluent builder for flat-backed Vecdex instances.
type FlatBuilder struct {
	dimension int
	metric    distance.Metric
	logger    *Logger
	metrics   MetricsCollector
}

// Euclidean sets the distance metric to Euclidean (L2) distance.
// This is the default.
func (b FlatBuilder) Euclidean() FlatBuilder {
	b.metric = distance.MetricEuclidean
	return b
}

// Cosine sets the distance metric to cosine distance (1 - cosine similarity).
func (b FlatBuilder) Cosine() FlatBuilder {
	b.metric = distance.MetricCosine
	return b
}

// DotProduct sets the distance metric to negated dot product, so larger
// dot products rank closer.
func (b FlatBuilder) DotProduct() FlatBuilder {
	b.metric = distance.MetricDot
	return b
}

// Logger sets the structured logger for operation tracing.
func (b FlatBuilder) Logger(l *Logger) FlatBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b FlatBuilder) Metrics(mc MetricsCollector) FlatBuilder {
	b.metrics = mc
	return b
}

// Build creates the flat-backed Vecdex instance.
func (b FlatBuilder) Build() (*Vecdex, error) {
	engine, err := flat.New(func(o *flat.Options) {
		o.Dimension = b.dimension
		o.Metric = b.metric
	})
	if err != nil {
		return nil, translateError(err)
	}

	return newVecdex(engine, facadeOptions(b.logger, b.metrics)...), nil
}

// MustBuild creates the Vecdex instance, panicking on error.
func (b FlatBuilder) MustBuild() *Vecdex {
	db, err := b.Build()
	if err != nil {
		panic(err)
	}
	return db
}

// =============================================================================
// Auto Builder (Immutable)
// =============================================================================

// Auto creates a builder that picks the index kind from the expected
// dataset size: flat at or below FlatThreshold, HNSW above it. Without
// ExpectedSize, Build assumes growth and picks HNSW. The choice is fixed
// at Build time; the index never switches kinds afterwards.
//
// Example:
//
//	db, err := vecdex.Auto(128).
//	    ExpectedSize(5000). // small corpus, exact search wins
//	    Build()
func Auto(dimension int) AutoBuilder {
	return AutoBuilder{
		dimension: dimension,
		metric:    distance.MetricEuclidean,
	}
}

// AutoBuilder is an immutable fluent builder that selects flat or HNSW
// at Build time. HNSW parameters stay at their defaults; use the HNSW
// builder directly to tune them.
type AutoBuilder struct {
	dimension    int
	metric       distance.Metric
	expectedSize int
	logger       *Logger
	metrics      MetricsCollector
}

// ExpectedSize hints how many vectors the index will hold.
func (b AutoBuilder) ExpectedSize(n int) AutoBuilder {
	b.expectedSize = n
	return b
}

// Euclidean sets the distance metric to Euclidean (L2) distance.
// This is the default.
func (b AutoBuilder) Euclidean() AutoBuilder {
	b.metric = distance.MetricEuclidean
	return b
}

// Cosine sets the distance metric to cosine distance (1 - cosine similarity).
func (b AutoBuilder) Cosine() AutoBuilder {
	b.metric = distance.MetricCosine
	return b
}

// DotProduct sets the distance metric to negated dot product, so larger
// dot products rank closer.
func (b AutoBuilder) DotProduct() AutoBuilder {
	b.metric = distance.MetricDot
	return b
}

// Logger sets the structured logger for operation tracing.
func (b AutoBuilder) Logger(l *Logger) AutoBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b AutoBuilder) Metrics(mc MetricsCollector) AutoBuilder {
	b.metrics = mc
	return b
}

// Build creates the Vecdex instance, flat or HNSW-backed per the
// expected size.
func (b AutoBuilder) Build() (*Vecdex, error) {
	if b.expectedSize > 0 && b.expectedSize <= FlatThreshold {
		fb := Flat(b.dimension)
		fb.metric = b.metric
		fb.logger = b.logger
		fb.metrics = b.metrics
		return fb.Build()
	}

	hb := HNSW(b.dimension)
	hb.metric = b.metric
	hb.logger = b.logger
	hb.metrics = b.metrics
	return hb.Build()
}

// MustBuild creates the Vecdex instance, panicking on error.
func (b AutoBuilder) MustBuild() *Vecdex {
	db, err := b.Build()
	if err != nil {
		panic(err)
	}
	return db
}

func facadeOptions(logger *Logger, metrics MetricsCollector) []Option {
	var optFns []Option
	if logger != nil {
		optFns = append(optFns, WithLogger(logger))
	}
	if metrics != nil {
		optFns = append(optFns, WithMetricsCollector(metrics))
	}
	return optFns
}
