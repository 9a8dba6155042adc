package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"

	"github.com/aifocal/vecdex"
	"github.com/aifocal/vecdex/distance"
	"github.com/aifocal/vecdex/testutil"
)

// benchReport aggregates one benchmark run.
type benchReport struct {
	Engine  string
	Metric  string
	Count   int
	Queries int
	K       int
	Workers int

	BuildTime time.Duration
	QueryTime time.Duration
	Recall    float64

	Latency latencySummary
	Stats   vecdex.Stats
	Ops     vecdex.BasicMetricsStats
}

// latencySummary holds per-query latency aggregates.
type latencySummary struct {
	Mean time.Duration
	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
}

// runBench generates a seeded dataset, builds the configured index and
// an exact flat oracle over the same vectors, then replays the held-out
// queries on concurrent workers. Recall@k is averaged across queries
// against the oracle's results.
func runBench(ctx context.Context, cfg benchConfig, logger *vecdex.Logger) (*benchReport, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rng := testutil.NewRNG(cfg.Seed)
	vectors := rng.UniformVectors(cfg.Count, cfg.Dimension)
	queries := rng.UniformVectors(cfg.Queries, cfg.Dimension)
	ids := testutil.IDs("vec-", cfg.Count)

	collector := &vecdex.BasicMetricsCollector{}
	db, err := buildIndex(cfg, logger, collector)
	if err != nil {
		return nil, err
	}
	oracle, err := oracleIndex(cfg)
	if err != nil {
		return nil, err
	}

	entries := make([]vecdex.Entry, cfg.Count)
	for i, vec := range vectors {
		entries[i] = vecdex.Entry{ID: ids[i], Vector: vec}
	}

	logger.InfoContext(ctx, "building index",
		slog.String("engine", cfg.Engine),
		slog.Int("count", cfg.Count),
		slog.Int("dimension", cfg.Dimension),
	)
	buildStart := time.Now()
	inserted := db.BatchInsert(ctx, entries)
	buildTime := time.Since(buildStart)
	if failed := cfg.Count - len(inserted.IDs); failed > 0 {
		return nil, fmt.Errorf("indexing failed for %d of %d vectors: %w", failed, cfg.Count, firstError(inserted.Errors))
	}
	if res := oracle.BatchInsert(ctx, entries); len(res.IDs) != cfg.Count {
		return nil, fmt.Errorf("oracle indexing failed: %w", firstError(res.Errors))
	}

	truth := make([][]vecdex.SearchResult, cfg.Queries)
	for i, q := range queries {
		truth[i], err = oracle.Search(ctx, q, cfg.K)
		if err != nil {
			return nil, fmt.Errorf("oracle search: %w", err)
		}
	}

	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), 1)
	}

	logger.InfoContext(ctx, "running queries",
		slog.Int("queries", cfg.Queries),
		slog.Int("k", cfg.K),
		slog.Int("workers", cfg.Workers),
		slog.Float64("qps", cfg.QPS),
	)

	latencies := make([]float64, cfg.Queries)
	recalls := make([]float64, cfg.Queries)

	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	queryStart := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1)) - 1
				if i >= cfg.Queries {
					return nil
				}
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				} else if err := gctx.Err(); err != nil {
					return err
				}
				t0 := time.Now()
				results, err := db.Search(gctx, queries[i], cfg.K)
				if err != nil {
					return fmt.Errorf("query %d: %w", i, err)
				}
				latencies[i] = time.Since(t0).Seconds()
				recalls[i] = testutil.ComputeRecall(truth[i], results)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	queryTime := time.Since(queryStart)

	report := &benchReport{
		Engine:    cfg.Engine,
		Metric:    cfg.Metric,
		Count:     cfg.Count,
		Queries:   cfg.Queries,
		K:         cfg.K,
		Workers:   cfg.Workers,
		BuildTime: buildTime,
		QueryTime: queryTime,
		Recall:    stat.Mean(recalls, nil),
		Latency:   summarizeLatencies(latencies),
		Stats:     db.Stats(),
		Ops:       collector.GetStats(),
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("engine", cfg.Engine),
		slog.Float64("recall", report.Recall),
		slog.Duration("build_time", buildTime),
		slog.Duration("query_time", queryTime),
		slog.Int64("searches", report.Ops.SearchCount),
		slog.Duration("search_avg", time.Duration(report.Ops.SearchAvgNanos)),
	)
	return report, nil
}

// buildIndex constructs the engine under test.
func buildIndex(cfg benchConfig, logger *vecdex.Logger, mc vecdex.MetricsCollector) (*vecdex.Vecdex, error) {
	metric, err := distance.ParseMetric(cfg.Metric)
	if err != nil {
		return nil, err
	}
	switch cfg.Engine {
	case engineFlat:
		b := vecdex.Flat(cfg.Dimension).Logger(logger).Metrics(mc)
		switch metric {
		case distance.MetricCosine:
			b = b.Cosine()
		case distance.MetricDot:
			b = b.DotProduct()
		}
		return b.Build()
	case engineHNSW:
		b := vecdex.HNSW(cfg.Dimension).
			M(cfg.M).
			EFConstruction(cfg.EFConstruction).
			EFSearch(cfg.EFSearch).
			RandomSeed(cfg.Seed).
			Logger(logger).
			Metrics(mc)
		switch metric {
		case distance.MetricCosine:
			b = b.Cosine()
		case distance.MetricDot:
			b = b.DotProduct()
		}
		return b.Build()
	default:
		return nil, ErrInvalidEngine
	}
}

// oracleIndex constructs the exact flat index recall is measured
// against. It shares the metric with the engine under test but keeps
// the default noop logger and metrics.
func oracleIndex(cfg benchConfig) (*vecdex.Vecdex, error) {
	metric, err := distance.ParseMetric(cfg.Metric)
	if err != nil {
		return nil, err
	}
	b := vecdex.Flat(cfg.Dimension)
	switch metric {
	case distance.MetricCosine:
		b = b.Cosine()
	case distance.MetricDot:
		b = b.DotProduct()
	}
	return b.Build()
}

// summarizeLatencies computes mean and quantile latencies from
// per-query durations in seconds.
func summarizeLatencies(latencies []float64) latencySummary {
	sorted := append([]float64(nil), latencies...)
	sort.Float64s(sorted)
	return latencySummary{
		Mean: durationFromSeconds(stat.Mean(sorted, nil)),
		P50:  durationFromSeconds(stat.Quantile(0.50, stat.Empirical, sorted, nil)),
		P95:  durationFromSeconds(stat.Quantile(0.95, stat.Empirical, sorted, nil)),
		P99:  durationFromSeconds(stat.Quantile(0.99, stat.Empirical, sorted, nil)),
	}
}

func durationFromSeconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func printReport(w io.Writer, r *benchReport) {
	fmt.Fprintf(w, "\n--- vecdex-bench ---\n")
	fmt.Fprintf(w, "Engine:    %s (metric=%s, dim=%d)\n", r.Engine, r.Metric, r.Stats.Dimension)
	fmt.Fprintf(w, "Vectors:   %d indexed in %v (%.0f vectors/sec)\n",
		r.Count, r.BuildTime.Round(time.Microsecond), float64(r.Count)/r.BuildTime.Seconds())
	fmt.Fprintf(w, "Queries:   %d in %v (%.0f queries/sec, %d workers)\n",
		r.Queries, r.QueryTime.Round(time.Microsecond), float64(r.Queries)/r.QueryTime.Seconds(), r.Workers)
	fmt.Fprintf(w, "Recall@%d: %.4f\n", r.K, r.Recall)
	fmt.Fprintf(w, "Latency:   mean=%v p50=%v p95=%v p99=%v\n",
		r.Latency.Mean.Round(time.Microsecond), r.Latency.P50.Round(time.Microsecond),
		r.Latency.P95.Round(time.Microsecond), r.Latency.P99.Round(time.Microsecond))
	if r.Stats.MaxLevel >= 0 {
		fmt.Fprintf(w, "Graph:     maxLevel=%d levelCounts=%v\n", r.Stats.MaxLevel, r.Stats.LevelCounts)
	}
}
