// Command vecdex-bench measures the recall and query latency of a
// vecdex index over a seeded synthetic dataset. Recall@k is computed
// against an exact flat index built over the same vectors, so the
// reported number is the true fraction of nearest neighbors found.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aifocal/vecdex"
)

var (
	cfgFile string
	flagCfg = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "vecdex-bench",
	Short: "Benchmark recall and latency of a vecdex index",
	Long: `vecdex-bench builds an index over a seeded synthetic dataset and replays
held-out queries against it. Recall@k is measured against an exact flat
index on the same data; latencies are reported as mean, p50, p95 and p99.

Examples:
  vecdex-bench                                    # HNSW defaults, 1000x128, recall@10
  vecdex-bench --engine flat --count 5000         # exact search baseline
  vecdex-bench --ef-search 100 --min-recall 0.95  # fail the run below 0.95 recall
  vecdex-bench --config bench.yaml --workers 8    # YAML config, flags override`,
	SilenceUsage: true,
	RunE:         runBenchCmd,
}

func init() {
	bindFlags(rootCmd)
}

func bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML config file; explicit flags override its values")
	f.StringVar(&flagCfg.Engine, "engine", flagCfg.Engine, `index engine: "hnsw" or "flat"`)
	f.StringVar(&flagCfg.Metric, "metric", flagCfg.Metric, `distance metric: "euclidean", "cosine" or "dot"`)
	f.IntVar(&flagCfg.Dimension, "dimension", flagCfg.Dimension, "vector dimensionality")
	f.IntVar(&flagCfg.Count, "count", flagCfg.Count, "number of vectors to index")
	f.IntVar(&flagCfg.Queries, "queries", flagCfg.Queries, "number of held-out query vectors")
	f.IntVar(&flagCfg.K, "k", flagCfg.K, "neighbors to retrieve per query")
	f.IntVar(&flagCfg.M, "m", flagCfg.M, "HNSW connectivity (ignored by flat)")
	f.IntVar(&flagCfg.EFConstruction, "ef-construction", flagCfg.EFConstruction, "HNSW build beam width (ignored by flat)")
	f.IntVar(&flagCfg.EFSearch, "ef-search", flagCfg.EFSearch, "HNSW query beam width (ignored by flat)")
	f.Int64Var(&flagCfg.Seed, "seed", flagCfg.Seed, "seed for the dataset, queries and graph layers")
	f.IntVar(&flagCfg.Workers, "workers", flagCfg.Workers, "concurrent query workers")
	f.Float64Var(&flagCfg.QPS, "qps", flagCfg.QPS, "query rate limit in queries/sec, 0 disables")
	f.Float64Var(&flagCfg.MinRecall, "min-recall", flagCfg.MinRecall, "exit non-zero when recall@k falls below this, 0 disables")
}

// applyFlagOverrides copies explicitly set flags onto cfg, so they win
// over values loaded from --config.
func applyFlagOverrides(cmd *cobra.Command, cfg *benchConfig) {
	f := cmd.Flags()
	if f.Changed("engine") {
		cfg.Engine = flagCfg.Engine
	}
	if f.Changed("metric") {
		cfg.Metric = flagCfg.Metric
	}
	if f.Changed("dimension") {
		cfg.Dimension = flagCfg.Dimension
	}
	if f.Changed("count") {
		cfg.Count = flagCfg.Count
	}
	if f.Changed("queries") {
		cfg.Queries = flagCfg.Queries
	}
	if f.Changed("k") {
		cfg.K = flagCfg.K
	}
	if f.Changed("m") {
		cfg.M = flagCfg.M
	}
	if f.Changed("ef-construction") {
		cfg.EFConstruction = flagCfg.EFConstruction
	}
	if f.Changed("ef-search") {
		cfg.EFSearch = flagCfg.EFSearch
	}
	if f.Changed("seed") {
		cfg.Seed = flagCfg.Seed
	}
	if f.Changed("workers") {
		cfg.Workers = flagCfg.Workers
	}
	if f.Changed("qps") {
		cfg.QPS = flagCfg.QPS
	}
	if f.Changed("min-recall") {
		cfg.MinRecall = flagCfg.MinRecall
	}
}

func runBenchCmd(cmd *cobra.Command, args []string) error {
	cfg := defaultConfig()
	if cfgFile != "" {
		loaded, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := vecdex.NewTextLogger(slog.LevelInfo)
	report, err := runBench(ctx, cfg, logger)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)

	if cfg.MinRecall > 0 && report.Recall < cfg.MinRecall {
		return fmt.Errorf("recall@%d %.4f is below the required %.4f", cfg.K, report.Recall, cfg.MinRecall)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
