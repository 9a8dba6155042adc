package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/aifocal/vecdex/distance"
)

const (
	engineFlat = "flat"
	engineHNSW = "hnsw"
)

// Config validation errors.
var (
	ErrInvalidEngine    = errors.New(`engine must be "flat" or "hnsw"`)
	ErrInvalidDimension = errors.New("dimension must be positive")
	ErrInvalidCount     = errors.New("count must be positive")
	ErrInvalidQueries   = errors.New("queries must be positive")
	ErrInvalidK         = errors.New("k must be positive and at most count")
	ErrInvalidWorkers   = errors.New("workers must be positive")
	ErrInvalidQPS       = errors.New("qps cannot be negative")
	ErrInvalidMinRecall = errors.New("min-recall must lie in [0, 1]")
)

// benchConfig holds every tunable of a benchmark run. Zero values are
// not meaningful; start from defaultConfig.
type benchConfig struct {
	Engine         string  `yaml:"engine"`
	Metric         string  `yaml:"metric"`
	Dimension      int     `yaml:"dimension"`
	Count          int     `yaml:"count"`
	Queries        int     `yaml:"queries"`
	K              int     `yaml:"k"`
	M              int     `yaml:"m"`
	EFConstruction int     `yaml:"ef_construction"`
	EFSearch       int     `yaml:"ef_search"`
	Seed           int64   `yaml:"seed"`
	Workers        int     `yaml:"workers"`
	QPS            float64 `yaml:"qps"`
	MinRecall      float64 `yaml:"min_recall"`
}

// defaultConfig benchmarks 1000 uniform 128-dimensional vectors with
// the default HNSW build parameters, measuring recall@10 over 100
// held-out queries.
func defaultConfig() benchConfig {
	return benchConfig{
		Engine:         engineHNSW,
		Metric:         "euclidean",
		Dimension:      128,
		Count:          1000,
		Queries:        100,
		K:              10,
		M:              16,
		EFConstruction: 200,
		EFSearch:       50,
		Seed:           42,
		Workers:        runtime.NumCPU(),
	}
}

// loadConfig reads a YAML file on top of the defaults, so partial files
// only override the keys they name.
func loadConfig(path string) (benchConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// validate checks the CLI-level settings. The HNSW build parameters
// (m, ef-construction, ef-search) are validated by the index builder.
func (c benchConfig) validate() error {
	if c.Engine != engineFlat && c.Engine != engineHNSW {
		return ErrInvalidEngine
	}
	if _, err := distance.ParseMetric(c.Metric); err != nil {
		return err
	}
	if c.Dimension < 1 {
		return ErrInvalidDimension
	}
	if c.Count < 1 {
		return ErrInvalidCount
	}
	if c.Queries < 1 {
		return ErrInvalidQueries
	}
	if c.K < 1 || c.K > c.Count {
		return ErrInvalidK
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.QPS < 0 {
		return ErrInvalidQPS
	}
	if c.MinRecall < 0 || c.MinRecall > 1 {
		return ErrInvalidMinRecall
	}
	return nil
}
