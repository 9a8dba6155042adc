package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aifocal/vecdex"
	"github.com/aifocal/vecdex/testutil"
)

func main() {
	ctx := context.Background()

	seed := int64(4711)
	dim := 32
	size := 50000
	k := 10

	rng := testutil.NewRNG(seed)
	vectors := rng.UniformVectors(size, dim)
	query := rng.UniformVectors(1, dim)[0]
	ids := testutil.IDs("vec-", size)

	db := vecdex.HNSW(dim).
		M(32).
		RandomSeed(seed).
		MustBuild()

	entries := make([]vecdex.Entry, size)
	for i, vec := range vectors {
		entries[i] = vecdex.Entry{ID: ids[i], Vector: vec}
	}

	fmt.Println("--- Insert ---")
	fmt.Println("Dimension:", dim)
	fmt.Println("Size:", size)

	start := time.Now()
	result := db.BatchInsert(ctx, entries)
	if len(result.IDs) != size {
		log.Fatalf("inserted %d of %d vectors", len(result.IDs), size)
	}
	fmt.Printf("Seconds: %.2f\n\n", time.Since(start).Seconds())

	stats := db.Stats()
	fmt.Printf("Stats: %+v\n\n", stats)

	fmt.Println("--- HNSW ---")

	start = time.Now()
	approx, err := db.Search(ctx, query, k, vecdex.WithEF(80))
	if err != nil {
		log.Fatal(err)
	}
	printResults(approx)
	fmt.Printf("Seconds: %.8f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Brute ---")

	oracle := vecdex.Flat(dim).MustBuild()
	if res := oracle.BatchInsert(ctx, entries); len(res.IDs) != size {
		log.Fatal("oracle insert failed")
	}

	start = time.Now()
	exact, err := oracle.Search(ctx, query, k)
	if err != nil {
		log.Fatal(err)
	}
	printResults(exact)
	fmt.Printf("Seconds: %.8f\n\n", time.Since(start).Seconds())

	fmt.Printf("Recall@%d: %.2f\n\n", k, testutil.ComputeRecall(exact, approx))

	fmt.Println("--- Snapshot ---")

	path := filepath.Join(os.TempDir(), "vecdex-example.snapshot")
	defer os.Remove(path)

	start = time.Now()
	if err := db.SaveToFile(ctx, path); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Save seconds: %.2f\n", time.Since(start).Seconds())

	start = time.Now()
	restored, err := vecdex.LoadFromFile(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Load seconds: %.2f\n", time.Since(start).Seconds())
	fmt.Println("Restored size:", restored.Len())
}

func printResults(results []vecdex.SearchResult) {
	for _, r := range results {
		fmt.Printf("ID: %s, Distance: %.4f\n", r.ID, r.Distance)
	}
}
