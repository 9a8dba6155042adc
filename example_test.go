package vecdex_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aifocal/vecdex"
)

func Example() {
	ctx := context.Background()

	db := vecdex.Flat(2).MustBuild()

	result := db.BatchInsert(ctx, []vecdex.Entry{
		{ID: "red", Vector: []float32{1, 0}},
		{ID: "orange", Vector: []float32{0.7, 0.3}},
		{ID: "blue", Vector: []float32{0, 1}},
	})
	fmt.Println("inserted:", len(result.IDs))

	results, err := db.Search(ctx, []float32{0.9, 0.1}, 2)
	if err != nil {
		panic(err)
	}
	for _, r := range results {
		fmt.Printf("%s %.2f\n", r.ID, r.Distance)
	}

	// Output:
	// inserted: 3
	// red 0.14
	// orange 0.28
}

func ExampleHNSW() {
	ctx := context.Background()

	db := vecdex.HNSW(3).
		Cosine().
		RandomSeed(42).
		MustBuild()

	_ = db.Insert(ctx, "cat", []float32{0.9, 0.1, 0.0})
	_ = db.Insert(ctx, "dog", []float32{0.8, 0.2, 0.1})
	_ = db.Insert(ctx, "car", []float32{0.0, 0.1, 0.9})

	results, err := db.Search(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(results[0].ID)

	// Output: cat
}

func ExampleLoadFromReader() {
	ctx := context.Background()

	db := vecdex.Flat(2).MustBuild()
	_ = db.Insert(ctx, "a", []float32{1, 2})

	var buf bytes.Buffer
	if err := db.SaveToWriter(&buf); err != nil {
		panic(err)
	}

	restored, err := vecdex.LoadFromReader(&buf)
	if err != nil {
		panic(err)
	}
	fmt.Println(restored.Len())

	// Output: 1
}
