// Package searcher provides reusable scratch machinery for graph
// search: value-based priority queues, a visited set, and a pooled
// execution context that owns both.
package searcher
