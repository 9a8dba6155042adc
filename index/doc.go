// Package index provides vector index interfaces and implementations.
//
// Vecdex supports two index kinds:
//
//   - Flat: exact nearest neighbor search (brute-force with SIMD optimization)
//   - HNSW: Hierarchical Navigable Small World graph for fast approximate search
//
// # Index Selection
//
// Choose based on dataset size and accuracy requirements:
//
//   - Flat: small collections (up to ~10K vectors), 100% recall required
//   - HNSW: larger collections, high (but approximate) recall
//
// # Index Interface
//
// All index implementations satisfy the core Index interface: identifiers
// are caller-assigned strings, results come back ordered by (distance, id)
// ascending, and every index serializes itself through encoding/gob.
//
// # Subpackages
//
//   - flat: exact search over dense slot storage
//   - hnsw: approximate search with a layered graph
package index
