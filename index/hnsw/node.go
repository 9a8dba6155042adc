package hnsw

// Node is one stored vector together with its adjacency lists. Conns
// holds one neighbor list per layer the node participates in, bottom
// first. Fields are exported for gob serialization.
type Node struct {
	Vector []float32
	Level  int
	Conns  [][]uint32
}

func newNode(vector []float32, level int) *Node {
	return &Node{
		Vector: vector,
		Level:  level,
		Conns:  make([][]uint32, level+1),
	}
}
