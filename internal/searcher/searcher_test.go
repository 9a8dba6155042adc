package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearcherPoolReuse(t *testing.T) {
	s := Get()
	require.NotNil(t, s)

	s.Visited.Visit(7)
	s.Candidates.Push(Item{Node: 1, Distance: 1})
	s.Results.Push(Item{Node: 2, Distance: 2})
	s.Frontier = append(s.Frontier, Item{Node: 3, Distance: 3})
	s.Selected = append(s.Selected, Item{Node: 4, Distance: 4})
	s.Discarded = append(s.Discarded, Item{Node: 5, Distance: 5})

	Put(s)

	s2 := Get()
	assert.False(t, s2.Visited.Visited(7))
	assert.Equal(t, 0, s2.Candidates.Len())
	assert.Equal(t, 0, s2.Results.Len())
	assert.Empty(t, s2.Frontier)
	assert.Empty(t, s2.Selected)
	assert.Empty(t, s2.Discarded)
	Put(s2)
}

func TestSearcherQueuePolarity(t *testing.T) {
	s := Get()
	defer Put(s)

	s.Candidates.Push(Item{Node: 1, Distance: 9})
	s.Candidates.Push(Item{Node: 2, Distance: 1})
	nearest, ok := s.Candidates.Top()
	require.True(t, ok)
	assert.Equal(t, uint32(2), nearest.Node, "Candidates must surface the nearest")

	s.Results.Push(Item{Node: 1, Distance: 9})
	s.Results.Push(Item{Node: 2, Distance: 1})
	worst, ok := s.Results.Top()
	require.True(t, ok)
	assert.Equal(t, uint32(1), worst.Node, "Results must surface the worst keeper")
}

func TestExtractFrontier(t *testing.T) {
	s := Get()
	defer Put(s)

	for _, d := range []float32{5, 1, 4, 2, 3} {
		s.Results.Push(Item{Node: uint32(d), Distance: d})
	}

	s.ExtractFrontier()

	require.Len(t, s.Frontier, 5)
	for i, want := range []float32{1, 2, 3, 4, 5} {
		assert.Equal(t, want, s.Frontier[i].Distance)
	}
	assert.Equal(t, 0, s.Results.Len())

	// Draining an empty queue leaves an empty frontier.
	s.ExtractFrontier()
	assert.Empty(t, s.Frontier)
}
