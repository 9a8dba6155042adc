package searcher

// Item represents an entry in the priority queue, pairing an internal
// node id with its distance from the query.
type Item struct {
	Node     uint32  // internal id of the node
	Distance float32 // priority of the item in the queue
}

// Queue implements a binary heap of Items. A min queue surfaces the
// nearest item at the root, a max queue the farthest.
//
// Storage is value-based and the type does not implement
// container/heap, keeping the hot path free of interface calls and
// per-item allocations.
type Queue struct {
	max   bool
	items []Item
}

// NewMin creates a queue whose root is the nearest item.
func NewMin() *Queue {
	return &Queue{items: make([]Item, 0, 16)}
}

// NewMax creates a queue whose root is the farthest item.
func NewMax() *Queue {
	return &Queue{max: true, items: make([]Item, 0, 16)}
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Reset empties the queue, keeping its capacity.
func (q *Queue) Reset() {
	q.items = q.items[:0]
}

// Top returns the root item without removing it.
func (q *Queue) Top() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (q *Queue) Push(it Item) {
	q.items = append(q.items, it)
	q.siftUp(len(q.items) - 1)
}

// Pop removes and returns the root item.
func (q *Queue) Pop() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}

	it := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]

	if len(q.items) > 0 {
		q.siftDown(0)
	}

	return it, true
}

// PushBounded inserts an item into a queue capped at bound elements.
// When the queue is full, the new item replaces the root if it beats
// it and is skipped otherwise. It reports whether the item was kept.
func (q *Queue) PushBounded(it Item, bound int) bool {
	if len(q.items) < bound {
		q.Push(it)
		return true
	}

	top := q.items[0]
	if (q.max && it.Distance < top.Distance) || (!q.max && it.Distance > top.Distance) {
		q.items[0] = it
		q.siftDown(0)
		return true
	}

	return false
}

// Items exposes the backing slice in heap order. The view is
// invalidated by any queue mutation.
func (q *Queue) Items() []Item {
	return q.items
}

func (q *Queue) less(i, j int) bool {
	if q.max {
		return q.items[i].Distance > q.items[j].Distance
	}
	return q.items[i].Distance < q.items[j].Distance
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *Queue) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && q.less(right, left) {
			child = right
		}
		if !q.less(child, i) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
