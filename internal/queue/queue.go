// Package queue provides the bounded priority queue used for top-N candidate
// selection.
package queue

import "math"

// Item is a scored row.
type Item struct {
	Row   int     // matrix row index, the tie-breaker
	Score float64 // lower is better; NaN ranks after every number
}

// Less reports whether a ranks strictly before b.
//
// The order is total: ascending Score, NaN after +Inf, equal scores (and
// NaN pairs) ordered by ascending Row. Sorting by Less is therefore
// equivalent to a stable ascending sort over rows in index order.
func Less(a, b Item) bool {
	an, bn := math.IsNaN(a.Score), math.IsNaN(b.Score)
	switch {
	case an && bn:
		return a.Row < b.Row
	case an:
		return false
	case bn:
		return true
	case a.Score != b.Score:
		return a.Score < b.Score
	default:
		return a.Row < b.Row
	}
}

// Compare is Less as a three-way comparison, for slices.SortFunc.
func Compare(a, b Item) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	default:
		return 0
	}
}

// Bounded keeps the best Cap items pushed into it.
// Internally it is a max-heap on Less, so the worst kept item is on top and
// is evicted first.
type Bounded struct {
	cap   int
	items []Item // value-based storage, no pointer indirection
}

// NewBounded creates a queue that retains at most capacity items.
func NewBounded(capacity int) *Bounded {
	if capacity < 0 {
		capacity = 0
	}
	return &Bounded{
		cap:   capacity,
		items: make([]Item, 0, capacity),
	}
}

// Len returns the number of retained items.
func (q *Bounded) Len() int { return len(q.items) }

// Cap returns the retention limit.
func (q *Bounded) Cap() int { return q.cap }

// Reset clears the queue for reuse without freeing memory.
func (q *Bounded) Reset() { q.items = q.items[:0] }

// Worst returns the worst retained item.
func (q *Bounded) Worst() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push offers item. It reports whether the item was retained.
func (q *Bounded) Push(item Item) bool {
	if q.cap == 0 {
		return false
	}
	if len(q.items) < q.cap {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if !Less(item, q.items[0]) {
		return false
	}
	q.items[0] = item
	q.siftDown(0)
	return true
}

// Drain empties the queue and returns its items best first.
func (q *Bounded) Drain() []Item {
	out := make([]Item, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

func (q *Bounded) pop() Item {
	n := len(q.items)
	root := q.items[0]
	last := q.items[n-1]
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root
}

// above reports whether i belongs above j in the max-heap.
func (q *Bounded) above(i, j int) bool {
	return Less(q.items[j], q.items[i])
}

func (q *Bounded) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.above(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Bounded) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && q.above(r, l) {
			best = r
		}
		if !q.above(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
