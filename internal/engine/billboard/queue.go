package billboard

import "sort"

// Queue collects billboards for one scene.
type Queue struct {
	items []Billboard
	next  int
}

// Push appends b, recording its submission order.
func (q *Queue) Push(b Billboard) {
	b.order = q.next
	q.next++
	q.items = append(q.items, b)
}

// Len returns the number of queued billboards.
func (q *Queue) Len() int {
	return len(q.items)
}

// Items returns the queued billboards in their current order.
func (q *Queue) Items() []Billboard {
	return q.items
}

// Sort orders the queue back-to-front by depth. Equal depths keep their
// submission order.
func (q *Queue) Sort() {
	sort.SliceStable(q.items, func(i, j int) bool {
		return q.items[i].Depth > q.items[j].Depth
	})
}

// Drain sorts the queue, returns its contents and empties it.
func (q *Queue) Drain() []Billboard {
	q.Sort()
	out := q.items
	q.items = nil
	q.next = 0
	return out
}

// Reset discards everything queued.
func (q *Queue) Reset() {
	q.items = q.items[:0]
	q.next = 0
}
