package service

import "sync"

const defaultReconcileQueueSize = 1024

// ReconcileQueue is a bounded set of campaign ids awaiting reconciliation.
// Pushing an id already queued is a no-op, so a burst of failures against
// one campaign costs a single reconcile.
type ReconcileQueue struct {
	mu     sync.Mutex
	ids    []string
	queued map[string]struct{}
	limit  int
}

// NewReconcileQueue creates a queue holding at most limit ids (default 1024)
func NewReconcileQueue(limit int) *ReconcileQueue {
	if limit <= 0 {
		limit = defaultReconcileQueueSize
	}
	return &ReconcileQueue{
		queued: make(map[string]struct{}),
		limit:  limit,
	}
}

// Push queues id. It reports false when id was already queued or the queue
// is full.
func (q *ReconcileQueue) Push(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queued[id]; ok {
		return false
	}
	if len(q.ids) >= q.limit {
		return false
	}
	q.ids = append(q.ids, id)
	q.queued[id] = struct{}{}
	return true
}

// Drain removes and returns up to max ids in arrival order (all if max <= 0)
func (q *ReconcileQueue) Drain(max int) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.ids)
	if max > 0 && max < n {
		n = max
	}
	out := make([]string, n)
	copy(out, q.ids[:n])
	q.ids = append(q.ids[:0], q.ids[n:]...)
	for _, id := range out {
		delete(q.queued, id)
	}
	return out
}

// Len returns the number of queued ids
func (q *ReconcileQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
