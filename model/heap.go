package model

import "container/heap"

// TimingQueueEntry is one sleeping interpreter waiting out its remaining
// delay. The queue orders ascending by TimeRemaining, tie-broken ascending
// by InterpreterIdx, so simultaneous wakeups are deterministic.
type TimingQueueEntry struct {
	InterpreterIdx int
	TimeRemaining  uint64
}

// timingQueue is a container/heap min-heap over TimingQueueEntry.
type timingQueue []TimingQueueEntry

func (q timingQueue) Len() int { return len(q) }
func (q timingQueue) Less(i, j int) bool {
	if q[i].TimeRemaining != q[j].TimeRemaining {
		return q[i].TimeRemaining < q[j].TimeRemaining
	}
	return q[i].InterpreterIdx < q[j].InterpreterIdx
}
func (q timingQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timingQueue) Push(x any) { *q = append(*q, x.(TimingQueueEntry)) }

func (q *timingQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (q *timingQueue) push(e TimingQueueEntry) { heap.Push(q, e) }

// popMin removes the minimum entry. Callers check Len() first.
func (q *timingQueue) popMin() TimingQueueEntry {
	return heap.Pop(q).(TimingQueueEntry)
}

func (q timingQueue) peekMin() TimingQueueEntry {
	return q[0]
}

var _ heap.Interface = (*timingQueue)(nil)
