package engine

import (
	"container/heap"

	"github.com/rxtech-lab/argo-catalyst/internal/types"
)

type queuedEvent struct {
	event types.Event
	seq   uint64
}

type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].event.EventTime(), h[j].event.EventTime()
	if ti != tj {
		return ti < tj
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(queuedEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queuedEvent{}
	*h = old[:n-1]

	return item
}

// EventQueue pops events by timestamp. Events with equal timestamps pop in
// insertion order.
type EventQueue struct {
	items eventHeap
	seq   uint64
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

func (q *EventQueue) Push(event types.Event) {
	heap.Push(&q.items, queuedEvent{event: event, seq: q.seq})
	q.seq++
}

// Pop removes the earliest event. ok is false when the queue is empty.
func (q *EventQueue) Pop() (types.Event, bool) {
	if len(q.items) == 0 {
		return nil, false
	}

	item := heap.Pop(&q.items).(queuedEvent)

	return item.event, true
}

func (q *EventQueue) Len() int {
	return len(q.items)
}

// Reset drops all events. The insertion sequence keeps counting.
func (q *EventQueue) Reset() {
	q.items = nil
}
