package executor

import (
	"container/heap"
	"time"

	"genmesh/core"
)

// job is one accepted unit of work waiting for (or holding) a pool slot.
type job struct {
	task      *core.Task
	agentName string
	timeout   time.Duration
	seq       uint64 // submission order, breaks remaining ties deterministically
}

// jobHeap orders queued jobs by priority descending, then creation time
// ascending, then submission order. It implements heap.Interface.
type jobHeap []*job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].task.Priority != h[j].task.Priority {
		return h[i].task.Priority > h[j].task.Priority
	}
	if !h[i].task.CreatedAt.Equal(h[j].task.CreatedAt) {
		return h[i].task.CreatedAt.Before(h[j].task.CreatedAt)
	}
	return h[i].seq < h[j].seq
}

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) { *h = append(*h, x.(*job)) }

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return j
}

func (h *jobHeap) push(j *job) { heap.Push(h, j) }

func (h *jobHeap) pop() *job {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*job)
}
