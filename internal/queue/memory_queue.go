package queue

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process priority queue with the same ordering as
// RedisQueue. It backs single-binary deployments without redis.
type MemoryQueue struct {
	mu     sync.Mutex
	items  jobHeap
	signal chan struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{signal: make(chan struct{}, 1)}
}

func (q *MemoryQueue) Push(_ context.Context, job *Job) error {
	q.mu.Lock()
	heap.Push(&q.items, job)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			job := heap.Pop(&q.items).(*Job)
			more := q.items.Len() > 0
			q.mu.Unlock()
			if more {
				select {
				case q.signal <- struct{}{}:
				default:
				}
			}
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, ErrTimeout
		case <-q.signal:
		}
	}
}

func (q *MemoryQueue) Length(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(q.items.Len()), nil
}

type jobHeap []*Job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool { return score(h[i]) < score(h[j]) }

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x interface{}) { *h = append(*h, x.(*Job)) }

func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return job
}

func score(j *Job) int64 {
	if j.Priority != 0 {
		return int64(j.Priority)
	}
	return j.CreatedAt.Unix()
}
