// Package queue implements the bounded FIFO event queue workers drain (§4.2).
// A buffered channel gives FIFO ordering and blocking Take for free; Offer
// layers the admission policy (near-capacity fail-fast shedding) on top.
package queue

import (
	"context"
	"sync/atomic"

	dErrors "vigil/pkg/domain-errors"
)

// Payload is the opaque ingest-time event payload carried on the queue. The
// worker pipeline expects a worker.Payload value in practice; the queue itself is
// payload-type-agnostic.
type Payload any

// Queue is a bounded, non-blocking-offer/blocking-take FIFO.
type Queue struct {
	ch           chan Payload
	capacity     int
	nearCapacity float64
	size         atomic.Int64
}

// New constructs a Queue with the given fixed capacity and near-capacity
// admission threshold (e.g. 0.9 for 90%).
func New(capacity int, nearCapacityPercent float64) *Queue {
	if capacity <= 0 {
		capacity = 1000
	}
	if nearCapacityPercent <= 0 || nearCapacityPercent > 1 {
		nearCapacityPercent = 0.9
	}
	return &Queue{
		ch:           make(chan Payload, capacity),
		capacity:     capacity,
		nearCapacity: nearCapacityPercent,
	}
}

// Offer admits p onto the queue unless the queue is at or over its
// near-capacity threshold, or is full at the moment of the attempt. Both
// conditions map to the same AdmissionError per §4.1's admission policy —
// fail-fast shedding, never blocking.
func (q *Queue) Offer(p Payload) error {
	if q.isNearCapacity() {
		return dErrors.New(dErrors.CodeAdmission, "event queue near capacity, retry")
	}
	select {
	case q.ch <- p:
		q.size.Add(1)
		return nil
	default:
		return dErrors.New(dErrors.CodeAdmission, "event queue full, retry")
	}
}

// Take blocks until an element is available or ctx is done.
func (q *Queue) Take(ctx context.Context) (Payload, error) {
	select {
	case p := <-q.ch:
		q.size.Add(-1)
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current queue length.
func (q *Queue) Size() int {
	return int(q.size.Load())
}

// Capacity returns the queue's fixed capacity.
func (q *Queue) Capacity() int {
	return q.capacity
}

// UtilizationPercent returns Size()/Capacity() as a percentage in [0, 100].
func (q *Queue) UtilizationPercent() float64 {
	if q.capacity == 0 {
		return 0
	}
	return float64(q.Size()) / float64(q.capacity) * 100
}

// IsNearCapacity reports whether utilization is at or above the configured
// near-capacity threshold.
func (q *Queue) IsNearCapacity() bool {
	return q.isNearCapacity()
}

func (q *Queue) isNearCapacity() bool {
	return float64(q.Size()) >= q.nearCapacity*float64(q.capacity)
}

// Status is the observable snapshot returned by GET /events/queue/status.
type Status struct {
	CurrentSize       int     `json:"current_size"`
	Capacity          int     `json:"capacity"`
	UtilizationPercent float64 `json:"utilization_percent"`
	IsNearCapacity    bool    `json:"is_near_capacity"`
}

// Snapshot returns the queue's current observability status.
func (q *Queue) Snapshot() Status {
	return Status{
		CurrentSize:        q.Size(),
		Capacity:           q.capacity,
		UtilizationPercent: q.UtilizationPercent(),
		IsNearCapacity:     q.IsNearCapacity(),
	}
}
