package core

import (
	"sync"
	"sync/atomic"
)

// DefaultQueueCapacity is the ready queue capacity used when none is configured.
const DefaultQueueCapacity = 10_000

// readyQueue is the bounded multi-producer, single-consumer channel of tasks.
//
// Producers are counted explicitly: every open Spawner and every live Task
// holds one count. When the last count is released the channel is closed,
// and the consumer drains whatever is still buffered before it observes the
// close.
type readyQueue struct {
	ch chan *Task

	// mu orders pushes against close: push holds the read side for the
	// duration of its non-blocking send, close takes the write side.
	mu     sync.RWMutex
	closed bool

	producers atomic.Int64
}

func newReadyQueue(capacity int) *readyQueue {
	if capacity < 1 {
		capacity = DefaultQueueCapacity
	}
	return &readyQueue{
		ch: make(chan *Task, capacity),
	}
}

// acquire registers one more producer. The caller must already hold a count
// (an open spawner, or a live task), so the queue cannot be closed yet.
func (q *readyQueue) acquire() {
	q.producers.Add(1)
}

// release drops one producer and closes the queue when none remain.
func (q *readyQueue) release() {
	if q.producers.Add(-1) == 0 {
		q.close()
	}
}

// push enqueues t without blocking.
func (q *readyQueue) push(t *Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *readyQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

func (q *readyQueue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Len returns the number of buffered tasks.
func (q *readyQueue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *readyQueue) Cap() int { return cap(q.ch) }

func (q *readyQueue) producerCount() int64 { return q.producers.Load() }
