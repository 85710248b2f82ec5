package core

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when the ready queue is at capacity.
	ErrQueueFull = errors.New("too many tasks queued")

	// ErrQueueClosed is returned when every producer is gone and the queue was closed.
	ErrQueueClosed = errors.New("ready queue is closed")

	// ErrSpawnerClosed is returned when a closed Spawner is used.
	ErrSpawnerClosed = errors.New("spawner is closed")

	// ErrNilFuture is returned when a nil computation is spawned.
	ErrNilFuture = errors.New("nil future")

	// ErrExecutorRunning is returned when Run is called while the executor is already running.
	ErrExecutorRunning = errors.New("executor is already running")
)

// QueueOverflowError is the fatal condition raised when a producer cannot
// enqueue a task because the ready queue is full.
//
// Spawn and Wake panic with a *QueueOverflowError. It unwraps to ErrQueueFull.
type QueueOverflowError struct {
	Executor string
	Capacity int
	TaskID   TaskID
}

func (e *QueueOverflowError) Error() string {
	return fmt.Sprintf("executor %q: %s (capacity %d, task %s)", e.Executor, ErrQueueFull, e.Capacity, e.TaskID)
}

func (e *QueueOverflowError) Unwrap() error { return ErrQueueFull }

// TaskPanicError describes a task whose Poll panicked.
type TaskPanicError struct {
	TaskID TaskID
	Name   string
	Value  any
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task %s (%s) panicked: %v", e.TaskID, e.Name, e.Value)
}
