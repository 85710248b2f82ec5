package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling panics raised by Poll
// =============================================================================

// PanicHandler is called when a task's computation panics while being polled.
// The task is treated as completed afterwards.
//
// Implementations should be thread-safe; several executors may share one.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - executorName: The name of the executor that polled the task
	// - taskID: The id of the panicking task
	// - taskName: The name of the panicking task
	// - panicInfo: The panic value recovered from Poll
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(executorName string, taskID TaskID, taskName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(executorName string, taskID TaskID, taskName string, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Executor %s] %s (%s) panic: %v\nStack trace:\n%s",
		executorName, taskID, taskName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting executor metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// RecordWake is called from whatever goroutine invokes a Waker, so every
// method must be safe for concurrent use and should not block.
type Metrics interface {
	// RecordPollDuration records how long one Poll call took and whether it finished the task.
	RecordPollDuration(executorName string, duration time.Duration, ready bool)

	// RecordTaskSpawned records that a task entered the ready queue for the first time.
	RecordTaskSpawned(executorName string)

	// RecordTaskCompleted records that a task's computation returned a ready Poll.
	RecordTaskCompleted(executorName string)

	// RecordTaskPanic records that a task panicked during Poll.
	RecordTaskPanic(executorName string, panicInfo any)

	// RecordTaskAbandoned records that a pending task became unreachable.
	RecordTaskAbandoned(executorName string)

	// RecordWake records one Wake call on a task's Wake Handle.
	RecordWake(executorName string)

	// RecordQueueDepth records the current ready queue depth.
	RecordQueueDepth(executorName string, depth int)

	// RecordTaskRejected records that a spawn was refused.
	RecordTaskRejected(executorName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordPollDuration(executorName string, duration time.Duration, ready bool) {}
func (m *NilMetrics) RecordTaskSpawned(executorName string)                                    {}
func (m *NilMetrics) RecordTaskCompleted(executorName string)                                  {}
func (m *NilMetrics) RecordTaskPanic(executorName string, panicInfo any)                       {}
func (m *NilMetrics) RecordTaskAbandoned(executorName string)                                  {}
func (m *NilMetrics) RecordWake(executorName string)                                           {}
func (m *NilMetrics) RecordQueueDepth(executorName string, depth int)                          {}
func (m *NilMetrics) RecordTaskRejected(executorName string, reason string)                    {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected tasks
// =============================================================================

// RejectedTaskHandler is called when a spawn cannot be accepted:
// - The Spawner was closed
// - The ready queue is full (right before the fatal overflow, or from TrySpawn)
//
// Implementations should be thread-safe as they may be called concurrently.
type RejectedTaskHandler interface {
	// HandleRejectedTask is called when a task is rejected.
	//
	// Parameters:
	// - executorName: The name of the executor
	// - reason: Why the task was rejected (e.g., "queue full", "spawner closed")
	HandleRejectedTask(executorName string, reason string)
}

// DefaultRejectedTaskHandler provides a basic handler that logs rejected tasks.
type DefaultRejectedTaskHandler struct{}

// HandleRejectedTask logs the rejected task.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(executorName string, reason string) {
	fmt.Printf("[Executor %s] Task rejected: %s\n", executorName, reason)
}

// =============================================================================
// ExecutorConfig: Configuration for NewScheduler
// =============================================================================

// Rejection reasons passed to RejectedTaskHandler and Metrics.
const (
	RejectReasonQueueFull     = "queue full"
	RejectReasonSpawnerClosed = "spawner closed"
)

const defaultExecutorName = "executor"

// ExecutorConfig holds configuration options for NewScheduler.
// All handlers are optional; if not provided, default implementations will be used.
type ExecutorConfig struct {
	// Name labels logs, metrics and panic reports. Defaults to "executor".
	Name string

	// QueueCapacity bounds the ready queue. Defaults to DefaultQueueCapacity.
	QueueCapacity int

	// PollHistoryCapacity is how many poll records RecentPolls keeps. Defaults to 100.
	PollHistoryCapacity int

	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger Logger

	// PanicHandler is called when a task panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record executor metrics. Defaults to NilMetrics.
	Metrics Metrics

	// RejectedTaskHandler is called when a spawn is rejected. Defaults to DefaultRejectedTaskHandler.
	RejectedTaskHandler RejectedTaskHandler
}

// DefaultExecutorConfig returns a config with default handlers.
func DefaultExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{
		Name:                defaultExecutorName,
		QueueCapacity:       DefaultQueueCapacity,
		PollHistoryCapacity: defaultPollHistoryCapacity,
		Logger:              NewNoOpLogger(),
		PanicHandler:        &DefaultPanicHandler{},
		Metrics:             &NilMetrics{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
	}
}
