package executor

import (
	"context"

	"github.com/Swind/go-executor/core"
)

// Re-export commonly used types from core package for convenience.
// This allows users to import only the executor package for most use cases.

// Unit is the value of computations run for their effect.
type Unit = core.Unit

// Poll is the result of advancing a computation once.
type Poll[T any] = core.Poll[T]

// Future is a resumable computation.
type Future[T any] = core.Future[T]

// FutureFunc adapts a closure to Future.
type FutureFunc[T any] = core.FutureFunc[T]

// Waker wakes the task that last polled a computation.
type Waker = core.Waker

// WakerFunc adapts a plain function to Waker.
type WakerFunc = core.WakerFunc

// Context is handed to every Poll.
type Context = core.Context

// Executor is the single consumer of the ready queue.
type Executor = core.Executor

// Spawner is the intake side of an executor.
type Spawner = core.Spawner

// Task wraps one spawned computation.
type Task = core.Task

// TaskID identifies a task within one executor.
type TaskID = core.TaskID

// JoinHandle is the result side of SpawnWithHandle.
type JoinHandle[T any] = core.JoinHandle[T]

// Timer completes once its duration has elapsed.
type Timer = core.Timer

// DelayManager services many timers from one goroutine.
type DelayManager = core.DelayManager

// Delay is a DelayManager timer.
type Delay = core.Delay

// Pair holds the values of Join2.
type Pair[A, B any] = core.Pair[A, B]

// Configuration and observability
type (
	ExecutorConfig      = core.ExecutorConfig
	ExecutorStats       = core.ExecutorStats
	PollRecord          = core.PollRecord
	Logger              = core.Logger
	Field               = core.Field
	PanicHandler        = core.PanicHandler
	RejectedTaskHandler = core.RejectedTaskHandler
	Metrics             = core.Metrics
	QueueOverflowError  = core.QueueOverflowError
	TaskPanicError      = core.TaskPanicError
)

// DefaultQueueCapacity is the ready queue bound used when none is configured.
const DefaultQueueCapacity = core.DefaultQueueCapacity

// Errors
var (
	ErrQueueFull       = core.ErrQueueFull
	ErrQueueClosed     = core.ErrQueueClosed
	ErrSpawnerClosed   = core.ErrSpawnerClosed
	ErrNilFuture       = core.ErrNilFuture
	ErrExecutorRunning = core.ErrExecutorRunning
)

var (
	NewScheduler          = core.NewScheduler
	NewExecutorAndSpawner = core.NewExecutorAndSpawner
	DefaultExecutorConfig = core.DefaultExecutorConfig
	NewTimer              = core.NewTimer
	Sleep                 = core.Sleep
	NewDelayManager       = core.NewDelayManager
	NewContext            = core.NewContext
	TaskIDFromContext     = core.TaskIDFromContext
	Yield                 = core.Yield
	F                     = core.F
)

// Generic helpers cannot be re-exported as variables.

func Ready[T any](v T) Poll[T] { return core.Ready(v) }
func Pending[T any]() Poll[T]  { return core.Pending[T]() }

func Immediate[T any](v T) Future[T]                 { return core.Immediate(v) }
func FromFunc[T any](fn func() T) Future[T]          { return core.FromFunc(fn) }
func Lazy[T any](build func() Future[T]) Future[T]   { return core.Lazy(build) }
func Map[A, B any](f Future[A], fn func(A) B) Future[B] { return core.Map(f, fn) }
func Discard[T any](f Future[T]) Future[Unit]        { return core.Discard(f) }

func Then[A, B any](f Future[A], next func(A) Future[B]) Future[B] {
	return core.Then(f, next)
}

func Join2[A, B any](a Future[A], b Future[B]) Future[Pair[A, B]] {
	return core.Join2(a, b)
}

func JoinAll[T any](futures ...Future[T]) Future[[]T] {
	return core.JoinAll(futures...)
}

// BlockOn drives future to completion on the calling goroutine.
func BlockOn[T any](future Future[T]) T {
	return core.BlockOn(future)
}

// BlockOnContext is BlockOn that gives up when ctx is done.
func BlockOnContext[T any](ctx context.Context, future Future[T]) (T, error) {
	return core.BlockOnContext(ctx, future)
}

// SpawnWithHandle queues future and returns a handle to its value.
func SpawnWithHandle[T any](sp *Spawner, future Future[T]) *JoinHandle[T] {
	return core.SpawnWithHandle(sp, future)
}

// TrySpawnWithHandle is SpawnWithHandle that returns errors instead of panicking.
func TrySpawnWithHandle[T any](sp *Spawner, future Future[T]) (*JoinHandle[T], error) {
	return core.TrySpawnWithHandle(sp, future)
}

