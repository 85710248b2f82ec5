package core

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Executor is the single consumer of the ready queue.
//
// Run polls each dequeued task once: a pending task stays parked until its
// Wake Handle re-queues it, a finished task is dropped. Run returns once every
// Spawner has been closed and every task has finished or become unreachable.
//
// Only the goroutine inside Run executes computation code. Timers and other
// event sources run on their own goroutines and only call Wake.
type Executor struct {
	sched   *scheduler
	running atomic.Bool
}

// NewScheduler constructs the bounded ready queue and returns both ends.
// A nil config uses DefaultExecutorConfig.
func NewScheduler(config *ExecutorConfig) (*Executor, *Spawner) {
	s := newScheduler(config)
	// The first Spawner's producer count.
	s.queue.acquire()
	return &Executor{sched: s}, &Spawner{sched: s}
}

// NewExecutorAndSpawner is NewScheduler with the default configuration.
func NewExecutorAndSpawner() (*Executor, *Spawner) {
	return NewScheduler(nil)
}

// Name returns the executor name.
func (e *Executor) Name() string {
	return e.sched.name
}

// Run drives the loop until the ready queue is closed and drained.
// It panics with ErrExecutorRunning if the executor is already running.
func (e *Executor) Run() {
	if err := e.RunContext(context.Background()); err != nil {
		panic(err)
	}
}

// RunContext is Run with early exit: when ctx is done the loop stops and
// ctx.Err() is returned. Queued tasks stay queued and a later RunContext
// resumes them.
func (e *Executor) RunContext(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrExecutorRunning
	}
	defer e.running.Store(false)

	s := e.sched
	s.logger.Info("Executor started", F("executor", s.name), F("capacity", s.queue.Cap()))

	done := ctx.Done()
	for {
		select {
		case t, ok := <-s.queue.ch:
			if !ok {
				s.logger.Info("Executor stopped", F("executor", s.name),
					F("spawned", s.metricSpawned.Load()), F("completed", s.metricCompleted.Load()))
				return nil
			}
			e.runTask(t)

		case <-done:
			s.logger.Info("Executor interrupted", F("executor", s.name), F("err", ctx.Err()))
			return ctx.Err()
		}
	}
}

// runTask performs one take-and-poll of t and catches panics.
func (e *Executor) runTask(t *Task) {
	s := e.sched
	s.metrics.RecordQueueDepth(s.name, s.queue.Len())

	record := PollRecord{
		TaskID:    t.id,
		Name:      t.name,
		Executor:  s.name,
		StartedAt: time.Now(),
	}

	defer func() {
		if rec := recover(); rec != nil {
			// Overflow is fatal for the whole executor, not a task failure.
			if overflow, ok := rec.(*QueueOverflowError); ok {
				panic(overflow)
			}
			record.Panicked = true
			s.panics.Add(1)
			s.panicHandler.HandlePanic(s.name, t.id, t.name, rec, debug.Stack())
			s.metrics.RecordTaskPanic(s.name, rec)
			t.finish()
		}

		record.FinishedAt = time.Now()
		record.Duration = record.FinishedAt.Sub(record.StartedAt)
		if !record.Empty {
			s.metricPolls.Add(1)
			s.metrics.RecordPollDuration(s.name, record.Duration, record.Ready)
		}
		s.history.Add(record)
	}()

	polled, finished := t.poll()
	if !polled {
		// Woken after it finished, or a duplicate entry.
		record.Empty = true
		return
	}

	record.Ready = finished
	if finished {
		s.metricCompleted.Add(1)
		s.metrics.RecordTaskCompleted(s.name)
		s.logger.Debug("Task completed", F("executor", s.name), F("task", t.id.String()), F("name", t.name))
		t.finish()
	}
}

// IsRunning reports whether Run is currently driving the loop.
func (e *Executor) IsRunning() bool {
	return e.running.Load()
}

// Stats returns a snapshot of the executor's counters.
func (e *Executor) Stats() ExecutorStats {
	stats := e.sched.stats()
	stats.Running = e.running.Load()
	return stats
}

// RecentPolls returns up to limit poll records, newest first.
// A limit of zero or less returns every record kept.
func (e *Executor) RecentPolls(limit int) []PollRecord {
	return e.sched.history.Recent(limit)
}

// LastPoll returns the most recent poll record.
func (e *Executor) LastPoll() (PollRecord, bool) {
	return e.sched.history.Last()
}
