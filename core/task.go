package core

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// TaskID identifies a spawned task within one executor.
type TaskID uint64

func (id TaskID) String() string {
	return fmt.Sprintf("task-%d", uint64(id))
}

// Task is the scheduler-visible wrapper around one spawned computation.
//
// The computation slot is empty while the task is being polled and stays
// empty forever once the computation finished. A Task is shared by the
// ready queue and by every Waker derived from it.
type Task struct {
	id    TaskID
	name  string
	sched *scheduler

	mu     sync.Mutex
	future Future[Unit]
	done   bool

	lease *taskLease
}

// taskLease is the producer count a live task holds on the ready queue.
// It is kept apart from Task so that a cleanup attached to the Task can
// release it without keeping the Task reachable.
type taskLease struct {
	sched    *scheduler
	id       TaskID
	released atomic.Bool
}

func (l *taskLease) release() bool {
	if !l.released.CompareAndSwap(false, true) {
		return false
	}
	l.sched.liveTasks.Add(-1)
	l.sched.queue.release()
	return true
}

func abandonTask(l *taskLease) {
	if l.release() {
		l.sched.abandoned.Add(1)
		l.sched.logger.Debug("Task abandoned while pending",
			F("executor", l.sched.name), F("task", l.id.String()))
		l.sched.metrics.RecordTaskAbandoned(l.sched.name)
	}
}

func newTask(s *scheduler, name string, future Future[Unit]) *Task {
	id := TaskID(s.nextID.Add(1))
	if name == "" {
		name = resolveFutureName(future)
	}

	t := &Task{
		id:     id,
		name:   name,
		sched:  s,
		future: future,
		lease:  &taskLease{sched: s, id: id},
	}

	// A pending task that nobody can wake any more is garbage; releasing its
	// producer count lets the executor observe closed-and-empty.
	runtime.AddCleanup(t, abandonTask, t.lease)
	return t
}

// ID returns the task identifier.
func (t *Task) ID() TaskID { return t.id }

// Name returns the task name given at spawn time, or a name derived from the
// computation's type.
func (t *Task) Name() string { return t.name }

// Done reports whether the computation completed (or panicked).
func (t *Task) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// waker returns a Wake Handle bound to this task.
func (t *Task) waker() Waker {
	return taskWaker{task: t}
}

// poll takes the computation out of its slot, advances it once and puts it
// back when it is still pending. polled is false when the slot was empty.
//
// If the computation panics, the slot stays empty and the panic propagates
// to the caller.
func (t *Task) poll() (polled, finished bool) {
	t.mu.Lock()
	future := t.future
	t.future = nil
	t.mu.Unlock()

	if future == nil {
		return false, false
	}

	result := future.Poll(NewContext(t.waker()))
	if result.IsPending() {
		t.mu.Lock()
		t.future = future
		t.mu.Unlock()
		return true, false
	}
	return true, true
}

// finish marks the task inert and releases its producer count.
func (t *Task) finish() {
	t.mu.Lock()
	t.done = true
	t.future = nil
	t.mu.Unlock()
	t.lease.release()
}

// wake resubmits the task to the ready queue.
func (t *Task) wake() {
	s := t.sched
	s.wakes.Add(1)
	s.metrics.RecordWake(s.name)

	switch err := s.queue.push(t); err {
	case nil:
	case ErrQueueClosed:
		// Only a finished task can be woken after close.
		s.logger.Warn("Wake dropped, ready queue closed",
			F("executor", s.name), F("task", t.id.String()))
	default:
		s.overflow(t.id)
	}
}

// =============================================================================
// Wake Handle
// =============================================================================

// taskWaker is the Wake Handle of one Task.
type taskWaker struct {
	task *Task
}

// Wake re-queues the task for another poll.
func (w taskWaker) Wake() {
	w.task.wake()
}

// TaskID returns the identity of the task this handle wakes.
func (w taskWaker) TaskID() TaskID {
	return w.task.id
}

// TaskIDFromContext returns the id of the task being polled with cx.
// It reports false when cx was not created by an executor.
func TaskIDFromContext(cx *Context) (TaskID, bool) {
	if w, ok := cx.Waker().(taskWaker); ok {
		return w.TaskID(), true
	}
	return 0, false
}
