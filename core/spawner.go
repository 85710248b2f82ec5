package core

import (
	"errors"
	"sync/atomic"
)

// Spawner is the intake of an executor. It wraps computations into tasks and
// queues them.
//
// A Spawner holds the ready queue open until Close is called. Use Clone to
// hand an independent intake to another producer; each clone must be closed
// on its own. Submissions through one Spawner are queued in call order;
// across Spawners the order is unspecified.
type Spawner struct {
	sched  *scheduler
	closed atomic.Bool
}

// Spawn queues future as a fire-and-forget task.
//
// Spawn panics with a *QueueOverflowError when the ready queue is full and
// with ErrSpawnerClosed after Close. Use TrySpawn to get these as errors.
func (sp *Spawner) Spawn(future Future[Unit]) {
	sp.SpawnNamed("", future)
}

// SpawnNamed is Spawn with an explicit task name for logs and poll history.
func (sp *Spawner) SpawnNamed(name string, future Future[Unit]) {
	sp.mustSpawn(name, future)
}

func (sp *Spawner) mustSpawn(name string, future Future[Unit]) *Task {
	t, err := sp.spawn(name, future)
	switch {
	case err == nil:
		return t
	case errors.Is(err, ErrQueueFull):
		sp.sched.overflow(t.id)
	}
	panic(err)
}

// TrySpawn queues future and reports a full queue as ErrQueueFull instead of
// panicking.
func (sp *Spawner) TrySpawn(future Future[Unit]) error {
	_, err := sp.spawn("", future)
	if errors.Is(err, ErrQueueFull) {
		sp.sched.reject(RejectReasonQueueFull)
	}
	return err
}

// SpawnFunc queues fn as a computation that finishes on its first poll.
func (sp *Spawner) SpawnFunc(fn func()) {
	sp.Spawn(FromFunc(func() Unit {
		fn()
		return Unit{}
	}))
}

func (sp *Spawner) spawn(name string, future Future[Unit]) (*Task, error) {
	if future == nil {
		return nil, ErrNilFuture
	}
	if sp.closed.Load() {
		sp.sched.reject(RejectReasonSpawnerClosed)
		return nil, ErrSpawnerClosed
	}

	// On ErrQueueFull the returned task is the one that did not fit; it has
	// already been finished.
	return sp.sched.submit(name, future)
}

// Clone returns a new Spawner for the same executor.
// Cloning a closed Spawner returns a closed Spawner.
func (sp *Spawner) Clone() *Spawner {
	clone := &Spawner{sched: sp.sched}
	if sp.closed.Load() {
		clone.closed.Store(true)
		return clone
	}
	sp.sched.queue.acquire()
	return clone
}

// Close releases this Spawner's hold on the ready queue. Once every Spawner
// is closed and every task is done, Run returns. Close is idempotent.
//
// Close must not race with Spawn on the same Spawner.
func (sp *Spawner) Close() {
	if !sp.closed.CompareAndSwap(false, true) {
		return
	}
	sp.sched.logger.Debug("Spawner closed", F("executor", sp.sched.name))
	sp.sched.queue.release()
}

// IsClosed reports whether Close was called.
func (sp *Spawner) IsClosed() bool {
	return sp.closed.Load()
}
