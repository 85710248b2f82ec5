package core

import (
	"sync"
	"time"
)

// timerState is shared by a timer computation and whatever fires it.
type timerState struct {
	mu        sync.Mutex
	completed bool
	waker     Waker
}

// fire marks the state completed and wakes the last poller, if any.
func (s *timerState) fire() {
	s.mu.Lock()
	s.completed = true
	waker := s.waker
	s.waker = nil
	s.mu.Unlock()

	if waker != nil {
		waker.Wake()
	}
}

func (s *timerState) poll(cx *Context) Poll[Unit] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return Ready(Unit{})
	}
	// The task driving this computation may differ between polls, so the
	// waker from the latest poll replaces any earlier one.
	s.waker = cx.Waker()
	return Pending[Unit]()
}

func (s *timerState) isCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Timer is a computation that completes no earlier than a fixed delay after
// it was created.
//
// Every Timer owns one goroutine that sleeps for the delay, marks the timer
// completed and wakes the task that polled it last. The goroutine cannot be
// cancelled: a Timer whose task is dropped keeps sleeping until the delay
// elapses and then exits without waking anyone. Use DelayManager when many
// timers are needed.
type Timer struct {
	state *timerState
}

var _ Future[Unit] = (*Timer)(nil)

// NewTimer starts a Timer that fires after duration.
func NewTimer(duration time.Duration) *Timer {
	state := &timerState{}

	go func() {
		time.Sleep(duration)
		state.fire()
	}()

	return &Timer{state: state}
}

// Poll returns ready once the delay has elapsed. Otherwise it stores the
// waker of cx and returns pending.
func (t *Timer) Poll(cx *Context) Poll[Unit] {
	return t.state.poll(cx)
}

// Completed reports whether the delay has elapsed.
func (t *Timer) Completed() bool {
	return t.state.isCompleted()
}

// Sleep returns a computation that creates a Timer on its first poll, so the
// delay is measured from when the surrounding task first reaches it.
func Sleep(duration time.Duration) Future[Unit] {
	return Lazy(func() Future[Unit] {
		return NewTimer(duration)
	})
}
