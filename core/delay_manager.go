package core

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// delayEntry is one pending deadline in the DelayManager heap.
type delayEntry struct {
	RunAt time.Time
	seq   uint64
	state *timerState
	index int // for heap interface
}

// delayHeap implements heap.Interface
type delayHeap []*delayEntry

func (h delayHeap) Len() int { return len(h) }
func (h delayHeap) Less(i, j int) bool {
	if h[i].RunAt.Equal(h[j].RunAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].RunAt.Before(h[j].RunAt)
}
func (h delayHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayHeap) Push(x any) {
	n := len(*h)
	item := x.(*delayEntry)
	item.index = n
	*h = append(*h, item)
}

func (h *delayHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *delayHeap) Peek() *delayEntry {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// DelayManager services many timers with one goroutine and a min-heap of
// deadlines. Its Delay keeps the Timer contract: not ready until the
// deadline, and the waker of the latest poll is the one woken.
type DelayManager struct {
	pq      delayHeap
	nextSeq uint64
	mu      sync.Mutex
	wakeup  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDelayManager starts a DelayManager. Call Stop to end its goroutine.
func NewDelayManager() *DelayManager {
	ctx, cancel := context.WithCancel(context.Background())
	dm := &DelayManager{
		pq:     make(delayHeap, 0),
		wakeup: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	heap.Init(&dm.pq)
	go dm.loop()
	return dm
}

// Delay is a computation that completes once its DelayManager deadline passes.
type Delay struct {
	state *timerState
	runAt time.Time
}

var _ Future[Unit] = (*Delay)(nil)

// Poll returns ready once the deadline has passed.
func (d *Delay) Poll(cx *Context) Poll[Unit] {
	return d.state.poll(cx)
}

// Deadline returns when the delay fires.
func (d *Delay) Deadline() time.Time {
	return d.runAt
}

// After registers a deadline delay from now and returns its computation.
// After a Stop the returned Delay never completes.
func (dm *DelayManager) After(delay time.Duration) *Delay {
	state := &timerState{}
	item := &delayEntry{
		RunAt: time.Now().Add(delay),
		state: state,
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.ctx.Err() != nil {
		return &Delay{state: state, runAt: item.RunAt}
	}

	item.seq = dm.nextSeq
	dm.nextSeq++
	heap.Push(&dm.pq, item)

	if item.index == 0 {
		select {
		case dm.wakeup <- struct{}{}:
		default:
		}
	}
	return &Delay{state: state, runAt: item.RunAt}
}

// Sleep is the DelayManager counterpart of the package-level Sleep: the
// deadline is registered on the first poll.
func (dm *DelayManager) Sleep(delay time.Duration) Future[Unit] {
	return Lazy(func() Future[Unit] {
		return dm.After(delay)
	})
}

func (dm *DelayManager) loop() {
	defer close(dm.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		// Calculate next run time
		nextRun, ok := dm.calculateNextRun()
		if !ok {
			// No deadlines, wait indefinitely
			nextRun = 1000 * time.Hour
		}

		timer.Reset(nextRun)

		select {
		case <-dm.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			dm.processExpired()
		case <-dm.wakeup:
			// New earliest deadline, need to recalculate
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}

// calculateNextRun determines how long to wait until the next deadline.
// It reports false if there are no deadlines.
func (dm *DelayManager) calculateNextRun() (time.Duration, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	item := dm.pq.Peek()
	if item == nil {
		return 0, false
	}

	wait := time.Until(item.RunAt)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// processExpired fires every entry whose deadline has passed.
func (dm *DelayManager) processExpired() {
	dm.mu.Lock()

	now := time.Now()
	// Collect expired entries to avoid holding the lock while waking
	var expired []*delayEntry

	for dm.pq.Len() > 0 {
		item := dm.pq.Peek()
		if item.RunAt.After(now) {
			break
		}
		heap.Pop(&dm.pq)
		expired = append(expired, item)
	}

	dm.mu.Unlock()

	for _, item := range expired {
		item.state.fire()
	}
}

// Stop ends the background goroutine and forgets every pending deadline.
// Tasks parked on a forgotten Delay are never woken. Stop is idempotent.
func (dm *DelayManager) Stop() {
	dm.mu.Lock()
	dm.cancel()
	// Clear pq to release all waker references
	dm.pq = make(delayHeap, 0)
	heap.Init(&dm.pq)
	dm.mu.Unlock()

	<-dm.done
}

// TimerCount returns the number of pending deadlines.
func (dm *DelayManager) TimerCount() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.pq)
}
