package core_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Swind/go-executor/core"
)

// =============================================================================
// DelayManager Tests
// =============================================================================

func TestDelayManager_BatchProcessing(t *testing.T) {
	dm := core.NewDelayManager()
	defer dm.Stop()

	exec, spawner := core.NewScheduler(quietConfig())

	// Add 100 delays that all expire at approximately the same time
	var executed atomic.Int32
	for range 100 {
		spawner.Spawn(core.Map(dm.After(50*time.Millisecond), func(core.Unit) core.Unit {
			executed.Add(1)
			return core.Unit{}
		}))
	}
	spawner.Close()

	runWithTimeout(t, exec, 2*time.Second)

	if count := executed.Load(); count != 100 {
		t.Errorf("Expected 100 tasks executed, got %d", count)
	}
	if count := dm.TimerCount(); count != 0 {
		t.Errorf("Expected 0 pending delays, got %d", count)
	}
}

func TestDelayManager_ConcurrentAdd(t *testing.T) {
	dm := core.NewDelayManager()
	defer dm.Stop()

	exec, spawner := core.NewScheduler(quietConfig())

	// Concurrently spawn 100 tasks with different delays
	const numTasks = 100
	var wg sync.WaitGroup
	var executed atomic.Int32

	for i := 0; i < numTasks; i++ {
		sp := spawner.Clone()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			defer sp.Close()
			delay := time.Duration(id%10)*10*time.Millisecond + 20*time.Millisecond
			sp.Spawn(core.Map(dm.Sleep(delay), func(core.Unit) core.Unit {
				executed.Add(1)
				return core.Unit{}
			}))
		}(i)
	}
	spawner.Close()

	runWithTimeout(t, exec, 3*time.Second)
	wg.Wait()

	if count := executed.Load(); count != numTasks {
		t.Errorf("Expected %d tasks executed, got %d", numTasks, count)
	}
}

func TestDelayManager_DeadlineOrder(t *testing.T) {
	dm := core.NewDelayManager()
	defer dm.Stop()

	exec, spawner := core.NewScheduler(quietConfig())

	// Spawned in reverse order of their deadlines
	var order []int
	for _, ms := range []int{100, 80, 60, 40, 20} {
		spawner.Spawn(core.Map(dm.After(time.Duration(ms)*time.Millisecond), func(core.Unit) core.Unit {
			order = append(order, ms)
			return core.Unit{}
		}))
	}
	spawner.Close()

	runWithTimeout(t, exec, 2*time.Second)

	want := []int{20, 40, 60, 80, 100}
	if len(order) != len(want) {
		t.Fatalf("Expected %d completions, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d]: got = %d, want = %d", i, order[i], want[i])
		}
	}
}

func TestDelayManager_AccurateTiming(t *testing.T) {
	dm := core.NewDelayManager()
	defer dm.Stop()

	delay := 50 * time.Millisecond
	start := time.Now()
	d := dm.After(delay)

	if got := d.Deadline().Sub(start); got < delay {
		t.Errorf("Deadline is %v after start, want >= %v", got, delay)
	}

	waker := newSignalWaker()
	if p := d.Poll(core.NewContext(waker)); p.IsReady() {
		t.Fatal("Delay was ready before its deadline")
	}

	select {
	case <-waker.ch:
	case <-time.After(time.Second):
		t.Fatal("Delay never woke its poller")
	}

	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("Expected >= %v delay, got %v", delay, elapsed)
	}
	if p := d.Poll(core.NewContext(waker)); !p.IsReady() {
		t.Error("Delay was pending after waking")
	}
}

func TestDelayManager_TimerCount(t *testing.T) {
	dm := core.NewDelayManager()
	defer dm.Stop()

	// Initially empty
	if count := dm.TimerCount(); count != 0 {
		t.Errorf("Expected 0 delays, got %d", count)
	}

	const numDelays = 10
	for range numDelays {
		dm.After(time.Hour)
	}

	if count := dm.TimerCount(); count != numDelays {
		t.Errorf("Expected %d delays, got %d", numDelays, count)
	}
}

func TestDelayManager_StopForgetsPending(t *testing.T) {
	dm := core.NewDelayManager()

	pending := dm.After(20 * time.Millisecond)
	waker := newSignalWaker()
	pending.Poll(core.NewContext(waker))

	dm.Stop()
	dm.Stop() // idempotent

	if count := dm.TimerCount(); count != 0 {
		t.Errorf("Expected 0 delays after Stop, got %d", count)
	}

	time.Sleep(60 * time.Millisecond)
	if got := waker.count.Load(); got != 0 {
		t.Errorf("Forgotten delay woke its poller %d times", got)
	}

	late := dm.After(0)
	if p := late.Poll(core.NewContext(nil)); p.IsReady() {
		t.Error("Delay registered after Stop completed")
	}
}
