// Package executor provides a single-threaded cooperative executor for
// resumable computations.
//
// A computation is a Future: something that can be polled, and that either
// produces its value or reports that it is pending. A pending computation has
// arranged for its Waker to be called once progress is possible; the waker
// puts its task back on the executor's ready queue and the executor polls it
// again. Only the goroutine inside Executor.Run executes computation code.
// Timers and other event sources run on their own goroutines and only wake.
//
// # Quick Start
//
//	exec, spawner := executor.NewExecutorAndSpawner()
//	spawner.Spawn(executor.Map(executor.Sleep(2*time.Second), func(executor.Unit) executor.Unit {
//		fmt.Println("done!")
//		return executor.Unit{}
//	}))
//	spawner.Close()
//	exec.Run() // returns once every spawner is closed and every task finished
//
// # Key Concepts
//
// Spawner: the intake. Spawn wraps a Future[Unit] into a Task and queues it.
// Clone hands an independent intake to another producer; each clone must be
// closed. The ready queue is bounded (DefaultQueueCapacity); spawning or
// waking into a full queue is fatal, TrySpawn reports it as ErrQueueFull.
//
// Executor: the single consumer. Run polls each dequeued task once. A task
// left pending that nobody can wake any more is collected and no longer keeps
// Run alive.
//
// Timer and DelayManager: Timer uses one goroutine per timer; DelayManager
// serves many deadlines from one goroutine and a min-heap.
//
// Combinators: Map, Then, Join2, JoinAll and Yield compose computations inside
// one task. BlockOn drives a computation on the calling goroutine without an
// executor.
//
// # Example
//
//	exec, spawner := executor.NewExecutorAndSpawner()
//
//	song := executor.Map(executor.Sleep(300*time.Millisecond), func(executor.Unit) string {
//		return "la la la"
//	})
//	dance := executor.Sleep(200 * time.Millisecond)
//
//	h := executor.SpawnWithHandle(spawner, executor.Join2(song, dance))
//	spawner.Close()
//	exec.Run()
//
//	pair, _ := h.Wait(context.Background())
//	fmt.Println(pair.First)
//
// For observability see the observability/prometheus and observability/zerolog
// packages.
package executor
