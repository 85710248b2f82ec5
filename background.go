package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Swind/go-executor/core"
)

// BackgroundExecutor runs an Executor on its own goroutine and keeps the
// first Spawner as its intake.
type BackgroundExecutor struct {
	exec    *core.Executor
	spawner *core.Spawner

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// StartBackground creates an executor from config and starts its run loop.
// The loop ends once Close (or StopGraceful) released the intake and every
// task finished, or when ctx is done.
func StartBackground(ctx context.Context, config *ExecutorConfig) *BackgroundExecutor {
	exec, spawner := core.NewScheduler(config)
	runCtx, cancel := context.WithCancel(ctx)

	b := &BackgroundExecutor{
		exec:    exec,
		spawner: spawner,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go b.run(runCtx)
	return b
}

func (b *BackgroundExecutor) run(ctx context.Context) {
	defer close(b.done)
	defer b.cancel()

	err := b.exec.RunContext(ctx)
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// Spawner returns the intake. Clone it to hand to other producers.
func (b *BackgroundExecutor) Spawner() *Spawner {
	return b.spawner
}

// Executor returns the executor being driven.
func (b *BackgroundExecutor) Executor() *Executor {
	return b.exec
}

// Spawn queues future through the intake.
func (b *BackgroundExecutor) Spawn(future Future[Unit]) {
	b.spawner.Spawn(future)
}

// IsRunning returns whether the run loop has not returned yet
func (b *BackgroundExecutor) IsRunning() bool {
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

// Close releases the intake. Tasks already spawned still run to completion.
func (b *BackgroundExecutor) Close() {
	b.spawner.Close()
}

// Join waits for the run loop to return and reports its error, which is nil
// after a drain and the context error after a Stop.
func (b *BackgroundExecutor) Join() error {
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Stop ends the run loop without waiting for pending tasks.
func (b *BackgroundExecutor) Stop() {
	b.cancel()
	<-b.done
}

// StopGraceful closes the intake and waits for the queue to drain.
// If the timeout passes first the loop is stopped and an error is returned.
func (b *BackgroundExecutor) StopGraceful(timeout time.Duration) error {
	b.Close()

	select {
	case <-b.done:
		return nil
	case <-time.After(timeout):
	}

	stats := b.exec.Stats()
	b.Stop()
	return fmt.Errorf("executor %q did not drain within %v: %d tasks live", stats.Name, timeout, stats.Live)
}

// =============================================================================
// Global Executor Helper (Singleton)
// =============================================================================

var (
	globalExecutor *BackgroundExecutor
	globalMu       sync.Mutex
)

// InitGlobalExecutor starts the global background executor with the default
// configuration. Repeated calls are no-ops.
func InitGlobalExecutor() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor != nil {
		return // Already initialized
	}

	config := DefaultExecutorConfig()
	config.Name = "global"
	globalExecutor = StartBackground(context.Background(), config)
}

// GetGlobalExecutor returns the global background executor.
// It panics if InitGlobalExecutor has not been called.
func GetGlobalExecutor() *BackgroundExecutor {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor == nil {
		panic("global executor not initialized. Call InitGlobalExecutor() first.")
	}
	return globalExecutor
}

// ShutdownGlobalExecutor drains and stops the global executor, giving
// pending tasks up to timeout.
func ShutdownGlobalExecutor(timeout time.Duration) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalExecutor == nil {
		return nil
	}
	err := globalExecutor.StopGraceful(timeout)
	globalExecutor = nil
	return err
}

// Go spawns future on the global executor. The spawner is a clone that is
// closed again right away, so the global intake stays owned by the singleton.
func Go(future Future[Unit]) {
	sp := GetGlobalExecutor().Spawner().Clone()
	defer sp.Close()
	sp.Spawn(future)
}
