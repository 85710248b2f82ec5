package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-executor/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExecutorSnapshotProvider provides current executor stats snapshots.
// *core.Executor implements it.
type ExecutorSnapshotProvider interface {
	Stats() core.ExecutorStats
}

// DelaySnapshotProvider reports how many deadlines a timer source holds.
// *core.DelayManager implements it.
type DelaySnapshotProvider interface {
	TimerCount() int
}

// SnapshotPoller periodically exports executor and delay manager snapshots
// into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	executorsMu sync.RWMutex
	executors   map[string]ExecutorSnapshotProvider

	delaysMu sync.RWMutex
	delays   map[string]DelaySnapshotProvider

	executorQueued    *prom.GaugeVec
	executorCapacity  *prom.GaugeVec
	executorLive      *prom.GaugeVec
	executorProducers *prom.GaugeVec
	executorRunning   *prom.GaugeVec
	executorClosed    *prom.GaugeVec

	delayPending *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string, labels ...string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: DefaultNamespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	executorQueued := gauge("snapshot_queued", "Tasks waiting in the ready queue.", "executor")
	executorCapacity := gauge("snapshot_capacity", "Ready queue capacity.", "executor")
	executorLive := gauge("snapshot_live_tasks", "Tasks spawned and not yet finished or abandoned.", "executor")
	executorProducers := gauge("snapshot_producers", "Open spawners plus live tasks holding the queue open.", "executor")
	executorRunning := gauge("snapshot_running", "Executor running state (1=running, 0=stopped).", "executor")
	executorClosed := gauge("snapshot_closed", "Ready queue closed state (1=closed, 0=open).", "executor")
	delayPending := gauge("delay_pending", "Pending deadlines per delay manager.", "delay_manager")

	vecs := []**prom.GaugeVec{
		&executorQueued, &executorCapacity, &executorLive,
		&executorProducers, &executorRunning, &executorClosed, &delayPending,
	}
	var err error
	for _, vec := range vecs {
		if *vec, err = registerCollector(reg, *vec); err != nil {
			return nil, err
		}
	}

	return &SnapshotPoller{
		interval:          interval,
		executors:         make(map[string]ExecutorSnapshotProvider),
		delays:            make(map[string]DelaySnapshotProvider),
		executorQueued:    executorQueued,
		executorCapacity:  executorCapacity,
		executorLive:      executorLive,
		executorProducers: executorProducers,
		executorRunning:   executorRunning,
		executorClosed:    executorClosed,
		delayPending:      delayPending,
	}, nil
}

// AddExecutor adds or replaces an executor snapshot provider by name.
func (p *SnapshotPoller) AddExecutor(name string, provider ExecutorSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "executor")
	p.executorsMu.Lock()
	p.executors[name] = provider
	p.executorsMu.Unlock()
}

// AddDelayManager adds or replaces a delay manager snapshot provider by name.
func (p *SnapshotPoller) AddDelayManager(name string, provider DelaySnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "delay_manager")
	p.delaysMu.Lock()
	p.delays[name] = provider
	p.delaysMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	// Final snapshot so gauges reflect the stopped state.
	p.collectOnce()

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

// Run polls until ctx is done, then stops. It fits an errgroup.Group.
func (p *SnapshotPoller) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	return nil
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.executorsMu.RLock()
	for name, provider := range p.executors {
		stats := provider.Stats()
		p.executorQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.executorCapacity.WithLabelValues(name).Set(float64(stats.Capacity))
		p.executorLive.WithLabelValues(name).Set(float64(stats.Live))
		p.executorProducers.WithLabelValues(name).Set(float64(stats.Producers))
		p.executorRunning.WithLabelValues(name).Set(boolGauge(stats.Running))
		p.executorClosed.WithLabelValues(name).Set(boolGauge(stats.Closed))
	}
	p.executorsMu.RUnlock()

	p.delaysMu.RLock()
	for name, provider := range p.delays {
		p.delayPending.WithLabelValues(name).Set(float64(provider.TimerCount()))
	}
	p.delaysMu.RUnlock()
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
