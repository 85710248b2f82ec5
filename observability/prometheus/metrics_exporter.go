package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-executor/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every collector name when none is given.
const DefaultNamespace = "executor"

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// DurationBuckets are the poll duration histogram buckets in seconds.
	// Polls are expected to be short, so the default starts at 10µs.
	DurationBuckets []float64
}

// DefaultPollBuckets spans 10µs to roughly 1.3s.
var DefaultPollBuckets = prom.ExponentialBuckets(0.00001, 4, 9)

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	pollDurationSeconds *prom.HistogramVec
	spawnedTotal        *prom.CounterVec
	completedTotal      *prom.CounterVec
	panicTotal          *prom.CounterVec
	abandonedTotal      *prom.CounterVec
	wakeTotal           *prom.CounterVec
	rejectedTotal       *prom.CounterVec
	queueDepth          *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
// Registering a second exporter on the same registry reuses the collectors
// of the first.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = DefaultPollBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration_seconds",
		Help:      "Duration of a single task poll in seconds.",
		Buckets:   buckets,
	}, []string{"executor", "result"})

	counter := func(name, help string) *prom.CounterVec {
		return prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"executor"})
	}
	spawnedVec := counter("task_spawned_total", "Total number of tasks spawned.")
	completedVec := counter("task_completed_total", "Total number of tasks whose computation completed.")
	panicVec := counter("task_panic_total", "Total number of task panics.")
	abandonedVec := counter("task_abandoned_total", "Total number of pending tasks collected without completing.")
	wakeVec := counter("wake_total", "Total number of Wake calls.")

	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejected spawns.",
	}, []string{"executor", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Ready queue depth observed at the last dequeue.",
	}, []string{"executor"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	for _, vec := range []**prom.CounterVec{&spawnedVec, &completedVec, &panicVec, &abandonedVec, &wakeVec, &rejectedVec} {
		if *vec, err = registerCollector(reg, *vec); err != nil {
			return nil, err
		}
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		pollDurationSeconds: durationVec,
		spawnedTotal:        spawnedVec,
		completedTotal:      completedVec,
		panicTotal:          panicVec,
		abandonedTotal:      abandonedVec,
		wakeTotal:           wakeVec,
		rejectedTotal:       rejectedVec,
		queueDepth:          queueDepthVec,
	}, nil
}

// RecordPollDuration records one poll, labelled ready or pending.
func (m *MetricsExporter) RecordPollDuration(executorName string, duration time.Duration, ready bool) {
	if m == nil {
		return
	}
	m.pollDurationSeconds.WithLabelValues(executorLabel(executorName), resultLabel(ready)).Observe(duration.Seconds())
}

// RecordTaskSpawned counts spawned tasks.
func (m *MetricsExporter) RecordTaskSpawned(executorName string) {
	if m == nil {
		return
	}
	m.spawnedTotal.WithLabelValues(executorLabel(executorName)).Inc()
}

// RecordTaskCompleted counts completed tasks.
func (m *MetricsExporter) RecordTaskCompleted(executorName string) {
	if m == nil {
		return
	}
	m.completedTotal.WithLabelValues(executorLabel(executorName)).Inc()
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(executorName string, panicInfo any) {
	if m == nil {
		return
	}
	m.panicTotal.WithLabelValues(executorLabel(executorName)).Inc()
}

// RecordTaskAbandoned counts pending tasks that became unreachable.
func (m *MetricsExporter) RecordTaskAbandoned(executorName string) {
	if m == nil {
		return
	}
	m.abandonedTotal.WithLabelValues(executorLabel(executorName)).Inc()
}

// RecordWake counts Wake calls.
func (m *MetricsExporter) RecordWake(executorName string) {
	if m == nil {
		return
	}
	m.wakeTotal.WithLabelValues(executorLabel(executorName)).Inc()
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(executorName string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(executorLabel(executorName)).Set(float64(depth))
}

// RecordTaskRejected records task rejection events.
func (m *MetricsExporter) RecordTaskRejected(executorName string, reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(executorLabel(executorName), normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func executorLabel(name string) string {
	return normalizeLabel(name, "unknown")
}

func resultLabel(ready bool) string {
	if ready {
		return "ready"
	}
	return "pending"
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
