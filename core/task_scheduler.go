package core

import (
	"sync/atomic"
)

// scheduler is the state shared by an Executor, its Spawners and its Tasks.
type scheduler struct {
	name  string
	queue *readyQueue

	// Handlers and Metrics
	logger              Logger
	panicHandler        PanicHandler
	metrics             Metrics
	rejectedTaskHandler RejectedTaskHandler

	history *pollHistory

	nextID    atomic.Uint64
	liveTasks atomic.Int64

	metricSpawned   atomic.Int64
	metricCompleted atomic.Int64
	metricPolls     atomic.Int64
	panics          atomic.Int64
	wakes           atomic.Int64
	abandoned       atomic.Int64
}

func newScheduler(config *ExecutorConfig) *scheduler {
	if config == nil {
		config = DefaultExecutorConfig()
	}

	s := &scheduler{
		name:    config.Name,
		queue:   newReadyQueue(config.QueueCapacity),
		history: newPollHistory(config.PollHistoryCapacity),

		logger:              config.Logger,
		panicHandler:        config.PanicHandler,
		metrics:             config.Metrics,
		rejectedTaskHandler: config.RejectedTaskHandler,
	}

	// Use defaults if not provided
	if s.name == "" {
		s.name = defaultExecutorName
	}
	if s.logger == nil {
		s.logger = NewNoOpLogger()
	}
	if s.panicHandler == nil {
		s.panicHandler = &DefaultPanicHandler{}
	}
	if s.metrics == nil {
		s.metrics = &NilMetrics{}
	}
	if s.rejectedTaskHandler == nil {
		s.rejectedTaskHandler = &DefaultRejectedTaskHandler{}
	}

	return s
}

// submit wraps future into a new Task and queues it. On error the task is
// returned already finished.
// The caller must hold a producer count for the duration of the call.
func (s *scheduler) submit(name string, future Future[Unit]) (*Task, error) {
	t := newTask(s, name, future)
	s.liveTasks.Add(1)
	s.queue.acquire()

	if err := s.queue.push(t); err != nil {
		t.finish()
		return t, err
	}

	s.metricSpawned.Add(1)
	s.metrics.RecordTaskSpawned(s.name)
	s.metrics.RecordQueueDepth(s.name, s.queue.Len())
	s.logger.Debug("Task spawned", F("executor", s.name), F("task", t.id.String()), F("name", t.name))
	return t, nil
}

func (s *scheduler) reject(reason string) {
	s.rejectedTaskHandler.HandleRejectedTask(s.name, reason)
	s.metrics.RecordTaskRejected(s.name, reason)
}

// overflow raises the fatal QueueOverflow condition for task id.
func (s *scheduler) overflow(id TaskID) {
	err := &QueueOverflowError{Executor: s.name, Capacity: s.queue.Cap(), TaskID: id}
	s.logger.Error("Ready queue overflow", F("executor", s.name), F("capacity", err.Capacity), F("task", id.String()))
	s.reject(RejectReasonQueueFull)
	panic(err)
}

func (s *scheduler) stats() ExecutorStats {
	stats := ExecutorStats{
		Name:      s.name,
		Queued:    s.queue.Len(),
		Capacity:  s.queue.Cap(),
		Live:      s.liveTasks.Load(),
		Producers: s.queue.producerCount(),
		Spawned:   s.metricSpawned.Load(),
		Completed: s.metricCompleted.Load(),
		Polls:     s.metricPolls.Load(),
		Wakes:     s.wakes.Load(),
		Panics:    s.panics.Load(),
		Abandoned: s.abandoned.Load(),
		Closed:    s.queue.isClosed(),
	}
	if last, ok := s.history.Last(); ok {
		stats.LastTask = last.Name
		stats.LastPoll = last.FinishedAt
	}
	return stats
}
