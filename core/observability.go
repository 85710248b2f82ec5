package core

import "time"

// PollRecord captures one poll of one task.
type PollRecord struct {
	TaskID     TaskID
	Name       string
	Executor   string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Ready      bool
	Panicked   bool
	// Empty is set when the task was dequeued after it had already finished.
	Empty bool
}

// ExecutorStats represents runtime observability state for an executor.
type ExecutorStats struct {
	Name      string
	Queued    int
	Capacity  int
	Live      int64
	Producers int64
	Spawned   int64
	Completed int64
	Polls     int64
	Wakes     int64
	Panics    int64
	Abandoned int64
	Running   bool
	Closed    bool
	LastTask  string
	LastPoll  time.Time
}
