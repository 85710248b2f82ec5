package core

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
)

const defaultPollHistoryCapacity = 100

type pollHistory struct {
	mu    sync.Mutex
	items []PollRecord
	head  int
	count int
}

func newPollHistory(capacity int) *pollHistory {
	if capacity < 1 {
		capacity = defaultPollHistoryCapacity
	}
	return &pollHistory{items: make([]PollRecord, capacity)}
}

func (h *pollHistory) Add(record PollRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first.
func (h *pollHistory) Recent(limit int) []PollRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]PollRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *pollHistory) Last() (PollRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return PollRecord{}, false
	}

	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}

// resolveFutureName names a computation after its poll function when it is
// a FutureFunc, or after its dynamic type otherwise.
func resolveFutureName(future any) string {
	if future == nil {
		return "anonymous"
	}

	v := reflect.ValueOf(future)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", future)
	}

	pc := v.Pointer()
	if pc == 0 {
		return "anonymous"
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil || fn.Name() == "" {
		return "anonymous"
	}
	return fn.Name()
}
