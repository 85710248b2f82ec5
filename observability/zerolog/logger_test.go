package zerolog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swind/go-executor/core"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLogger_TypedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(zerolog.New(&buf))

	logger.Info("Task completed",
		core.F("executor", "main"),
		core.F("task", core.TaskID(7)),
		core.F("capacity", 10),
		core.F("took", 1500*time.Millisecond),
		core.F("closed", true),
		core.F("err", errors.New("boom")),
		core.F("extra", []int{1, 2}),
	)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "Task completed", line["message"])
	assert.Equal(t, "main", line["executor"])
	assert.Equal(t, "task-7", line["task"])
	assert.EqualValues(t, 10, line["capacity"])
	assert.EqualValues(t, 1500, line["took"])
	assert.Equal(t, true, line["closed"])
	assert.Equal(t, "boom", line["err"])
	assert.Equal(t, []any{float64(1), float64(2)}, line["extra"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf, zerolog.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown too")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Contains(t, lines[0], "time")
}

func TestLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsole(&buf, zerolog.DebugLevel)

	logger.Debug("Spawner closed", core.F("executor", "main"))

	assert.Contains(t, buf.String(), "Spawner closed")
	assert.Contains(t, buf.String(), "executor=")
	assert.Contains(t, buf.String(), "main")
}

// TestLogger_ExecutorLifecycle verifies the executor logs through the adapter
func TestLogger_ExecutorLifecycle(t *testing.T) {
	var buf bytes.Buffer
	cfg := core.DefaultExecutorConfig()
	cfg.Name = "logged"
	cfg.Logger = NewJSON(&buf, zerolog.InfoLevel)
	exec, spawner := core.NewScheduler(cfg)

	spawner.SpawnFunc(func() {})
	spawner.Close()
	exec.Run()

	var messages []string
	for _, line := range decodeLines(t, &buf) {
		assert.Equal(t, "logged", line["executor"])
		messages = append(messages, line["message"].(string))
	}
	assert.Equal(t, []string{"Executor started", "Executor stopped"}, messages)
}
