package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swind/go-executor/core"
)

// execute runs the root command with args in an empty working directory and
// returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestTimers_CompleteInDeadlineOrder(t *testing.T) {
	for _, shared := range []bool{false, true} {
		name := "per-timer goroutine"
		args := []string{"timers", "--count", "3", "--max-delay", "60ms"}
		if shared {
			name = "shared delay manager"
			args = append(args, "--shared")
		}

		t.Run(name, func(t *testing.T) {
			out, err := execute(t, args...)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, 6, out)
			assert.Equal(t, "start!", lines[0])
			// timer-2 has the shortest delay
			assert.True(t, strings.HasPrefix(lines[1], "timer-2 "), lines[1])
			assert.True(t, strings.HasPrefix(lines[2], "timer-1 "), lines[2])
			assert.True(t, strings.HasPrefix(lines[3], "timer-0 "), lines[3])
			assert.Equal(t, "done!", lines[4])
			assert.Contains(t, lines[5], "spawned=3 completed=3")
		})
	}
}

func TestTimers_InvalidCount(t *testing.T) {
	_, err := execute(t, "timers", "--count", "0")
	assert.Error(t, err)

	_, err = execute(t, "--queue-capacity", "2", "timers", "--count", "3")
	assert.ErrorContains(t, err, "exceeds the queue capacity")
}

func TestTimers_ServesMetrics(t *testing.T) {
	out, err := execute(t, "--metrics-listen", "127.0.0.1:0", "timers", "--count", "2", "--max-delay", "20ms", "--shared")
	require.NoError(t, err)
	assert.Contains(t, out, "done!")
}

func TestCompose(t *testing.T) {
	out, err := execute(t, "compose", "--step", "10ms")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6, out)
	assert.Equal(t, "hello, world!", lines[0])
	// dance (2 steps) finishes before learning (3 steps)
	assert.Equal(t, "danced", lines[1])
	assert.Equal(t, "learned the song", lines[2])
	assert.Equal(t, `sang "Never Gonna Give You Up"`, lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "performance took "), lines[4])
	assert.Contains(t, lines[5], "spawned=1 completed=1")
}

func TestOverflow_TrySpawnRejects(t *testing.T) {
	out, err := execute(t, "overflow", "--capacity", "2", "--tasks", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "accepted=2 rejected=3")
	assert.Contains(t, out, "spawned=2 completed=2")
}

func TestOverflow_Fatal(t *testing.T) {
	_, err := execute(t, "overflow", "--capacity", "2", "--tasks", "3", "--fatal")
	require.Error(t, err)

	var overflow *core.QueueOverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 2, overflow.Capacity)
	assert.ErrorIs(t, err, core.ErrQueueFull)
	assert.Contains(t, err.Error(), "too many tasks queued")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[executor]\nname = \"from-file\"\n"), 0o644))

	out, err := execute(t, "--config", path, "timers", "--count", "1", "--max-delay", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "executor=from-file")

	_, err = execute(t, "--config", filepath.Join(dir, "missing.toml"), "timers")
	assert.Error(t, err)
}
