package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swind/go-executor/core"
)

func TestBlockOn_Immediate(t *testing.T) {
	assert.Equal(t, "hi", core.BlockOn(core.Immediate("hi")))
}

func TestBlockOn_Timer(t *testing.T) {
	const delay = 30 * time.Millisecond
	start := time.Now()

	core.BlockOn(core.Sleep(delay))

	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestBlockOn_SelfWake(t *testing.T) {
	f := &countingFuture{pendingPolls: 3, wakesPerPoll: 1}

	core.BlockOn[core.Unit](f)

	assert.Equal(t, int32(4), f.polls.Load())
}

func TestBlockOnContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := core.BlockOnContext(ctx, core.Sleep(time.Hour))

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBlockOn_JoinHandle(t *testing.T) {
	exec, spawner := core.NewScheduler(quietConfig())

	h := core.SpawnWithHandle(spawner, core.Map(core.Sleep(10*time.Millisecond), func(core.Unit) int {
		return 99
	}))
	spawner.Close()

	go exec.Run()

	assert.Equal(t, 99, core.BlockOn[int](h))
}
