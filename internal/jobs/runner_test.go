package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgsg-dev/mgsg-bot/pkg/logger"
)

func testRunner() *Runner {
	return NewRunner(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunnerWaitsForTasks(t *testing.T) {
	r := testRunner()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		r.Go("work", func(ctx context.Context) {
			time.Sleep(10 * time.Millisecond)
			ran.Add(1)
		})
	}

	require.NoError(t, r.Wait(context.Background()))
	assert.Equal(t, int32(5), ran.Load())
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := testRunner()

	r.Go("explode", func(ctx context.Context) {
		panic("boom")
	})

	assert.NoError(t, r.Wait(context.Background()))
}

func TestRunnerWaitDeadline(t *testing.T) {
	r := testRunner()

	release := make(chan struct{})
	r.Go("slow", func(ctx context.Context) {
		<-release
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, r.Wait(context.Background()))
}

func TestRunnerAssignsCorrelationID(t *testing.T) {
	r := testRunner()

	got := make(chan string, 1)
	r.Go("tagged", func(ctx context.Context) {
		got <- logger.CorrelationIDFromContext(ctx)
	})

	require.NoError(t, r.Wait(context.Background()))
	assert.NotEmpty(t, <-got)
}
