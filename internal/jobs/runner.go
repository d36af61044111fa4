// Package jobs runs background tasks spawned by update handlers, keeping
// track of them so shutdown can wait for in-flight work.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgsg-dev/mgsg-bot/pkg/logger"
)

// Runner executes tasks on their own goroutines. Every task gets a
// correlation ID and panic recovery; Wait blocks until all spawned tasks
// finish or the context expires.
type Runner struct {
	base context.Context
	wg   sync.WaitGroup
	log  *slog.Logger
}

// NewRunner creates a Runner whose tasks derive from base. Base is usually
// context.Background so tasks outlive the update that spawned them.
func NewRunner(base context.Context, log *slog.Logger) *Runner {
	return &Runner{
		base: base,
		log:  log.With(slog.String("component", "jobs")),
	}
}

// Go runs fn on a new goroutine. A panic inside fn is logged and does not
// take the process down.
func (r *Runner) Go(name string, fn func(ctx context.Context)) {
	taskID := uuid.NewString()
	ctx := logger.WithCorrelationID(r.base, taskID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("task panicked",
					slog.String("task", name),
					slog.String("task_id", taskID),
					slog.Any("panic", rec),
				)
			}
		}()

		start := time.Now()
		fn(ctx)

		r.log.Debug("task finished",
			slog.String("task", name),
			slog.String("task_id", taskID),
			slog.Duration("duration", time.Since(start)),
		)
	}()
}

// Wait blocks until all running tasks complete or ctx is done. It returns
// ctx.Err when tasks are still running at the deadline.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
