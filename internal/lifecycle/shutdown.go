// Package lifecycle coordinates ordered shutdown of the bot's components.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Hook is a named teardown step.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks in reverse registration order, so
// components stop before the resources they depend on.
type Shutdown struct {
	mu    sync.Mutex
	hooks []Hook
	log   *slog.Logger
}

func NewShutdown(log *slog.Logger) *Shutdown {
	return &Shutdown{log: log.With(slog.String("component", "shutdown"))}
}

// Register appends a hook. Registration order should follow startup order.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn})
}

// Execute runs the hooks last-registered first. A failing hook is logged
// and does not stop the remaining ones.
func (s *Shutdown) Execute(ctx context.Context) {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown started", slog.Int("hooks", len(hooks)))

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.Fn(ctx); err != nil {
			s.log.Error("shutdown hook failed",
				slog.String("hook", h.Name),
				slog.Any("error", err),
			)
			continue
		}
		s.log.Debug("shutdown hook done", slog.String("hook", h.Name))
	}

	s.log.Info("shutdown finished", slog.Duration("elapsed", time.Since(start)))
}
