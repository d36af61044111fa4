// Package health aggregates readiness checks for the ops endpoint.
package health

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v3"
)

// CheckFunc probes a single dependency.
type CheckFunc func(ctx context.Context) error

// Checker runs named dependency checks.
type Checker struct {
	log    *slog.Logger
	checks map[string]CheckFunc
	order  []string
}

func NewChecker(log *slog.Logger) *Checker {
	return &Checker{
		log:    log.With(slog.String("component", "health")),
		checks: make(map[string]CheckFunc),
	}
}

// Register adds a named check. Checks run in registration order.
func (c *Checker) Register(name string, fn CheckFunc) {
	if name == "" || fn == nil {
		return
	}
	if _, exists := c.checks[name]; !exists {
		c.order = append(c.order, name)
	}
	c.checks[name] = fn
}

// Check probes every dependency and reports per-component status. The
// boolean is true only when all checks pass.
func (c *Checker) Check(ctx context.Context) (map[string]string, bool) {
	results := make(map[string]string, len(c.checks))
	healthy := true

	for _, name := range c.order {
		if err := c.checks[name](ctx); err != nil {
			healthy = false
			results[name] = err.Error()
			c.log.Warn("health check failed",
				slog.String("check", name),
				slog.Any("error", err),
			)
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}

// Postgres probes database connectivity.
func Postgres(db *sql.DB) CheckFunc {
	return func(ctx context.Context) error {
		if db == nil {
			return sql.ErrConnDone
		}
		return db.PingContext(ctx)
	}
}

// Redis probes the Redis connection.
func Redis(client *goredis.Client) CheckFunc {
	return func(ctx context.Context) error {
		if client == nil {
			return goredis.ErrClosed
		}
		return client.Ping(ctx).Err()
	}
}

// Telegram reports whether the bot authenticated against the Bot API.
func Telegram(bot *tele.Bot) CheckFunc {
	return func(ctx context.Context) error {
		if bot == nil || bot.Me == nil {
			return errors.New("telegram bot not authenticated")
		}
		return nil
	}
}
