// Package middleware holds update middleware shared across handlers.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/handlers"
	"github.com/mgsg-dev/mgsg-bot/internal/dedupe"
)

// Dedupe drops updates Telegram redelivers after a long-poll hiccup. The
// deduper is consulted with a key derived from the update identity; on
// deduper failure the update is allowed through.
func Dedupe(d dedupe.Deduper, ttl time.Duration, log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c tele.Context) error {
			key := updateKey(c)
			if key == "" {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			seen, err := d.Seen(ctx, key, ttl)
			if err != nil {
				log.Warn("dedupe check failed, allowing update",
					slog.String("key", key),
					slog.Any("error", err),
				)
				return next(c)
			}
			if seen {
				log.Debug("duplicate update dropped", slog.String("key", key))
				return nil
			}
			return next(c)
		}
	}
}

func updateKey(c tele.Context) string {
	if cb := c.Callback(); cb != nil {
		return "cb:" + cb.ID
	}
	if msg := c.Message(); msg != nil {
		return fmt.Sprintf("msg:%d:%d", msg.Chat.ID, msg.ID)
	}
	return ""
}
