package middleware

import (
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/handlers"
	"github.com/mgsg-dev/mgsg-bot/pkg/metrics"
)

// Metrics records a counter and latency observation per handled update.
func Metrics() handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordUpdate(updateKind(c), status, time.Since(start))
			return err
		}
	}
}

func updateKind(c tele.Context) string {
	switch {
	case c.Callback() != nil:
		return "callback"
	case strings.HasPrefix(c.Text(), "/"):
		return "command"
	default:
		return "text"
	}
}
