package bot

import (
	"context"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/handlers"
	"github.com/mgsg-dev/mgsg-bot/internal/bot/keyboard"
	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
	"github.com/mgsg-dev/mgsg-bot/pkg/logger"
	"github.com/mgsg-dev/mgsg-bot/pkg/metrics"

	"github.com/google/uuid"
)

// RecoveryMiddleware converts handler panics into a logged error and a
// generic apology, keeping the poller alive.
func RecoveryMiddleware(log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c tele.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("handler panicked",
						slog.Any("panic", rec),
						slog.Int64("user_id", senderID(c)),
					)
					err = c.Send(apperrors.NewUnexpectedError(nil).UserMessage)
				}
			}()
			return next(c)
		}
	}
}

// CorrelationMiddleware tags every update with a correlation ID that the
// error handler and logs pick up.
func CorrelationMiddleware() handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c tele.Context) error {
			c.Set(correlationKey, uuid.NewString())
			return next(c)
		}
	}
}

// ErrorMiddleware is the outermost error boundary below recovery: handler
// errors are classified, logged and answered with user-facing text.
func ErrorMiddleware(handler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c tele.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			ctx := logger.WithCorrelationID(context.Background(), correlationID(c))
			userMsg, _ := handler.Handle(ctx, err)
			if userMsg == "" {
				return nil
			}
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: userMsg, ShowAlert: true})
			}
			return c.Send(userMsg)
		}
	}
}

// LoggingMiddleware logs each update with its latency and outcome.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			attrs := []any{
				slog.Int64("user_id", senderID(c)),
				slog.String("correlation_id", correlationID(c)),
				slog.Duration("duration", time.Since(start)),
			}
			if cb := c.Callback(); cb != nil {
				attrs = append(attrs, slog.String("callback", cb.Data))
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
				log.Warn("update failed", attrs...)
			} else {
				log.Debug("update handled", attrs...)
			}
			return err
		}
	}
}

// SubscriptionMiddleware rejects updates from users outside the required
// channel. The membership re-check callback is exempt so that users can
// actually pass the gate.
func SubscriptionMiddleware(gate handlers.Gate, kb *keyboard.Builder, inviteLink string, log *slog.Logger) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c tele.Context) error {
			if !gate.Enabled() {
				return next(c)
			}

			cb := c.Callback()
			if cb != nil {
				if name, _ := splitCallbackData(cb.Data); name == CallbackCheckSub {
					return next(c)
				}
			}

			sender := c.Sender()
			if sender == nil || gate.IsSubscribed(sender.ID) {
				return next(c)
			}

			metrics.RecordGateDenial("not_subscribed")
			log.Debug("update rejected by subscription gate", slog.Int64("user_id", sender.ID))

			if cb != nil {
				return handlers.StillNotSubscribedAlert(c)
			}
			return handlers.SendSubscriptionRequired(c, kb, inviteLink)
		}
	}
}

const correlationKey = "correlation_id"

func correlationID(c tele.Context) string {
	if id, ok := c.Get(correlationKey).(string); ok {
		return id
	}
	return ""
}

func senderID(c tele.Context) int64 {
	if sender := c.Sender(); sender != nil {
		return sender.ID
	}
	return 0
}
