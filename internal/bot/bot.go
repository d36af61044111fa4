// Package bot wires the Telegram transport to the update router, the
// middleware chain and the command handlers.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/handlers"
	"github.com/mgsg-dev/mgsg-bot/internal/bot/keyboard"
	"github.com/mgsg-dev/mgsg-bot/internal/dedupe"
	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
	"github.com/mgsg-dev/mgsg-bot/internal/jobs"
	"github.com/mgsg-dev/mgsg-bot/internal/middleware"
	"github.com/mgsg-dev/mgsg-bot/internal/registry"
	"github.com/mgsg-dev/mgsg-bot/internal/subscription"
	"github.com/mgsg-dev/mgsg-bot/internal/throttle"
	"github.com/mgsg-dev/mgsg-bot/pkg/config"
)

// Updates Telegram redelivers arrive within seconds; anything older than
// this has left the deduper by TTL.
const dedupeTTL = 10 * time.Minute

// Deps carries the collaborators the bot needs besides configuration.
type Deps struct {
	Store      registry.Store
	Limiter    throttle.Limiter
	Deduper    dedupe.Deduper
	Completer  handlers.Completer
	Runner     *jobs.Runner
	ErrHandler *apperrors.Handler
}

// Bot owns the telebot instance and its routing.
type Bot struct {
	tb     *tele.Bot
	router *Router
	log    *slog.Logger
}

func New(cfg *config.Config, deps Deps, log *slog.Logger) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:     cfg.Bot.Token,
		ParseMode: tele.ModeHTML,
		Poller:    &tele.LongPoller{Timeout: cfg.Bot.Timeout},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram transport error", slog.Any("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b := &Bot{
		tb:  tb,
		log: log.With(slog.String("component", "bot")),
	}
	b.router = b.buildRouter(cfg, deps, log)

	tb.Handle(tele.OnText, b.router.Route)
	tb.Handle(tele.OnCallback, b.router.Route)
	return b, nil
}

func (b *Bot) buildRouter(cfg *config.Config, deps Deps, log *slog.Logger) *Router {
	gate := subscription.NewGate(b.tb, cfg.Channel.ID, log)
	kb := keyboard.NewBuilder()

	r := NewRouter(log)
	r.Use(RecoveryMiddleware(log))
	r.Use(CorrelationMiddleware())
	r.Use(middleware.Dedupe(deps.Deduper, dedupeTTL, log))
	r.Use(ErrorMiddleware(deps.ErrHandler))
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Metrics())
	r.Use(SubscriptionMiddleware(gate, kb, cfg.Channel.InviteLink, log))

	chat := handlers.NewChatHandler(b.tb, deps.Store, deps.Limiter, deps.Completer, deps.Runner, kb, log)

	r.HandleText(CommandStart, handlers.NewStartHandler(deps.Store, kb, log))
	r.HandleText(CommandUsers, handlers.NewUsersHandler(deps.Store, log))
	r.HandleText(ButtonMainMenu, handlers.NewMenuHandler(kb))
	r.HandleCallback(CallbackCheckSub, handlers.NewCheckSubscriptionHandler(gate, kb, log))
	r.HandleCallback(CallbackNoop, handlers.NewNoopCallbackHandler())
	r.HandleDefault(chat.Handle)
	return r
}

// Telebot exposes the underlying client for health checks.
func (b *Bot) Telebot() *tele.Bot {
	return b.tb
}

// Start begins long polling and blocks until Stop is called.
func (b *Bot) Start() {
	b.log.Info("bot started", slog.String("username", b.tb.Me.Username))
	b.tb.Start()
}

// Stop terminates the poller.
func (b *Bot) Stop() {
	b.tb.Stop()
	b.log.Info("bot stopped")
}
