package handlers

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/keyboard"
	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
	"github.com/mgsg-dev/mgsg-bot/internal/jobs"
	"github.com/mgsg-dev/mgsg-bot/internal/registry"
	"github.com/mgsg-dev/mgsg-bot/internal/throttle"
	"github.com/mgsg-dev/mgsg-bot/pkg/metrics"
)

// Messenger is the slice of the Telegram API the chat flow talks to
// directly. *tele.Bot satisfies it.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Completer produces a reply for a prompt. It never fails: upstream errors
// come back as user-facing text.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// ChatHandler relays free-form messages to the model. The Telegram side is
// answered immediately with a placeholder; the completion runs on the task
// runner and replaces the placeholder when it lands.
type ChatHandler struct {
	bot     Messenger
	store   registry.Store
	limiter throttle.Limiter
	model   Completer
	runner  *jobs.Runner
	kb      *keyboard.Builder
	log     *slog.Logger
}

func NewChatHandler(
	bot Messenger,
	store registry.Store,
	limiter throttle.Limiter,
	model Completer,
	runner *jobs.Runner,
	kb *keyboard.Builder,
	log *slog.Logger,
) *ChatHandler {
	return &ChatHandler{
		bot:     bot,
		store:   store,
		limiter: limiter,
		model:   model,
		runner:  runner,
		kb:      kb,
		log:     log.With(slog.String("component", "chat")),
	}
}

// Handle processes one free-form message: register, throttle, placeholder,
// then the async completion.
func (h *ChatHandler) Handle(c tele.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil || msg.Text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.store.Remember(ctx, sender.ID, sender.Username); err != nil {
		// registration failure should not block the reply
		h.log.Error("user registration failed",
			slog.Int64("user_id", sender.ID),
			slog.Any("error", err),
		)
	}

	allowed, err := h.limiter.Allow(ctx, sender.ID)
	if err != nil {
		h.log.Warn("throttle check failed, allowing message",
			slog.Int64("user_id", sender.ID),
			slog.Any("error", err),
		)
		allowed = true
	}
	if !allowed {
		metrics.RecordThrottled()
		cooldown := int(h.limiter.Cooldown().Seconds())
		return c.Send(apperrors.NewThrottledError(cooldown).UserMessage)
	}

	placeholder, err := h.bot.Send(msg.Chat, msgThinking, h.kb.MainMenu())
	if err != nil {
		return fmt.Errorf("send placeholder: %w", err)
	}

	prompt := msg.Text
	chat := msg.Chat
	h.runner.Go("completion", func(ctx context.Context) {
		h.resolve(chat, placeholder, h.model.Complete(ctx, prompt))
	})
	return nil
}

// resolve delivers exactly one final reply for a placeholder: edit it in
// place, or replace it with a fresh message when the edit is rejected.
func (h *ChatHandler) resolve(chat *tele.Chat, placeholder *tele.Message, reply string) {
	if reply == "" {
		reply = msgEmptyReply
	}

	_, err := h.bot.Edit(placeholder, reply)
	if err == nil {
		return
	}

	h.log.Warn("placeholder edit failed, replacing message", slog.Any("error", err))
	if delErr := h.bot.Delete(placeholder); delErr != nil {
		h.log.Debug("placeholder delete failed", slog.Any("error", delErr))
	}
	if _, sendErr := h.bot.Send(chat, reply, h.kb.MainMenu()); sendErr != nil {
		// replies with raw angle brackets trip the HTML parser on both the
		// edit and the fresh send; escape and try once more so the user
		// still gets an answer
		h.log.Warn("reply send failed, retrying escaped", slog.Any("error", sendErr))
		if _, escErr := h.bot.Send(chat, html.EscapeString(reply), h.kb.MainMenu()); escErr != nil {
			h.log.Error("reply delivery failed",
				slog.Int64("chat_id", chat.ID),
				slog.Any("error", escErr),
			)
		}
	}
}
