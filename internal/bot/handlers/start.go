package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/keyboard"
	"github.com/mgsg-dev/mgsg-bot/internal/registry"
)

// NewStartHandler registers the user and greets them with the main menu.
func NewStartHandler(store registry.Store, kb *keyboard.Builder, log *slog.Logger) Handler {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := store.Remember(ctx, sender.ID, sender.Username); err != nil {
			// registration failure should not block the greeting
			log.Error("user registration failed",
				slog.Int64("user_id", sender.ID),
				slog.Any("error", err),
			)
		}

		if err := c.Send(fmt.Sprintf(msgGreeting, fullName(sender)), kb.MainMenu()); err != nil {
			return err
		}
		return SendMainMenu(c, kb)
	}
}

func fullName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
