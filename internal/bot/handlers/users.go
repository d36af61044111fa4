package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
	"github.com/mgsg-dev/mgsg-bot/internal/registry"
)

// NewUsersHandler serves /users: the full roster and its size.
func NewUsersHandler(store registry.Store, log *slog.Logger) Handler {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		users, err := store.Roster(ctx)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}
		if len(users) == 0 {
			return c.Send(msgNoUsers)
		}

		lines := make([]string, 0, len(users))
		for _, u := range users {
			lines = append(lines, fmt.Sprintf("%d / %s", u.ID, u.Display()))
		}

		log.Debug("roster served", slog.Int("count", len(users)))
		return c.Send(fmt.Sprintf(msgUsersList, strings.Join(lines, "\n"), len(users)))
	}
}
