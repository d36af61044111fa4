package handlers

import (
	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/keyboard"
	"github.com/mgsg-dev/mgsg-bot/pkg/metrics"
)

// Gate is the subset of the subscription gate the handlers need.
type Gate interface {
	Enabled() bool
	IsSubscribed(userID int64) bool
}

// NewCheckSubscriptionHandler re-checks membership when the user taps
// «Проверить». The result is shown as a modal alert; on success the main
// menu follows.
func NewCheckSubscriptionHandler(gate Gate, kb *keyboard.Builder, log *slog.Logger) CallbackHandler {
	return func(c tele.Context, _ string) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		if gate.IsSubscribed(sender.ID) {
			if err := c.Respond(&tele.CallbackResponse{
				Text:      msgSubscriptionConfirmed,
				ShowAlert: true,
			}); err != nil {
				log.Warn("callback answer failed", slog.Any("error", err))
			}
			return SendMainMenu(c, kb)
		}

		metrics.RecordGateDenial("recheck_failed")
		return c.Respond(&tele.CallbackResponse{
			Text:      msgStillNotSubscribed,
			ShowAlert: true,
		})
	}
}

// SendSubscriptionRequired posts the join prompt with the subscription
// keyboard.
func SendSubscriptionRequired(c tele.Context, kb *keyboard.Builder, inviteLink string) error {
	return c.Send(msgSubscribeRequired, kb.Subscription(inviteLink))
}

// StillNotSubscribedAlert answers a callback from a user the gate rejects.
func StillNotSubscribedAlert(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{
		Text:      msgStillNotSubscribed,
		ShowAlert: true,
	})
}
