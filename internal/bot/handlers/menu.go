package handlers

import (
	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/keyboard"
)

// SendMainMenu posts the menu text with the model picker. Shared by the
// start, menu-button and subscription-check flows.
func SendMainMenu(c tele.Context, kb *keyboard.Builder) error {
	return c.Send(msgMainMenu, kb.ModelPicker())
}

// NewMenuHandler serves the main-menu reply button.
func NewMenuHandler(kb *keyboard.Builder) Handler {
	return func(c tele.Context) error {
		return SendMainMenu(c, kb)
	}
}

// NewNoopCallbackHandler acknowledges model-picker taps. There is a single
// model, so the tap changes nothing.
func NewNoopCallbackHandler() CallbackHandler {
	return func(c tele.Context, _ string) error {
		return c.Respond(&tele.CallbackResponse{})
	}
}
