package handlers

import (
	tele "gopkg.in/telebot.v3"
)

// Handler processes a routed update.
type Handler func(c tele.Context) error

// CallbackHandler processes a callback query, receiving the payload that
// follows the callback identifier in the button data.
type CallbackHandler func(c tele.Context, payload string) error

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(next Handler) Handler
