// Package keyboard builds the inline and reply keyboards used by the bot.
package keyboard

import (
	tele "gopkg.in/telebot.v3"
)

// Callback identifiers duplicated here to avoid importing the bot package.
const (
	callbackCheckSub = "check_sub"
	callbackNoop     = "noop"
)

// Builder constructs keyboard markups.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Subscription returns the join/verify keyboard shown to users who have not
// joined the required channel. The join button is omitted when no invite
// link is configured.
func (b *Builder) Subscription(inviteLink string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	check := markup.Data("🔄 Проверить", "", callbackCheckSub)

	rows := []tele.Row{}
	if inviteLink != "" {
		rows = append(rows, markup.Row(markup.URL("🚀 Вступить", inviteLink)))
	}
	rows = append(rows, markup.Row(check))

	markup.Inline(rows...)
	return markup
}

// MainMenu returns the persistent reply keyboard with the menu button.
func (b *Builder) MainMenu() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(markup.Row(markup.Text("🏠 Главное меню")))
	return markup
}

// ModelPicker returns the inline model selector. A single model is offered,
// so the button only acknowledges the tap.
func (b *Builder) ModelPicker() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	model := markup.Data("GPT-4o mini ✅", "", callbackNoop)

	markup.Inline(markup.Row(model))
	return markup
}
