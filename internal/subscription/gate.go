// Package subscription verifies channel membership before the bot serves a
// user.
package subscription

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/pkg/metrics"
)

// MemberLookup is the membership query the gate needs from the transport.
// *telebot.Bot satisfies it.
type MemberLookup interface {
	ChatMemberOf(chat, user telebot.Recipient) (*telebot.ChatMember, error)
}

// Gate answers whether a user may use the bot. A zero channel ID disables
// the check entirely.
type Gate struct {
	lookup    MemberLookup
	channelID int64
	log       *slog.Logger
}

// NewGate builds a Gate for the configured channel.
func NewGate(lookup MemberLookup, channelID int64, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}

	return &Gate{
		lookup:    lookup,
		channelID: channelID,
		log:       log,
	}
}

// Enabled reports whether a channel requirement is configured.
func (g *Gate) Enabled() bool {
	return g.channelID != 0
}

// IsSubscribed reports whether the user belongs to the required channel.
// Every membership status except "left" and "kicked" counts as subscribed.
// Lookup failures deny access: when Telegram cannot confirm membership the
// gate stays closed rather than guessing.
func (g *Gate) IsSubscribed(userID int64) bool {
	if !g.Enabled() {
		return true
	}

	member, err := g.lookup.ChatMemberOf(&telebot.Chat{ID: g.channelID}, &telebot.User{ID: userID})
	if err != nil {
		g.log.Warn("cannot check subscription",
			slog.Int64("user_id", userID),
			slog.Int64("channel_id", g.channelID),
			slog.Any("error", err),
		)
		metrics.RecordGateDenial("lookup_failed")
		return false
	}

	switch member.Role {
	case telebot.Left, telebot.Kicked:
		metrics.RecordGateDenial("not_member")
		return false
	default:
		return true
	}
}
