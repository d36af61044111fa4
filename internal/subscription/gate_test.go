package subscription

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	telebot "gopkg.in/telebot.v3"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLookup struct {
	member *telebot.ChatMember
	err    error
	calls  int
}

func (f *fakeLookup) ChatMemberOf(_, _ telebot.Recipient) (*telebot.ChatMember, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.member, nil
}

func TestGate_DisabledGatePassesWithoutLookup(t *testing.T) {
	lookup := &fakeLookup{}
	gate := NewGate(lookup, 0, testLogger())

	assert.False(t, gate.Enabled())
	assert.True(t, gate.IsSubscribed(1001))
	assert.Equal(t, 0, lookup.calls, "disabled gate must not call Telegram")
}

func TestGate_MembershipStatuses(t *testing.T) {
	testCases := []struct {
		name       string
		role       telebot.MemberStatus
		subscribed bool
	}{
		{name: "member", role: telebot.Member, subscribed: true},
		{name: "administrator", role: telebot.Administrator, subscribed: true},
		{name: "creator", role: telebot.Creator, subscribed: true},
		{name: "restricted still counts", role: telebot.Restricted, subscribed: true},
		{name: "left", role: telebot.Left, subscribed: false},
		{name: "kicked", role: telebot.Kicked, subscribed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lookup := &fakeLookup{member: &telebot.ChatMember{Role: tc.role}}
			gate := NewGate(lookup, -100123, testLogger())

			assert.Equal(t, tc.subscribed, gate.IsSubscribed(42))
			assert.Equal(t, 1, lookup.calls)
		})
	}
}

func TestGate_LookupFailureDeniesAccess(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("telegram: Bad Request")}
	gate := NewGate(lookup, -100123, testLogger())

	assert.False(t, gate.IsSubscribed(42))
}
