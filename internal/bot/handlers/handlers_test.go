package handlers

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/keyboard"
	"github.com/mgsg-dev/mgsg-bot/internal/domain"
	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
)

type stubGate struct {
	enabled    bool
	subscribed map[int64]bool
}

func (s *stubGate) Enabled() bool { return s.enabled }

func (s *stubGate) IsSubscribed(userID int64) bool { return s.subscribed[userID] }

// fakeHandlerContext serves the synchronous handlers: it records sends with
// their markups and callback responses.
type fakeHandlerContext struct {
	tele.Context

	sender *tele.User

	sent      []string
	markups   []*tele.ReplyMarkup
	responded []*tele.CallbackResponse
}

func (f *fakeHandlerContext) Sender() *tele.User { return f.sender }

func (f *fakeHandlerContext) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, what.(string))
	for _, o := range opts {
		if m, ok := o.(*tele.ReplyMarkup); ok {
			f.markups = append(f.markups, m)
		}
	}
	return nil
}

func (f *fakeHandlerContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responded = append(f.responded, resp...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckSubscriptionCallback(t *testing.T) {
	t.Run("subscribed user gets confirmation and menu", func(t *testing.T) {
		gate := &stubGate{enabled: true, subscribed: map[int64]bool{42: true}}
		h := NewCheckSubscriptionHandler(gate, keyboard.NewBuilder(), discardLogger())

		c := &fakeHandlerContext{sender: &tele.User{ID: 42}}
		require.NoError(t, h(c, ""))

		require.Len(t, c.responded, 1)
		assert.Equal(t, "✅ Подписка подтверждена!", c.responded[0].Text)
		assert.True(t, c.responded[0].ShowAlert)

		require.Len(t, c.sent, 1)
		assert.Contains(t, c.sent[0], "Главное меню")
		require.Len(t, c.markups, 1)
		assert.NotEmpty(t, c.markups[0].InlineKeyboard, "menu carries the model picker")
	})

	t.Run("unsubscribed user gets alert only", func(t *testing.T) {
		gate := &stubGate{enabled: true}
		h := NewCheckSubscriptionHandler(gate, keyboard.NewBuilder(), discardLogger())

		c := &fakeHandlerContext{sender: &tele.User{ID: 42}}
		require.NoError(t, h(c, ""))

		require.Len(t, c.responded, 1)
		assert.Equal(t, "❌ Вы всё ещё не подписаны.", c.responded[0].Text)
		assert.True(t, c.responded[0].ShowAlert)
		assert.Empty(t, c.sent)
	})
}

func TestStartHandler(t *testing.T) {
	store := &fakeStore{}
	h := NewStartHandler(store, keyboard.NewBuilder(), discardLogger())

	c := &fakeHandlerContext{sender: &tele.User{ID: 42, Username: "alice", FirstName: "Алиса"}}
	require.NoError(t, h(c))

	assert.Equal(t, []int64{42}, store.remembered)
	assert.Equal(t, []string{"alice"}, store.names)

	require.Len(t, c.sent, 2)
	assert.Contains(t, c.sent[0], "Привет, <b>Алиса</b>")
	assert.Contains(t, c.sent[1], "Главное меню")

	// greeting carries the reply keyboard, the menu the inline picker
	require.Len(t, c.markups, 2)
	assert.NotEmpty(t, c.markups[0].ReplyKeyboard)
	assert.NotEmpty(t, c.markups[1].InlineKeyboard)
}

func TestStartHandlerGreetsDespiteRegistrationFailure(t *testing.T) {
	store := &fakeStore{rememberErr: errors.New("disk full")}
	h := NewStartHandler(store, keyboard.NewBuilder(), discardLogger())

	c := &fakeHandlerContext{sender: &tele.User{ID: 42, FirstName: "Алиса"}}
	require.NoError(t, h(c))
	require.Len(t, c.sent, 2)
}

func TestUsersHandler(t *testing.T) {
	t.Run("lists roster with count", func(t *testing.T) {
		store := &fakeStore{roster: []domain.User{
			{ID: 42, Name: "alice", FirstSeen: time.Now()},
			{ID: 7, FirstSeen: time.Now()},
		}}
		h := NewUsersHandler(store, discardLogger())

		c := &fakeHandlerContext{sender: &tele.User{ID: 1}}
		require.NoError(t, h(c))

		require.Len(t, c.sent, 1)
		assert.Contains(t, c.sent[0], "42 / @alice")
		assert.Contains(t, c.sent[0], "7 / id:7")
		assert.Contains(t, c.sent[0], "Всего: <b>2</b>")
	})

	t.Run("empty roster", func(t *testing.T) {
		h := NewUsersHandler(&fakeStore{}, discardLogger())

		c := &fakeHandlerContext{sender: &tele.User{ID: 1}}
		require.NoError(t, h(c))

		require.Len(t, c.sent, 1)
		assert.Equal(t, "🤷 Пока нет зарегистрированных пользователей.", c.sent[0])
	})

	t.Run("roster failure surfaces as database error", func(t *testing.T) {
		h := NewUsersHandler(&fakeStore{rosterErr: errors.New("io error")}, discardLogger())

		c := &fakeHandlerContext{sender: &tele.User{ID: 1}}
		err := h(c)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "E200", appErr.Code)
		assert.Empty(t, c.sent)
	})
}
