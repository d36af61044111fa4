package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	s := NewShutdown(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var order []string
	for _, name := range []string{"db", "redis", "bot"} {
		n := name
		s.Register(n, func(ctx context.Context) error {
			order = append(order, n)
			return nil
		})
	}

	s.Execute(context.Background())
	assert.Equal(t, []string{"bot", "redis", "db"}, order)
}

func TestShutdownContinuesPastFailures(t *testing.T) {
	s := NewShutdown(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var ran []string
	s.Register("first", func(ctx context.Context) error {
		ran = append(ran, "first")
		return nil
	})
	s.Register("broken", func(ctx context.Context) error {
		return errors.New("close failed")
	})

	s.Execute(context.Background())
	assert.Equal(t, []string{"first"}, ran)
}
