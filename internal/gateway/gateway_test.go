package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedClient returns one scripted result per call, in order.
type scriptedClient struct {
	mu      sync.Mutex
	script  []error
	reply   string
	calls   int
	block   chan struct{}
	inCall  chan struct{}
}

func (c *scriptedClient) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	idx := c.calls
	c.calls++
	c.mu.Unlock()

	if c.inCall != nil {
		c.inCall <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}

	if idx < len(c.script) && c.script[idx] != nil {
		return openai.ChatCompletionResponse{}, c.script[idx]
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.reply}},
		},
	}, nil
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func rateLimitErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limit"}
}

func authErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}
}

// newTestGateway wires a gateway whose backoff waits are recorded instead of
// slept.
func newTestGateway(client CompletionClient, slept *[]time.Duration) *Gateway {
	retry := apperrors.DefaultRetryPolicy()
	retry.Sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}

	return New(client, Options{
		Model: "gpt-4o-mini",
		Retry: retry,
	}, nil, testLogger())
}

func TestGateway_RetriesRateLimitThenSucceeds(t *testing.T) {
	client := &scriptedClient{
		script: []error{rateLimitErr(), rateLimitErr(), nil},
		reply:  "  привет!  ",
	}

	var slept []time.Duration
	gw := newTestGateway(client, &slept)

	reply := gw.Complete(context.Background(), "hello")

	assert.Equal(t, "привет!", reply)
	assert.Equal(t, 3, client.callCount())
	// Backoff between the three attempts: 1s then 2s, nothing after success.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestGateway_RateLimitBudgetExhausted(t *testing.T) {
	client := &scriptedClient{
		script: []error{rateLimitErr(), rateLimitErr(), rateLimitErr()},
	}

	var slept []time.Duration
	gw := newTestGateway(client, &slept)

	reply := gw.Complete(context.Background(), "hello")

	assert.Equal(t, "⚠️ Модель перегружена, попробуйте позже.", reply)
	assert.Equal(t, 3, client.callCount())
	assert.Len(t, slept, 2)
}

func TestGateway_AuthFailureNotRetried(t *testing.T) {
	client := &scriptedClient{script: []error{authErr()}}

	var slept []time.Duration
	gw := newTestGateway(client, &slept)

	reply := gw.Complete(context.Background(), "hello")

	assert.Equal(t, "⚠️ Неверный ключ OpenAI. Проверьте настройки бота.", reply)
	assert.Equal(t, 1, client.callCount())
	assert.Empty(t, slept)
}

func TestGateway_GenericAPIErrorNotRetried(t *testing.T) {
	client := &scriptedClient{
		script: []error{&openai.APIError{HTTPStatusCode: http.StatusInternalServerError, Message: "boom"}},
	}

	var slept []time.Duration
	gw := newTestGateway(client, &slept)

	reply := gw.Complete(context.Background(), "hello")

	assert.Equal(t, "⚠️ Сервис временно недоступен, попробуйте позже.", reply)
	assert.Equal(t, 1, client.callCount())
	assert.Empty(t, slept)
}

func TestGateway_UnexpectedErrorSanitized(t *testing.T) {
	client := &scriptedClient{script: []error{errors.New("connection reset")}}

	var slept []time.Duration
	gw := newTestGateway(client, &slept)

	reply := gw.Complete(context.Background(), "hello")

	assert.Equal(t, "⚠️ Непредвиденная ошибка. Попробуйте позже.", reply)
	assert.Equal(t, 1, client.callCount())
}

func TestGateway_SingleSlotSerializesCalls(t *testing.T) {
	client := &scriptedClient{
		reply:  "done",
		block:  make(chan struct{}),
		inCall: make(chan struct{}, 2),
	}

	gw := New(client, Options{Model: "gpt-4o-mini", MaxConcurrent: 1}, nil, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = gw.Complete(context.Background(), "hi")
		}()
	}

	// First call enters the upstream client and parks there.
	<-client.inCall

	// The second request must queue for the slot, not reach the client.
	select {
	case <-client.inCall:
		t.Fatal("second call reached upstream while the slot was held")
	case <-time.After(50 * time.Millisecond):
	}

	// Release both calls in turn.
	client.block <- struct{}{}
	<-client.inCall
	client.block <- struct{}{}

	wg.Wait()
	require.Equal(t, 2, client.callCount())
}
