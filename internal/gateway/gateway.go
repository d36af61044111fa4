// Package gateway wraps the OpenAI chat-completion API with bounded
// concurrency, retry on upstream rate limiting, and sanitized failure
// messages.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
	"github.com/mgsg-dev/mgsg-bot/pkg/metrics"
)

// CompletionClient is the single upstream call the gateway depends on.
// *openai.Client satisfies it.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options configures a Gateway.
type Options struct {
	Model          string
	MaxConcurrent  int
	RequestTimeout time.Duration
	// RequestDelay is an optional fixed pause applied before queueing for a
	// slot. Off by default; kept for deployments that used it as a crude
	// upstream rate limit.
	RequestDelay time.Duration
	Retry        apperrors.RetryPolicy
}

// Gateway serializes completion calls through a fixed-size slot pool.
type Gateway struct {
	client     CompletionClient
	opts       Options
	slots      chan struct{}
	errHandler *apperrors.Handler
	log        *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Gateway. MaxConcurrent below 1 is treated as 1, the
// process-wide single-flight behavior the bot ships with.
func New(client CompletionClient, opts Options, errHandler *apperrors.Handler, log *slog.Logger) *Gateway {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = apperrors.DefaultRetryPolicy()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Gateway{
		client:     client,
		opts:       opts,
		slots:      make(chan struct{}, opts.MaxConcurrent),
		errHandler: errHandler,
		log:        log,
	}
}

// Complete sends prompt as a single-turn conversation and returns the reply
// text. It never returns an error: every failure path resolves to a fixed
// user-facing notice, logged with its cause beforehand.
func (g *Gateway) Complete(ctx context.Context, prompt string) (reply string) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("panic in completion gateway", slog.Any("panic", r))
			reply = g.sanitize(ctx, apperrors.NewUnexpectedError(fmt.Errorf("panic: %v", r)))
			outcome = "panic"
		}
		metrics.RecordCompletion(outcome, time.Since(start))
	}()

	if g.opts.RequestDelay > 0 {
		if err := g.wait(ctx, g.opts.RequestDelay); err != nil {
			outcome = "cancelled"
			return g.sanitize(ctx, apperrors.NewUnexpectedError(err))
		}
	}

	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		outcome = "cancelled"
		return g.sanitize(ctx, apperrors.NewUnexpectedError(ctx.Err()))
	}
	defer func() { <-g.slots }()

	var text string
	err := apperrors.WithRetry(ctx, g.opts.Retry, func() error {
		callCtx := ctx
		if g.opts.RequestTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.opts.RequestTimeout)
			defer cancel()
		}

		resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: g.opts.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return classify(err)
		}

		if len(resp.Choices) == 0 {
			return apperrors.NewUpstreamError(errors.New("completion response has no choices"))
		}

		text = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			outcome = appErr.Code
		} else {
			outcome = "error"
		}
		return g.sanitize(ctx, err)
	}

	return text
}

func (g *Gateway) sanitize(ctx context.Context, err error) string {
	if g.errHandler != nil {
		msg, _ := g.errHandler.Handle(ctx, err)
		return msg
	}

	g.log.Error("completion failed", slog.Any("error", err))
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	return "⚠️ Произошла ошибка. Попробуйте позже."
}

func (g *Gateway) wait(ctx context.Context, d time.Duration) error {
	if g.sleep != nil {
		return g.sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classify maps upstream failures onto the AppError taxonomy. Only HTTP 429
// comes back retryable.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return apperrors.NewUpstreamRateLimitError(err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewCredentialError(err)
		default:
			return apperrors.NewUpstreamError(err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperrors.NewUpstreamError(err)
	}

	return apperrors.NewUnexpectedError(err)
}
