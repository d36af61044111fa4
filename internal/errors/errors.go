package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries an internal description plus the sanitized message shown
// to the user. Retryable marks failures worth another attempt against the
// upstream API.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// NewThrottledError reports that the local anti-spam cooldown rejected a message.
func NewThrottledError(cooldownSeconds int) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     fmt.Sprintf("local cooldown active: %d seconds between requests", cooldownSeconds),
		UserMessage: fmt.Sprintf("⏱️ Не чаще одного запроса в %d секунд!", cooldownSeconds),
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewDatabaseError wraps registry persistence failures.
func NewDatabaseError(cause error) *AppError {
	var underlying string
	if cause != nil {
		underlying = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("database error: %s", underlying),
		UserMessage: "⚠️ Временная проблема, попробуйте позже.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewUpstreamRateLimitError wraps an HTTP 429 from the completion API. It is
// the only upstream failure the gateway retries.
func NewUpstreamRateLimitError(cause error) *AppError {
	return &AppError{
		Code:        "E301",
		Message:     "completion API rate limited",
		UserMessage: "⚠️ Модель перегружена, попробуйте позже.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewCredentialError wraps an authentication failure from the completion API.
// Not retryable: a bad key stays bad.
func NewCredentialError(cause error) *AppError {
	return &AppError{
		Code:        "E302",
		Message:     "completion API rejected credentials",
		UserMessage: "⚠️ Неверный ключ OpenAI. Проверьте настройки бота.",
		Severity:    SeverityCritical,
		Retryable:   false,
		cause:       cause,
	}
}

// NewUpstreamError wraps any other error reported by the completion API.
func NewUpstreamError(cause error) *AppError {
	return &AppError{
		Code:        "E303",
		Message:     "completion API error",
		UserMessage: "⚠️ Сервис временно недоступен, попробуйте позже.",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       cause,
	}
}

// NewUnexpectedError wraps failures outside the completion API surface.
func NewUnexpectedError(cause error) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     "unexpected error",
		UserMessage: "⚠️ Непредвиденная ошибка. Попробуйте позже.",
		Severity:    SeverityHigh,
		Retryable:   false,
		cause:       cause,
	}
}
