// Package apperrors classifies failures for logging, reporting, and
// user-facing replies.
package apperrors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries the internal message, the reply shown to the user,
// and routing hints for the error handler.
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

// NewValidationError wraps a rejected command input. The message is
// shown to the user verbatim.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewDatabaseError wraps a storage failure.
func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "Something went wrong on our side, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewCacheError wraps a Redis failure. The bot keeps working without
// the cache, so severity stays low.
func NewCacheError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("cache error: %s", underlyingMsg),
		UserMessage: "Something went wrong on our side, please try again later.",
		Severity:    SeverityLow,
		Retryable:   true,
		cause:       cause,
	}
}

// NewLedgerFaultError wraps an integrity failure such as a balance that
// no longer matches its transaction log.
func NewLedgerFaultError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E400",
		Message:     fmt.Sprintf("ledger fault: %s", underlyingMsg),
		UserMessage: "Wallet is temporarily unavailable, please try again later.",
		Severity:    SeverityCritical,
		Retryable:   false,
		cause:       cause,
	}
}

// NewRateLimitError tells the user to slow down.
func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
	}
}
