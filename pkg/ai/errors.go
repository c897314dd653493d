package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies provider failures so callers can pick a retry policy.
type ErrorKind string

const (
	// KindUnavailable covers network and connect failures. Retryable by caller policy.
	KindUnavailable ErrorKind = "unavailable"
	// KindRateLimited maps HTTP 429. Callers should surface a wait hint.
	KindRateLimited ErrorKind = "rate_limited"
	// KindUnauthenticated maps HTTP 401. Non-retryable configuration problem.
	KindUnauthenticated ErrorKind = "unauthenticated"
	// KindForbidden maps HTTP 403. Non-retryable.
	KindForbidden ErrorKind = "forbidden"
	// KindServerError maps HTTP 5xx. Retryable.
	KindServerError ErrorKind = "server_error"
	// KindClientError maps remaining HTTP 4xx. Non-retryable, likely a malformed request.
	KindClientError ErrorKind = "client_error"
	// KindUnsupported marks operations a provider permanently lacks.
	KindUnsupported ErrorKind = "unsupported"
)

// ProviderError is the normalized failure shape surfaced by every adapter.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure class is worth retrying.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindUnavailable, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}

func unavailableError(provider string, err error) *ProviderError {
	return &ProviderError{Kind: KindUnavailable, Provider: provider, Message: err.Error(), Err: err}
}

func unsupportedError(provider, message string) *ProviderError {
	return &ProviderError{Kind: KindUnsupported, Provider: provider, Message: message}
}

// statusError maps a non-2xx response to the error taxonomy, surfacing any
// embedded error detail from the body.
func statusError(provider string, status int, body []byte) *ProviderError {
	kind := KindClientError
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusUnauthorized:
		kind = KindUnauthenticated
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status == http.StatusServiceUnavailable:
		kind = KindUnavailable
	case status >= http.StatusInternalServerError:
		kind = KindServerError
	}

	message := strings.TrimSpace(string(body))
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		message = payload.Error.Message
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &ProviderError{Kind: kind, Provider: provider, Message: message, Status: status}
}
