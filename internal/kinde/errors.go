package kinde

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error types for Kinde management API responses.
var (
	// ErrAuth indicates the client-credentials exchange failed.
	// Fatal: no subsequent call can proceed without a token.
	ErrAuth = errors.New("kinde: authentication failed")

	// ErrPageFetch indicates a list request returned a non-success status
	// after retries were exhausted, or a body that could not be parsed.
	// Fatal for the enumeration: an incomplete listing cannot be safely
	// reconciled.
	ErrPageFetch = errors.New("kinde: page fetch failed")
)

// APIError carries the HTTP status of a failed call together with a
// best-effort extraction of the API's structured error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("kinde: API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("kinde: API error (status %d): %s", e.StatusCode, e.Message)
}

// errorPayload covers both error body shapes the API produces: an
// errors[] array, or a top-level code/message pair.
type errorPayload struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newAPIError classifies an error response body. It prefers the
// structured errors[] array joined as "code: message" pairs, falls back
// to a top-level code/message pair, and finally to the raw body text.
func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Message: errorMessage(body)}
}

func errorMessage(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Errors) > 0 {
			parts := make([]string, 0, len(payload.Errors))
			for _, e := range payload.Errors {
				parts = append(parts, fmt.Sprintf("%s: %s", e.Code, e.Message))
			}
			return strings.Join(parts, "; ")
		}
		if payload.Code != "" || payload.Message != "" {
			return strings.TrimSpace(fmt.Sprintf("%s: %s", payload.Code, payload.Message))
		}
	}
	return strings.TrimSpace(string(body))
}

// IsRetryable reports whether the status code is transient: rate
// limiting or a server-side error.
func IsRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// isSuccess reports whether the status code is in the 2xx range.
func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}
