package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrEmptyBody = errors.New("empty response body")
	ErrNoToken   = errors.New("no token in response")
)

// Error is a non-2xx response from the gateway.
type Error struct {
	StatusCode int
	// Message is the gateway's "msg" field when the body is JSON carrying
	// one, otherwise the trimmed body text. Empty if the body was empty.
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func newError(status int, body []byte) *Error {
	return &Error{
		StatusCode: status,
		Message:    bodyMessage(body),
		Body:       body,
	}
}

func bodyMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "msg"); msg.Exists() && msg.Type == gjson.String {
			return msg.String()
		}
	}
	return strings.TrimSpace(string(body))
}

// Message renders err for display. Gateway errors use the server message,
// falling back to fallback when the body carried none; transport and
// decode errors use their own text.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// IsUnauthorized reports whether the gateway rejected the credential.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// StatusCode returns the gateway status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
