package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// GenericMessage is shown when the server supplies no usable message.
const GenericMessage = "Something went wrong. Please try again."

var (
	// ErrUnauthorized is wrapped by every *Error with status 401.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrEnvelope indicates a 2xx response that is not a valid envelope.
	ErrEnvelope = errors.New("api: malformed response envelope")

	// ErrMissingID is returned before any request when a path id is empty.
	ErrMissingID = errors.New("api: missing id")

	// ErrInvalidID is returned before any request for "." and ".." ids.
	ErrInvalidID = errors.New("api: invalid id")
)

// FieldError is one entry of the envelope's errors array.
type FieldError struct {
	Field   string
	Message string
}

// Error is a failed API call: a non-2xx status or success=false.
type Error struct {
	StatusCode int
	Message    string
	Errors     []FieldError
	RequestID  string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	for _, fe := range e.Errors {
		if fe.Field != "" {
			fmt.Fprintf(&b, "; %s: %s", fe.Field, fe.Message)
		}
	}
	return b.String()
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// newError builds an *Error from a response body that may or may not be a
// JSON envelope.
func newError(status int, body []byte, requestID string) *Error {
	e := &Error{
		StatusCode: status,
		Message:    resolveMessage(body),
		RequestID:  requestID,
	}
	if !gjson.ValidBytes(body) {
		return e
	}
	gjson.GetBytes(body, "errors").ForEach(func(_, v gjson.Result) bool {
		msg := firstString(v, "msg", "message")
		if msg == "" && v.Type == gjson.String {
			msg = v.String()
		}
		if msg != "" {
			e.Errors = append(e.Errors, FieldError{
				Field:   firstString(v, "path", "param", "field"),
				Message: msg,
			})
		}
		return true
	})
	return e
}

// resolveMessage picks the user-facing text from a response body: message,
// then error, then the first validation error, then GenericMessage.
func resolveMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return GenericMessage
	}
	root := gjson.ParseBytes(body)
	if msg := firstString(root, "message", "error", "errors.0.msg", "errors.0.message", "errors.0"); msg != "" {
		return msg
	}
	return GenericMessage
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := v.Get(p); r.Type == gjson.String && strings.TrimSpace(r.String()) != "" {
			return r.String()
		}
	}
	return ""
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return GenericMessage
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
