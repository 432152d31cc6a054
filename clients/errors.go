package clients

import (
	"errors"
	"fmt"
	"net/http"

	errorutils "github.com/leafcoder/escrow-go/errors"
)

var (
	// ErrUnableToDecode unable to decode body
	ErrUnableToDecode = "unable to decode response"
	// ErrUnableToEscapeURL the url could not be escaped
	ErrUnableToEscapeURL = "unable to escape url"
	// ErrInvalidHost the host was invalid
	ErrInvalidHost = "invalid host"
	// ErrMalformedRequest the request was malformed
	ErrMalformedRequest = "malformed request"
	// ErrUnableToEncodeBody body could not be encoded
	ErrUnableToEncodeBody = "unable to encode body"
)

// statusMessages are the canonical human-readable messages for the status
// codes the upstream api documents, used when an error response carries no
// body text.
var statusMessages = map[int]string{
	http.StatusOK:                  "The API request was performed successfully",
	http.StatusBadRequest:          "The client submitted a bad request",
	http.StatusUnauthorized:        "You are trying to perform an action that requires you to be authenticated",
	http.StatusForbidden:           "You are trying to perform an action that you are not permitted to perform",
	http.StatusNotFound:            "You are trying to access a resource that doesn't exist",
	http.StatusUnprocessableEntity: "Your request was malformed",
	http.StatusTooManyRequests:     "You have performed too many requests and have been rate limited.",
	http.StatusInternalServerError: "There was an unexpected server error",
}

// StatusMessage returns the canonical message for a status code. Codes
// outside the documented set get a generic message rather than an empty one.
func StatusMessage(status int) string {
	if message, ok := statusMessages[status]; ok {
		return message
	}
	return fmt.Sprintf("unexpected error (status %d)", status)
}

// HTTPState captures the state of the response to be read by lower fns in the stack
type HTTPState struct {
	Status int
	Path   string
	Body   interface{}
}

// NewHTTPError creates a new errors.ErrorBundle with an HTTPState wrapping the status, path and v.
func NewHTTPError(err error, path, message string, status int, v interface{}) error {
	return errorutils.New(err, message, HTTPState{
		Status: status,
		Path:   path,
		Body:   v,
	})
}

// HTTPStateFromError unpacks the HTTPState attached to an api error,
// reporting false for transport and encoding failures that never produced a
// response.
func HTTPStateFromError(err error) (HTTPState, bool) {
	var eb *errorutils.ErrorBundle
	if !errors.As(err, &eb) {
		return HTTPState{}, false
	}
	state, ok := eb.Data().(HTTPState)
	return state, ok
}
