package utils

import (
	"errors"
	"net/http"
)

// APIError is an error that knows which HTTP status it maps to. Two APIErrors
// match under errors.Is when their status codes are equal, so callers can test
// for a class with errors.Is(err, ErrUnauthorized).
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

var (
	ErrBadRequest         = &APIError{StatusCode: http.StatusBadRequest, Message: "bad request"}
	ErrUnauthorized       = &APIError{StatusCode: http.StatusUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &APIError{StatusCode: http.StatusForbidden, Message: "forbidden"}
	ErrNotFound           = &APIError{StatusCode: http.StatusNotFound, Message: "not found"}
	ErrConflict           = &APIError{StatusCode: http.StatusConflict, Message: "conflict"}
	ErrInvariantViolation = &APIError{StatusCode: http.StatusInternalServerError, Message: "something went wrong"}
)

func (e *APIError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

func BadRequest(message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *APIError {
	return &APIError{StatusCode: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *APIError {
	return &APIError{StatusCode: http.StatusForbidden, Message: message}
}

func NotFound(message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Message: message}
}

func Conflict(message string) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Message: message}
}

// Internal wraps cause as an invariant violation. The cause stays out of the
// message so it never reaches the client.
func Internal(message string, cause error) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, Message: message, Err: cause}
}

// AsAPIError returns err as an APIError, turning anything unknown into a 500.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(ErrInvariantViolation.Message, err)
}

// WithCause returns a copy of e carrying cause, so errors.Is still reaches
// the lower layer's sentinel.
func (e *APIError) WithCause(cause error) *APIError {
	cp := *e
	cp.Err = cause
	return &cp
}
