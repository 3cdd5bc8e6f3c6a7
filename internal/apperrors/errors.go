// Package apperrors defines the error kinds shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by who can fix it
type Kind string

const (
	InvalidRequest   Kind = "INVALID_REQUEST"
	Unconfigured     Kind = "UNCONFIGURED"
	UpstreamFailure  Kind = "UPSTREAM_FAILURE"
	NotAuthenticated Kind = "NOT_AUTHENTICATED"
	NotFound         Kind = "NOT_FOUND"
	Conflict         Kind = "CONFLICT"
	Internal         Kind = "INTERNAL"
)

// Error is a classified application error
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind so errors.Is(err, apperrors.ErrNotFound) works for any NotFound
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is checks
var (
	ErrInvalidRequest   = &Error{Kind: InvalidRequest}
	ErrUnconfigured     = &Error{Kind: Unconfigured}
	ErrUpstreamFailure  = &Error{Kind: UpstreamFailure}
	ErrNotAuthenticated = &Error{Kind: NotAuthenticated}
	ErrNotFound         = &Error{Kind: NotFound}
	ErrConflict         = &Error{Kind: Conflict}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: kind == UpstreamFailure}
}

func Wrap(kind Kind, message string, cause error) *Error {
	e := New(kind, message)
	e.Cause = cause
	return e
}

// KindOf returns the kind of err, Internal for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps an error to its response status
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidRequest:
		return http.StatusBadRequest
	case NotAuthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		// Unconfigured and UpstreamFailure are both 500-class
		return http.StatusInternalServerError
	}
}

// Response is the JSON body written for every failed request
type Response struct {
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Code      Kind   `json:"code"`
	Retryable bool   `json:"retryable"`
}

// ToResponse converts err into a user-facing body. Internal errors never
// leak their cause.
func ToResponse(err error) Response {
	var e *Error
	if !errors.As(err, &e) {
		return Response{Message: "internal server error", Code: Internal}
	}
	resp := Response{Message: e.Message, Code: e.Kind, Retryable: e.Retryable}
	if e.Cause != nil && e.Kind != Internal {
		resp.Error = e.Cause.Error()
	}
	return resp
}
