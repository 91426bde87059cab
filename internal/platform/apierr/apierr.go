package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks a missing profile, tag, paper or recommendation.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument marks malformed filters, pages or action payloads.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict marks a lost optimistic-lock race.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized marks a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From maps an error onto an HTTP status using the sentinel it wraps.
// fallbackCode is used when err carries no more specific code.
func From(err error, fallbackCode string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return New(http.StatusNotFound, fallbackCode, err)
	case errors.Is(err, ErrInvalidArgument):
		return New(http.StatusBadRequest, fallbackCode, err)
	case errors.Is(err, ErrConflict):
		return New(http.StatusConflict, fallbackCode, err)
	case errors.Is(err, ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	default:
		return New(http.StatusInternalServerError, "internal_error", err)
	}
}
