package apierr

import (
	"errors"
	"fmt"
	"net/http"
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

// StatusOf returns the status carried by err, or 500 when err is not an *Error.
func StatusOf(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	return http.StatusInternalServerError, "internal"
}
