package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Canonical error codes surfaced through the HTTP error envelope.
const (
	CodeUnauthorized     = "unauthorized"
	CodeAccessDenied     = "access_denied"
	CodeInvalidInput     = "invalid_input"
	CodeNotFound         = "not_found"
	CodeGenerationFailed = "generation_failed"
	CodeEvaluationFailed = "evaluation_failed"
	CodeInternal         = "internal_error"
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

func AccessDenied(err error) *Error {
	return New(http.StatusForbidden, CodeAccessDenied, err)
}

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func GenerationFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeGenerationFailed, err)
}

func EvaluationFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeEvaluationFailed, err)
}

// From returns err as *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}

func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
