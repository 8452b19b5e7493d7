// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel error kinds for the domain layer. Domain packages wrap these so the
// transport can map them without knowing the concrete error.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnavailable      = errors.New("service unavailable")
)

// CodedError carries a stable machine code for a specific failure, e.g.
// "sku_duplicate", on top of its kind.
type CodedError interface {
	error
	Code() string
}

type kindError struct {
	kind error
	code string
	msg  string
}

// NewError builds an error of the given kind with a machine code and message.
func NewError(kind error, code, msg string) error {
	return &kindError{kind: kind, code: code, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Code() string { return e.code }

func (e *kindError) Unwrap() error { return e.kind }

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	status, title, code := classify(err)
	detail := ""
	if status != http.StatusInternalServerError {
		detail = err.Error()
	}
	var coded CodedError
	if errors.As(err, &coded) && coded.Code() != "" {
		code = coded.Code()
	}
	Problem(w, status, title, detail, code)
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Not Found", "not_found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "Conflict", "conflict"
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusBadRequest, "Invalid Operation", "invalid_operation"
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "Validation Failed", "validation_error"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "Forbidden", "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized", "unauthorized"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "Service Unavailable", "unavailable"
	default:
		return http.StatusInternalServerError, "Internal Error", "internal"
	}
}
