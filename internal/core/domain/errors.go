package domain

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown         Code = "UNKNOWN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeOverflow        Code = "OVERFLOW"
	CodeNothingToRefund Code = "NOTHING_TO_REFUND"
	CodeTransferFailed  Code = "TRANSFER_FAILED"
)

// HTTPStatus maps the code to the status returned by the HTTP adapter.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidState, CodeNothingToRefund:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeOverflow:
		return http.StatusUnprocessableEntity
	case CodeTransferFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the escrow domain error. Two errors match under errors.Is when
// their codes are equal, so the sentinels below can be used with errors.Is
// regardless of message or cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

var (
	ErrNotFound        = New(CodeNotFound, "campaign not found")
	ErrUnauthorized    = New(CodeUnauthorized, "caller is not the campaign owner")
	ErrInvalidState    = New(CodeInvalidState, "operation not allowed in current campaign state")
	ErrInvalidInput    = New(CodeInvalidInput, "invalid input")
	ErrOverflow        = New(CodeOverflow, "amount exceeds representable range")
	ErrNothingToRefund = New(CodeNothingToRefund, "nothing to refund")
	ErrTransferFailed  = New(CodeTransferFailed, "transfer failed")
)

// CodeOf extracts the code of a domain error anywhere in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
