package apierr

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

const (
	CodeBadRequest   = "bad_request"
	CodeInvalidState = "invalid_state"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal"
)

// Error is a classified failure that maps directly onto an HTTP status.
// Errors carries per-field detail (validation messages).
type Error struct {
	Status  int
	Code    string
	Message string
	Errors  []string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil && e.Err.Error() != e.Message:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Stack renders the captured stack of the underlying error.
func (e *Error) Stack() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.Err)
}

func New(status int, code string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Status: status, Code: code, Message: msg, Err: errors.WithStack(err)}
}

func newf(status int, code, msg string, details []string) *Error {
	return &Error{Status: status, Code: code, Message: msg, Errors: details, Err: errors.New(msg)}
}

func BadRequest(msg string, details ...string) *Error {
	return newf(http.StatusBadRequest, CodeBadRequest, msg, details)
}

// InvalidState reports an operation that is illegal in the entity's current state.
func InvalidState(msg string) *Error {
	return newf(http.StatusBadRequest, CodeInvalidState, msg, nil)
}

func Unauthorized(msg string) *Error {
	return newf(http.StatusUnauthorized, CodeUnauthorized, msg, nil)
}

func Forbidden(msg string) *Error {
	return newf(http.StatusForbidden, CodeForbidden, msg, nil)
}

func NotFound(msg string) *Error {
	return newf(http.StatusNotFound, CodeNotFound, msg, nil)
}

func Conflict(msg string) *Error {
	return newf(http.StatusConflict, CodeConflict, msg, nil)
}

func Internal(msg string, err error) *Error {
	if err == nil {
		err = errors.New(msg)
	}
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: msg, Err: errors.WithStack(err)}
}

// Wrap classifies err. A classified inner error is returned as is, message
// included; anything else becomes a 500 carrying msg.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae
	}
	return Internal(msg, err)
}

// From returns err as an *Error, classifying unknown errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae
	}
	return Internal("internal server error", err)
}

func IsStatus(err error, status int) bool {
	var ae *Error
	return stderrors.As(err, &ae) && ae.Status == status
}
