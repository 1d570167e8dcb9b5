// Package errors is the coded error type used across the pipeline. Import it as perr.
//
// Every failure that crosses a package boundary should carry an ErrorCode: the ops API maps
// it to a status, the harvester and fetcher branch on it, and metrics use its label.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// Error is a coded error with an optional cause, offending field and operation label
type Error struct {
	code  ErrorCode
	msg   string
	cause error
	field string
	op    string
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.msg
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the classification
func (e *Error) Code() ErrorCode { return e.code }

// Field names the input field a validation failure is about
func (e *Error) Field() string { return e.field }

// Op is the stage label set with WithOp
func (e *Error) Op() string { return e.op }

// New returns a coded error
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is New with formatting
func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap classifies cause under code
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

// Wrapf is Wrap with formatting
func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

// WrapIf is Wrap that leaves a nil err nil
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

func NotFoundf(format string, a ...any) error    { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error  { return Newf(ErrorCodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error     { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error    { return Newf(ErrorCodePanic, format, a...) }
func Conflictf(format string, a ...any) error    { return Newf(ErrorCodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }
func IOf(format string, a ...any) error          { return Newf(ErrorCodeIO, format, a...) }

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// Is is errors.Is, so callers need only this import
func Is(err, target error) bool { return stderrs.Is(err, target) }

// CodeOf returns err's code, or ErrorCodeUnknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether CodeOf(err) == code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// WithField returns a copy of err carrying field; foreign errors come back unchanged
func WithField(err error, field string) error {
	return edit(err, func(e *Error) { e.field = field })
}

// WithOp returns a copy of err carrying the stage label op; foreign errors come back unchanged
func WithOp(err error, op string) error {
	return edit(err, func(e *Error) { e.op = op })
}

func edit(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// Wire is the error body of an ops API envelope
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// HTTP returns the status and wire form for err. The message omits the cause chain;
// foreign errors are Unknown with their full text
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	e, ok := As(err)
	if !ok {
		return ErrorCodeUnknown.HTTPStatus(), Wire{Code: ErrorCodeUnknown, Message: err.Error()}
	}
	return e.code.HTTPStatus(), Wire{Code: e.code, Message: e.msg, Field: e.field}
}
