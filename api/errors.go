// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Status codes and structured errors shared by executors and reactors.
// A nil error is the success status; every failure produced by this module
// is an *Error (possibly wrapped) so callers can branch on ErrorCode.

package api

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeNotSupported
	ErrCodeNotStarted
	ErrCodeInShutdown
	ErrCodeShutdownTimeout
	ErrCodeThreadCreationFailed
	ErrCodeReactorFault
	ErrCodeCallbackCanceled
	ErrCodeSessionClosed
	ErrCodeAlreadyStarted
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "OK"
	case ErrCodeInvalidArgument:
		return "InvalidArgument"
	case ErrCodeNotSupported:
		return "NotSupported"
	case ErrCodeNotStarted:
		return "NotStarted"
	case ErrCodeInShutdown:
		return "InShutdown"
	case ErrCodeShutdownTimeout:
		return "ShutdownTimeout"
	case ErrCodeThreadCreationFailed:
		return "ThreadCreationFailed"
	case ErrCodeReactorFault:
		return "ReactorFault"
	case ErrCodeCallbackCanceled:
		return "CallbackCanceled"
	case ErrCodeSessionClosed:
		return "SessionClosed"
	case ErrCodeAlreadyStarted:
		return "AlreadyStarted"
	case ErrCodeInternal:
		return "Internal"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Sentinel errors, one per code. Match with errors.Is; codes are compared,
// so an *Error carrying extra context still matches its sentinel.
var (
	ErrInvalidArgument      = NewError(ErrCodeInvalidArgument, "invalid argument")
	ErrNotSupported         = NewError(ErrCodeNotSupported, "operation not supported")
	ErrNotStarted           = NewError(ErrCodeNotStarted, "executor is not started")
	ErrInShutdown           = NewError(ErrCodeInShutdown, "executor is in shutdown")
	ErrShutdownTimeout      = NewError(ErrCodeShutdownTimeout, "executor shutdown timed out")
	ErrThreadCreationFailed = NewError(ErrCodeThreadCreationFailed, "could not create executor threads")
	ErrReactorFault         = NewError(ErrCodeReactorFault, "uncaught fault in reactor")
	ErrCallbackCanceled     = NewError(ErrCodeCallbackCanceled, "callback was canceled")
	ErrSessionClosed        = NewError(ErrCodeSessionClosed, "session is closed")
	ErrAlreadyStarted       = NewError(ErrCodeAlreadyStarted, "executor already started")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.String() + ": " + e.Message
	if len(e.Context) != 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of the error with key set in its context.
// Sentinels are shared values, so they are never mutated in place.
func (e *Error) WithContext(key string, value any) *Error {
	cp := *e
	cp.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

// WithCause returns a copy of the error wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// IsOK reports whether status is the success status.
func IsOK(status error) bool {
	return status == nil
}

// CodeOf extracts the ErrorCode of status. Foreign errors map to
// ErrCodeInternal.
func CodeOf(status error) ErrorCode {
	if status == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(status, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
