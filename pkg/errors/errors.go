// Package errors defines the coded errors shared by the followgraph
// libraries and the exit statuses the CLI derives from them.
//
// Codes follow the failure taxonomy of graph construction and reduction.
// DATA_UNAVAILABLE and INSUFFICIENT_POPULATION concern a whole input and
// are always returned to the caller. MALFORMED_RECORD and CONSISTENCY_SKIP
// concern a single user; batch operations log and count them instead of
// failing.
//
//	err := errors.New(errors.ErrCodeDataUnavailable, "user store %s is empty", path)
//	if errors.Is(err, errors.ErrCodeDataUnavailable) {
//	    os.Exit(errors.ExitCode(err)) // 2
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeDataUnavailable        Code = "DATA_UNAVAILABLE"
	ErrCodeInsufficientPopulation Code = "INSUFFICIENT_POPULATION"
	ErrCodeMalformedRecord        Code = "MALFORMED_RECORD"
	ErrCodeConsistencySkip        Code = "CONSISTENCY_SKIP"
	ErrCodeInvalidInput           Code = "INVALID_INPUT"
	ErrCodeInvalidName            Code = "INVALID_NAME"
	ErrCodeFileNotFound           Code = "FILE_NOT_FOUND"
	ErrCodeInternal               Code = "INTERNAL_ERROR"
)

// Process exit statuses.
const (
	ExitFailure     = 1
	ExitNoData      = 2
	ExitInterrupted = 130
)

// Error carries a Code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExitCode maps err to a process exit status: 0 for nil, [ExitNoData]
// when the input had no users, [ExitFailure] otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if Is(err, ErrCodeDataUnavailable) {
		return ExitNoData
	}
	return ExitFailure
}
