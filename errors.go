package chronos

import (
	"context"
	"errors"
	"fmt"

	"github.com/blockberries/chronos/calendar"
	"github.com/blockberries/chronos/placeholder"
	"github.com/blockberries/chronos/types"
)

// Code is the status domain that failures are reported in once they leave
// the process.
type Code uint32

const (
	CodeOK Code = iota
	CodeUnknown
	CodeInvalidParam
	CodeArithmetic
	CodeInvalidTimestamp
	CodeParseFailed
	CodeCanceled
	CodeTimeout
	CodeClosed
	CodeUnavailable
)

var codeNames = [...]string{
	CodeOK:               "ok",
	CodeUnknown:          "unknown",
	CodeInvalidParam:     "invalid parameter",
	CodeArithmetic:       "arithmetic",
	CodeInvalidTimestamp: "invalid timestamp",
	CodeParseFailed:      "parse failed",
	CodeCanceled:         "canceled",
	CodeTimeout:          "timeout",
	CodeClosed:           "closed",
	CodeUnavailable:      "unavailable",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("code(%d)", uint32(c))
}

var (
	ErrInvalidParam = errors.New("chronos: invalid parameter")
	ErrClosed       = errors.New("chronos: service closed")
	ErrUnavailable  = errors.New("chronos: service unavailable")
)

// Sentinel returns the error that failures with code c match under
// errors.Is, or nil for CodeOK and CodeUnknown.
func (c Code) Sentinel() error {
	switch c {
	case CodeInvalidParam:
		return ErrInvalidParam
	case CodeArithmetic:
		return types.ErrArithmetic
	case CodeInvalidTimestamp:
		return types.ErrInvalidTimestamp
	case CodeParseFailed:
		return types.ErrParse
	case CodeCanceled:
		return context.Canceled
	case CodeTimeout:
		return context.DeadlineExceeded
	case CodeClosed:
		return ErrClosed
	case CodeUnavailable:
		return ErrUnavailable
	}
	return nil
}

// CodeOf classifies err.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	if f, ok := AsFailure(err); ok {
		return f.Code
	}
	switch {
	case errors.Is(err, types.ErrParse):
		return CodeParseFailed
	case errors.Is(err, types.ErrArithmetic):
		return CodeArithmetic
	case errors.Is(err, types.ErrInvalidTimestamp),
		errors.Is(err, calendar.ErrBeforeEpoch),
		errors.Is(err, calendar.ErrOutOfRange):
		return CodeInvalidTimestamp
	case errors.Is(err, ErrInvalidParam),
		errors.Is(err, placeholder.ErrInvalidFormat),
		errors.Is(err, types.ErrNotFinite),
		errors.Is(err, calendar.ErrInvalidDate):
		return CodeInvalidParam
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrClosed):
		return CodeClosed
	case errors.Is(err, ErrUnavailable):
		return CodeUnavailable
	}
	return CodeUnknown
}

// Failure is an error that has crossed a process boundary: only its code
// and message survive. It unwraps to the sentinel of its code so that
// errors.Is(err, types.ErrParse) holds on both sides of a connection.
type Failure struct {
	Code    Code
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Failure) Unwrap() error { return f.Code.Sentinel() }

// NewFailure creates a new Failure.
func NewFailure(code Code, message string) *Failure {
	return &Failure{Code: code, Message: message}
}

// FailureOf flattens err into a Failure, or returns nil for a nil err.
func FailureOf(err error) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := AsFailure(err); ok {
		return f
	}
	return &Failure{Code: CodeOf(err), Message: err.Error()}
}

// AsFailure checks whether an error is a Failure and returns it.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
