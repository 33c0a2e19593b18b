package types

import (
	"errors"
	"fmt"
)

var (
	// ErrArithmetic is matched by every arithmetic-domain failure.
	ErrArithmetic = errors.New("arithmetic domain error")

	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrArithmetic)
	ErrOverflow       = fmt.Errorf("%w: 64-bit nanosecond overflow", ErrArithmetic)
	ErrNotANumber     = fmt.Errorf("%w: not a number", ErrArithmetic)
	// ErrIndeterminate covers infinities cancelling and infinity times zero.
	ErrIndeterminate = fmt.Errorf("%w: indeterminate form", ErrArithmetic)

	// ErrInvalidTimestamp is returned when a timestamp would be negative
	// or infinite.
	ErrInvalidTimestamp = errors.New("invalid duration value for use as a timestamp")

	// ErrNotFinite is returned by operations that need a finite duration.
	ErrNotFinite = errors.New("duration is not finite")

	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("parse error")
)

// ArithmeticError describes a rejected Duration operation.
type ArithmeticError struct {
	Op  string
	X   Duration
	Y   string
	Err error
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.X, e.Op, e.Y, e.Err)
}

func (e *ArithmeticError) Unwrap() error { return e.Err }

// AsArithmetic checks whether err is an ArithmeticError and returns it.
func AsArithmetic(err error) (*ArithmeticError, bool) {
	var a *ArithmeticError
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}

// ParseError reports text that does not match a layout. Offset is -1 when
// the text matched the layout but described an invalid instant.
type ParseError struct {
	Text   string
	Layout string
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("parsing %q as %q: %v", e.Text, e.Layout, e.Err)
	}
	return fmt.Sprintf("parsing %q as %q at offset %d: %v", e.Text, e.Layout, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }
