// Package placeholder implements the template engine shared by duration,
// timestamp and log-entry formatting.
//
// A template is plain text with two-character placeholders: a prefix byte
// ('%' for time and duration layouts, '$' for log entries) followed by a
// token byte. Expansion is a single left-to-right pass. Recognised
// placeholders are replaced by the value the caller's Resolver returns;
// everything else, including unrecognised placeholders, is copied through
// unchanged. Substituted text is never scanned again.
package placeholder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned by Validate for templates that contain a
// dangling prefix or a placeholder outside the allowed token set.
var ErrInvalidFormat = errors.New("invalid format")

// Resolver maps a token byte to its substitution. The boolean reports
// whether the token is recognised.
type Resolver func(token byte) (string, bool)

// Expand expands template against resolve.
func Expand(template string, prefix byte, resolve Resolver) string {
	return string(Append(make([]byte, 0, len(template)+16), template, prefix, resolve))
}

// Append is like Expand but appends the result to dst.
func Append(dst []byte, template string, prefix byte, resolve Resolver) []byte {
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != prefix || i+1 == len(template) {
			dst = append(dst, c)
			continue
		}
		token := template[i+1]
		if s, ok := resolve(token); ok {
			dst = append(dst, s...)
		} else {
			dst = append(dst, c, token)
		}
		i++
	}
	return dst
}

// Validate checks that every prefix in template starts a placeholder whose
// token is listed in tokens. Empty templates are rejected.
func Validate(template string, prefix byte, tokens string) error {
	if template == "" {
		return fmt.Errorf("%w: empty template", ErrInvalidFormat)
	}
	for i := 0; i < len(template); i++ {
		if template[i] != prefix {
			continue
		}
		if i+1 == len(template) {
			return fmt.Errorf("%w: %q ends with a dangling %q", ErrInvalidFormat, template, prefix)
		}
		if strings.IndexByte(tokens, template[i+1]) < 0 {
			return fmt.Errorf("%w: %q has unsupported placeholder %c%c at offset %d",
				ErrInvalidFormat, template, prefix, template[i+1], i)
		}
		i++
	}
	return nil
}

// Digits formats v as a decimal number left-padded with zeros to width.
// Negative values are rendered by magnitude.
func Digits(v int64, width int) string {
	if v < 0 {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
