package placeholder

import "fmt"

// Field describes how a placeholder is matched when scanning: exactly
// Width decimal digits whose value must lie in [Min, Max].
type Field struct {
	Width int
	Min   int
	Max   int
}

// Matcher maps a token byte to its Field. The boolean reports whether the
// token is a numeric field; unrecognised placeholders must appear in the
// scanned text literally.
type Matcher func(token byte) (Field, bool)

// Values holds the numbers captured by Scan, keyed by token. A token that
// occurs more than once keeps its last value.
type Values map[byte]int

// ScanError reports where text stopped matching the template.
type ScanError struct {
	Offset int
	Reason string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Reason)
}

// Scan is the inverse of Expand for fixed-width numeric placeholders. It
// walks template and text in lockstep: literal template bytes must match
// exactly, numeric placeholders consume Width digits. The whole of text
// must be consumed.
func Scan(text, template string, prefix byte, match Matcher) (Values, error) {
	values := make(Values)
	pos := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c == prefix && i+1 < len(template) {
			token := template[i+1]
			i++
			if f, ok := match(token); ok {
				v, err := scanNumber(text, pos, f)
				if err != nil {
					return nil, err
				}
				values[token] = v
				pos += f.Width
				continue
			}
			if err := expect(text, pos, c); err != nil {
				return nil, err
			}
			if err := expect(text, pos+1, token); err != nil {
				return nil, err
			}
			pos += 2
			continue
		}
		if err := expect(text, pos, c); err != nil {
			return nil, err
		}
		pos++
	}
	if pos != len(text) {
		return nil, &ScanError{Offset: pos, Reason: fmt.Sprintf("unexpected trailing text %q", text[pos:])}
	}
	return values, nil
}

func expect(text string, pos int, c byte) error {
	if pos >= len(text) {
		return &ScanError{Offset: pos, Reason: fmt.Sprintf("expected %q, found end of input", c)}
	}
	if text[pos] != c {
		return &ScanError{Offset: pos, Reason: fmt.Sprintf("expected %q, found %q", c, text[pos])}
	}
	return nil
}

func scanNumber(text string, pos int, f Field) (int, error) {
	if pos+f.Width > len(text) {
		return 0, &ScanError{Offset: pos, Reason: fmt.Sprintf("expected %d digits, found end of input", f.Width)}
	}
	v := 0
	for j := pos; j < pos+f.Width; j++ {
		d := text[j]
		if d < '0' || d > '9' {
			return 0, &ScanError{Offset: j, Reason: fmt.Sprintf("expected digit, found %q", d)}
		}
		v = v*10 + int(d-'0')
	}
	if v < f.Min || v > f.Max {
		return 0, &ScanError{Offset: pos, Reason: fmt.Sprintf("value %d out of range [%d, %d]", v, f.Min, f.Max)}
	}
	return v, nil
}
