package properties

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// EscapeOptions controls how text is written back out.
type EscapeOptions struct {
	// Unicode writes every rune above U+007E as \uXXXX.
	Unicode bool
	// MaxRune is the largest rune written literally. Zero means no limit.
	MaxRune rune
}

// escapeError is returned by unescape with the byte offset of the bad
// escape so the parser can turn it into a position.
type escapeError struct {
	offset int
	msg    string
}

func (e *escapeError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.offset, e.msg)
}

// Unescape decodes the escape sequences of a raw key or value.
func Unescape(s string) (string, error) {
	return unescape(s)
}

func unescape(s string) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			// A lone trailing backslash stands for nothing.
			i++
			continue
		}
		next := s[i+1]
		switch next {
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 'f':
			sb.WriteByte('\f')
		case 'u':
			r, err := hexRune(s, i)
			if err != nil {
				return "", err
			}
			i += 6
			if utf16.IsSurrogate(r) {
				if low, ok := lowSurrogate(s, i, r); ok {
					sb.WriteRune(utf16.DecodeRune(r, low))
					i += 6
				} else {
					writeSurrogate(&sb, r)
				}
				continue
			}
			sb.WriteRune(r)
			continue
		default:
			sb.WriteByte(next)
		}
		i += 2
	}
	return sb.String(), nil
}

func hexRune(s string, i int) (rune, error) {
	if i+6 > len(s) {
		return 0, &escapeError{offset: i, msg: `malformed \uxxxx encoding`}
	}
	var r rune
	for _, c := range []byte(s[i+2 : i+6]) {
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, &escapeError{offset: i, msg: `malformed \uxxxx encoding`}
		}
		r = r<<4 | rune(d)
	}
	return r, nil
}

// lowSurrogate reports the low half that follows high at s[i:], if any.
func lowSurrogate(s string, i int, high rune) (rune, bool) {
	if high >= 0xDC00 || i+1 >= len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, false
	}
	low, err := hexRune(s, i)
	if err != nil || low < 0xDC00 || low > 0xDFFF {
		return 0, false
	}
	return low, true
}

// writeSurrogate stores an unpaired UTF-16 surrogate in decoded text. It
// has no UTF-8 form, so it is kept as the three bytes the code point would
// encode to (as WTF-8 does) and escaped again on output.
func writeSurrogate(sb *strings.Builder, r rune) {
	sb.WriteByte(byte(0xE0 | r>>12))
	sb.WriteByte(byte(0x80 | (r>>6)&0x3F))
	sb.WriteByte(byte(0x80 | r&0x3F))
}

// decodeRune is utf8.DecodeRuneInString that also recognizes surrogates
// stored by writeSurrogate.
func decodeRune(s string) (rune, int) {
	if len(s) >= 3 && s[0] == 0xED && s[1] >= 0xA0 && s[1] <= 0xBF && s[2]&0xC0 == 0x80 {
		return rune(s[0]&0x0F)<<12 | rune(s[1]&0x3F)<<6 | rune(s[2]&0x3F), 3
	}
	return utf8.DecodeRuneInString(s)
}

// EscapeKey escapes a key so that it reads back unchanged.
func EscapeKey(key string, opts EscapeOptions) string {
	var sb strings.Builder
	for i := 0; i < len(key); {
		r, size := decodeRune(key[i:])
		switch r {
		case ' ', '=', ':':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '#', '!':
			if i == 0 {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		default:
			writeEscaped(&sb, r, opts)
		}
		i += size
	}
	return sb.String()
}

// EscapeValue escapes a value so that it reads back unchanged. When bare is
// true the value follows a whitespace-only separator, so a leading '=' or ':'
// must be escaped as well.
func EscapeValue(value string, bare bool, opts EscapeOptions) string {
	var sb strings.Builder
	for i := 0; i < len(value); {
		r, size := decodeRune(value[i:])
		if i == 0 && (r == ' ' || (bare && (r == '=' || r == ':'))) {
			sb.WriteByte('\\')
			sb.WriteRune(r)
		} else {
			writeEscaped(&sb, r, opts)
		}
		i += size
	}
	return sb.String()
}

// EscapeComment escapes only what the charset cannot hold.
func EscapeComment(text string, opts EscapeOptions) string {
	if opts.MaxRune == 0 {
		return text
	}
	var sb strings.Builder
	for _, r := range text {
		if r > opts.MaxRune {
			writeUnicode(&sb, r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func writeEscaped(sb *strings.Builder, r rune, opts EscapeOptions) {
	switch r {
	case '\\':
		sb.WriteString(`\\`)
	case '\t':
		sb.WriteString(`\t`)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	case '\f':
		sb.WriteString(`\f`)
	default:
		switch {
		case r < 0x20, utf16.IsSurrogate(r):
			writeUnicode(sb, r)
		case opts.Unicode && r > 0x7E:
			writeUnicode(sb, r)
		case opts.MaxRune != 0 && r > opts.MaxRune:
			writeUnicode(sb, r)
		default:
			sb.WriteRune(r)
		}
	}
}

func writeUnicode(sb *strings.Builder, r rune) {
	if r > 0xFFFF {
		hi, lo := utf16.EncodeRune(r)
		fmt.Fprintf(sb, `\u%04X\u%04X`, hi, lo)
		return
	}
	fmt.Fprintf(sb, `\u%04X`, r)
}
