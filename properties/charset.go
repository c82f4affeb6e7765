package properties

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset is the byte encoding of a properties file on disk.
type Charset int

const (
	UTF8 Charset = iota
	ISO88591
)

// ParseCharset accepts the usual spellings of the supported charsets.
func ParseCharset(name string) (Charset, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8":
		return UTF8, nil
	case "ISO-8859-1", "ISO8859-1", "ISO_8859_1", "LATIN1", "LATIN-1":
		return ISO88591, nil
	}
	return UTF8, fmt.Errorf("unsupported charset %q", name)
}

func (c Charset) String() string {
	switch c {
	case ISO88591:
		return "ISO-8859-1"
	default:
		return "UTF-8"
	}
}

// MaxRune is the largest rune the charset can store without a \u escape.
func (c Charset) MaxRune() rune {
	if c == ISO88591 {
		return 0xFF
	}
	return utf8.MaxRune
}

// Decode converts file bytes to UTF-8 text. A leading UTF-8 byte order mark
// is dropped.
func (c Charset) Decode(data []byte) ([]byte, error) {
	switch c {
	case ISO88591:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", c, err)
		}
		return out, nil
	default:
		if i := invalidUTF8(data); i >= 0 {
			return nil, &SyntaxError{Pos: offsetPosition(data, i), Msg: "invalid UTF-8 byte sequence"}
		}
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", c, err)
		}
		return out, nil
	}
}

// Encode converts UTF-8 text to file bytes. Text written for ISO-8859-1 must
// already have runes above U+00FF escaped.
func (c Charset) Encode(text []byte) ([]byte, error) {
	switch c {
	case ISO88591:
		out, err := charmap.ISO8859_1.NewEncoder().Bytes(text)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c, err)
		}
		return out, nil
	default:
		return text, nil
	}
}

func invalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

func offsetPosition(data []byte, offset int) Position {
	line := 1 + bytes.Count(data[:offset], []byte{'\n'})
	start := bytes.LastIndexByte(data[:offset], '\n') + 1
	return Position{Line: line, Column: offset - start + 1}
}
