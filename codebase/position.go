package codebase

import (
	"unicode/utf16"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// naturalLines splits text at \n, \r and \r\n the way the parser counts
// lines. The result always has at least one element.
func naturalLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(lines, text[start:])
}

// utf16Len counts the UTF-16 code units of s, which is what LSP
// positions measure.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		}
	}
	return n
}

// toPosition converts a 1-based line and byte column into an LSP position.
func toPosition(lines []string, line, column int) (protocol.Position, error) {
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	text := lines[line-1]
	col := column - 1
	if col < 0 {
		col = 0
	}
	if col > len(text) {
		col = len(text)
	}

	l, err := safecast.Conv[uint32](line - 1)
	if err != nil {
		return protocol.Position{}, err
	}
	c, err := safecast.Conv[uint32](utf16Len(text[:col]))
	if err != nil {
		return protocol.Position{}, err
	}
	return protocol.Position{Line: l, Character: c}, nil
}

// lineEnd is the position just past the last character of line.
func lineEnd(lines []string, line int) (protocol.Position, error) {
	if line < 1 || line > len(lines) {
		line = len(lines)
	}
	return toPosition(lines, line, len(lines[line-1])+1)
}

// documentRange covers all of text.
func documentRange(text string) (protocol.Range, error) {
	lines := naturalLines(text)
	end, err := lineEnd(lines, len(lines))
	if err != nil {
		return protocol.Range{}, err
	}
	return protocol.Range{End: end}, nil
}
