package properties

import "strings"

type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineProperty
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineProperty:
		return "property"
	default:
		return "unknown"
	}
}

// LogicalLine is one or more natural lines joined by continuation.
type LogicalLine struct {
	Kind LineKind
	// Text has leading whitespace removed from every natural line and the
	// continuation backslashes dropped.
	Text    string
	Line    int
	EndLine int

	segments []segment
}

// segment maps a byte offset in Text back to the natural line it came from.
type segment struct {
	offset int
	line   int
	column int
}

// Position returns the source position of the byte at offset in Text.
func (l LogicalLine) Position(file string, offset int) Position {
	seg := segment{line: l.Line, column: 1}
	for _, s := range l.segments {
		if s.offset > offset {
			break
		}
		seg = s
	}
	return Position{File: file, Line: seg.line, Column: seg.column + offset - seg.offset}
}

type Lexer struct {
	input string
	file  string
	pos   int
	line  int
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input: string(input),
		file:  file,
		pos:   0,
		line:  1,
	}
}

// Next returns the next logical line. ok is false at end of input.
func (l *Lexer) Next() (line LogicalLine, ok bool) {
	if l.pos >= len(l.input) {
		return LogicalLine{}, false
	}

	start := l.line
	text, skipped := trimLeadingSpace(l.naturalLine())
	if text == "" {
		return LogicalLine{Kind: LineBlank, Line: start, EndLine: start}, true
	}
	if text[0] == '#' || text[0] == '!' {
		return LogicalLine{
			Kind:    LineComment,
			Text:    strings.TrimRight(text, " \t\f"),
			Line:    start,
			EndLine: start,
		}, true
	}

	var sb strings.Builder
	segments := []segment{{offset: 0, line: start, column: skipped + 1}}
	end := start
	for continues(text) {
		sb.WriteString(text[:len(text)-1])
		if l.pos >= len(l.input) {
			text = ""
			break
		}
		end = l.line
		next, skipped := trimLeadingSpace(l.naturalLine())
		segments = append(segments, segment{offset: sb.Len(), line: end, column: skipped + 1})
		text = next
	}
	sb.WriteString(text)

	return LogicalLine{
		Kind:     LineProperty,
		Text:     sb.String(),
		Line:     start,
		EndLine:  end,
		segments: segments,
	}, true
}

func (l *Lexer) naturalLine() string {
	start := l.pos
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\n':
			text := l.input[start:l.pos]
			l.pos++
			l.line++
			return text
		case '\r':
			text := l.input[start:l.pos]
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '\n' {
				l.pos++
			}
			l.line++
			return text
		}
		l.pos++
	}
	return l.input[start:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f'
}

func trimLeadingSpace(s string) (string, int) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:], i
}

// continues reports whether s ends in an odd number of backslashes.
func continues(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
