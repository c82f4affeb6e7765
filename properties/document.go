package properties

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

type EntryKind int

const (
	EntryBlank EntryKind = iota
	EntryComment
	EntryProperty
)

// Entry is one logical line of a Document.
type Entry struct {
	Kind    EntryKind
	Line    int
	EndLine int

	// Text is the comment including its # or ! marker.
	Text string

	Key   string
	Value string

	// Raw forms as they appeared in the source, continuations joined.
	RawKey    string
	RawValue  string
	Separator string
}

// Property is a decoded key/value pair.
type Property struct {
	Key   string
	Value string
}

// Document is a parsed properties file in source order.
type Document struct {
	File    string
	Entries []*Entry
}

type Option func(*Parser)

// WithFile sets the file name used in error positions.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

type Parser struct {
	file string
}

// Parse reads UTF-8 text into a Document.
func Parse(text []byte, opts ...Option) (*Document, error) {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p.Parse(text)
}

func (p *Parser) Parse(text []byte) (*Document, error) {
	doc := &Document{File: p.file}
	lexer := NewLexer(text, p.file)
	for {
		line, ok := lexer.Next()
		if !ok {
			break
		}
		entry, err := p.entry(line)
		if err != nil {
			return nil, err
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return doc, nil
}

func (p *Parser) entry(line LogicalLine) (*Entry, error) {
	switch line.Kind {
	case LineBlank:
		return &Entry{Kind: EntryBlank, Line: line.Line, EndLine: line.EndLine}, nil
	case LineComment:
		return &Entry{Kind: EntryComment, Text: line.Text, Line: line.Line, EndLine: line.EndLine}, nil
	}

	keyEnd, valueStart := splitKeyValue(line.Text)
	rawKey := line.Text[:keyEnd]
	rawValue := line.Text[valueStart:]

	key, err := unescape(rawKey)
	if err != nil {
		return nil, p.syntaxError(line, 0, err)
	}
	value, err := unescape(rawValue)
	if err != nil {
		return nil, p.syntaxError(line, valueStart, err)
	}

	return &Entry{
		Kind:      EntryProperty,
		Line:      line.Line,
		EndLine:   line.EndLine,
		Key:       key,
		Value:     value,
		RawKey:    rawKey,
		RawValue:  rawValue,
		Separator: line.Text[keyEnd:valueStart],
	}, nil
}

func (p *Parser) syntaxError(line LogicalLine, base int, err error) error {
	var ee *escapeError
	if errors.As(err, &ee) {
		return &SyntaxError{Pos: line.Position(p.file, base+ee.offset), Msg: ee.msg}
	}
	return err
}

// splitKeyValue returns the end of the key and the start of the value.
func splitKeyValue(s string) (keyEnd, valueStart int) {
	keyEnd, valueStart = len(s), len(s)
	hasSep := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !escaped && (c == '=' || c == ':') {
			keyEnd, valueStart = i, i+1
			hasSep = true
			break
		}
		if !escaped && isSpace(c) {
			keyEnd, valueStart = i, i+1
			break
		}
		if c == '\\' {
			escaped = !escaped
		} else {
			escaped = false
		}
	}
	for valueStart < len(s) {
		c := s[valueStart]
		if isSpace(c) {
			valueStart++
			continue
		}
		if !hasSep && (c == '=' || c == ':') {
			hasSep = true
			valueStart++
			continue
		}
		break
	}
	return keyEnd, valueStart
}

// ParseFile reads and parses a file stored in the given charset.
func ParseFile(path string, cs Charset) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseBytes(data, path, cs)
}

// ParseBytes decodes raw file bytes and parses them.
func ParseBytes(data []byte, file string, cs Charset) (*Document, error) {
	text, err := cs.Decode(data)
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			se.Pos.File = file
		}
		return nil, err
	}
	return Parse(text, WithFile(file))
}

// Load reads r the way java.util.Properties.load does and returns the
// resulting mapping.
func Load(r io.Reader, cs Charset) (map[string]string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	doc, err := ParseBytes(buf.Bytes(), "", cs)
	if err != nil {
		return nil, err
	}
	return doc.Map(), nil
}

// Properties returns the effective pairs in order of first appearance.
// When a key repeats, the last value wins.
func (d *Document) Properties() []Property {
	index := make(map[string]int)
	var props []Property
	for _, e := range d.Entries {
		if e.Kind != EntryProperty {
			continue
		}
		if i, ok := index[e.Key]; ok {
			props[i].Value = e.Value
			continue
		}
		index[e.Key] = len(props)
		props = append(props, Property{Key: e.Key, Value: e.Value})
	}
	return props
}

func (d *Document) Map() map[string]string {
	m := make(map[string]string)
	for _, e := range d.Entries {
		if e.Kind == EntryProperty {
			m[e.Key] = e.Value
		}
	}
	return m
}

func (d *Document) Len() int {
	return len(d.Map())
}

func (d *Document) Get(key string) (string, bool) {
	value, ok := "", false
	for _, e := range d.Entries {
		if e.Kind == EntryProperty && e.Key == key {
			value, ok = e.Value, true
		}
	}
	return value, ok
}

func (d *Document) Keys() []string {
	props := d.Properties()
	keys := make([]string, len(props))
	for i, p := range props {
		keys[i] = p.Key
	}
	return keys
}

// Duplicates returns the property entries whose key appears again later.
func (d *Document) Duplicates() []*Entry {
	last := make(map[string]*Entry)
	for _, e := range d.Entries {
		if e.Kind == EntryProperty {
			last[e.Key] = e
		}
	}
	var dups []*Entry
	for _, e := range d.Entries {
		if e.Kind == EntryProperty && last[e.Key] != e {
			dups = append(dups, e)
		}
	}
	return dups
}

// Equivalent reports whether a and b define the same key/value pairs.
func Equivalent(a, b *Document) error {
	am, bm := a.Map(), b.Map()
	for _, p := range a.Properties() {
		got, ok := bm[p.Key]
		if !ok {
			return fmt.Errorf("key %q is missing", p.Key)
		}
		if got != am[p.Key] {
			return fmt.Errorf("key %q: value %q changed to %q", p.Key, am[p.Key], got)
		}
	}
	for _, p := range b.Properties() {
		if _, ok := am[p.Key]; !ok {
			return fmt.Errorf("key %q was added", p.Key)
		}
	}
	return nil
}
