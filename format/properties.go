package format

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dhamidi/propfmt/properties"
)

type PropertiesPrinter struct {
	w      io.Writer
	opts   Options
	escape properties.EscapeOptions
}

func NewPropertiesPrinter(w io.Writer, opts Options) *PropertiesPrinter {
	return &PropertiesPrinter{
		w:      w,
		opts:   opts,
		escape: opts.escapeOptions(),
	}
}

// outputLine is a rendered line before separators are aligned.
type outputLine struct {
	property bool
	text     string
	key      string
	value    string
}

func (p *PropertiesPrinter) Print(doc *properties.Document) error {
	entries := doc.Entries
	if p.opts.RemoveDuplicates {
		entries = removeDuplicates(entries)
	}
	if p.opts.SortKeys {
		entries = sortEntries(entries)
	}

	lines := p.render(entries)
	widths := p.keyWidths(lines)

	var buf bytes.Buffer
	for i, line := range lines {
		if !line.property {
			buf.WriteString(line.text)
			buf.WriteByte('\n')
			continue
		}
		buf.WriteString(line.key)
		sep := p.opts.Separator
		if line.value == "" {
			sep = strings.TrimRight(sep, " ")
		}
		// An empty key needs a visible separator or the line reads as the key.
		if line.key == "" && strings.TrimSpace(sep) == "" {
			sep = "="
		}
		if sep != "" {
			if pad := widths[i] - runewidth.StringWidth(line.key); pad > 0 {
				buf.WriteString(strings.Repeat(" ", pad))
			}
			buf.WriteString(sep)
		}
		buf.WriteString(line.value)
		buf.WriteByte('\n')
	}
	_, err := p.w.Write(buf.Bytes())
	return err
}

func (p *PropertiesPrinter) render(entries []*properties.Entry) []outputLine {
	bare := !strings.ContainsAny(p.opts.Separator, "=:")
	var lines []outputLine
	blanks := 0
	for _, e := range entries {
		if e.Kind == properties.EntryBlank {
			blanks++
			continue
		}
		if len(lines) > 0 && blanks > 0 {
			n := blanks
			if p.opts.MaxBlankLines >= 0 && n > p.opts.MaxBlankLines {
				n = p.opts.MaxBlankLines
			}
			for range n {
				lines = append(lines, outputLine{})
			}
		}
		blanks = 0

		switch e.Kind {
		case properties.EntryComment:
			lines = append(lines, outputLine{text: properties.EscapeComment(e.Text, p.escape)})
		case properties.EntryProperty:
			lines = append(lines, outputLine{
				property: true,
				key:      properties.EscapeKey(e.Key, p.escape),
				value:    properties.EscapeValue(e.Value, bare, p.escape),
			})
		}
	}
	return lines
}

// keyWidths returns, per line, the display width keys are padded to.
func (p *PropertiesPrinter) keyWidths(lines []outputLine) []int {
	widths := make([]int, len(lines))
	if !p.opts.AlignSeparators {
		return widths
	}
	for start := 0; start < len(lines); {
		if !lines[start].property {
			start++
			continue
		}
		end := start
		width := 0
		for end < len(lines) && lines[end].property {
			width = max(width, runewidth.StringWidth(lines[end].key))
			end++
		}
		for i := start; i < end; i++ {
			widths[i] = width
		}
		start = end
	}
	return widths
}

func removeDuplicates(entries []*properties.Entry) []*properties.Entry {
	last := make(map[string]*properties.Entry)
	for _, e := range entries {
		if e.Kind == properties.EntryProperty {
			last[e.Key] = e
		}
	}
	out := make([]*properties.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == properties.EntryProperty && last[e.Key] != e {
			continue
		}
		out = append(out, e)
	}
	return out
}

type entryGroup struct {
	key     string
	entries []*properties.Entry
}

// sortEntries orders properties by key. Comments travel with the property
// below them; a header comment block stays on top and comments after the
// last property stay at the bottom.
func sortEntries(entries []*properties.Entry) []*properties.Entry {
	i := 0
	for i < len(entries) && entries[i].Kind == properties.EntryBlank {
		i++
	}
	j := i
	for j < len(entries) && entries[j].Kind == properties.EntryComment {
		j++
	}

	var out []*properties.Entry
	if j > i && j < len(entries) && entries[j].Kind == properties.EntryBlank {
		out = append(out, entries[i:j]...)
		out = append(out, &properties.Entry{Kind: properties.EntryBlank})
		i = j
	}

	var groups []entryGroup
	var pending []*properties.Entry
	for _, e := range entries[i:] {
		switch e.Kind {
		case properties.EntryComment:
			pending = append(pending, e)
		case properties.EntryProperty:
			groups = append(groups, entryGroup{key: e.Key, entries: append(pending, e)})
			pending = nil
		}
	}
	slices.SortStableFunc(groups, func(a, b entryGroup) int {
		return strings.Compare(a.key, b.key)
	})

	for _, g := range groups {
		out = append(out, g.entries...)
	}
	if len(pending) > 0 {
		out = append(out, &properties.Entry{Kind: properties.EntryBlank})
		out = append(out, pending...)
	}
	return out
}

// FormatProperties formats the raw bytes of a properties file.
func FormatProperties(source []byte, opts Options) ([]byte, error) {
	return FormatPropertiesFile(source, "", opts)
}

// FormatPropertiesFile formats source and checks that the result reads back
// to the same key/value pairs.
func FormatPropertiesFile(source []byte, filename string, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	doc, err := properties.ParseBytes(source, filename, opts.Charset)
	if err != nil {
		return nil, err
	}
	out, err := formatDocument(doc, filename, opts)
	if err != nil {
		return nil, err
	}
	return opts.Charset.Encode(out)
}

// FormatText is FormatPropertiesFile for text that is already decoded, such
// as an editor buffer. The result is UTF-8; runes the charset cannot hold
// are escaped so that encoding it cannot fail.
func FormatText(text []byte, filename string, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	doc, err := properties.Parse(text, properties.WithFile(filename))
	if err != nil {
		return nil, err
	}
	return formatDocument(doc, filename, opts)
}

func formatDocument(doc *properties.Document, filename string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewPropertiesPrinter(&buf, opts).Print(doc); err != nil {
		return nil, err
	}

	formatted, err := properties.Parse(buf.Bytes(), properties.WithFile(filename))
	if err != nil {
		return nil, fmt.Errorf("re-parse formatted output: %w", err)
	}
	if err := properties.Equivalent(doc, formatted); err != nil {
		return nil, fmt.Errorf("formatting would change content: %w", err)
	}
	return buf.Bytes(), nil
}
