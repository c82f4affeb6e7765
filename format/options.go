package format

import (
	"fmt"

	"github.com/dhamidi/propfmt/properties"
)

// formatVersion changes whenever the rendering rules change, so cached
// results from older releases are discarded.
const formatVersion = 1

// Separators accepted by Options.Separator.
var Separators = []string{"=", " = ", ":", " : ", " "}

type Options struct {
	Separator        string
	SortKeys         bool
	EscapeUnicode    bool
	MaxBlankLines    int // negative keeps every blank line
	AlignSeparators  bool
	RemoveDuplicates bool
	Charset          properties.Charset
}

func DefaultOptions() Options {
	return Options{
		Separator:     "=",
		MaxBlankLines: 1,
		Charset:       properties.UTF8,
	}
}

func (o Options) Validate() error {
	for _, sep := range Separators {
		if o.Separator == sep {
			return nil
		}
	}
	return fmt.Errorf("invalid separator %q: must be one of %q", o.Separator, Separators)
}

// Fingerprint identifies the output these options produce.
func (o Options) Fingerprint() string {
	return fmt.Sprintf("v%d|sep=%q|sort=%t|unicode=%t|blank=%d|align=%t|dedupe=%t|charset=%s",
		formatVersion, o.Separator, o.SortKeys, o.EscapeUnicode, o.MaxBlankLines,
		o.AlignSeparators, o.RemoveDuplicates, o.Charset)
}

func (o Options) escapeOptions() properties.EscapeOptions {
	eo := properties.EscapeOptions{Unicode: o.EscapeUnicode}
	if limit := o.Charset.MaxRune(); limit < 0x10FFFF {
		eo.MaxRune = limit
	}
	return eo
}
