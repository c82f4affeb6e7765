package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/propfmt/properties"
)

// LineEncoder writes one tab-separated key/value pair per line. Keys and
// values are escaped so that every pair stays on a single line.
type LineEncoder struct {
	w   io.Writer
	doc *properties.Document
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(doc *properties.Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, p := range e.doc.Properties() {
		fmt.Fprintf(&sb, "%s\t%s\n", lineEscape(p.Key), lineEscape(p.Value))
	}
	return []byte(sb.String()), nil
}

var lineEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

func lineEscape(s string) string {
	return lineEscaper.Replace(s)
}
