// Package format renders parsed properties files: canonically, through
// PropertiesPrinter, or as data through the Encoder implementations.
package format

import (
	"encoding"
	"io"

	"github.com/dhamidi/propfmt/properties"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(doc *properties.Document) error
}

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string, w io.Writer) (Encoder, bool) {
	switch name {
	case "line":
		return NewLineEncoder(w), true
	case "json":
		return NewJSONEncoder(w), true
	case "yaml":
		return NewYAMLEncoder(w), true
	}
	return nil, false
}
