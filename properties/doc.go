// Package properties reads Java-style .properties files.
//
// # Overview
//
// A properties file is a sequence of natural lines. Lines are grouped into
// logical lines by backslash continuation, and every logical line is either
// blank, a comment or a key/value pair. The package keeps all three kinds so
// that a formatter can write the file back with its comments in place.
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Input     │────▶│   Lexer     │────▶│   Parser    │
//	│  (bytes)    │     │  (lines)    │     │ (Document)  │
//	└─────────────┘     └─────────────┘     └─────────────┘
//
// # Syntax
//
// The rules follow java.util.Properties.load:
//
//   - Natural lines end at \n, \r or \r\n.
//   - Leading space, tab and form feed are skipped on every natural line,
//     including continuation lines.
//   - A line whose first non-blank character is # or ! is a comment.
//     Comments never continue.
//   - A natural line ending in an odd number of backslashes continues onto
//     the next one. The final backslash is dropped.
//   - The key ends at the first unescaped '=', ':' or whitespace. Whitespace
//     after the key is skipped, then at most one '=' or ':', then whitespace
//     again. The rest of the logical line is the value.
//   - \t, \n, \r, \f and \uXXXX are decoded; any other escaped character
//     stands for itself.
//
// # Charsets
//
// Parse works on UTF-8 text. Use a Charset to turn raw file bytes into text
// first:
//
//	text, err := properties.UTF8.Decode(data)
//	doc, err := properties.Parse(text, properties.WithFile(path))
//
// # Errors
//
// Malformed \u escapes and undecodable input are reported as *SyntaxError,
// which carries the file name and the 1-based line and column.
package properties
