package properties

import (
	"errors"
	"strings"
	"testing"
)

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		value string
		sep   string
	}{
		{"equals", "key=value", "key", "value", "="},
		{"colon", "key:value", "key", "value", ":"},
		{"spaced equals", "key  =  value", "key", "value", "  =  "},
		{"space separator", "key value", "key", "value", " "},
		{"tab separator", "key\tvalue", "key", "value", "\t"},
		{"whitespace then colon", "key : value", "key", "value", " : "},
		{"no value", "key", "key", "", ""},
		{"separator no value", "key =", "key", "", " ="},
		{"equals in value", "equals = value=1", "equals", "value=1", " = "},
		{"second separator kept", "key==value", "key", "=value", "="},
		{"escaped space in key", `spaces\ in\ key=value`, "spaces in key", "value", "="},
		{"escaped separator in key", `a\=b\:c=d`, "a=b:c", "d", "="},
		{"escaped leading space", `key=\ value`, "key", " value", "="},
		{"trailing whitespace kept", "key=value    ", "key", "value    ", "="},
		{"escapes", `key=\nvalue1\nvalue2\tvalue3\t`, "key", "\nvalue1\nvalue2\tvalue3\t", "="},
		{"unicode escape", `key=\u0928\u092e\u0938\u094d\u0924\u0947`, "key", "नमस्ते", "="},
		{"unicode literal", "key=नमस्ते", "key", "नमस्ते", "="},
		{"surrogate pair", `key=\uD83D\uDE00`, "key", "😀", "="},
		{"lone high surrogate", `key=\uD83Dx`, "key", "\xed\xa0\xbdx", "="},
		{"lone low surrogate", `key=\uDE00`, "key", "\xed\xb8\x80", "="},
		{"reversed surrogates", `key=\uDE00\uD83D`, "key", "\xed\xb8\x80\xed\xa0\xbd", "="},
		{"unknown escape", `key=\q\"`, "key", `q"`, "="},
		{"escaped backslash", `key=C:\\dir`, "key", `C:\dir`, "="},
		{"quotes are data", `quoted.args = value "{0}"`, "quoted.args", `value "{0}"`, " = "},
		{"empty key", "=value", "", "value", "="},
		{"hash in value", "key=a#b", "key", "a#b", "="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(doc.Entries) != 1 {
				t.Fatalf("got %d entries, want 1", len(doc.Entries))
			}
			e := doc.Entries[0]
			if e.Kind != EntryProperty {
				t.Fatalf("Kind = %v, want property", e.Kind)
			}
			if e.Key != tt.key {
				t.Errorf("Key = %q, want %q", e.Key, tt.key)
			}
			if e.Value != tt.value {
				t.Errorf("Value = %q, want %q", e.Value, tt.value)
			}
			if e.Separator != tt.sep {
				t.Errorf("Separator = %q, want %q", e.Separator, tt.sep)
			}
		})
	}
}

func TestParseMalformedUnicode(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
	}{
		{"short", "key=abc\\u12", 1, 8},
		{"not hex", "a=1\nkey = \\u12G4", 2, 7},
		{"in key", "k\\uZZZZ=1", 1, 2},
		{"continued", "key = a \\\n    \\u00", 2, 5},
		{"malformed low surrogate", "key=\\uD83D\\uDE0", 1, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), WithFile("bad.properties"))
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SyntaxError", err)
			}
			if se.Pos.File != "bad.properties" {
				t.Errorf("File = %q", se.Pos.File)
			}
			if se.Pos.Line != tt.line || se.Pos.Column != tt.column {
				t.Errorf("Pos = %d:%d, want %d:%d", se.Pos.Line, se.Pos.Column, tt.line, tt.column)
			}
		})
	}
}

func TestDocumentDuplicates(t *testing.T) {
	doc, err := Parse([]byte("a=1\nb=2\na=3\n"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Len() != 2 {
		t.Errorf("Len = %d, want 2", doc.Len())
	}
	if v, _ := doc.Get("a"); v != "3" {
		t.Errorf("Get(a) = %q, want last value 3", v)
	}
	if keys := strings.Join(doc.Keys(), ","); keys != "a,b" {
		t.Errorf("Keys = %s, want a,b", keys)
	}
	dups := doc.Duplicates()
	if len(dups) != 1 || dups[0].Line != 1 {
		t.Errorf("Duplicates = %v, want entry on line 1", dups)
	}
}

func TestEquivalent(t *testing.T) {
	a, _ := Parse([]byte("x = 1\ny : two\n"))
	b, _ := Parse([]byte("y=two\nx=1\n"))
	if err := Equivalent(a, b); err != nil {
		t.Errorf("Equivalent = %v, want nil", err)
	}

	c, _ := Parse([]byte("x=1\ny=2\n"))
	if err := Equivalent(a, c); err == nil {
		t.Error("Equivalent = nil for a changed value")
	}
	d, _ := Parse([]byte("x=1\ny=two\nz=3\n"))
	if err := Equivalent(a, d); err == nil {
		t.Error("Equivalent = nil for an added key")
	}
}

func TestLoad(t *testing.T) {
	m, err := Load(strings.NewReader("\ufeffa=1\nb=\\u00e9\n"), UTF8)
	if err != nil {
		t.Fatal(err)
	}
	if m["a"] != "1" || m["b"] != "é" {
		t.Errorf("Load = %v", m)
	}
}

func TestCharsetISO88591(t *testing.T) {
	data := []byte{'k', '=', 0xE9}
	text, err := ISO88591.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "k=é" {
		t.Errorf("Decode = %q", text)
	}
	back, err := ISO88591.Encode(text)
	if err != nil {
		t.Fatal(err)
	}
	if string(back) != string(data) {
		t.Errorf("Encode = %v, want %v", back, data)
	}
	if _, err := ISO88591.Encode([]byte("नमस्ते")); err == nil {
		t.Error("Encode of Devanagari succeeded, want error")
	}
}

func TestCharsetInvalidUTF8(t *testing.T) {
	_, err := ParseBytes([]byte("a=1\nb=\xff\n"), "bad.properties", UTF8)
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if se.Pos.File != "bad.properties" || se.Pos.Line != 2 || se.Pos.Column != 3 {
		t.Errorf("Pos = %v", se.Pos)
	}
}

func TestParseCharset(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF8", ""} {
		if cs, err := ParseCharset(name); err != nil || cs != UTF8 {
			t.Errorf("ParseCharset(%q) = %v, %v", name, cs, err)
		}
	}
	if cs, err := ParseCharset("latin1"); err != nil || cs != ISO88591 {
		t.Errorf("ParseCharset(latin1) = %v, %v", cs, err)
	}
	if _, err := ParseCharset("UTF-16"); err == nil {
		t.Error("ParseCharset(UTF-16) succeeded")
	}
}
