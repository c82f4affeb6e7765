// Package codebase keeps the properties files an editor has open and serves
// them over the Language Server Protocol.
package codebase

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dhamidi/propfmt/format"
	"github.com/dhamidi/propfmt/properties"
)

type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	opts    format.Options
	files   map[string]*FileInfo
}

// FileInfo is the latest known text of a file. Content is always UTF-8;
// files read from disk are decoded with the configured charset.
type FileInfo struct {
	Path     string
	Content  []byte
	Doc      *properties.Document
	ParseErr error
}

func New(rootDir string, opts format.Options) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		opts:    opts,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) Options() format.Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

// ScanFile loads path from disk.
func (c *Codebase) ScanFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	text, err := c.opts.Charset.Decode(data)
	if err != nil {
		var se *properties.SyntaxError
		if errors.As(err, &se) {
			se.Pos.File = path
		}
		c.files[path] = &FileInfo{Path: path, Content: data, ParseErr: err}
		return nil
	}
	c.updateFileLocked(path, text)
	return nil
}

// UpdateFile replaces the text of path, typically with an editor buffer.
func (c *Codebase) UpdateFile(path string, content []byte) *FileInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateFileLocked(path, content)
}

func (c *Codebase) updateFileLocked(path string, content []byte) *FileInfo {
	doc, err := properties.Parse(content, properties.WithFile(path))
	info := &FileInfo{
		Path:     path,
		Content:  content,
		Doc:      doc,
		ParseErr: err,
	}
	c.files[path] = info
	return info
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Formatting is the result of formatting one file. File is the snapshot
// that was formatted; edits computed against it stay valid even if the file
// has been updated since.
type Formatting struct {
	File    *FileInfo
	Text    []byte
	Changed bool
}

// Format returns the canonical text of path. Content is already decoded, so
// it is formatted as text; runes the charset cannot hold come back escaped.
func (c *Codebase) Format(path string) (*Formatting, error) {
	c.mu.RLock()
	f := c.files[path]
	opts := c.opts
	c.mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("%s is not open", path)
	}
	if f.ParseErr != nil {
		return nil, f.ParseErr
	}

	text, err := format.FormatText(f.Content, path, opts)
	if err != nil {
		return nil, err
	}
	return &Formatting{File: f, Text: text, Changed: !bytes.Equal(text, f.Content)}, nil
}

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

// Diagnostic is a problem found in a file. Line and Column are 1-based,
// Column counts bytes.
type Diagnostic struct {
	Severity Severity
	Line     int
	Column   int
	Message  string
}

// Diagnostics reports the syntax error of path, or its overridden keys.
func (c *Codebase) Diagnostics(path string) []Diagnostic {
	f := c.GetFile(path)
	if f == nil {
		return nil
	}

	if f.ParseErr != nil {
		var se *properties.SyntaxError
		if errors.As(f.ParseErr, &se) {
			return []Diagnostic{{Severity: SeverityError, Line: se.Pos.Line, Column: se.Pos.Column, Message: se.Msg}}
		}
		return []Diagnostic{{Severity: SeverityError, Line: 1, Column: 1, Message: f.ParseErr.Error()}}
	}

	var diags []Diagnostic
	lastLine := make(map[string]int)
	for _, e := range f.Doc.Entries {
		if e.Kind == properties.EntryProperty {
			lastLine[e.Key] = e.Line
		}
	}
	for _, e := range f.Doc.Duplicates() {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarning,
			Line:     e.Line,
			Column:   1,
			Message:  fmt.Sprintf("duplicate key %q is overridden on line %d", e.Key, lastLine[e.Key]),
		})
	}
	return diags
}
