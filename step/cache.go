package step

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	// CacheDir is created under the project root.
	CacheDir  = ".propfmt"
	cacheFile = "cache.mp"

	// Increment when cachePayload changes shape.
	cacheSchemaVersion uint16 = 1
)

// Cache remembers the hash of every file the formatter has produced, so a
// later run can report UP-TO-DATE without formatting again.
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	path    string
	payload cachePayload
	dirty   bool
}

type cachePayload struct {
	Schema      uint16
	Fingerprint string
	// Files maps a cleaned absolute path to the hex SHA-256 of its
	// formatted content.
	Files map[string]string
}

// OpenCache loads the cache stored under root. A missing or unreadable
// cache starts empty.
func OpenCache(root string) (*Cache, error) {
	c := &Cache{
		path:    filepath.Join(root, CacheDir, cacheFile),
		payload: cachePayload{Schema: cacheSchemaVersion, Files: map[string]string{}},
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	var payload cachePayload
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		log.Warningf("ignoring corrupt cache %s: %v", c.path, err)
		return c, nil
	}
	if payload.Schema != cacheSchemaVersion || payload.Files == nil {
		log.Infof("discarding cache %s with schema %d", c.path, payload.Schema)
		return c, nil
	}
	c.payload = payload
	return c, nil
}

func (c *Cache) Path() string {
	return c.path
}

// UpToDate reports whether content is known to be the formatted output for
// path under the given options fingerprint.
func (c *Cache) UpToDate(path, fingerprint string, content []byte) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.payload.Fingerprint != fingerprint {
		return false
	}
	want, ok := c.payload.Files[cacheKey(path)]
	return ok && want == digest(content)
}

// Record stores formatted as the known output for path.
func (c *Cache) Record(path, fingerprint string, formatted []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload.Fingerprint != fingerprint {
		c.payload.Fingerprint = fingerprint
		c.payload.Files = map[string]string{}
	}
	c.payload.Files[cacheKey(path)] = digest(formatted)
	c.dirty = true
}

// Forget drops path, for example after formatting it failed.
func (c *Cache) Forget(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(path)
	if _, ok := c.payload.Files[key]; ok {
		delete(c.payload.Files, key)
		c.dirty = true
	}
}

// Save writes the cache if it changed.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&c.payload); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := WriteFileAtomic(c.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	c.dirty = false
	return nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
