package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dhamidi/propfmt/format"
	"github.com/dhamidi/propfmt/properties"
)

const ConfigFileName = "propfmt.toml"

type Config struct {
	Properties PropertiesConfig `toml:"properties"`
}

// PropertiesConfig is the [properties] table. Include and Exclude use
// .gitignore pattern syntax relative to the project root.
type PropertiesConfig struct {
	Include          []string `toml:"include"`
	Exclude          []string `toml:"exclude"`
	Separator        string   `toml:"separator"`
	SortKeys         bool     `toml:"sort_keys"`
	EscapeUnicode    bool     `toml:"escape_unicode"`
	MaxBlankLines    int      `toml:"max_blank_lines"`
	AlignSeparators  bool     `toml:"align_separators"`
	RemoveDuplicates bool     `toml:"remove_duplicates"`
	Charset          string   `toml:"charset"`
}

func DefaultConfig() Config {
	opts := format.DefaultOptions()
	return Config{
		Properties: PropertiesConfig{
			Include:       []string{"*.properties"},
			Exclude:       []string{"build/", "out/", "target/"},
			Separator:     opts.Separator,
			MaxBlankLines: opts.MaxBlankLines,
			Charset:       opts.Charset.String(),
		},
	}
}

// FindConfig walks up from startDir looking for propfmt.toml.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig reads a config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("properties", "include") && len(cfg.Properties.Include) == 0 {
		return Config{}, fmt.Errorf("%s: [properties].include must not be empty", path)
	}
	if _, err := cfg.FormatOptions(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FormatOptions converts the [properties] table into formatter options.
func (c Config) FormatOptions() (format.Options, error) {
	p := c.Properties
	cs, err := properties.ParseCharset(p.Charset)
	if err != nil {
		return format.Options{}, fmt.Errorf("[properties].charset: %w", err)
	}
	opts := format.Options{
		Separator:        p.Separator,
		SortKeys:         p.SortKeys,
		EscapeUnicode:    p.EscapeUnicode,
		MaxBlankLines:    p.MaxBlankLines,
		AlignSeparators:  p.AlignSeparators,
		RemoveDuplicates: p.RemoveDuplicates,
		Charset:          cs,
	}
	if err := opts.Validate(); err != nil {
		return format.Options{}, fmt.Errorf("[properties].separator: %w", err)
	}
	return opts, nil
}

const defaultConfigTemplate = `# propfmt configuration.

[properties]
# Files to format, in .gitignore pattern syntax relative to this file.
include = ["*.properties"]
exclude = ["build/", "out/", "target/"]

# One of "=", " = ", ":", " : " or " ".
separator = "="
sort_keys = false
# Write non-ASCII characters as \uXXXX escapes.
escape_unicode = false
# Collapse runs of blank lines; -1 keeps them all.
max_blank_lines = 1
align_separators = false
remove_duplicates = false
# "UTF-8" or "ISO-8859-1".
charset = "UTF-8"
`

// WriteDefault creates dir/propfmt.toml. An existing file is not replaced.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, ConfigFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return path, fmt.Errorf("%s already exists", path)
		}
		return path, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(defaultConfigTemplate); err != nil {
		f.Close()
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}
