// Package project locates the properties files a propfmt run works on.
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/propfmt/format"
)

var log = commonlog.GetLogger("propfmt.project")

// Project is a directory tree of properties files sharing one config.
type Project struct {
	RootDir    string
	ConfigPath string // empty when running on defaults
	Config     Config
}

// Load detects the project containing the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom detects the project containing dir. The project root is the
// directory holding propfmt.toml, or dir itself when there is none.
func LoadFrom(dir string) (*Project, error) {
	configPath, found, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if !found {
		root, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", dir, err)
		}
		log.Debugf("no %s found, using defaults in %s", ConfigFileName, root)
		return &Project{RootDir: root, Config: DefaultConfig()}, nil
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %s", configPath)
	return &Project{
		RootDir:    filepath.Dir(configPath),
		ConfigPath: configPath,
		Config:     cfg,
	}, nil
}

func (p *Project) FormatOptions() (format.Options, error) {
	return p.Config.FormatOptions()
}

// Files returns every properties file of the project, sorted. Hidden
// directories are skipped and the root .gitignore is honoured.
func (p *Project) Files() ([]string, error) {
	include := ignore.CompileIgnoreLines(p.Config.Properties.Include...)
	exclude := ignore.CompileIgnoreLines(p.Config.Properties.Exclude...)
	gitignore := p.gitignore()

	var files []string
	err := filepath.WalkDir(p.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(p.RootDir, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if exclude.MatchesPath(rel+"/") || gitignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !include.MatchesPath(rel) {
			return nil
		}
		if exclude.MatchesPath(rel) || gitignore.MatchesPath(rel) {
			log.Debugf("skipping %s", rel)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", p.RootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

func (p *Project) gitignore() *ignore.GitIgnore {
	data, err := os.ReadFile(filepath.Join(p.RootDir, ".gitignore"))
	if err != nil {
		return ignore.CompileIgnoreLines()
	}
	return ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
}

// Rel returns path relative to the project root for display.
func (p *Project) Rel(path string) string {
	rel, err := filepath.Rel(p.RootDir, path)
	if err != nil {
		return path
	}
	return rel
}
