package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest looked up by Find.
const FileName = "solver.toml"

// ErrNotFound is returned by LoadFrom when no manifest exists in any parent.
var ErrNotFound = errors.New("no " + FileName + " found")

// Manifest is a decoded solver.toml.
type Manifest struct {
	Path   string
	Root   string
	Data   []byte // raw bytes, keys the report cache
	Config Config
	// Unknown lists keys present in the file but not understood.
	Unknown []string
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Adts    []ItemConfig  `toml:"adt"`
	Traits  []ItemConfig  `toml:"trait"`
	Impls   []ImplConfig  `toml:"impl"`
	Check   CheckConfig   `toml:"check"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// ItemConfig declares an ADT or trait; Params only contributes its length.
type ItemConfig struct {
	Name   string   `toml:"name"`
	Params []string `toml:"params"`
}

type ImplConfig struct {
	Name   string `toml:"name"`
	Header string `toml:"header"`
}

type CheckConfig struct {
	Jobs           int `toml:"jobs"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadFrom resolves target to a manifest: a file path is loaded directly,
// a directory (or "") is searched upwards with Find.
func LoadFrom(target string) (*Manifest, error) {
	if target != "" {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", target, err)
		}
		if !info.IsDir() {
			return Load(target)
		}
	}
	path, ok, err := Find(target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return Load(path)
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Decode(abs, data)
}

// Decode parses data as a manifest. path is used for messages and Root.
func Decode(path string, data []byte) (*Manifest, error) {
	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if cfg.Check.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Data:   data,
		Config: cfg,
	}
	for _, key := range meta.Undecoded() {
		m.Unknown = append(m.Unknown, key.String())
	}
	return m, nil
}
