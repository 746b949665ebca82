// Package manifest handles bfir.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file looked up next to a
// program and in its parent directories.
const FileName = "bfir.toml"

// Manifest represents a bfir.toml configuration.
type Manifest struct {
	Run Run `toml:"run"`
	Log Log `toml:"log"`

	// Path is the file the manifest was loaded from (empty for defaults).
	Path string `toml:"-"`
}

// Run configures the interpreter.
type Run struct {
	TapeLimit    int  `toml:"tape-limit"`    // maximum tape cells, 0 = unlimited
	BufferOutput bool `toml:"buffer-output"` // buffer program output
	Trace        bool `toml:"trace"`         // debug-log every instruction
}

// Log configures diagnostics.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no bfir.toml exists.
func Default() *Manifest {
	return &Manifest{
		Run: Run{BufferOutput: true},
	}
}

// Load parses the manifest at path. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if m.Run.TapeLimit < 0 {
		return nil, fmt.Errorf("%s: run.tape-limit must not be negative, got %d", path, m.Run.TapeLimit)
	}

	m.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if m.Log.File != "" && !filepath.IsAbs(m.Log.File) {
		m.Log.File = filepath.Join(filepath.Dir(m.Path), m.Log.File)
	}

	return m, nil
}

// FindAndLoad walks up from startDir to find a bfir.toml file, then loads
// and returns it. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// LogFile returns the configured log file, or nil to log to stderr.
func (m *Manifest) LogFile() *string {
	if m.Log.File == "" {
		return nil
	}
	return &m.Log.File
}
