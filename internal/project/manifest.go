// Package project locates and loads the optional gpuport.toml manifest that
// pins per-tree rewrite settings.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file gpuport looks for when walking up from a target.
const ManifestName = "gpuport.toml"

// Manifest ties a parsed config to its location on disk.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors gpuport.toml.
type Config struct {
	Rewrite RewriteConfig `toml:"rewrite"`
}

// RewriteConfig holds the [rewrite] table.
type RewriteConfig struct {
	// Extensions lists the file extensions to process (default: .f90).
	// Matching is case-insensitive, so .f90 also covers .F90.
	Extensions []string `toml:"extensions"`
	// IncludeLine overrides the supporting include inserted into changed
	// files.
	IncludeLine string `toml:"include_line"`
	// Mapping is an optional path (relative to the manifest) of a YAML
	// token replacement table.
	Mapping string `toml:"mapping"`
}

// DefaultExtensions is used when neither flag nor manifest specifies any.
var DefaultExtensions = []string{".f90"}

// Find walks up from startDir to locate gpuport.toml and loads it.
func Find(startDir string) (*Manifest, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			if err != nil {
				return nil, true, err
			}
			return &Manifest{Path: candidate, Root: dir, Config: cfg}, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, false, nil
}

// Load parses a gpuport.toml file.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}

// Extensions returns the configured extensions or the default set.
func (c Config) Extensions() []string {
	if len(c.Rewrite.Extensions) == 0 {
		return DefaultExtensions
	}
	return c.Rewrite.Extensions
}

// MappingPath resolves the mapping file relative to the manifest root.
func (m *Manifest) MappingPath() string {
	if m == nil || m.Config.Rewrite.Mapping == "" {
		return ""
	}
	if filepath.IsAbs(m.Config.Rewrite.Mapping) {
		return m.Config.Rewrite.Mapping
	}
	return filepath.Join(m.Root, m.Config.Rewrite.Mapping)
}
