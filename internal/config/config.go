// Package config loads gitsplit settings from an HCL file.
//
//	depth         = 2
//	branch_prefix = "tmp-branch"
//	log_file      = "/tmp/gitsplit.log"
//	journal       = true
//
//	glyphs {
//	  selected   = "[x]"
//	  unselected = "[ ]"
//	  partial    = "[-]"
//	}
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Defaults.
const (
	DefaultDepth        = 3
	DefaultBranchPrefix = "tmp-branch"
)

// Glyphs are the marks drawn next to navigator entries.
type Glyphs struct {
	Selected   string
	Unselected string
	Partial    string
}

// DefaultGlyphs returns the built-in marks.
func DefaultGlyphs() Glyphs {
	return Glyphs{Selected: "☑", Unselected: "☐", Partial: "⚀"}
}

// Config is the resolved configuration.
type Config struct {
	Depth        int
	BranchPrefix string
	LogFile      string
	Journal      bool
	Glyphs       Glyphs
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Depth:        DefaultDepth,
		BranchPrefix: DefaultBranchPrefix,
		Journal:      true,
		Glyphs:       DefaultGlyphs(),
	}
}

// file mirrors the HCL document. Pointers tell unset attributes apart from
// zero values.
type file struct {
	Depth        *int        `hcl:"depth,optional"`
	BranchPrefix *string     `hcl:"branch_prefix,optional"`
	LogFile      *string     `hcl:"log_file,optional"`
	Journal      *bool       `hcl:"journal,optional"`
	Glyphs       *glyphsFile `hcl:"glyphs,block"`
}

type glyphsFile struct {
	Selected   *string `hcl:"selected,optional"`
	Unselected *string `hcl:"unselected,optional"`
	Partial    *string `hcl:"partial,optional"`
}

// DefaultPath returns $XDG_CONFIG_HOME/gitsplit/config.hcl, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gitsplit", "config.hcl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".config", "gitsplit", "config.hcl"), nil
}

// Load reads the file at path over the defaults. An empty path means the
// default location, which is allowed to be missing; an explicit path must
// exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	var f file
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return f.resolve()
}

func (f file) resolve() (Config, error) {
	cfg := Default()
	if f.Depth != nil {
		if *f.Depth < 1 {
			return Config{}, fmt.Errorf("depth must be at least 1, got %d", *f.Depth)
		}
		cfg.Depth = *f.Depth
	}
	if f.BranchPrefix != nil && *f.BranchPrefix != "" {
		cfg.BranchPrefix = *f.BranchPrefix
	}
	if f.LogFile != nil {
		cfg.LogFile = *f.LogFile
	}
	if f.Journal != nil {
		cfg.Journal = *f.Journal
	}
	if g := f.Glyphs; g != nil {
		set := func(dst *string, v *string) {
			if v != nil && *v != "" {
				*dst = *v
			}
		}
		set(&cfg.Glyphs.Selected, g.Selected)
		set(&cfg.Glyphs.Unselected, g.Unselected)
		set(&cfg.Glyphs.Partial, g.Partial)
	}
	return cfg, nil
}
