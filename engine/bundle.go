package engine

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cpcf/bootstrapp/errors"
	"github.com/cpcf/bootstrapp/spec"
)

// Well-known entries of a template bundle.
const (
	ContentDirName  = "Content"
	PresetsDirName  = "Presets"
	DescriptionName = "Description.md"
)

// Bundle is a template bundle directory: a Bootstrapp.json specification,
// a Content tree, and optionally Presets assets and a description.
type Bundle struct {
	Root string
}

// OpenBundle checks that root looks like a template bundle. The
// specification itself is loaded and validated separately.
func OpenBundle(root string) (*Bundle, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "resolving %q", root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Newf(errors.ErrSpecValidation, "template bundle not found: %s", abs)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrSpecValidation, "template bundle is not a directory: %s", abs)
	}

	b := &Bundle{Root: abs}

	if _, err := os.Stat(b.SpecPath()); err != nil {
		return nil, errors.Newf(errors.ErrSpecValidation,
			"bundle has no %s: %s", spec.SpecFileName, abs)
	}
	if info, err := os.Stat(b.ContentPath()); err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrSpecValidation,
			"bundle has no %s directory: %s", ContentDirName, abs)
	}
	return b, nil
}

// SpecPath is the bundle's specification file.
func (b *Bundle) SpecPath() string {
	return filepath.Join(b.Root, spec.SpecFileName)
}

// ContentPath is the bundle's content root.
func (b *Bundle) ContentPath() string {
	return filepath.Join(b.Root, ContentDirName)
}

// ContentFS returns the content root as a filesystem.
func (b *Bundle) ContentFS() fs.FS {
	return os.DirFS(b.ContentPath())
}

// PresetsPath returns the bundle's Presets directory, if it has one.
func (b *Bundle) PresetsPath() (string, bool) {
	p := filepath.Join(b.Root, PresetsDirName)
	info, err := os.Stat(p)
	return p, err == nil && info.IsDir()
}

// DescriptionPath returns the bundle's description file, if it has one.
func (b *Bundle) DescriptionPath() (string, bool) {
	p := filepath.Join(b.Root, DescriptionName)
	info, err := os.Stat(p)
	return p, err == nil && info.Mode().IsRegular()
}
